package application

import (
	"context"
	"log"
	"os"
	"testing"

	"energywatch/internal/breakdown"
	projects "energywatch/internal/projects/domain"
	projectmem "energywatch/internal/projects/infrastructure/memory"
)

func coord(v float64) *float64 { return &v }

func seedRegistry(t *testing.T) *projectmem.ProjectRepository {
	t.Helper()
	repo := projectmem.NewProjectRepository()
	rows := []projects.Project{
		{Key: "p1", ContractStatus: "COD", PrimaryFuelAGroup1: "Renewable", PrimaryFuelAGroup3: "Solar", Lat: coord(13.7), Lng: coord(100.5)},
		{Key: "p2", ContractStatus: "N1", PrimaryFuelAGroup1: "Renewable", PrimaryFuelAGroup3: "Solar"},
		{Key: "p3", ContractStatus: "COD-2020", PrimaryFuelAGroup1: "Renewable", PrimaryFuelAGroup3: "Wind"},
		{Key: "p4", ContractStatus: "COD", PrimaryFuelAGroup1: "Fossil", PrimaryFuelAGroup3: "Natural Gas", Lat: coord(14.1), Lng: coord(101.0)},
		// Terminated projects never count.
		{Key: "p5", ContractStatus: "TERMINATED", PrimaryFuelAGroup1: "Renewable", PrimaryFuelAGroup3: "Solar"},
	}
	for _, row := range rows {
		if err := repo.Upsert(context.Background(), row); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	return repo
}

func itemValue(t *testing.T, items []breakdown.Item, tag string) float64 {
	t.Helper()
	for _, item := range items {
		if item.Tag == tag {
			return item.Value
		}
	}
	t.Fatalf("no item tagged %s", tag)
	return 0
}

func TestCountRenewableFollowsTaxonomy(t *testing.T) {
	service, err := NewService(seedRegistry(t), log.New(os.Stdout, "", log.LstdFlags))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	items, err := service.CountRenewable(context.Background())
	if err != nil {
		t.Fatalf("count renewable: %v", err)
	}
	// One item per taxonomy fuel plus the trailing total.
	if len(items) != len(projects.RenewableFuels)+1 {
		t.Fatalf("expected %d items, got %d", len(projects.RenewableFuels)+1, len(items))
	}
	if got := itemValue(t, items, "พลังงานแสงอาทิตย์"); got != 2 {
		t.Fatalf("solar: expected 2, got %v", got)
	}
	if got := itemValue(t, items, "หลังงานลม"); got != 1 {
		t.Fatalf("wind: expected 1, got %v", got)
	}
	if last := items[len(items)-1]; last.Tag != breakdown.TotalTag || last.Value != 3 {
		t.Fatalf("expected trailing total 3, got %+v", last)
	}
}

func TestCountFossilExcludesRenewables(t *testing.T) {
	service, err := NewService(seedRegistry(t), log.New(os.Stdout, "", log.LstdFlags))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	items, err := service.CountFossil(context.Background())
	if err != nil {
		t.Fatalf("count fossil: %v", err)
	}
	if got := itemValue(t, items, "ก๊าซธรรมชาติ"); got != 1 {
		t.Fatalf("natural gas: expected 1, got %v", got)
	}
	if last := items[len(items)-1]; last.Value != 1 {
		t.Fatalf("expected trailing total 1, got %+v", last)
	}
}

func TestLocationsSkipUnmappedProjects(t *testing.T) {
	service, err := NewService(seedRegistry(t), log.New(os.Stdout, "", log.LstdFlags))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	locations, err := service.Locations(context.Background())
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("expected 2 pins, got %d", len(locations))
	}
	for _, location := range locations {
		if location.Lat == 0 || location.Fuel == "" {
			t.Fatalf("incomplete pin %+v", location)
		}
	}
}
