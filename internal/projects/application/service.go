package application

import (
	"context"
	"errors"
	"log"

	"energywatch/internal/breakdown"
	projects "energywatch/internal/projects/domain"
)

// Service answers plant registry queries for the dashboard.
type Service struct {
	repo   projects.Repository
	logger *log.Logger
}

// NewService constructs a registry service.
func NewService(repo projects.Repository, logger *log.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("project service: nil repository")
	}
	return &Service{repo: repo, logger: logger}, nil
}

// Upsert replaces one registry row.
func (s *Service) Upsert(ctx context.Context, project projects.Project) error {
	return s.repo.Upsert(ctx, project)
}

// CountRenewable counts active renewable plants per fuel, the overall total
// appended last under the total tag.
func (s *Service) CountRenewable(ctx context.Context) ([]breakdown.Item, error) {
	return s.countByFuel(ctx, projects.FuelGroupRenewable, projects.RenewableFuels)
}

// CountFossil counts active fossil plants per fuel, the overall total
// appended last under the total tag.
func (s *Service) CountFossil(ctx context.Context) ([]breakdown.Item, error) {
	return s.countByFuel(ctx, projects.FuelGroupFossil, projects.FossilFuels)
}

func (s *Service) countByFuel(ctx context.Context, group string, fuels []projects.FuelName) ([]breakdown.Item, error) {
	items := make([]breakdown.Item, 0, len(fuels)+1)
	total := 0
	for _, fuel := range fuels {
		count, err := s.repo.CountActive(ctx, group, fuel.Registry)
		if err != nil {
			return nil, err
		}
		total += count
		items = append(items, breakdown.Item{Tag: fuel.Display, Value: float64(count)})
	}
	items = append(items, breakdown.Item{Tag: breakdown.TotalTag, Value: float64(total)})
	return items, nil
}

// Locations returns active plants' map pins tagged by fuel group.
func (s *Service) Locations(ctx context.Context) ([]projects.Location, error) {
	return s.repo.ActiveLocations(ctx)
}
