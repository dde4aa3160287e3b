package memory

import (
	"context"
	"sync"

	projects "energywatch/internal/projects/domain"
)

// ProjectRepository is an in-memory registry for tests and local runs.
type ProjectRepository struct {
	mu   sync.RWMutex
	rows map[string]projects.Project
}

// NewProjectRepository constructs an empty repository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{rows: make(map[string]projects.Project)}
}

// Upsert replaces a row keyed on the project key.
func (r *ProjectRepository) Upsert(ctx context.Context, project projects.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[project.Key] = project
	return nil
}

// CountActive counts active projects in a fuel group with the given fuel.
func (r *ProjectRepository) CountActive(ctx context.Context, fuelGroup, fuel string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, project := range r.rows {
		if project.Active() && project.PrimaryFuelAGroup1 == fuelGroup && project.PrimaryFuelAGroup3 == fuel {
			count++
		}
	}
	return count, nil
}

// ActiveLocations returns active projects' map pins.
func (r *ProjectRepository) ActiveLocations(ctx context.Context) ([]projects.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	locations := make([]projects.Location, 0)
	for _, project := range r.rows {
		if !project.Active() || project.Lat == nil || project.Lng == nil {
			continue
		}
		locations = append(locations, projects.Location{
			Fuel: project.PrimaryFuelAGroup1,
			Lat:  *project.Lat,
			Lng:  *project.Lng,
		})
	}
	return locations, nil
}
