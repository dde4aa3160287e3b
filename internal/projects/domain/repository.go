package projects

import "context"

// Repository persists the plant registry.
type Repository interface {
	Upsert(ctx context.Context, project Project) error
	// CountActive counts active projects in a primary fuel group carrying the
	// given detailed fuel label.
	CountActive(ctx context.Context, fuelGroup, fuel string) (int, error)
	// ActiveLocations returns the map pins of active projects that carry
	// coordinates.
	ActiveLocations(ctx context.Context) ([]Location, error)
}
