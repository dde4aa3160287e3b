package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	projects "energywatch/internal/projects/domain"
)

const defaultProjectsTable = "electric_projects"

// activeStatus filters contract statuses that still count: commissioned
// projects and normal status codes.
const activeStatus = `(contract_status LIKE 'COD%' OR contract_status LIKE 'N%')`

// projectColumns lists every registry column after the key, in the order the
// scan and upsert arguments are passed.
var projectColumns = []string{
	"spp_vspp_rowid", "e_license_rowid", "pk_powersystemresource", "erc_cd",
	"org", "spp_vspp_plant_cd", "ppa_contract_no", "project_name",
	"spp_vspp_project_name", "licensee", "display_addr", "subdistrict",
	"district", "province", "country_zone", "egat_zone", "contract_status",
	"e_license_instl_mw", "e_license_instl_kva", "installed_cap_mw",
	"contracted_cap_mw", "project_type", "contract_type",
	"technology_a_group_1", "technology_a_group_2", "technology_a_detail",
	"primary_fuel_a_group_1", "primary_fuel_a_group_2", "primary_fuel_a_group_3",
	"secondary_fuel_a_group_1", "secondary_fuel_a_group_2", "secondary_fuel_a_group_3",
	"technology_b_group_1", "technology_b_group_2", "technology_b_detail",
	"primary_fuel_b_group_1", "primary_fuel_b_group_2", "primary_fuel_b_group_3",
	"secondary_fuel_b_group_1", "secondary_fuel_b_group_2", "secondary_fuel_b_group_3",
	"utilization", "scod", "cod", "lat", "lng", "is_egat_sys_gen",
	"is_sharing_lic", "licensingno", "erc_district_no",
	"erc_district_displayname", "month_key", "update_timestamp",
}

// ProjectRepository is a Postgres implementation of the registry repository.
type ProjectRepository struct {
	db    *sql.DB
	table string
}

// NewProjectRepository constructs a repository with default table name.
func NewProjectRepository(db *sql.DB, opts ...Option) *ProjectRepository {
	repo := &ProjectRepository{db: db, table: defaultProjectsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*ProjectRepository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *ProjectRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Upsert replaces a registry row in place, keyed on the project key.
func (r *ProjectRepository) Upsert(ctx context.Context, project projects.Project) error {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	if err := project.Validate(); err != nil {
		return err
	}

	placeholders := make([]string, 0, len(projectColumns)+1)
	updates := make([]string, 0, len(projectColumns))
	for i, column := range projectColumns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	query := fmt.Sprintf(`
INSERT INTO %s (g_project_key, %s)
VALUES ($1, %s)
ON CONFLICT (g_project_key)
DO UPDATE SET %s`,
		r.table,
		strings.Join(projectColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "))

	args := append([]any{project.Key}, projectArgs(project)...)
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// CountActive counts active projects in a fuel group with the given detailed
// fuel label.
func (r *ProjectRepository) CountActive(ctx context.Context, fuelGroup, fuel string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("project repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT COUNT(*)
FROM %s
WHERE %s
	AND primary_fuel_a_group_1 = $1
	AND primary_fuel_a_group_3 = $2`, r.table, activeStatus)

	var count int
	if err := r.db.QueryRowContext(ctx, query, fuelGroup, fuel).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ActiveLocations returns active projects' map pins; rows without
// coordinates are skipped.
func (r *ProjectRepository) ActiveLocations(ctx context.Context) ([]projects.Location, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("project repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT primary_fuel_a_group_1, lat, lng
FROM %s
WHERE %s AND lat IS NOT NULL AND lng IS NOT NULL`, r.table, activeStatus)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]projects.Location, 0)
	for rows.Next() {
		var location projects.Location
		if err := rows.Scan(&location.Fuel, &location.Lat, &location.Lng); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

func projectArgs(p projects.Project) []any {
	return []any{
		p.SPPVSPPRowID, p.ELicenseRowID, p.PKPowerSystemResource, p.ERCCode,
		p.Org, p.SPPVSPPPlantCode, p.PPAContractNo, p.Name,
		p.SPPVSPPName, p.Licensee, p.DisplayAddr, p.Subdistrict,
		p.District, p.Province, p.CountryZone, p.EGATZone, p.ContractStatus,
		p.ELicenseInstlMW, p.ELicenseInstlKVA, p.InstalledCapMW,
		p.ContractedCapMW, p.ProjectType, p.ContractType,
		p.TechAGroup1, p.TechAGroup2, p.TechADetail,
		p.PrimaryFuelAGroup1, p.PrimaryFuelAGroup2, p.PrimaryFuelAGroup3,
		p.SecondaryFuelAGroup1, p.SecondaryFuelAGroup2, p.SecondaryFuelAGroup3,
		p.TechBGroup1, p.TechBGroup2, p.TechBDetail,
		p.PrimaryFuelBGroup1, p.PrimaryFuelBGroup2, p.PrimaryFuelBGroup3,
		p.SecondaryFuelBGroup1, p.SecondaryFuelBGroup2, p.SecondaryFuelBGroup3,
		p.Utilization, nullTime(p.SCOD), nullTime(p.COD), p.Lat, p.Lng,
		p.IsEGATSysGen, p.IsSharingLic, p.LicensingNo, p.ERCDistrictNo,
		p.ERCDistrictName, p.MonthKey, p.UpdatedAt,
	}
}

func nullTime(at time.Time) any {
	if at.IsZero() {
		return nil
	}
	return at
}
