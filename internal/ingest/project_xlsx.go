package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	projects "energywatch/internal/projects/domain"
)

// registryDateLayouts are the date shapes seen in registry exports.
var registryDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"2/1/2006",
}

// ProjectRow is one decoded registry row with its source row number.
type ProjectRow struct {
	Line    int
	Project projects.Project
}

// DecodeProjects decodes the regulator's registry workbook. Columns are
// located by header name on the first sheet, so the export can reorder or
// append columns without breaking the upload.
func DecodeProjects(r io.Reader, submitAt time.Time) ([]ProjectRow, Report, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, Report{}, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, Report{}, fmt.Errorf("ingest: workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, Report{}, fmt.Errorf("ingest: read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, Report{}, fmt.Errorf("ingest: empty sheet")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index["G_PROJECT_KEY"]; !ok {
		return nil, Report{}, fmt.Errorf("ingest: missing required columns: G_PROJECT_KEY")
	}

	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	report := Report{Total: len(rows) - 1}
	out := make([]ProjectRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		project := projects.Project{
			Key:                   cell(row, "G_PROJECT_KEY"),
			SPPVSPPRowID:          cell(row, "SPP_VSPP_ROW_ID"),
			ELicenseRowID:         cell(row, "E_LICENSE_ROW_ID"),
			PKPowerSystemResource: cell(row, "PK_POWER_SYSTEM_RESOURCE"),
			ERCCode:               cell(row, "ERC_CODE"),
			Org:                   cell(row, "ORG"),
			SPPVSPPPlantCode:      cell(row, "SPP_VSPP_PLANT_CODE"),
			PPAContractNo:         cell(row, "PPA_CONTRACT_NO"),
			Name:                  cell(row, "NAME"),
			SPPVSPPName:           cell(row, "SPP_VSPP_NAME"),
			Licensee:              cell(row, "LICENSEE"),
			DisplayAddr:           cell(row, "DISPLAY_ADDR"),
			Subdistrict:           cell(row, "SUBDISTRICT"),
			District:              cell(row, "DISTRICT"),
			Province:              cell(row, "PROVINCE"),
			CountryZone:           cell(row, "COUNTRY_ZONE"),
			EGATZone:              cell(row, "EGAT_ZONE"),
			ContractStatus:        cell(row, "CONTRACT_STATUS"),
			ELicenseInstlMW:       floatCell(cell(row, "E_LICENSE_INSTL_MW")),
			ELicenseInstlKVA:      floatCell(cell(row, "E_LICENSE_INSTL_KVA")),
			InstalledCapMW:        floatCell(cell(row, "INSTALLED_CAP_MW")),
			ContractedCapMW:       floatCell(cell(row, "CONTRACTED_CAP_MW")),
			ProjectType:           cell(row, "PROJECT_TYPE"),
			ContractType:          cell(row, "CONTRACT_TYPE"),
			TechAGroup1:           cell(row, "TECH_A_GROUP_1"),
			TechAGroup2:           cell(row, "TECH_A_GROUP_2"),
			TechADetail:           cell(row, "TECH_A_DETAIL"),
			PrimaryFuelAGroup1:    cell(row, "PRIMARY_FUEL_A_GROUP_1"),
			PrimaryFuelAGroup2:    cell(row, "PRIMARY_FUEL_A_GROUP_2"),
			PrimaryFuelAGroup3:    cell(row, "PRIMARY_FUEL_A_GROUP_3"),
			SecondaryFuelAGroup1:  cell(row, "SECONDARY_FUEL_A_GROUP_1"),
			SecondaryFuelAGroup2:  cell(row, "SECONDARY_FUEL_A_GROUP_2"),
			SecondaryFuelAGroup3:  cell(row, "SECONDARY_FUEL_A_GROUP_3"),
			TechBGroup1:           cell(row, "TECH_B_GROUP_1"),
			TechBGroup2:           cell(row, "TECH_B_GROUP_2"),
			TechBDetail:           cell(row, "TECH_B_DETAIL"),
			PrimaryFuelBGroup1:    cell(row, "PRIMARY_FUEL_B_GROUP_1"),
			PrimaryFuelBGroup2:    cell(row, "PRIMARY_FUEL_B_GROUP_2"),
			PrimaryFuelBGroup3:    cell(row, "PRIMARY_FUEL_B_GROUP_3"),
			SecondaryFuelBGroup1:  cell(row, "SECONDARY_FUEL_B_GROUP_1"),
			SecondaryFuelBGroup2:  cell(row, "SECONDARY_FUEL_B_GROUP_2"),
			SecondaryFuelBGroup3:  cell(row, "SECONDARY_FUEL_B_GROUP_3"),
			Utilization:           cell(row, "UTILIZATION"),
			SCOD:                  dateCell(cell(row, "SCOD")),
			COD:                   dateCell(cell(row, "COD")),
			Lat:                   optionalFloat(cell(row, "LAT")),
			Lng:                   optionalFloat(cell(row, "LNG")),
			IsEGATSysGen:          cell(row, "IS_EGAT_SYS_GEN") == "1",
			IsSharingLic:          cell(row, "IS_SHARING_LIC") == "1",
			LicensingNo:           cell(row, "LICENSING_NO"),
			ERCDistrictNo:         cell(row, "ERC_DISTRICT_NO"),
			ERCDistrictName:       cell(row, "ERC_DISTRICT_NAME"),
			MonthKey:              cell(row, "MONTH_KEY"),
			UpdatedAt:             submitAt,
		}
		if err := project.Validate(); err != nil {
			report.reject(line, err.Error())
			continue
		}
		out = append(out, ProjectRow{Line: line, Project: project})
	}
	return out, report, nil
}

func floatCell(raw string) float64 {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0
	}
	return value
}

func dateCell(raw string) time.Time {
	for _, layout := range registryDateLayouts {
		if at, err := time.Parse(layout, raw); err == nil {
			return at
		}
	}
	return time.Time{}
}
