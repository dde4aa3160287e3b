package projects

import (
	"errors"
	"strings"
	"time"
)

// Primary fuel groups as carried by the regulator's registry export.
const (
	FuelGroupRenewable = "Renewable"
	FuelGroupFossil    = "Fossil"
)

// ErrInvalidProject indicates a registry row without a project key.
var ErrInvalidProject = errors.New("projects: missing project key")

// Project is one row of the regulator's plant registry. The registry is
// replaced wholesale by periodic uploads keyed on the project key; the
// column set mirrors the upstream export.
type Project struct {
	Key                   string
	SPPVSPPRowID          string
	ELicenseRowID         string
	PKPowerSystemResource string
	ERCCode               string
	Org                   string
	SPPVSPPPlantCode      string
	PPAContractNo         string
	Name                  string
	SPPVSPPName           string
	Licensee              string
	DisplayAddr           string
	Subdistrict           string
	District              string
	Province              string
	CountryZone           string
	EGATZone              string
	ContractStatus        string
	ELicenseInstlMW       float64
	ELicenseInstlKVA      float64
	InstalledCapMW        float64
	ContractedCapMW       float64
	ProjectType           string
	ContractType          string
	TechAGroup1           string
	TechAGroup2           string
	TechADetail           string
	PrimaryFuelAGroup1    string
	PrimaryFuelAGroup2    string
	PrimaryFuelAGroup3    string
	SecondaryFuelAGroup1  string
	SecondaryFuelAGroup2  string
	SecondaryFuelAGroup3  string
	TechBGroup1           string
	TechBGroup2           string
	TechBDetail           string
	PrimaryFuelBGroup1    string
	PrimaryFuelBGroup2    string
	PrimaryFuelBGroup3    string
	SecondaryFuelBGroup1  string
	SecondaryFuelBGroup2  string
	SecondaryFuelBGroup3  string
	Utilization           string
	SCOD                  time.Time
	COD                   time.Time
	Lat                   *float64
	Lng                   *float64
	IsEGATSysGen          bool
	IsSharingLic          bool
	LicensingNo           string
	ERCDistrictNo         string
	ERCDistrictName       string
	MonthKey              string
	UpdatedAt             time.Time
}

// Validate checks basic invariants.
func (p Project) Validate() error {
	if p.Key == "" {
		return ErrInvalidProject
	}
	return nil
}

// Active reports whether the contract still counts toward plant totals:
// commissioned projects and those still carrying a normal status code.
func (p Project) Active() bool {
	return strings.HasPrefix(p.ContractStatus, "COD") || strings.HasPrefix(p.ContractStatus, "N")
}

// FuelName pairs the registry's English fuel label with the dashboard's
// display name.
type FuelName struct {
	Registry string
	Display  string
}

// RenewableFuels lists the renewable fuel taxonomy in display order.
var RenewableFuels = []FuelName{
	{Registry: "Solar", Display: "พลังงานแสงอาทิตย์"},
	{Registry: "Hydro", Display: "หลังงานน้ำ"},
	{Registry: "Wind", Display: "หลังงานลม"},
	{Registry: "Biogas", Display: "ก๊าซชีวภาพ"},
	{Registry: "Biomass", Display: "ชีวมวล"},
	{Registry: "Waste", Display: "ขยะ"},
	{Registry: "Geothermal", Display: "พลังงานความร้อนใต้พิภพ"},
	{Registry: "RE - Others", Display: "อื่นๆ"},
	{Registry: "N/A", Display: "ไม่ระบุบ"},
}

// FossilFuels lists the fossil fuel taxonomy in display order.
var FossilFuels = []FuelName{
	{Registry: "Natural Gas", Display: "ก๊าซธรรมชาติ"},
	{Registry: "Diesel Oil", Display: "น้ำมันดีเซล"},
	{Registry: "Bunker Oil", Display: "น้ำมันบังเกอร์"},
	{Registry: "Pitch", Display: "พิช"},
	{Registry: "Lignite", Display: "ถ่านหินลิกไนต์"},
	{Registry: "Coal", Display: "ถ่านหิน"},
}

// Location is an active plant's map pin with its fuel group.
type Location struct {
	Fuel string  `json:"tag"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
