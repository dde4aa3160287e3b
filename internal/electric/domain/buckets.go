package electric

import "strings"

// Plant buckets. Upstream plant taxonomies are a superset of what the
// dashboard tracks; classification is total over the closed set below plus
// an explicit unrecognized sink.
const (
	PlantEGAT   = "egat"
	PlantIPP    = "ipp"
	PlantSPP    = "spp"
	PlantVSPP   = "vspp"
	PlantIPS    = "ips"
	PlantImport = "imp"
)

// Fuel buckets, keyed by the dashboard's Thai display tags.
const (
	FuelGas       = "ก๊าซธรรมชาติ"
	FuelRenewable = "พลังงานทดแทน"
	FuelHydro     = "พลังงานน้ำ"
	FuelCoal      = "ถ่านหิน"
	FuelOil       = "น้ำมัน"
)

// skippedLabelMark flags placeholder plants that must never be counted.
const skippedLabelMark = "ZZ_SCOD"

// ClassifyPlant routes an upstream generation record to exactly one plant
// bucket. Import rows are identified by label before type; placeholder rows
// and unknown types land in the unrecognized sink (ok == false).
func ClassifyPlant(label, plantType string) (string, bool) {
	if strings.Contains(label, skippedLabelMark) {
		return "", false
	}
	if strings.Contains(label, "IMP") {
		return PlantImport, true
	}
	switch {
	case strings.Contains(plantType, "EGAT"):
		return PlantEGAT, true
	case strings.Contains(plantType, "IPP"):
		return PlantIPP, true
	case strings.Contains(plantType, "SPP"):
		return PlantSPP, true
	default:
		return "", false
	}
}

// ClassifyFuel routes an upstream fuel label to one fuel bucket.
func ClassifyFuel(label string) (string, bool) {
	switch {
	case strings.Contains(label, "GAS"):
		return FuelGas, true
	case strings.Contains(label, "RENEWABLE"):
		return FuelRenewable, true
	case strings.Contains(label, "HYDRO"):
		return FuelHydro, true
	case strings.Contains(label, "COAL"):
		return FuelCoal, true
	case strings.Contains(label, "OIL"):
		return FuelOil, true
	default:
		return "", false
	}
}

// Override submission value tags grouped into fuel buckets. These are the
// tags small producers report in correction files.
var (
	overrideGasTags = map[string]struct{}{
		"ก๊าซธรรมชาติ": {},
		"co-gen":       {},
	}
	overrideRenewableTags = map[string]struct{}{
		"PEA ผลิต":              {},
		"ขยะ":                   {},
		"ชีวภาพ":                {},
		"ชีวมวล":                {},
		"พพ. ผลิต":              {},
		"พลังงานความร้อนเหลือ": {},
		"ลม":                    {},
		"แสงอาทิตย์":            {},
	}
)

// ClassifyOverrideTag routes an override value tag to one fuel bucket.
func ClassifyOverrideTag(tag string) (string, bool) {
	if _, ok := overrideGasTags[tag]; ok {
		return FuelGas, true
	}
	if _, ok := overrideRenewableTags[tag]; ok {
		return FuelRenewable, true
	}
	switch tag {
	case FuelCoal:
		return FuelCoal, true
	case FuelHydro:
		return FuelHydro, true
	default:
		return "", false
	}
}
