package gas

import "strings"

// Supply buckets, by pipeline origin.
const (
	SupplyGulf    = "got"
	SupplyLNG     = "lng"
	SupplyMyanmar = "myanmar"
	SupplyOnshore = "onshore"
)

// SupplyOrder is the display order of supply buckets.
var SupplyOrder = []string{SupplyGulf, SupplyLNG, SupplyMyanmar, SupplyOnshore}

// Demand buckets, by offtaker class.
const (
	DemandEGAT = "egat"
	DemandIPP  = "ipp"
	DemandSPP  = "spp"
	DemandGSP  = "gsp"
	DemandInd  = "ind"
	DemandNGV  = "ngv"
	DemandFuel = "fuel"
)

// DemandOrder is the display order of demand buckets.
var DemandOrder = []string{DemandEGAT, DemandIPP, DemandSPP, DemandGSP, DemandInd, DemandNGV, DemandFuel}

// supplyPoints maps metering point names to supply buckets. The point list
// is closed; new points must be mapped here before they count.
var supplyPoints = map[string]string{
	"GULF-GAS":     SupplyGulf,
	"FD-SPE-LNG":   SupplyLNG,
	"FD-SPE-LMPT2": SupplyLNG,
	"FD-SPW-MIX_W": SupplyMyanmar,
	"ESAN-SUPPLY":  SupplyOnshore,
}

// SupplyPointNames returns every metering point queried for current supply.
func SupplyPointNames() []string {
	return []string{"GULF-GAS", "FD-SPE-LNG", "FD-SPE-LMPT2", "FD-SPW-MIX_W", "ESAN-SUPPLY"}
}

// ClassifySupplyPoint routes a metering point to its supply bucket.
func ClassifySupplyPoint(name string) (string, bool) {
	bucket, ok := supplyPoints[name]
	return bucket, ok
}

// DemandPointNames returns every metering point queried for current demand.
func DemandPointNames() []string {
	return []string{
		"TOTAL-DEMAND-EAST-EGAT", "TOTAL-DEMAND-EAST-IPP",
		"TOTAL-DEMAND-EAST-SPP", "FD-GSP-UGSPRY_TOTAL",
		"TOTAL-DEMAND-EAST-OTHER-IND", "TOTAL-DEMAND-EAST-OTHER-NGV",
		"TOTAL-DEMAND-EAST-OTHER-FUEL", "FD-IPP-MIX_WEST",
		"FD_SPP_ONSW_MIX", "FD-EGAT-MIX_WEST",
		"TOTAL-DEMAND-WEST-OTHER-IND", "TOTAL-DEMAND-WEST-OTHER-NGV",
		"TOTAL-DEMAND-WEST-OTHER-FUEL",
		"FD-EGAT-CHN", "FD-IPP-KN4", "FLOW-NGV-CHANA", "FD-GSP-UGSP4",
		"FD-EGAT-NPO", "FLOW-NGV-NPO",
	}
}

// ClassifyDemandPoint routes a metering point to its demand bucket by
// substring, first match wins in the order below.
func ClassifyDemandPoint(name string) (string, bool) {
	switch {
	case strings.Contains(name, "EGAT"):
		return DemandEGAT, true
	case strings.Contains(name, "IPP"):
		return DemandIPP, true
	case strings.Contains(name, "SPP"):
		return DemandSPP, true
	case strings.Contains(name, "GSP"):
		return DemandGSP, true
	case strings.Contains(name, "IND"):
		return DemandInd, true
	case strings.Contains(name, "NGV"):
		return DemandNGV, true
	case strings.Contains(name, "FUEL"):
		return DemandFuel, true
	default:
		return "", false
	}
}

// SendoutPointNames returns the metering points queried for end-of-day
// sendout and first-terminal inventory.
func SendoutPointNames() []string {
	return []string{
		"ACCF-SPE-LNG", "ACCF-SPE-LMPT2",
		"INVEN_SPE_LNG_A", "INVEN_SPE_LNG_B", "INVEN_SPE_LNG_C", "INVEN_SPE_LNG_D",
	}
}

// ClassifySendoutPoint routes an end-of-day metering point to its tag. The
// four INVEN tank points share one tag and are summed by the caller.
func ClassifySendoutPoint(name string) (string, bool) {
	switch {
	case name == "ACCF-SPE-LNG":
		return TagLMPT1Sendout, true
	case name == "ACCF-SPE-LMPT2":
		return TagLMPT2Sendout, true
	case strings.Contains(name, "INVEN"):
		return TagLMPT1Invent, true
	default:
		return "", false
	}
}
