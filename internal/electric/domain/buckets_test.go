package electric

import "testing"

func TestClassifyPlant(t *testing.T) {
	cases := []struct {
		label     string
		plantType string
		want      string
		ok        bool
	}{
		{"BLCP-T1", "IPP", PlantIPP, true},
		{"MM3-IMP", "OTHER", PlantImport, true},
		{"SB-T1", "EGAT HYDRO", PlantEGAT, true},
		{"GLOW-T2", "SPP FIRM", PlantSPP, true},
		{"NEW-ZZ_SCOD", "IPP", "", false},
		{"MYSTERY-T1", "COOP", "", false},
	}
	for _, c := range cases {
		got, ok := ClassifyPlant(c.label, c.plantType)
		if got != c.want || ok != c.ok {
			t.Fatalf("ClassifyPlant(%q, %q) = (%q, %v), want (%q, %v)",
				c.label, c.plantType, got, ok, c.want, c.ok)
		}
	}
}

func TestClassifyPlantImportBeatsType(t *testing.T) {
	// An import row must never be double counted under its company type.
	got, ok := ClassifyPlant("HHO-IMP", "EGAT")
	if !ok || got != PlantImport {
		t.Fatalf("expected import bucket, got (%q, %v)", got, ok)
	}
}

func TestClassifyFuel(t *testing.T) {
	cases := []struct {
		label string
		want  string
		ok    bool
	}{
		{"NATURAL GAS", FuelGas, true},
		{"RENEWABLE", FuelRenewable, true},
		{"HYDRO", FuelHydro, true},
		{"COAL/LIGNITE", FuelCoal, true},
		{"FUEL OIL", FuelOil, true},
		{"NUCLEAR", "", false},
	}
	for _, c := range cases {
		got, ok := ClassifyFuel(c.label)
		if got != c.want || ok != c.ok {
			t.Fatalf("ClassifyFuel(%q) = (%q, %v), want (%q, %v)", c.label, got, ok, c.want, c.ok)
		}
	}
}

func TestClassifyOverrideTag(t *testing.T) {
	cases := []struct {
		tag  string
		want string
		ok   bool
	}{
		{"ก๊าซธรรมชาติ", FuelGas, true},
		{"co-gen", FuelGas, true},
		{"แสงอาทิตย์", FuelRenewable, true},
		{"ชีวมวล", FuelRenewable, true},
		{"ถ่านหิน", FuelCoal, true},
		{"พลังงานน้ำ", FuelHydro, true},
		{"ดีเซล", "", false},
	}
	for _, c := range cases {
		got, ok := ClassifyOverrideTag(c.tag)
		if got != c.want || ok != c.ok {
			t.Fatalf("ClassifyOverrideTag(%q) = (%q, %v), want (%q, %v)", c.tag, got, ok, c.want, c.ok)
		}
	}
}
