package ledger

import (
	"testing"

	"fabtrack/models"
)

func TestParseProcessType(t *testing.T) {
	for _, p := range AllProcessTypes() {
		got, err := ParseProcessType(string(p))
		if err != nil {
			t.Errorf("ParseProcessType(%q) error = %v", p, err)
		}
		if got != p {
			t.Errorf("ParseProcessType(%q) = %q", p, got)
		}
	}

	for _, bad := range []string{"", "welding", "Shipping", "Fit up"} {
		if _, err := ParseProcessType(bad); err == nil {
			t.Errorf("ParseProcessType(%q) accepted an unknown type", bad)
		}
	}
}

func TestDispatchTypeByCode(t *testing.T) {
	tests := []struct {
		code string
		want ProcessType
	}{
		{"DSB", ProcessDispatchedToSandblasting},
		{"DGL", ProcessDispatchedToGalvanization},
		{"DPT", ProcessDispatchedToPainting},
		{"DST", ProcessDispatchedToSite},
		{"DCU", ProcessDispatchedToCustomer},
	}
	for _, tt := range tests {
		got, ok := DispatchTypeByCode(tt.code)
		if !ok || got != tt.want {
			t.Errorf("DispatchTypeByCode(%q) = %q, %v; want %q", tt.code, got, ok, tt.want)
		}
	}

	if _, ok := DispatchTypeByCode("ZZZ"); ok {
		t.Error("DispatchTypeByCode(ZZZ) resolved an unknown code")
	}
}

func TestAutoReportNumberRules(t *testing.T) {
	// Every dispatch stage auto-generates its report number except the
	// customer dispatch, which is entered manually.
	for _, p := range AllProcessTypes() {
		rule := p.Rule()
		switch {
		case p == ProcessDispatchedToCustomer:
			if rule.AutoReportNumber {
				t.Errorf("%s must not auto-generate report numbers", p)
			}
		case p.IsDispatch():
			if !rule.AutoReportNumber {
				t.Errorf("%s must auto-generate report numbers", p)
			}
		default:
			if rule.AutoReportNumber || rule.DispatchCode != "" {
				t.Errorf("%s is not a dispatch stage but carries dispatch rules", p)
			}
		}
	}
}

func TestSelectableProcessTypes(t *testing.T) {
	galvanizedPart := *testPart(1, 10, true, true)
	plainPart := *testPart(2, 10, false, true)

	t.Run("all galvanized keeps the full list", func(t *testing.T) {
		got := SelectableProcessTypes([]models.AssemblyPart{galvanizedPart})
		if len(got) != len(AllProcessTypes()) {
			t.Errorf("got %d types, want %d", len(got), len(AllProcessTypes()))
		}
	})

	t.Run("empty selection keeps the full list", func(t *testing.T) {
		got := SelectableProcessTypes(nil)
		if len(got) != len(AllProcessTypes()) {
			t.Errorf("got %d types, want %d", len(got), len(AllProcessTypes()))
		}
	})

	t.Run("one non-galvanized part gates the whole batch", func(t *testing.T) {
		got := SelectableProcessTypes([]models.AssemblyPart{galvanizedPart, plainPart})
		for _, p := range got {
			if p == ProcessGalvanization || p == ProcessDispatchedToGalvanization {
				t.Errorf("galvanization stage %s offered for a non-galvanized selection", p)
			}
		}
		if len(got) != len(AllProcessTypes())-2 {
			t.Errorf("got %d types, want %d", len(got), len(AllProcessTypes())-2)
		}
	})
}

func TestPreviousChainProcess(t *testing.T) {
	tests := []struct {
		process ProcessType
		want    ProcessType
	}{
		{ProcessFitUp, ""},
		{ProcessWelding, ProcessFitUp},
		{ProcessVisualization, ProcessWelding},
		{ProcessPreparation, ""},
		{ProcessSandblasting, ""},
		{ProcessErection, ""},
	}
	for _, tt := range tests {
		if got := previousChainProcess(tt.process); got != tt.want {
			t.Errorf("previousChainProcess(%s) = %q, want %q", tt.process, got, tt.want)
		}
	}
}
