package ledger

import (
	"fmt"

	"fabtrack/models"
)

// ProcessType is a named production stage quantity is consumed against.
type ProcessType string

const (
	ProcessPreparation               ProcessType = "Preparation"
	ProcessFitUp                     ProcessType = "Fit-up"
	ProcessWelding                   ProcessType = "Welding"
	ProcessVisualization             ProcessType = "Visualization"
	ProcessSandblasting              ProcessType = "Sandblasting"
	ProcessPainting                  ProcessType = "Painting"
	ProcessGalvanization             ProcessType = "Galvanization"
	ProcessDispatchedToSandblasting  ProcessType = "Dispatched to Sandblasting"
	ProcessDispatchedToGalvanization ProcessType = "Dispatched to Galvanization"
	ProcessDispatchedToPainting      ProcessType = "Dispatched to Painting"
	ProcessDispatchedToSite          ProcessType = "Dispatched to Site"
	ProcessDispatchedToCustomer      ProcessType = "Dispatched to Customer"
	ProcessErection                  ProcessType = "Erection"
)

// ProcessRule captures the per-type behavior of a process stage. Adding a
// process type is a data change here, not a new branch in the handlers.
type ProcessRule struct {
	// DispatchCode is the short report-number code ("DSB", "DGL", ...).
	// Empty for non-dispatch stages.
	DispatchCode string
	// AutoReportNumber: the report number is required and generated by the
	// system when the caller leaves it blank. Holds for every dispatch
	// stage except Dispatched to Customer, which is entered manually.
	AutoReportNumber bool
	// GalvanizationScoped stages are only selectable for parts whose
	// project is flagged galvanized.
	GalvanizationScoped bool
	// ChainIndex is the position inside the sequential fabrication chain
	// Fit-up -> Welding -> Visualization, or -1 when the stage is not part
	// of the chain.
	ChainIndex int
}

var processRules = map[ProcessType]ProcessRule{
	ProcessPreparation:               {ChainIndex: -1},
	ProcessFitUp:                     {ChainIndex: 0},
	ProcessWelding:                   {ChainIndex: 1},
	ProcessVisualization:             {ChainIndex: 2},
	ProcessSandblasting:              {ChainIndex: -1},
	ProcessPainting:                  {ChainIndex: -1},
	ProcessGalvanization:             {ChainIndex: -1, GalvanizationScoped: true},
	ProcessDispatchedToSandblasting:  {ChainIndex: -1, DispatchCode: "DSB", AutoReportNumber: true},
	ProcessDispatchedToGalvanization: {ChainIndex: -1, DispatchCode: "DGL", AutoReportNumber: true, GalvanizationScoped: true},
	ProcessDispatchedToPainting:      {ChainIndex: -1, DispatchCode: "DPT", AutoReportNumber: true},
	ProcessDispatchedToSite:          {ChainIndex: -1, DispatchCode: "DST", AutoReportNumber: true},
	ProcessDispatchedToCustomer:      {ChainIndex: -1, DispatchCode: "DCU"},
	ProcessErection:                  {ChainIndex: -1},
}

// allProcessTypes is the display/selection order used by the UI.
var allProcessTypes = []ProcessType{
	ProcessPreparation,
	ProcessFitUp,
	ProcessWelding,
	ProcessVisualization,
	ProcessSandblasting,
	ProcessPainting,
	ProcessGalvanization,
	ProcessDispatchedToSandblasting,
	ProcessDispatchedToGalvanization,
	ProcessDispatchedToPainting,
	ProcessDispatchedToSite,
	ProcessDispatchedToCustomer,
	ProcessErection,
}

// fabricationChain lists the stages whose order is enforced: each stage must
// be fully processed before the next one accepts logs.
var fabricationChain = []ProcessType{ProcessFitUp, ProcessWelding, ProcessVisualization}

// AllProcessTypes returns every process type in selection order.
func AllProcessTypes() []ProcessType {
	out := make([]ProcessType, len(allProcessTypes))
	copy(out, allProcessTypes)
	return out
}

// ParseProcessType validates a raw string against the closed enum.
func ParseProcessType(s string) (ProcessType, error) {
	p := ProcessType(s)
	if _, ok := processRules[p]; !ok {
		return "", &ValidationError{Reason: fmt.Sprintf("unknown process type %q", s)}
	}
	return p, nil
}

// Rule returns the ruleset for a process type. The zero rule is returned for
// unknown types; callers are expected to have parsed the type first.
func (p ProcessType) Rule() ProcessRule {
	return processRules[p]
}

// IsDispatch reports whether the stage is a dispatch stage.
func (p ProcessType) IsDispatch() bool {
	return processRules[p].DispatchCode != ""
}

// DispatchTypeByCode resolves a dispatch code ("DSB") back to its process type.
func DispatchTypeByCode(code string) (ProcessType, bool) {
	for _, p := range allProcessTypes {
		if r := processRules[p]; r.DispatchCode == code {
			return p, true
		}
	}
	return "", false
}

// previousChainProcess returns the stage that must be complete before p, or
// "" when p is not ordered behind another stage.
func previousChainProcess(p ProcessType) ProcessType {
	idx := processRules[p].ChainIndex
	if idx <= 0 {
		return ""
	}
	return fabricationChain[idx-1]
}

// SelectableProcessTypes returns the process types a batch over the given
// parts may log. Galvanization and Dispatched to Galvanization are excluded
// as soon as any part belongs to a project that is not galvanized; the gate
// is project-level, not per part.
func SelectableProcessTypes(parts []models.AssemblyPart) []ProcessType {
	galvanizedOnly := true
	for _, part := range parts {
		if part.Project == nil || !part.Project.Galvanized {
			galvanizedOnly = false
			break
		}
	}

	// An empty selection keeps the full list: galvanizedOnly stays true.
	if galvanizedOnly {
		return AllProcessTypes()
	}

	out := make([]ProcessType, 0, len(allProcessTypes))
	for _, p := range allProcessTypes {
		if processRules[p].GalvanizationScoped {
			continue
		}
		out = append(out, p)
	}
	return out
}
