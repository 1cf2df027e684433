package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"fabtrack/models"
)

// reportSerialBase is the first serial assigned for a part with no prior
// dispatch logs of the given type.
const reportSerialBase = 1

// reportSerialWidth is the minimum zero-padded width of the serial suffix.
const reportSerialWidth = 3

// ReportNumberPrefix builds the fixed prefix of a part's dispatch report
// numbers: projectNumber-buildingDesignation-code-. Parts without a building
// use "XX" as the designation.
func ReportNumberPrefix(part *models.AssemblyPart, dispatchType ProcessType) (string, error) {
	rule := dispatchType.Rule()
	if rule.DispatchCode == "" {
		return "", &ValidationError{Reason: fmt.Sprintf("%s is not a dispatch process", dispatchType)}
	}
	if part.Project == nil {
		return "", fmt.Errorf("part %d loaded without its project", part.ID)
	}

	designation := "XX"
	if part.Building != nil && part.Building.Designation != "" {
		designation = part.Building.Designation
	}
	return fmt.Sprintf("%s-%s-%s-", part.Project.ProjectNumber, designation, rule.DispatchCode), nil
}

// NextReportNumber derives the next sequential report number for the part
// and dispatch type by scanning the part's existing logs: highest numeric
// suffix plus one, starting at 1, zero-padded to three digits (wider once
// prior entries are wider). The number is computed, not reserved, so the
// call is idempotent until a log using it is committed; the append
// transaction's uniqueness re-check resolves concurrent generations.
func NextReportNumber(part *models.AssemblyPart, logs []models.ProductionLog, dispatchType ProcessType) (string, error) {
	prefix, err := ReportNumberPrefix(part, dispatchType)
	if err != nil {
		return "", err
	}

	serial := reportSerialBase
	width := reportSerialWidth
	for _, entry := range logs {
		if entry.AssemblyPartID != part.ID || ProcessType(entry.ProcessType) != dispatchType {
			continue
		}
		suffix, ok := strings.CutPrefix(entry.ReportNumber, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n+1 > serial {
			serial = n + 1
		}
		if len(suffix) > width {
			width = len(suffix)
		}
	}

	return fmt.Sprintf("%s%0*d", prefix, width, serial), nil
}
