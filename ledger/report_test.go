package ledger

import (
	"context"
	"errors"
	"testing"

	"fabtrack/models"
)

func TestReportNumberPrefix(t *testing.T) {
	part := testPart(1, 10, false, true)

	got, err := ReportNumberPrefix(part, ProcessDispatchedToSandblasting)
	if err != nil {
		t.Fatalf("ReportNumberPrefix() error = %v", err)
	}
	if want := "P-100-B1-DSB-"; got != want {
		t.Errorf("prefix = %q, want %q", got, want)
	}
}

func TestReportNumberPrefixWithoutBuilding(t *testing.T) {
	part := testPart(1, 10, false, true)
	part.Building = nil

	got, err := ReportNumberPrefix(part, ProcessDispatchedToSite)
	if err != nil {
		t.Fatalf("ReportNumberPrefix() error = %v", err)
	}
	if want := "P-100-XX-DST-"; got != want {
		t.Errorf("prefix = %q, want %q", got, want)
	}
}

func TestReportNumberPrefixRejectsNonDispatch(t *testing.T) {
	part := testPart(1, 10, false, true)

	_, err := ReportNumberPrefix(part, ProcessWelding)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("ReportNumberPrefix(Welding) error = %v, want *ValidationError", err)
	}
}

func TestNextReportNumber(t *testing.T) {
	part := testPart(1, 100, false, true)

	tests := []struct {
		name string
		logs []models.ProductionLog
		want string
	}{
		{
			name: "first number starts at 001",
			logs: nil,
			want: "P-100-B1-DSB-001",
		},
		{
			name: "increments past the highest committed serial",
			logs: []models.ProductionLog{
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "P-100-B1-DSB-001"},
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "P-100-B1-DSB-003"},
			},
			want: "P-100-B1-DSB-004",
		},
		{
			name: "serials are independent per dispatch type",
			logs: []models.ProductionLog{
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToPainting), ReportNumber: "P-100-B1-DPT-005"},
			},
			want: "P-100-B1-DSB-001",
		},
		{
			name: "serials are independent per part",
			logs: []models.ProductionLog{
				{AssemblyPartID: 2, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "P-100-B1-DSB-009"},
			},
			want: "P-100-B1-DSB-001",
		},
		{
			name: "foreign report numbers are ignored",
			logs: []models.ProductionLog{
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "CUSTOM-42"},
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "P-100-B1-DSB-002"},
			},
			want: "P-100-B1-DSB-003",
		},
		{
			name: "width grows with prior wider serials",
			logs: []models.ProductionLog{
				{AssemblyPartID: 1, ProcessType: string(ProcessDispatchedToSandblasting), ReportNumber: "P-100-B1-DSB-1042"},
			},
			want: "P-100-B1-DSB-1043",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextReportNumber(part, tt.logs, ProcessDispatchedToSandblasting)
			if err != nil {
				t.Fatalf("NextReportNumber() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NextReportNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateReportNumberIsIdempotentUntilCommit(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.GenerateReportNumber(ctx, 1, "DSB")
	if err != nil {
		t.Fatalf("GenerateReportNumber() error = %v", err)
	}
	second, err := svc.GenerateReportNumber(ctx, 1, "DSB")
	if err != nil {
		t.Fatalf("second GenerateReportNumber() error = %v", err)
	}
	if first != second {
		t.Errorf("numbers differ without a commit: %q vs %q", first, second)
	}

	// Committing a log with the number advances the sequence.
	store.seedLog(1, ProcessDispatchedToSandblasting, 2, first)
	third, err := svc.GenerateReportNumber(ctx, 1, "DSB")
	if err != nil {
		t.Fatalf("third GenerateReportNumber() error = %v", err)
	}
	if third != "P-100-B1-DSB-002" {
		t.Errorf("after commit = %q, want P-100-B1-DSB-002", third)
	}
}

func TestGenerateReportNumberUnknownCode(t *testing.T) {
	svc := NewService(newFakeStore(testPart(1, 10, false, true)))

	_, err := svc.GenerateReportNumber(context.Background(), 1, "XYZ")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("GenerateReportNumber(XYZ) error = %v, want *ValidationError", err)
	}
}
