package models

import "time"

// ErrorResponse is the generic error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"ip" binding:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Role         string `json:"role"`
	ExpiresIn    int    `json:"expires_in"`
}

// ProductionLogRequest is the single-log submission payload
type ProductionLogRequest struct {
	AssemblyPartID     uint   `json:"assembly_part_id" binding:"required"`
	ProcessType        string `json:"process_type" binding:"required"`
	DateProcessed      string `json:"date_processed" binding:"required"`
	ProcessedQty       int    `json:"processed_qty" binding:"required"`
	ProcessingTeam     string `json:"processing_team"`
	ProcessingLocation string `json:"processing_location"`
	Remarks            string `json:"remarks"`
	ReportNumber       string `json:"report_number"`
}

// MassLogRequest is the batch submission payload. All entries share one
// process type, one date and one set of team/location/remarks metadata.
type MassLogRequest struct {
	ProcessType        string         `json:"process_type" binding:"required"`
	DateProcessed      string         `json:"date_processed" binding:"required"`
	ProcessingTeam     string         `json:"processing_team"`
	ProcessingLocation string         `json:"processing_location"`
	Remarks            string         `json:"remarks"`
	Logs               []MassLogEntry `json:"logs" binding:"required"`
}

// MassLogEntry is one part entry inside a mass-log submission
type MassLogEntry struct {
	AssemblyPartID uint   `json:"assembly_part_id" binding:"required"`
	ProcessedQty   int    `json:"processed_qty" binding:"required"`
	ReportNumber   string `json:"report_number"`
}

// MassLogResponse reports the partial-success outcome of a batch
type MassLogResponse struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors"`
}

// ReportNumberRequest asks for the next dispatch report number of a part
type ReportNumberRequest struct {
	AssemblyPartID uint   `json:"assembly_part_id" binding:"required"`
	DispatchType   string `json:"dispatch_type" binding:"required"`
}

// ReportNumberResponse carries the generated number
type ReportNumberResponse struct {
	ReportNumber string `json:"reportNumber"`
}

// BalanceResponse is the balance query payload for one (part, process) pair
type BalanceResponse struct {
	AssemblyPartID uint   `json:"assembly_part_id"`
	ProcessType    string `json:"process_type"`
	TotalQty       int    `json:"total_qty"`
	Processed      int    `json:"processed"`
	Remaining      int    `json:"remaining"`
}

// AssemblyPartRequest creates a part
type AssemblyPartRequest struct {
	ProjectID        uint    `json:"project_id" binding:"required"`
	BuildingID       *uint   `json:"building_id"`
	AssemblyMark     string  `json:"assembly_mark" binding:"required"`
	SubAssemblyMark  string  `json:"sub_assembly_mark"`
	PartMark         string  `json:"part_mark" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	Quantity         int     `json:"quantity" binding:"required"`
	Profile          string  `json:"profile"`
	Grade            string  `json:"grade"`
	LengthMm         float64 `json:"length_mm"`
	NetAreaPerUnit   float64 `json:"net_area_per_unit"`
	SinglePartWeight float64 `json:"single_part_weight"`
}

// ProjectRequest creates a project
type ProjectRequest struct {
	ProjectNumber      string  `json:"project_number" binding:"required"`
	Name               string  `json:"name" binding:"required"`
	ClientName         string  `json:"client_name"`
	StructureType      string  `json:"structure_type"`
	Galvanized         bool    `json:"galvanized"`
	Erectable          *bool   `json:"erectable"`
	ContractualTonnage float64 `json:"contractual_tonnage"`
}

// BuildingRequest creates a building under a project
type BuildingRequest struct {
	Name        string `json:"name" binding:"required"`
	Designation string `json:"designation" binding:"required"`
}

// PartProcessStatus is one cell of the production status matrix
type PartProcessStatus struct {
	Processed  int `json:"processed"`
	Percentage int `json:"percentage"`
}

// PartStatusRow is one part's row in the production status matrix
type PartStatusRow struct {
	ID              uint                         `json:"id"`
	PartDesignation string                       `json:"part_designation"`
	AssemblyMark    string                       `json:"assembly_mark"`
	PartMark        string                       `json:"part_mark"`
	Name            string                       `json:"name"`
	Quantity        int                          `json:"quantity"`
	Status          string                       `json:"status"`
	CurrentProcess  string                       `json:"current_process"`
	ProjectNumber   string                       `json:"project_number"`
	Building        string                       `json:"building"`
	Processes       map[string]PartProcessStatus `json:"processes"`
}

// DispatchReportRow is one dispatch report in the listing
type DispatchReportRow struct {
	ReportNumber    string    `json:"report_number"`
	ProcessType     string    `json:"process_type"`
	PartDesignation string    `json:"part_designation"`
	PartName        string    `json:"part_name"`
	ProcessedQty    int       `json:"processed_qty"`
	DateProcessed   time.Time `json:"date_processed"`
	ProjectNumber   string    `json:"project_number"`
	Building        string    `json:"building"`
	Team            string    `json:"team"`
}

// ImportResult summarizes an Excel part import
type ImportResult struct {
	JobReference string   `json:"job_reference"`
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}
