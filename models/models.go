package models

import (
	"time"

	"gorm.io/gorm"
)

// Part lifecycle statuses. Status is a denormalized cache derived from the
// part's production logs; it is refreshed after every committed log and is
// never written independently.
const (
	PartStatusPending    = "Pending"
	PartStatusInProgress = "In Progress"
	PartStatusCompleted  = "Completed"
)

// Project represents the project table with GORM tags
type Project struct {
	ID                 uint       `gorm:"primaryKey;column:id" json:"id"`
	ProjectNumber      string     `gorm:"column:project_number;uniqueIndex;not null" json:"project_number"`
	Name               string     `gorm:"column:name;not null" json:"name"`
	ClientName         string     `gorm:"column:client_name" json:"client_name"`
	StructureType      string     `gorm:"column:structure_type" json:"structure_type"`
	Galvanized         bool       `gorm:"column:galvanized;default:false" json:"galvanized"`
	Erectable          bool       `gorm:"column:erectable;default:true" json:"erectable"`
	ContractualTonnage float64    `gorm:"column:contractual_tonnage;type:numeric(10,2)" json:"contractual_tonnage"`
	PlannedStartDate   *time.Time `gorm:"column:planned_start_date" json:"planned_start_date,omitempty"`
	PlannedEndDate     *time.Time `gorm:"column:planned_end_date" json:"planned_end_date,omitempty"`
	ActualStartDate    *time.Time `gorm:"column:actual_start_date" json:"actual_start_date,omitempty"`
	CreatedBy          string     `gorm:"column:created_by" json:"created_by"`
	CreatedAt          time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "project"
}

// Building represents the building table with GORM tags
type Building struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID   uint      `gorm:"column:project_id;not null;uniqueIndex:idx_building_project_designation" json:"project_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Designation string    `gorm:"column:designation;not null;uniqueIndex:idx_building_project_designation" json:"designation"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for Building
func (Building) TableName() string {
	return "building"
}

// AssemblyPart represents the assembly_part table with GORM tags.
// Quantity is the declared quantity; it is immutable once production logs
// exist against the part. Status and CurrentProcess are caches derived from
// the log history.
type AssemblyPart struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID       uint      `gorm:"column:project_id;not null;index" json:"project_id"`
	BuildingID      *uint     `gorm:"column:building_id;index" json:"building_id,omitempty"`
	PartDesignation string    `gorm:"column:part_designation;uniqueIndex;not null" json:"part_designation"`
	AssemblyMark    string    `gorm:"column:assembly_mark;not null" json:"assembly_mark"`
	SubAssemblyMark string    `gorm:"column:sub_assembly_mark" json:"sub_assembly_mark"`
	PartMark        string    `gorm:"column:part_mark;not null" json:"part_mark"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Quantity        int       `gorm:"column:quantity;not null" json:"quantity"`
	Profile         string    `gorm:"column:profile" json:"profile"`
	Grade           string    `gorm:"column:grade" json:"grade"`
	LengthMm        float64   `gorm:"column:length_mm;type:numeric(10,2)" json:"length_mm"`
	NetAreaPerUnit  float64   `gorm:"column:net_area_per_unit;type:numeric(10,2)" json:"net_area_per_unit"`
	NetAreaTotal    float64   `gorm:"column:net_area_total;type:numeric(10,2)" json:"net_area_total"`
	SinglePartWeight float64  `gorm:"column:single_part_weight;type:numeric(10,2)" json:"single_part_weight"`
	NetWeightTotal  float64   `gorm:"column:net_weight_total;type:numeric(10,2)" json:"net_weight_total"`
	Status          string    `gorm:"column:status;not null;default:'Pending'" json:"status"`
	CurrentProcess  string    `gorm:"column:current_process" json:"current_process"`
	CreatedBy       string    `gorm:"column:created_by" json:"created_by"`
	CreatedAt       time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null" json:"updated_at"`

	Project  *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}

// TableName specifies the table name for AssemblyPart
func (AssemblyPart) TableName() string {
	return "assembly_part"
}

// ProductionLog represents the production_log table with GORM tags.
// Logs are append-only: there is no update or delete path once committed.
// ReportNumber is unique per (part, process type) when set.
type ProductionLog struct {
	ID                 uint      `gorm:"primaryKey;column:id" json:"id"`
	AssemblyPartID     uint      `gorm:"column:assembly_part_id;not null;index;uniqueIndex:idx_log_part_process_report,where:report_number <> ''" json:"assembly_part_id"`
	ProcessType        string    `gorm:"column:process_type;not null;uniqueIndex:idx_log_part_process_report,where:report_number <> ''" json:"process_type"`
	DateProcessed      time.Time `gorm:"column:date_processed;not null" json:"date_processed"`
	ProcessedQty       int       `gorm:"column:processed_qty;not null" json:"processed_qty"`
	ProcessingTeam     string    `gorm:"column:processing_team" json:"processing_team"`
	ProcessingLocation string    `gorm:"column:processing_location" json:"processing_location"`
	Remarks            string    `gorm:"column:remarks" json:"remarks"`
	ReportNumber       string    `gorm:"column:report_number;uniqueIndex:idx_log_part_process_report,where:report_number <> ''" json:"report_number"`
	CreatedBy          string    `gorm:"column:created_by" json:"created_by"`
	CreatedAt          time.Time `gorm:"column:created_at;not null" json:"created_at"`

	AssemblyPart *AssemblyPart `gorm:"foreignKey:AssemblyPartID" json:"assembly_part,omitempty"`
}

// TableName specifies the table name for ProductionLog
func (ProductionLog) TableName() string {
	return "production_log"
}

// User represents the users table
type User struct {
	ID          int        `gorm:"primaryKey;column:id" json:"id"`
	EmployeeId  string     `gorm:"column:employee_id;uniqueIndex" json:"employee_id"`
	Email       string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"column:password;not null" json:"-"`
	FirstName   string     `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string     `gorm:"column:last_name;not null" json:"last_name"`
	RoleID      int        `gorm:"column:role_id;not null" json:"role_id"`
	RoleName    string     `gorm:"-" json:"role_name"` // Virtual field, not stored in DB
	Suspended   bool       `gorm:"column:suspended;default:false" json:"suspended"`
	FirstAccess *time.Time `gorm:"column:first_access" json:"first_access,omitempty"`
	LastAccess  *time.Time `gorm:"column:last_access" json:"last_access,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role represents the roles table
type Role struct {
	RoleID   int    `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName string `gorm:"column:role_name;uniqueIndex;not null" json:"role_name"`
}

// TableName specifies the table name for Role
func (Role) TableName() string {
	return "roles"
}

// Session represents the session table
type Session struct {
	ID                    uint           `gorm:"primaryKey;column:id" json:"id"`
	UserID                int            `gorm:"column:user_id;not null" json:"user_id"`
	SessionID             string         `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	HostName              string         `gorm:"column:host_name;not null" json:"host_name"`
	IPAddress             string         `gorm:"column:ip_address;not null" json:"ip_address"`
	Timestamp             time.Time      `gorm:"column:timestp;not null" json:"timestp"`
	ExpiresAt             time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	RefreshToken          string         `gorm:"column:refresh_token" json:"-"`
	RefreshTokenExpiresAt time.Time      `gorm:"column:refresh_token_expires_at" json:"-"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "session"
}

// ActivityLog represents the activity_logs table
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UserName     string    `gorm:"column:user_name;not null" json:"user_name"`
	HostName     string    `gorm:"column:host_name;not null" json:"host_name"`
	EventContext string    `gorm:"column:event_context;not null" json:"event_context"`
	IPAddress    string    `gorm:"column:ip_address;not null" json:"ip_address"`
	Description  string    `gorm:"column:description;not null" json:"description"`
	EventName    string    `gorm:"column:event_name;not null" json:"event_name"`
	ProjectID    int       `gorm:"column:project_id" json:"project_id"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_logs"
}
