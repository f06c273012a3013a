package bot

import "time"

// Action kinds recorded in the activity log.
const (
	ActionUpload       = "upload"
	ActionConsult      = "consult"
	ActionLoginSuccess = "login_success"
	ActionLoginFailure = "login_failure"
	ActionCreateFolder = "create_folder"
	ActionDeleteFolder = "delete_folder"
	ActionDeviceAccess = "device_access"
)

// Target is a tracked subject, identified by an IMEI, serial number or
// international phone number.
type Target struct {
	ID        string
	Kind      string
	CreatedAt time.Time
}

// LogRecord is one append-only activity log entry.
type LogRecord struct {
	ID          int64
	ActorID     int64
	TargetID    string
	Category    string
	Subcategory string
	Action      string
	FileRef     string
	CreatedAt   time.Time
}

// TargetCount pairs a target id with its log record count, for the dashboard.
type TargetCount struct {
	TargetID string
	Records  int64
}
