package bot

// Database provides the relational side of the activity log: the target
// registry and the append-only log table.
type Database interface {
	// AddTarget registers a target, ignoring the insert if the id already
	// exists (idempotent).
	AddTarget(id, kind string) error

	// GetTarget returns the target row, or nil if absent.
	GetTarget(id string) (*Target, error)

	// DeleteTarget removes the target row and cascades its log records.
	DeleteTarget(id string) error

	// CountTargets returns the number of registered targets.
	CountTargets() (int64, error)

	// Record appends one log record. Append-only: records are never updated,
	// and are deleted only via DeleteTarget.
	Record(rec *LogRecord) error

	// Query returns the target's log records, newest first.
	Query(target string) ([]*LogRecord, error)

	// QueryAll returns every log record, newest first.
	QueryAll() ([]*LogRecord, error)

	// CountRecords returns the total number of log records.
	CountRecords() (int64, error)

	// TopTargets returns the n targets with the most log records.
	TopTargets(n int) ([]TargetCount, error)

	// RecentByActor returns, for each distinct actor, their n most recent
	// records, newest first within each actor.
	RecentByActor(n int) ([]*LogRecord, error)

	// Close closes the underlying connection.
	Close() error
}
