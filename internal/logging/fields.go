package logging

const (
	// FieldComponent is the standardized structured logging key for managed component or subsystem names.
	FieldComponent = "component"
	// FieldRunID identifies a single launch of a managed component.
	FieldRunID = "run_id"
	// FieldEventType is the standardized key classifying a log record.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldPID is the operating system process id of a child or matched process.
	FieldPID = "pid"
)
