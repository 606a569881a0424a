package logger

// Fields is the structured field map accepted by every logging helper.
type Fields map[string]interface{}

// Tracing fields. These ride along on the context logger for the life of a request.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldRoute     = "route"
)

// Moderation fields attached by the pipelines.
const (
	FieldSubmissionID  = "submission_id"
	FieldVerdictSource = "verdict_source"
	FieldMatchedWords  = "matched_words"
	FieldTask          = "task"
	FieldModel         = "model"
)

// Metric fields, used with Entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
)
