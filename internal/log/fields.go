package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldUserID     = "user_id"
	FieldAccountID  = "account_id"
	FieldMonth      = "month"
	FieldYear       = "year"
	FieldPeriod     = "period"
	FieldKind       = "kind"
	FieldFormat     = "format"
	FieldRows       = "rows"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAuth    = "auth"
	ComponentReport  = "report"
	ComponentImport  = "import"
	ComponentAdmin   = "admin"
)
