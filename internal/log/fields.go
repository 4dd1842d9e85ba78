package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldPeriod      = "period"
	FieldKind        = "kind"
	FieldEntryID     = "entry_id"
	FieldTitle       = "title"
	FieldAmountCents = "amount_cents"
	FieldCategoryID  = "category_id"
	FieldRecurringID = "recurring_payment_id"
	FieldObjectiveID = "objective_id"
	FieldRunID       = "run_id"
	FieldMessageID   = "message_id"
	FieldEventType   = "event_type"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentLedger    = "ledger"
	ComponentRecurring = "recurring"
	ComponentObjective = "objective"
	ComponentSummary   = "summary"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAppend   = "append"
	OpProcess  = "process"
	OpEvaluate = "evaluate"
	OpGenerate = "generate"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
