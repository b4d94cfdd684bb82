package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldMonth       = "month"
	FieldTemplateID  = "template_id"
	FieldGroupID     = "group_id"
	FieldSubCategory = "sub_category_id"
	FieldBucketID    = "bucket_id"
	FieldTxnID       = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldScope       = "scope"
	FieldSheetsRef   = "sheets_ref"
	FieldReason      = "reason"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentEngine    = "engine"
	ComponentBudget    = "budget"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names.
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpResolve   = "resolve"
	OpAggregate = "aggregate"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpMigrate   = "migrate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
