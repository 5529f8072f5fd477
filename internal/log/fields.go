package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldError     = "error"
	FieldCount     = "count"
	FieldVersion   = "version"
	FieldOperation = "operation"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpUndo   = "undo"
	OpRedo   = "redo"
	OpImport = "import"
	OpExport = "export"
)
