package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Domain
	FieldUsername    = "username"
	FieldCounterpart = "counterpart"
	FieldSender      = "sender"
	FieldRecipient   = "recipient"
	FieldCount       = "count"

	// Service
	FieldService = "service"
)
