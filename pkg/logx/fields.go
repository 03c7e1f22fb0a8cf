package logx

const (
	FieldAmount          = "amount"
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldMessageID       = "message-id"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
	FieldUserID          = "user-id"
	FieldCompanyID       = "company-id"
	FieldDealID          = "deal-id"
	FieldDealNumber      = "deal-number"
	FieldDealType        = "deal-type"
	FieldStage           = "stage"
	FieldStatus          = "status"
	FieldUnitID          = "unit-id"
	FieldCertificate     = "certificate"
	FieldTaskType        = "task-type"
)
