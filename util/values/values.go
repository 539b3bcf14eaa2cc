package values

// response statuses, mapped to HTTP codes by util.StatusCode
const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	BadRequestBody = "bad_request"
	Unprocessable  = "unprocessable"
	NotAllowed     = "not_allowed"
	Conflict       = "conflict"
	NotFound       = "not_found"
	NotAuthorised  = "not_authorised"
	TokenExpired   = "token_expired"
	RateLimited    = "rate_limited"
	Unavailable    = "unavailable"

	SystemErr = "something went wrong, please try again later"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderRequestSource = "X-Request-Source"

	DefaultRequestSource = "web"
)

type contextKey string

const (
	ContextTracingKey contextKey = "tracing"
	ContextUserIDKey  contextKey = "user_id"
)

// auth providers
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// token types carried in the "typ" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)
