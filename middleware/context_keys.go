package middleware

// Keys used to store values in the gin context.
const (
	// UserIDKey holds the authenticated caller identity, when present.
	UserIDKey = "user_id"

	// RequestIDKey holds the per-request correlation ID.
	RequestIDKey = "request_id"
)
