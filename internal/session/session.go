package session

// Session is the client-side record of the signed-in user. It is replaced
// wholesale on every successful login/signup/refresh/check, never patched
// field-by-field.
type Session struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Status describes where the client is in the authentication lifecycle.
// Exactly one value holds at any instant.
type Status int

const (
	StatusInitializing Status = iota
	StatusCheckingSession
	StatusUnauthenticated
	StatusAuthenticated
	StatusLoggingOut
)

// String returns a human-readable status name for logs.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusCheckingSession:
		return "checking_session"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusLoggingOut:
		return "logging_out"
	default:
		return "unknown"
	}
}
