package routes

import (
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

// Public routes are reachable without a session; the transport never attempts
// a token refresh while one of these is active, and the auth service skips
// its startup session check on them.
var publicRoutes = map[string]bool{
	"/login":           true,
	"/signup":          true,
	"/forgot-password": true,
}

// IsPublic reports whether path is a public route.
func IsPublic(path string) bool {
	return publicRoutes[path]
}

// ShouldCheckSession decides whether a route change warrants a session check:
// never on public routes, and not when the session is already confirmed.
func ShouldCheckSession(route string, status session.Status) bool {
	if IsPublic(route) {
		return false
	}
	return status != session.StatusAuthenticated
}

// Decision is the guard's verdict for rendering a protected view.
type Decision int

const (
	// ShowLoading means the session state is not yet known.
	ShowLoading Decision = iota
	// Allow means the protected view may render.
	Allow
	// RedirectToLogin means there is no session.
	RedirectToLogin
)

// Guard gates protected views on the session store. It never performs network
// I/O and never writes the store.
type Guard struct {
	store *session.Store
}

// NewGuard creates a guard reading from store.
func NewGuard(store *session.Store) *Guard {
	return &Guard{store: store}
}

// Evaluate maps the current session status to a rendering decision.
func (g *Guard) Evaluate() Decision {
	_, status := g.store.Get()
	switch status {
	case session.StatusAuthenticated:
		return Allow
	case session.StatusUnauthenticated:
		return RedirectToLogin
	default:
		return ShowLoading
	}
}
