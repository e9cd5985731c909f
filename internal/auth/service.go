package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
	"github.com/CareerServices-Pace/LinkSweep/internal/routes"
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

// LoginPath is where callers are sent once no session remains.
const LoginPath = "/login"

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupData is the signup request body.
type SignupData struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service orchestrates the session lifecycle against the transport and is
// the session store's single writer. Session-affecting calls carry a
// generation counter: logout bumps it, and any call whose generation is
// stale by the time it resolves discards its effect instead of overwriting
// newer state.
type Service struct {
	client *api.Client
	store  *session.Store
	logger zerolog.Logger

	mu  sync.Mutex
	gen uint64
}

// NewService wires the service to the transport's session-expired hook so a
// failed renewal clears the store through the single writer.
func NewService(client *api.Client, store *session.Store, logger zerolog.Logger) *Service {
	s := &Service{
		client: client,
		store:  store,
		logger: logger.With().Str("component", "auth").Logger(),
	}
	client.SetSessionExpiredHandler(s.expireSession)
	return s
}

// Start runs the startup transition: public routes go straight to
// Unauthenticated without touching the network, everything else checks the
// session.
func (s *Service) Start(ctx context.Context) session.Status {
	if routes.IsPublic(s.client.Route()) {
		s.store.SetStatus(session.StatusUnauthenticated)
		_, status := s.store.Get()
		return status
	}
	return s.CheckAuthStatus(ctx)
}

// CheckAuthStatus validates the session against GET /auth/me. It makes no
// network call on public routes or when the session is already confirmed.
// The resulting status is returned for convenience; the store is the source
// of truth.
func (s *Service) CheckAuthStatus(ctx context.Context) session.Status {
	return s.checkAuth(ctx, false)
}

func (s *Service) checkAuth(ctx context.Context, force bool) session.Status {
	_, status := s.store.Get()

	if routes.IsPublic(s.client.Route()) {
		if status == session.StatusInitializing || status == session.StatusCheckingSession {
			s.store.SetStatus(session.StatusUnauthenticated)
			status = session.StatusUnauthenticated
		}
		return status
	}

	if status == session.StatusAuthenticated && !force {
		return status
	}

	gen := s.generation()
	s.store.SetStatus(session.StatusCheckingSession)

	var user session.Session
	err := s.client.Get(ctx, "/auth/me", &user)

	if !s.stillCurrent(gen) {
		_, status = s.store.Get()
		return status
	}

	if err != nil {
		s.logger.Debug().Err(err).Msg("session check failed")
		s.store.Clear()
		return session.StatusUnauthenticated
	}

	s.store.Set(user)
	return session.StatusAuthenticated
}

// Login authenticates and then hydrates the session from GET /auth/me; the
// login response itself does not carry the profile.
func (s *Service) Login(ctx context.Context, creds Credentials) Result {
	gen := s.generation()
	s.store.SetStatus(session.StatusCheckingSession)

	if err := s.client.Post(ctx, "/auth/login", creds, nil); err != nil {
		if s.stillCurrent(gen) {
			s.store.SetStatus(session.StatusUnauthenticated)
		}
		return fail(asCredentialError(err))
	}

	return s.hydrate(ctx, gen)
}

// Signup creates the account and hydrates the session the same way login
// does.
func (s *Service) Signup(ctx context.Context, data SignupData) Result {
	gen := s.generation()
	s.store.SetStatus(session.StatusCheckingSession)

	if err := s.client.Post(ctx, "/auth/signup", data, nil); err != nil {
		if s.stillCurrent(gen) {
			s.store.SetStatus(session.StatusUnauthenticated)
		}
		return fail(err)
	}

	return s.hydrate(ctx, gen)
}

func (s *Service) hydrate(ctx context.Context, gen uint64) Result {
	var user session.Session
	if err := s.client.Get(ctx, "/auth/me", &user); err != nil {
		if s.stillCurrent(gen) {
			s.store.SetStatus(session.StatusUnauthenticated)
		}
		return fail(err)
	}

	if s.stillCurrent(gen) {
		s.store.Set(user)
	}
	return ok()
}

// Logout invalidates the session server-side on a best-effort basis and
// clears the store unconditionally. The client must never keep believing it
// is authenticated after a logout, whatever the server said.
func (s *Service) Logout(ctx context.Context) Result {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()

	s.store.SetStatus(session.StatusLoggingOut)

	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.Warn().Err(err).Msg("server logout failed, clearing session anyway")
	}

	s.store.Clear()
	return redirect(LoginPath)
}

// expireSession is the transport's session-expired hook: a failed renewal
// invalidates in-flight session writes and clears the store.
func (s *Service) expireSession() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	s.store.Clear()
}

func (s *Service) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Service) stillCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// asCredentialError maps a 401 on login to invalid credentials; the transport
// cannot tell a bad password from an expired session, the caller can.
func asCredentialError(err error) *api.Error {
	apiErr := api.AsError(err)
	if apiErr.Status == http.StatusUnauthorized {
		detail := apiErr.Detail
		if detail == "" {
			detail = "invalid email or password"
		}
		return &api.Error{
			Kind:   api.KindInvalidCredentials,
			Status: apiErr.Status,
			Detail: detail,
		}
	}
	return apiErr
}
