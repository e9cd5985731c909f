package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
	"github.com/CareerServices-Pace/LinkSweep/internal/authtest"
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

func newTestService(t *testing.T, baseURL string) (*Service, *api.Client, *session.Store) {
	t.Helper()
	client := api.New(baseURL, zerolog.Nop())
	store := session.NewStore()
	service := NewService(client, store, zerolog.Nop())
	return service, client, store
}

func TestLoginHydratesSessionFromMe(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())

	result := service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"})
	require.True(t, result.Success, "login should succeed: %v", result.Err)

	sess, status := store.Get()
	require.Equal(t, session.StatusAuthenticated, status)
	require.NotNil(t, sess)
	assert.Equal(t, "a@b.com", sess.Email)
	assert.Equal(t, "a", sess.Username)
	assert.NotEmpty(t, sess.UserID)

	// Login does not carry the profile; it is hydrated by one /auth/me call.
	assert.Equal(t, 1, srv.Calls("/auth/me"))
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())

	result := service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	require.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, api.KindInvalidCredentials, result.Err.Kind)

	sess, status := store.Get()
	assert.Nil(t, sess)
	assert.Equal(t, session.StatusUnauthenticated, status)
	assert.Equal(t, 0, srv.Calls("/auth/me"))
}

func TestSignupHydratesSession(t *testing.T) {
	srv := authtest.NewServer(t)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/signup")
	service.Start(context.Background())

	result := service.Signup(context.Background(), SignupData{
		Email:    "new@b.com",
		Username: "newbie",
		Password: "long-enough-password",
	})
	require.True(t, result.Success, "signup should succeed: %v", result.Err)

	sess, status := store.Get()
	require.Equal(t, session.StatusAuthenticated, status)
	assert.Equal(t, "newbie", sess.Username)
}

func TestSignupValidationErrors(t *testing.T) {
	srv := authtest.NewServer(t)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/signup")
	service.Start(context.Background())

	result := service.Signup(context.Background(), SignupData{
		Email:    "new@b.com",
		Username: "newbie",
		Password: "short",
	})
	require.False(t, result.Success)
	assert.Equal(t, api.KindValidationFailed, result.Err.Kind)
	assert.NotEmpty(t, result.Err.FieldErrors)

	_, status := store.Get()
	assert.Equal(t, session.StatusUnauthenticated, status)
}

func TestCheckAuthSkippedOnPublicRoutes(t *testing.T) {
	srv := authtest.NewServer(t)

	for _, route := range []string{"/login", "/signup", "/forgot-password"} {
		service, client, store := newTestService(t, srv.URL())
		client.SetRoute(route)

		status := service.CheckAuthStatus(context.Background())

		assert.Equal(t, session.StatusUnauthenticated, status, "route %s", route)
		_, got := store.Get()
		assert.Equal(t, session.StatusUnauthenticated, got, "route %s", route)
	}

	assert.Equal(t, 0, srv.Calls("/auth/me"), "public routes must not hit the network")
}

func TestCheckAuthIdempotentWhenAuthenticated(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, _ := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())
	result := service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"})
	require.True(t, result.Success)
	client.SetRoute("/dashboard")

	service.CheckAuthStatus(context.Background())
	service.CheckAuthStatus(context.Background())

	assert.Equal(t, 1, srv.Calls("/auth/me"), "confirmed sessions must not be re-checked")
}

func TestStartChecksSessionOnProtectedRoute(t *testing.T) {
	srv := authtest.NewServer(t)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/dashboard")

	status := service.Start(context.Background())

	assert.Equal(t, session.StatusUnauthenticated, status)
	assert.Equal(t, 1, srv.Calls("/auth/me"))
	_, got := store.Get()
	assert.Equal(t, session.StatusUnauthenticated, got)
}

func TestLogoutClearsSessionWhenServerSucceeds(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())
	require.True(t, service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"}).Success)
	client.SetRoute("/dashboard")

	result := service.Logout(context.Background())

	assert.True(t, result.Success)
	assert.Equal(t, LoginPath, result.RedirectTo)
	sess, status := store.Get()
	assert.Nil(t, sess)
	assert.Equal(t, session.StatusUnauthenticated, status)
}

func TestLogoutClearsSessionWhenServerFails(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())
	require.True(t, service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"}).Success)
	client.SetRoute("/dashboard")

	srv.SetFailLogout(true)
	result := service.Logout(context.Background())

	assert.Equal(t, LoginPath, result.RedirectTo)
	sess, status := store.Get()
	assert.Nil(t, sess, "session must be cleared even when the server call fails")
	assert.Equal(t, session.StatusUnauthenticated, status)
}

func TestExpiredSessionRenewedTransparently(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, _ := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())
	require.True(t, service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"}).Success)
	client.SetRoute("/dashboard")

	srv.ExpireAccess()

	var out struct {
		Success bool `json:"success"`
	}
	err := client.Get(context.Background(), "/history/all", &out)
	require.NoError(t, err, "expired access should be renewed and the request replayed")
	assert.True(t, out.Success)
	assert.Equal(t, 1, srv.Calls("/auth/refresh"))
}

func TestRefreshFailureClearsStore(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "a@b.com", "a", "correct-password", false)

	service, client, store := newTestService(t, srv.URL())
	client.SetRoute("/login")
	service.Start(context.Background())
	require.True(t, service.Login(context.Background(), Credentials{Email: "a@b.com", Password: "correct-password"}).Success)
	client.SetRoute("/dashboard")

	srv.ExpireAccess()
	srv.SetFailRefresh(true)

	err := client.Get(context.Background(), "/history/all", nil)
	apiErr := api.AsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, api.KindSessionExpired, apiErr.Kind)

	sess, status := store.Get()
	assert.Nil(t, sess, "a failed renewal must clear the session")
	assert.Equal(t, session.StatusUnauthenticated, status)
}

// A logout racing an in-flight session check must win: the check resolves
// afterwards with authenticated data, but its generation is stale and its
// effect is discarded.
func TestStaleSessionCheckDoesNotOverwriteLogout(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","email":"a@b.com","username":"a","isAdmin":false}`))
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpSrv := httptest.NewServer(mux)
	defer httpSrv.Close()

	service, client, store := newTestService(t, httpSrv.URL)
	client.SetRoute("/dashboard")

	done := make(chan session.Status, 1)
	go func() {
		done <- service.CheckAuthStatus(context.Background())
	}()

	<-entered
	service.Logout(context.Background())
	close(release)
	<-done

	sess, status := store.Get()
	assert.Nil(t, sess, "stale check result must be discarded")
	assert.Equal(t, session.StatusUnauthenticated, status)
}
