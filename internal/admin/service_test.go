package admin

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
	"github.com/CareerServices-Pace/LinkSweep/internal/auth"
	"github.com/CareerServices-Pace/LinkSweep/internal/authtest"
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

func signIn(t *testing.T, srv *authtest.Server, email, password string) *api.Client {
	t.Helper()
	client := api.New(srv.URL(), zerolog.Nop())
	client.SetRoute("/login")
	store := session.NewStore()
	service := auth.NewService(client, store, zerolog.Nop())
	service.Start(context.Background())
	result := service.Login(context.Background(), auth.Credentials{Email: email, Password: password})
	require.True(t, result.Success, "login failed: %v", result.Err)
	client.SetRoute("/manage-users")
	return client
}

func TestUsersListsAllAccounts(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "admin@b.com", "admin", "admin-password-1", true)
	srv.Seed(t, "user@b.com", "user", "user-password-11", false)

	client := signIn(t, srv, "admin@b.com", "admin-password-1")
	svc := NewService(client)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@b.com", users[0].Email)
	assert.True(t, users[0].IsAdmin)
}

func TestUsersRequiresAdmin(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "user@b.com", "user", "user-password-11", false)

	client := signIn(t, srv, "user@b.com", "user-password-11")
	svc := NewService(client)

	_, err := svc.Users(context.Background())
	require.Error(t, err)
}

func TestToggleAdminFlipsFlag(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "admin@b.com", "admin", "admin-password-1", true)
	target := srv.Seed(t, "user@b.com", "user", "user-password-11", false)

	client := signIn(t, srv, "admin@b.com", "admin-password-1")
	svc := NewService(client)

	require.NoError(t, svc.ToggleAdmin(context.Background(), target.ID))

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	for _, u := range users {
		if u.ID == target.ID {
			assert.True(t, u.IsAdmin)
			return
		}
	}
	t.Fatal("target user missing from listing")
}

func TestRoles(t *testing.T) {
	srv := authtest.NewServer(t)
	srv.Seed(t, "admin@b.com", "admin", "admin-password-1", true)

	client := signIn(t, srv, "admin@b.com", "admin-password-1")
	svc := NewService(client)

	roles, err := svc.Roles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
