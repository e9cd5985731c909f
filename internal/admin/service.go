// Package admin wraps the user-management endpoints. Admin-only surface; the
// server enforces authorization, this client just carries the session cookie.
package admin

import (
	"context"
	"fmt"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
)

// User is a managed account as returned by GET /auth/users.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Role is an assignable role.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateUserRequest is the admin create-user payload. Accounts created this
// way receive a role instead of choosing a password at signup.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	RoleID    int    `json:"role_id"`
}

// Service is the user-management API client.
type Service struct {
	client *api.Client
}

// NewService creates an admin service on top of the shared transport.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Users lists all accounts.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.client.Get(ctx, "/auth/users", &users); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// Roles lists the assignable roles.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := s.client.Get(ctx, "/auth/roles", &roles); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	return roles, nil
}

// ToggleAdmin flips a user's admin flag.
func (s *Service) ToggleAdmin(ctx context.Context, userID string) error {
	body := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}
	if err := s.client.Post(ctx, "/auth/promote", body, nil); err != nil {
		return fmt.Errorf("failed to update admin status: %w", err)
	}
	return nil
}

// CreateUser provisions an account on behalf of an admin.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) error {
	if err := s.client.Post(ctx, "/auth/signup", req, nil); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
