// Package authtest runs an in-process LinkSweep API for tests. It speaks the
// real wire protocol: gin routes, a gorm/sqlite user store, bcrypt password
// hashes and HS256 cookie tokens, plus knobs to expire access tokens, fail
// renewals, and count calls per endpoint.
package authtest

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"

	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

type resetState struct {
	otp         string
	token       string
	otpVerified bool
}

// Server is the fake LinkSweep API.
type Server struct {
	DB     *gorm.DB
	engine *gin.Engine
	httpd  *httptest.Server
	secret []byte

	mu          sync.Mutex
	accessGen   int
	failRefresh bool
	failLogout  bool
	calls       map[string]int
	resets      map[string]*resetState // keyed by email
}

// NewServer starts the fixture and registers its shutdown with t.Cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate fixture database: %v", err)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("failed to generate fixture secret: %v", err)
	}

	s := &Server{
		DB:     db,
		secret: secret,
		calls:  make(map[string]int),
		resets: make(map[string]*resetState),
	}
	s.engine = s.buildRouter()
	s.httpd = httptest.NewServer(s.engine)
	t.Cleanup(s.httpd.Close)
	return s
}

// URL is the fixture's base URL.
func (s *Server) URL() string {
	return s.httpd.URL
}

// Seed creates an account directly in the store and returns it.
func (s *Server) Seed(t *testing.T, email, username, password string, admin bool) User {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash fixture password: %v", err)
	}
	user := User{Email: email, Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := s.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed fixture user: %v", err)
	}
	return user
}

// ExpireAccess invalidates every outstanding access token. Refresh tokens
// stay valid, so the next renewal succeeds unless SetFailRefresh is on.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	s.accessGen++
	s.mu.Unlock()
}

// SetFailRefresh makes POST /auth/refresh reject until turned off.
func (s *Server) SetFailRefresh(fail bool) {
	s.mu.Lock()
	s.failRefresh = fail
	s.mu.Unlock()
}

// SetFailLogout makes POST /auth/logout return 500 until turned off.
func (s *Server) SetFailLogout(fail bool) {
	s.mu.Lock()
	s.failLogout = fail
	s.mu.Unlock()
}

// Calls returns how many requests hit the given path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LastOTP returns the OTP most recently issued for email.
func (s *Server) LastOTP(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.resets[email]; st != nil {
		return st.otp
	}
	return ""
}

// LastResetToken returns the reset token most recently issued for email.
func (s *Server) LastResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.resets[email]; st != nil {
		return st.token
	}
	return ""
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.calls[c.Request.URL.Path]++
		s.mu.Unlock()
		c.Next()
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", s.signup)
		authGroup.POST("/login", s.login)
		authGroup.POST("/logout", s.logout)
		authGroup.POST("/refresh", s.refresh)
		authGroup.GET("/me", s.requireAuth, s.me)
		authGroup.POST("/request-reset", s.requestReset)
		authGroup.POST("/verify-otp", s.verifyOtp)
		authGroup.POST("/reset-password", s.resetPassword)
		authGroup.POST("/change-password", s.requireAuth, s.changePassword)
		authGroup.GET("/users", s.requireAuth, s.listUsers)
		authGroup.GET("/roles", s.requireAuth, s.listRoles)
		authGroup.POST("/promote", s.requireAuth, s.promote)
	}

	// Protected non-auth endpoint, used by transport tests as a stand-in for
	// any domain request.
	r.GET("/history/all", s.requireAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []any{}})
	})

	return r
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) setSessionCookies(c *gin.Context, userID string) error {
	s.mu.Lock()
	gen := s.accessGen
	s.mu.Unlock()

	access, err := s.mintToken(userID, "access", gen, accessTTL)
	if err != nil {
		return err
	}
	refresh, err := s.mintToken(userID, "refresh", 0, refreshTTL)
	if err != nil {
		return err
	}

	c.SetCookie(accessCookie, access, int(accessTTL.Seconds()), "/", "", false, true)
	c.SetCookie(refreshCookie, refresh, int(refreshTTL.Seconds()), "/", "", false, true)
	return nil
}

// requireAuth validates the access cookie and loads the account.
func (s *Server) requireAuth(c *gin.Context) {
	raw, err := c.Cookie(accessCookie)
	if err != nil {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		c.Abort()
		return
	}

	claims, err := s.parseToken(raw)
	if err != nil || claims.TokenType != "access" {
		detail(c, http.StatusUnauthorized, "Invalid token")
		c.Abort()
		return
	}

	s.mu.Lock()
	gen := s.accessGen
	s.mu.Unlock()
	if claims.Generation != gen {
		detail(c, http.StatusUnauthorized, "Token expired")
		c.Abort()
		return
	}

	var user User
	if err := s.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		detail(c, http.StatusUnauthorized, "User not found")
		c.Abort()
		return
	}

	c.Set("user", &user)
	c.Next()
}

func currentUser(c *gin.Context) *User {
	user, _ := c.Get("user")
	return user.(*User)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": "Validation failed",
			"errors": map[string][]string{"password": {"must be at least 8 characters"}},
		})
		return
	}

	var count int64
	s.DB.Model(&User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		detail(c, http.StatusConflict, "Email already exists")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user := User{Email: req.Email, Username: req.Username, PasswordHash: hash}
	if err := s.DB.Create(&user).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := s.setSessionCookies(c, user.ID); err != nil {
		detail(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signup successful"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	var user User
	if err := s.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		detail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		detail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := s.setSessionCookies(c, user.ID); err != nil {
		detail(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	// Login does not return the profile; clients hydrate via /auth/me.
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	fail := s.failLogout
	s.mu.Unlock()
	if fail {
		detail(c, http.StatusInternalServerError, "Logout failed")
		return
	}

	c.SetCookie(accessCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) refresh(c *gin.Context) {
	s.mu.Lock()
	fail := s.failRefresh
	gen := s.accessGen
	s.mu.Unlock()
	if fail {
		detail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	raw, err := c.Cookie(refreshCookie)
	if err != nil {
		detail(c, http.StatusForbidden, "No refresh token")
		return
	}
	claims, err := s.parseToken(raw)
	if err != nil || claims.TokenType != "refresh" {
		detail(c, http.StatusForbidden, "Invalid or expired refresh token")
		return
	}

	access, err := s.mintToken(claims.UserID, "access", gen, accessTTL)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to renew session")
		return
	}
	c.SetCookie(accessCookie, access, int(accessTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Session renewed"})
}

func (s *Server) me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"username":  user.Username,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"isAdmin":   user.IsAdmin,
	})
}

type resetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) requestReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	var user User
	if err := s.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		detail(c, http.StatusNotFound, "User not found")
		return
	}

	otp := fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	token := ulid.Make().String()
	s.mu.Lock()
	s.resets[req.Email] = &resetState{otp: otp, token: token}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type verifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required"`
	Token string `json:"token" binding:"required"`
}

func (s *Server) verifyOtp(c *gin.Context) {
	var req verifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	s.mu.Lock()
	st := s.resets[req.Email]
	// Only the most recently issued token counts; resends supersede.
	valid := st != nil && st.token == req.Token && st.otp == req.Otp
	if valid {
		st.otpVerified = true
	}
	s.mu.Unlock()

	if !valid {
		detail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *Server) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	s.mu.Lock()
	var email string
	for e, st := range s.resets {
		if st.token == req.Token && st.otpVerified {
			email = e
			break
		}
	}
	if email != "" {
		delete(s.resets, email)
	}
	s.mu.Unlock()

	if email == "" {
		detail(c, http.StatusBadRequest, "Invalid or unverified reset token")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if err := s.DB.Model(&User{}).Where("email = ?", email).Update("password_hash", hash).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	user := currentUser(c)
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		detail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		detail(c, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if err := s.DB.Model(user).Update("password_hash", hash).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (s *Server) listUsers(c *gin.Context) {
	if !currentUser(c).IsAdmin {
		detail(c, http.StatusForbidden, "Admin access required")
		return
	}

	var users []User
	if err := s.DB.Order("created_at").Find(&users).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Failed to load users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":        u.ID,
			"email":     u.Email,
			"username":  u.Username,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"isAdmin":   u.IsAdmin,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listRoles(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{"id": "1", "name": "admin"},
		{"id": "2", "name": "user"},
	})
}

type promoteRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (s *Server) promote(c *gin.Context) {
	if !currentUser(c).IsAdmin {
		detail(c, http.StatusForbidden, "Admin access required")
		return
	}

	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Validation failed")
		return
	}

	var user User
	if err := s.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	if err := s.DB.Model(&user).Update("is_admin", !user.IsAdmin).Error; err != nil {
		detail(c, http.StatusInternalServerError, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}
