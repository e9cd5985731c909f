package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/CareerServices-Pace/LinkSweep/internal/api"
	"github.com/CareerServices-Pace/LinkSweep/internal/session"
)

// ResetStep is the password-reset flow position.
type ResetStep int

const (
	StepEmail ResetStep = iota
	StepOtp
	StepPassword
)

// String returns the step name used in logs.
func (s ResetStep) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepOtp:
		return "otp"
	case StepPassword:
		return "password"
	default:
		return "unknown"
	}
}

const otpLength = 6

// resetTicket correlates the three reset steps. The server is authoritative
// on which token is current; the flow only ever holds the most recently
// issued one.
type resetTicket struct {
	email       string
	token       string
	otpVerified bool
	issuedAt    time.Time
}

// ResetFlow walks the request → verify → reset password recovery sequence.
// It talks to the transport directly and never writes the session store; the
// in-session ChangePassword variant reads it to gate on Authenticated.
type ResetFlow struct {
	client *api.Client
	store  *session.Store
	logger zerolog.Logger

	mu     sync.Mutex
	step   ResetStep
	ticket *resetTicket
}

// NewResetFlow creates a flow at the Email step.
func NewResetFlow(client *api.Client, store *session.Store, logger zerolog.Logger) *ResetFlow {
	return &ResetFlow{
		client: client,
		store:  store,
		logger: logger.With().Str("component", "password_reset").Logger(),
	}
}

// Step returns the flow's current position.
func (f *ResetFlow) Step() ResetStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetTokenResponse struct {
	Token string `json:"token"`
}

// RequestReset asks the server to email an OTP and stores the returned
// opaque token as the active ticket. Failure leaves the flow at Email.
func (f *ResetFlow) RequestReset(ctx context.Context, email string) Result {
	var resp resetTokenResponse
	if err := f.client.Post(ctx, "/auth/request-reset", resetRequest{Email: email}, &resp); err != nil {
		return fail(err)
	}

	f.mu.Lock()
	f.ticket = &resetTicket{email: email, token: resp.Token, issuedAt: time.Now()}
	f.step = StepOtp
	f.mu.Unlock()

	f.logger.Debug().Msg("reset OTP issued")
	return ok()
}

type verifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
	Token string `json:"token"`
}

// VerifyOtp validates the emailed code against the stored ticket. Codes of
// the wrong length are rejected locally without a network call. A server
// rejection keeps the ticket so the user can retry with the right code.
func (f *ResetFlow) VerifyOtp(ctx context.Context, otp string) Result {
	if len(otp) != otpLength {
		return fail(&api.Error{
			Kind:        api.KindValidationFailed,
			Detail:      "enter the 6-digit code from your email",
			FieldErrors: map[string][]string{"otp": {"must be 6 characters"}},
		})
	}

	f.mu.Lock()
	ticket := f.ticket
	f.mu.Unlock()
	if ticket == nil {
		return fail(&api.Error{Kind: api.KindUnexpected, Detail: "no password reset in progress"})
	}

	req := verifyOtpRequest{Email: ticket.email, Otp: otp, Token: ticket.token}
	if err := f.client.Post(ctx, "/auth/verify-otp", req, nil); err != nil {
		return fail(asOtpError(err))
	}

	f.mu.Lock()
	if f.ticket == ticket {
		f.ticket.otpVerified = true
	}
	f.step = StepPassword
	f.mu.Unlock()

	return ok()
}

// ResendOtp re-issues the reset request for the stored email. The new token
// supersedes the old one; the step does not change.
func (f *ResetFlow) ResendOtp(ctx context.Context) Result {
	f.mu.Lock()
	ticket := f.ticket
	f.mu.Unlock()
	if ticket == nil {
		return fail(&api.Error{Kind: api.KindUnexpected, Detail: "no password reset in progress"})
	}

	var resp resetTokenResponse
	if err := f.client.Post(ctx, "/auth/request-reset", resetRequest{Email: ticket.email}, &resp); err != nil {
		return fail(err)
	}

	f.mu.Lock()
	f.ticket = &resetTicket{email: ticket.email, token: resp.Token, issuedAt: time.Now()}
	f.mu.Unlock()

	f.logger.Debug().Msg("reset OTP re-issued")
	return ok()
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword finalizes the flow. A confirmation mismatch is rejected
// locally without a network call. Success discards the ticket and sends the
// caller to the login view.
func (f *ResetFlow) ResetPassword(ctx context.Context, newPassword, confirmPassword string) Result {
	if newPassword != confirmPassword {
		return fail(&api.Error{
			Kind:   api.KindPasswordMismatch,
			Detail: "passwords do not match",
		})
	}

	f.mu.Lock()
	ticket := f.ticket
	f.mu.Unlock()
	if ticket == nil {
		return fail(&api.Error{Kind: api.KindUnexpected, Detail: "no password reset in progress"})
	}

	req := resetPasswordRequest{Token: ticket.token, NewPassword: newPassword}
	if err := f.client.Post(ctx, "/auth/reset-password", req, nil); err != nil {
		return fail(err)
	}

	f.mu.Lock()
	f.ticket = nil
	f.step = StepEmail
	f.mu.Unlock()

	return redirect(LoginPath)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword is the in-session variant. It requires an authenticated
// session and is independent of the reset ticket.
func (f *ResetFlow) ChangePassword(ctx context.Context, current, next string) Result {
	if _, status := f.store.Get(); status != session.StatusAuthenticated {
		return fail(&api.Error{
			Kind:   api.KindSessionExpired,
			Detail: "you must be signed in to change your password",
		})
	}

	req := changePasswordRequest{CurrentPassword: current, NewPassword: next}
	if err := f.client.Post(ctx, "/auth/change-password", req, nil); err != nil {
		return fail(err)
	}
	return ok()
}

// asOtpError maps server-side OTP rejections to their own kind so the UI can
// keep the user on the code entry step.
func asOtpError(err error) *api.Error {
	apiErr := api.AsError(err)
	if apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
		return &api.Error{
			Kind:   api.KindOtpInvalidOrExpired,
			Status: apiErr.Status,
			Detail: "invalid or expired OTP, please try again",
		}
	}
	return apiErr
}
