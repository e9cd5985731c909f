package auth

import "github.com/CareerServices-Pace/LinkSweep/internal/api"

// Result is the typed outcome of every auth operation. Failures are values,
// not panics: callers branch on Err.Kind and render Err.FieldErrors inline.
type Result struct {
	Success bool
	Err     *api.Error

	// RedirectTo is set when the operation requires the caller to navigate,
	// e.g. to the login view after logout or a completed password reset.
	RedirectTo string
}

func ok() Result {
	return Result{Success: true}
}

func redirect(path string) Result {
	return Result{Success: true, RedirectTo: path}
}

func fail(err error) Result {
	return Result{Err: api.AsError(err)}
}
