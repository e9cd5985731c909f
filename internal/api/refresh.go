package api

import (
	"context"
	"sync"
)

// refreshTicket is the single outstanding renewal attempt. Waiters only ever
// read result after done is closed; the coordinator alone creates and clears
// tickets.
type refreshTicket struct {
	done    chan struct{}
	err     error
	waiters int
}

// RefreshCoordinator coalesces concurrent session renewals: however many
// requests discover an expired session inside the same window, exactly one
// renewal call is issued and every caller shares its outcome.
type RefreshCoordinator struct {
	mu     sync.Mutex
	ticket *refreshTicket
}

// NewRefreshCoordinator creates a coordinator with no outstanding ticket.
func NewRefreshCoordinator() *RefreshCoordinator {
	return &RefreshCoordinator{}
}

// AttachOrCreate returns the shared outcome of the current renewal attempt.
// The first caller creates the ticket and runs issue; later callers attach to
// the existing ticket and block until it settles. The ticket is cleared
// before waiters are released, so a renewal failure does not pin future 401s
// to a dead attempt.
func (rc *RefreshCoordinator) AttachOrCreate(ctx context.Context, issue func(ctx context.Context) error) error {
	rc.mu.Lock()
	if tk := rc.ticket; tk != nil {
		tk.waiters++
		rc.mu.Unlock()
		select {
		case <-tk.done:
			return tk.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	tk := &refreshTicket{done: make(chan struct{})}
	rc.ticket = tk
	rc.mu.Unlock()

	err := issue(ctx)

	rc.mu.Lock()
	rc.ticket = nil
	rc.mu.Unlock()

	tk.err = err
	close(tk.done)
	return err
}

// Outstanding reports whether a renewal attempt is in flight.
func (rc *RefreshCoordinator) Outstanding() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.ticket != nil
}
