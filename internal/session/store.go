package session

import "sync"

// Snapshot is the value delivered to subscribers on every store mutation.
type Snapshot struct {
	Session *Session
	Status  Status
}

// Store holds the current session snapshot. It performs no I/O; the auth
// service is the only writer, every other component reads or subscribes.
type Store struct {
	mu      sync.RWMutex
	current *Session
	status  Status
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore creates a store in the Initializing state with no session.
func NewStore() *Store {
	return &Store{
		status: StatusInitializing,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Get returns the current session (nil when signed out) and status.
func (s *Store) Get() (*Session, Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, s.status
	}
	copied := *s.current
	return &copied, s.status
}

// Set replaces the session wholesale and marks the store Authenticated.
func (s *Store) Set(sess Session) {
	s.mu.Lock()
	s.current = &sess
	s.status = StatusAuthenticated
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Clear drops the session and marks the store Unauthenticated.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.current == nil && s.status == StatusUnauthenticated {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.status = StatusUnauthenticated
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// SetStatus updates the lifecycle status without touching the session.
func (s *Store) SetStatus(status Status) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// Subscribe registers fn to be called after every mutation. The returned
// function cancels the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Status: s.status}
	if s.current != nil {
		copied := *s.current
		snap.Session = &copied
	}
	return snap
}

func (s *Store) subscribersLocked() []func(Snapshot) {
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Subscribers run outside the store lock so they can call Get.
func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
