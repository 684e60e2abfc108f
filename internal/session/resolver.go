// Package session resolves the signed-in viewer's role and MFA standing on the
// client side. It reconciles with the server on every session change and never
// treats a local flag as authoritative.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"partnerdash/internal/guard"
)

const defaultFetchTimeout = 10 * time.Second

type User struct {
	ID    string
	Email string
}

// Session is the bearer credential the client holds.
type Session struct {
	ID          string
	AccessToken string
	User        User
	ExpiresAt   time.Time
}

// MFAInfo is the caller's MFA record as the server reports it.
type MFAInfo struct {
	Type       string
	IsVerified bool
}

// Identity is the client's view of the identity provider.
type Identity interface {
	// Current returns the held session, or nil when signed out.
	Current() *Session
	// Subscribe registers fn for session changes; nil means signed out.
	Subscribe(fn func(*Session)) (unsubscribe func())
}

// Fetcher reads authorization data for the current session from the server.
type Fetcher interface {
	// Role returns "" while the account awaits approval.
	Role(ctx context.Context) (string, error)
	// MFAInfo returns nil when no MFA record exists.
	MFAInfo(ctx context.Context) (*MFAInfo, error)
}

// State is a snapshot of the resolved viewer.
type State struct {
	Session       *Session
	User          *User
	Role          string
	IsApproved    bool
	MFARequired   bool
	MFAConfigured bool
	MFAVerified   bool
	Loading       bool
}

// AuthState projects the snapshot onto what the guard decides on.
func (s State) AuthState() guard.AuthState {
	return guard.AuthState{
		Loading:       s.Loading,
		HasSession:    s.Session != nil,
		IsApproved:    s.IsApproved,
		IsAdmin:       s.Role == "admin",
		MFARequired:   s.MFARequired,
		MFAConfigured: s.MFAConfigured,
		MFAVerified:   s.MFAVerified,
	}
}

type Resolver struct {
	identity Identity
	fetcher  Fetcher
	logger   *slog.Logger
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	state         State
	version       uint64
	generation    uint64
	lastSessionID string
	closed        bool
	listeners     map[int]func(State)
	nextListener  int
	unsubscribe   func()

	// deliverMu serializes listener calls; delivered is the newest version sent.
	deliverMu sync.Mutex
	delivered uint64
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithFetchTimeout bounds each role and MFA fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// NewResolver starts in the loading state, resolves the current session and
// follows the identity's session changes until Close.
func NewResolver(identity Identity, fetcher Fetcher, opts ...Option) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		identity:  identity,
		fetcher:   fetcher,
		logger:    slog.New(slog.DiscardHandler),
		timeout:   defaultFetchTimeout,
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.unsubscribe = identity.Subscribe(r.onSessionChange)
	r.onSessionChange(identity.Current())
	return r
}

func (r *Resolver) onSessionChange(s *Session) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.generation++
	gen := r.generation

	if s == nil {
		r.lastSessionID = ""
		r.state = State{}
		snapshot, version := r.stamp()
		r.mu.Unlock()
		r.notify(snapshot, version)
		return
	}

	if s.ID != r.lastSessionID {
		// A different session starts from scratch: nothing verified, nothing approved.
		r.state = State{}
		r.lastSessionID = s.ID
	}
	session := *s
	user := s.User
	r.state.Session = &session
	r.state.User = &user
	r.state.Loading = true
	snapshot, version := r.stamp()
	r.wg.Add(1)
	r.mu.Unlock()

	r.notify(snapshot, version)
	go func() {
		defer r.wg.Done()
		_ = r.resolve(r.ctx, gen)
	}()
}

type fetched struct {
	role string
	mfa  *MFAInfo
}

func (r *Resolver) fetch(ctx context.Context) (*fetched, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out fetched
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.role, err = r.fetcher.Role(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.mfa, err = r.fetcher.MFAInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// resolve fetches for generation gen and applies the result only if no newer
// session change happened meanwhile.
func (r *Resolver) resolve(ctx context.Context, gen uint64) error {
	result, err := r.fetch(ctx)

	r.mu.Lock()
	if r.closed || gen != r.generation {
		r.mu.Unlock()
		return err
	}
	if err != nil {
		r.logger.WarnContext(ctx, "failed to resolve role and mfa", "error", err)
		r.state.Loading = false
	} else {
		configured := result.mfa != nil && result.mfa.IsVerified
		r.state.Role = result.role
		r.state.IsApproved = result.role != ""
		r.state.MFAConfigured = configured
		r.state.MFARequired = configured
		r.state.Loading = false
	}
	snapshot, version := r.stamp()
	r.mu.Unlock()

	r.notify(snapshot, version)
	return err
}

// RefreshRole re-reads role and MFA standing for the current session, for
// example after an invitation was accepted.
func (r *Resolver) RefreshRole(ctx context.Context) error {
	r.mu.Lock()
	if r.closed || r.state.Session == nil {
		r.mu.Unlock()
		return nil
	}
	r.generation++
	gen := r.generation
	r.mu.Unlock()
	return r.resolve(ctx, gen)
}

// MarkMFAVerified records that the server accepted a code for the current session.
func (r *Resolver) MarkMFAVerified() {
	r.mu.Lock()
	if r.closed || r.state.Session == nil {
		r.mu.Unlock()
		return
	}
	r.state.MFAVerified = true
	snapshot, version := r.stamp()
	r.mu.Unlock()
	r.notify(snapshot, version)
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn for state changes. Listeners are called one at a
// time and a snapshot older than one already delivered is skipped, so the last
// call always carries the current state. fn must not call RefreshRole or
// MarkMFAVerified.
func (r *Resolver) Subscribe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.nextListener
	r.nextListener++
	r.listeners[key] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, key)
	}
}

// stamp versions the current state. r.mu must be held.
func (r *Resolver) stamp() (State, uint64) {
	r.version++
	return r.state, r.version
}

func (r *Resolver) notify(state State, version uint64) {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()
	if version <= r.delivered {
		return
	}
	r.delivered = version

	r.mu.Lock()
	fns := make([]func(State), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

// Close stops following the identity and waits for in-flight fetches.
// Later events and fetch results are dropped.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.cancel()
	r.wg.Wait()
}
