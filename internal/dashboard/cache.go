package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"partnerdash/internal/identity/models"
	"partnerdash/internal/platform/metrics"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/circuit"
	"partnerdash/pkg/platform/tracer"
)

const msgUnavailable = "Partner data is temporarily unavailable"

// Fetcher loads the full partner report.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Partner, error)
}

type entry struct {
	partners  []Partner
	fetchedAt time.Time
}

// Cache keeps one partner report per user. An entry lives until the user signs
// in or out again, or until the TTL passes when one is set. Concurrent misses
// for the same user share one upstream fetch.
type Cache struct {
	fetcher Fetcher
	breaker *circuit.Breaker
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[id.UserID]entry
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Cache) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Cache) {
		if t != nil {
			c.tracer = t
		}
	}
}

func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		breaker: circuit.New("partner-webhook"),
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  tracer.NewNoop(),
		entries: make(map[id.UserID]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached report for userID, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	if e, ok := c.fresh(userID); ok {
		return &Snapshot{Partners: e.partners, FetchedAt: e.fetchedAt}, nil
	}
	return c.load(ctx, userID)
}

// Refresh fetches a new report for userID regardless of what is cached.
func (c *Cache) Refresh(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	return c.load(ctx, userID)
}

// Invalidate drops the entry for userID.
func (c *Cache) Invalidate(userID id.UserID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// Watch invalidates a user's entry on every sign-in and sign-out. subscribe is
// the identity service's Subscribe; the returned func stops watching.
func (c *Cache) Watch(subscribe func(func(models.Event)) func()) func() {
	return subscribe(func(ev models.Event) {
		switch ev.Type {
		case models.EventSignedIn, models.EventSignedOut:
			c.Invalidate(ev.UserID)
		}
	})
}

func (c *Cache) fresh(userID id.UserID) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return entry{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) >= c.ttl {
		return e, false
	}
	return e, true
}

func (c *Cache) stale(userID id.UserID) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[userID]
	return e, ok
}

func (c *Cache) load(ctx context.Context, userID id.UserID) (*Snapshot, error) {
	v, err, _ := c.group.Do(userID.String(), func() (any, error) {
		return c.fetch(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	snap := *v.(*Snapshot)
	return &snap, nil
}

func (c *Cache) fetch(ctx context.Context, userID id.UserID) (snap *Snapshot, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanPartnersFetch,
		tracer.String(tracer.AttrUserID, userID.String()),
		tracer.Bool(tracer.AttrCacheHit, false),
	)
	defer func() { span.End(err) }()

	if !c.breaker.Allow() {
		c.metrics.IncrementPartnerFetches("circuit_open")
		return c.fallback(userID, nil)
	}

	partners, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "partner webhook circuit opened", "breaker", c.breaker.Name())
		}
		c.metrics.IncrementPartnerFetches("failed")
		c.logger.ErrorContext(ctx, "failed to fetch partner report",
			"error", err,
			"user_id", userID.String(),
		)
		return c.fallback(userID, err)
	}
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "partner webhook circuit closed", "breaker", c.breaker.Name())
	}

	e := entry{partners: partners, fetchedAt: c.now()}
	c.mu.Lock()
	c.entries[userID] = e
	c.mu.Unlock()

	c.metrics.IncrementPartnerFetches("ok")
	span.SetAttributes(tracer.Int("partners.count", len(partners)))
	return &Snapshot{Partners: e.partners, FetchedAt: e.fetchedAt}, nil
}

func (c *Cache) fallback(userID id.UserID, cause error) (*Snapshot, error) {
	if e, ok := c.stale(userID); ok {
		return &Snapshot{Partners: e.partners, FetchedAt: e.fetchedAt, Stale: true}, nil
	}
	if cause == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, msgUnavailable)
	}
	return nil, dErrors.Wrap(cause, dErrors.CodeUnavailable, msgUnavailable)
}
