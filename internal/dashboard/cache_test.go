package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/circuit"
)

type countingFetcher struct {
	mu       sync.Mutex
	calls    atomic.Int32
	partners []Partner
	err      error
	gate     chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context) ([]Partner, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.partners, f.err
}

func (f *countingFetcher) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type CacheSuite struct {
	suite.Suite
	fetcher *countingFetcher
	now     time.Time
	breaker *circuit.Breaker
	cache   *Cache
	user    id.UserID
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.fetcher = &countingFetcher{partners: []Partner{{Name: "Alfa"}}}
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }
	s.breaker = circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Minute), circuit.WithClock(clock))
	s.cache = NewCache(s.fetcher, WithBreaker(s.breaker), WithClock(clock))
	s.user = id.NewUserID()
}

func (s *CacheSuite) TestOneFetchPerLogin() {
	ctx := context.Background()

	first, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)
	s.now = s.now.Add(24 * time.Hour)
	second, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)

	s.Equal(int32(1), s.fetcher.calls.Load())
	s.Equal(first.FetchedAt, second.FetchedAt)
	s.False(second.Stale)
}

func (s *CacheSuite) TestEntriesAreKeyedByUser() {
	ctx := context.Background()
	_, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)
	_, err = s.cache.Get(ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Equal(int32(2), s.fetcher.calls.Load())
}

func (s *CacheSuite) TestTTLExpiresEntry() {
	cache := NewCache(s.fetcher, WithTTL(time.Minute), WithClock(func() time.Time { return s.now }))
	ctx := context.Background()

	_, err := cache.Get(ctx, s.user)
	s.Require().NoError(err)
	s.now = s.now.Add(time.Minute)
	_, err = cache.Get(ctx, s.user)
	s.Require().NoError(err)
	s.Equal(int32(2), s.fetcher.calls.Load())
}

func (s *CacheSuite) TestRefreshBypassesCache() {
	ctx := context.Background()
	_, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)
	_, err = s.cache.Refresh(ctx, s.user)
	s.Require().NoError(err)
	s.Equal(int32(2), s.fetcher.calls.Load())
}

func (s *CacheSuite) TestSignInAndSignOutInvalidate() {
	var (
		mu       sync.Mutex
		listener func(models.Event)
	)
	subscribe := func(fn func(models.Event)) func() {
		mu.Lock()
		listener = fn
		mu.Unlock()
		return func() {
			mu.Lock()
			listener = nil
			mu.Unlock()
		}
	}
	stop := s.cache.Watch(subscribe)
	ctx := context.Background()

	for _, evType := range []models.EventType{models.EventSignedOut, models.EventSignedIn} {
		_, err := s.cache.Get(ctx, s.user)
		s.Require().NoError(err)
		listener(models.Event{Type: evType, UserID: s.user})
	}
	_, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)
	s.Equal(int32(3), s.fetcher.calls.Load())

	stop()
	s.Nil(listener)
}

func (s *CacheSuite) TestFailureServesStaleEntry() {
	ctx := context.Background()
	_, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)

	s.fetcher.fail(errors.New("webhook down"))
	snap, err := s.cache.Refresh(ctx, s.user)
	s.Require().NoError(err)
	s.True(snap.Stale)
	s.Equal("Alfa", snap.Partners[0].Name)
}

func (s *CacheSuite) TestFailureWithoutEntryIsUnavailable() {
	s.fetcher.fail(errors.New("webhook down"))
	_, err := s.cache.Get(context.Background(), s.user)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *CacheSuite) TestOpenCircuitSkipsUpstream() {
	ctx := context.Background()
	s.fetcher.fail(errors.New("webhook down"))
	for range 2 {
		_, _ = s.cache.Get(ctx, s.user)
	}
	s.Equal(circuit.StateOpen, s.breaker.State())

	_, err := s.cache.Get(ctx, s.user)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(int32(2), s.fetcher.calls.Load())

	s.fetcher.fail(nil)
	s.now = s.now.Add(time.Minute)
	snap, err := s.cache.Get(ctx, s.user)
	s.Require().NoError(err)
	s.False(snap.Stale)
	s.Equal(circuit.StateClosed, s.breaker.State())
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	fetcher := &countingFetcher{partners: []Partner{{Name: "Alfa"}}, gate: make(chan struct{})}
	cache := NewCache(fetcher)
	user := id.NewUserID()

	var wg sync.WaitGroup
	results := make([]*Snapshot, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := cache.Get(context.Background(), user)
			assert.NoError(t, err)
			results[i] = snap
		}()
	}

	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Let the waiters pile up behind the in-flight fetch before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for _, snap := range results {
		require.NotNil(t, snap)
		assert.Equal(t, "Alfa", snap.Partners[0].Name)
	}
}
