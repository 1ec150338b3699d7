package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often the scheduled refresh fires.
const DefaultInterval = 2 * time.Hour

// Requester starts a refresh attempt.
type Requester interface {
	Request(ctx context.Context, locale string, cacheAllowed bool)
}

// Service fires a cache-preferring refresh on a fixed interval,
// independently of manual requests.
type Service struct {
	requester Requester
	interval  time.Duration
	locale    func() string

	// Runtime state
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ticks atomic.Int64
}

// NewService creates a scheduler. locale is read at every tick so locale
// changes apply to the next scheduled refresh.
func NewService(requester Requester, interval time.Duration, locale func() string) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{requester: requester, interval: interval, locale: locale}
}

// Start begins the scheduler loop. The first refresh fires immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(loopCtx)

	log.Printf("[scheduler] started, refreshing every %s", s.interval)
	return nil
}

// Stop halts the loop and waits for it to exit, or for ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] stopped")
	case <-ctx.Done():
		log.Println("[scheduler] stopped (timeout)")
	}

	s.running = false
	return nil
}

// Ticks reports how many scheduled refreshes have fired.
func (s *Service) Ticks() int {
	return int(s.ticks.Load())
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fire(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx)
		}
	}
}

func (s *Service) fire(ctx context.Context) {
	s.ticks.Add(1)

	locale := ""
	if s.locale != nil {
		locale = s.locale()
	}
	// Scheduled refreshes always prefer the cache.
	s.requester.Request(ctx, locale, true)
}
