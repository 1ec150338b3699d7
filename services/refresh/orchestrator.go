package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc"
	"golang.org/x/sync/singleflight"

	"idacast/internal/locale"
	"idacast/models"
	"idacast/services/cache"
	"idacast/services/translation"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks idacast/services/refresh Source

// Source fetches fresh data from the network.
type Source interface {
	FetchSchedules(ctx context.Context) (models.Schedules, error)
	FetchTranslation(ctx context.Context, locale string) (translation.Dictionary, error)
}

// EventKind tags an Event.
type EventKind int

const (
	// EventState carries a RefreshState transition.
	EventState EventKind = iota
	// EventScheduleLoad carries a freshly loaded snapshot.
	EventScheduleLoad
)

// Event is a message from a refresh task to the consumer loop. Events of
// one attempt share a RefreshID and arrive in the order they were sent.
type Event struct {
	RefreshID uuid.UUID
	Kind      EventKind
	State     models.RefreshState
	Schedules models.Schedules
	Locale    string
	FromCache bool
}

// Options tune an Orchestrator.
type Options struct {
	// Coalesce collapses overlapping requests for the same locale and cache
	// policy into a single attempt.
	Coalesce bool
	Now      func() time.Time
}

// Orchestrator runs refresh attempts against the cache and the network and
// reports their progress on an event channel.
type Orchestrator struct {
	source Source
	store  cache.Store
	events chan<- Event
	opts   Options

	group singleflight.Group
	tasks conc.WaitGroup
}

// New creates an Orchestrator. events should be buffered; a slow consumer
// stalls refresh tasks but never the caller of Request.
func New(source Source, store cache.Store, events chan<- Event, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{source: source, store: store, events: events, opts: opts}
}

// Request starts an independent refresh attempt and returns immediately.
func (o *Orchestrator) Request(ctx context.Context, requested string, cacheAllowed bool) {
	o.tasks.Go(func() {
		if !o.opts.Coalesce {
			o.Run(ctx, requested, cacheAllowed)
			return
		}
		key := fmt.Sprintf("%s|%t", cache.Key(requested), cacheAllowed)
		_, _, shared := o.group.Do(key, func() (any, error) {
			o.Run(ctx, requested, cacheAllowed)
			return nil, nil
		})
		if shared {
			log.Printf("[refresh] coalesced request for %s", key)
		}
	})
}

// Run performs one refresh attempt synchronously: Pending, then either a
// ScheduleLoad followed by Completed, or Error.
func (o *Orchestrator) Run(ctx context.Context, requested string, cacheAllowed bool) {
	id := uuid.New()
	key := cache.Key(requested)
	o.emit(ctx, Event{RefreshID: id, Kind: EventState, State: models.PendingState(), Locale: key})

	started := time.Now()
	snapshot, fromCache, err := o.Load(ctx, requested, cacheAllowed)
	if err != nil {
		log.Printf("[refresh] %s: refresh for %s failed: %v", id, key, err)
		o.emit(ctx, Event{RefreshID: id, Kind: EventState, State: models.ErrorState(err), Locale: key})
		return
	}

	log.Printf("[refresh] %s: loaded %s snapshot %s (cache=%t) in %s",
		id, key, snapshot.Fingerprint(), fromCache, time.Since(started).Round(time.Millisecond))
	o.emit(ctx, Event{RefreshID: id, Kind: EventScheduleLoad, Schedules: snapshot, Locale: key, FromCache: fromCache})
	o.emit(ctx, Event{
		RefreshID: id,
		Kind:      EventState,
		State:     models.CompletedState(o.opts.Now(), fromCache),
		Locale:    key,
		FromCache: fromCache,
	})
}

// Load resolves a snapshot for the requested locale, from the cache when
// allowed and present, otherwise from the network.
func (o *Orchestrator) Load(ctx context.Context, requested string, cacheAllowed bool) (models.Schedules, bool, error) {
	key := cache.Key(requested)
	if cacheAllowed && o.store != nil {
		cached, ok, err := o.store.Get(ctx, key)
		switch {
		case err != nil:
			log.Printf("[refresh] cache read for %s failed, fetching instead: %v", key, err)
		case ok:
			return cached, true, nil
		}
	}

	snapshot, err := o.fetch(ctx, requested)
	if err != nil {
		return models.Schedules{}, false, err
	}
	return snapshot, false, nil
}

func (o *Orchestrator) fetch(ctx context.Context, requested string) (models.Schedules, error) {
	if !locale.NeedsTranslation(requested) {
		return o.source.FetchSchedules(ctx)
	}

	var (
		snapshot       models.Schedules
		dict           translation.Dictionary
		schedErr, tErr error
		wg             conc.WaitGroup
	)
	wg.Go(func() { snapshot, schedErr = o.source.FetchSchedules(ctx) })
	wg.Go(func() { dict, tErr = o.source.FetchTranslation(ctx, requested) })
	wg.Wait()

	var result *multierror.Error
	if schedErr != nil {
		result = multierror.Append(result, fmt.Errorf("schedules: %w", schedErr))
	}
	if tErr != nil {
		result = multierror.Append(result, fmt.Errorf("translation %s: %w", locale.Normalize(requested), tErr))
	}
	if err := result.ErrorOrNil(); err != nil {
		if result.Len() == 1 {
			return models.Schedules{}, result.Errors[0]
		}
		result.ErrorFormat = joinErrors
		return models.Schedules{}, err
	}
	return translation.Apply(snapshot, dict), nil
}

func joinErrors(errs []error) string {
	msg := ""
	for i, err := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}

// Persist writes snapshot to the cache under the requested locale.
func (o *Orchestrator) Persist(ctx context.Context, requested string, snapshot models.Schedules) error {
	if o.store == nil {
		return errors.New("no cache configured")
	}
	key := cache.Key(requested)
	if err := o.store.Set(ctx, key, snapshot); err != nil {
		log.Printf("[refresh] failed to cache %s snapshot: %v", key, err)
		return err
	}
	log.Printf("[refresh] cached %s snapshot %s", key, snapshot.Fingerprint())
	return nil
}

// Go runs fn on the orchestrator's task group so Wait covers it.
func (o *Orchestrator) Go(fn func()) {
	o.tasks.Go(fn)
}

// Wait blocks until every task started by Request or Go has returned.
func (o *Orchestrator) Wait() {
	o.tasks.Wait()
}

func (o *Orchestrator) emit(ctx context.Context, ev Event) {
	select {
	case o.events <- ev:
	case <-ctx.Done():
	}
}
