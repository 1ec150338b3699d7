// Package dashboard owns the live schedule state. A single loop applies
// refresh events in arrival order and publishes immutable views for
// readers on other goroutines.
package dashboard

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"idacast/internal/locale"
	"idacast/models"
	"idacast/services/refresh"
)

const (
	eventBuffer = 64
	redrawEvery = time.Second
)

// Refresher is the part of the orchestrator the loop drives.
type Refresher interface {
	Request(ctx context.Context, locale string, cacheAllowed bool)
	Persist(ctx context.Context, locale string, s models.Schedules) error
	Go(fn func())
}

// View is an immutable snapshot of everything a display needs.
type View struct {
	Schedules models.Schedules
	Status    models.DashboardStatus
}

// App is the dashboard core.
type App struct {
	refresher Refresher
	events    <-chan refresh.Event
	now       func() time.Time

	locale atomic.Pointer[string]
	view   atomic.Pointer[View]

	// loop-owned
	schedules  models.Schedules
	state      models.RefreshState
	cacheError string

	persistErrs chan string

	subMu       sync.Mutex
	subscribers map[chan View]struct{}

	ctxMu sync.Mutex
	ctx   context.Context
}

// NewEventChannel returns the channel refresh tasks publish into.
func NewEventChannel() chan refresh.Event {
	return make(chan refresh.Event, eventBuffer)
}

// New creates an App consuming events from the given channel.
func New(refresher Refresher, events <-chan refresh.Event, initialLocale string) *App {
	a := &App{
		refresher:   refresher,
		events:      events,
		now:         time.Now,
		state:       models.RefreshState{Phase: models.RefreshIdle},
		persistErrs: make(chan string, 4),
		subscribers: make(map[chan View]struct{}),
		ctx:         context.Background(),
	}
	a.SetLocale(initialLocale)
	a.publish()
	return a
}

// Run drains refresh events until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()

	ticker := time.NewTicker(redrawEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.closeSubscribers()
			return
		case ev := <-a.events:
			a.apply(ev)
		case msg := <-a.persistErrs:
			a.cacheError = msg
			a.publish()
		case <-ticker.C:
			a.notify(*a.view.Load())
		}
	}
}

func (a *App) apply(ev refresh.Event) {
	switch ev.Kind {
	case refresh.EventScheduleLoad:
		if a.schedules.Equal(&ev.Schedules) {
			log.Printf("[dashboard] %s snapshot unchanged", ev.Locale)
			break
		}
		a.schedules = ev.Schedules
		// A cache hit is already stored; rewriting it would extend its TTL.
		if !ev.FromCache {
			a.persist(ev.Locale, ev.Schedules)
		}
	case refresh.EventState:
		a.state = ev.State
		if ev.State.Phase == models.RefreshCompleted {
			a.cacheError = ""
		}
	}
	a.publish()
}

// persist writes the new snapshot in the background. A failed write is
// reported in the status but never turns the refresh into an error.
func (a *App) persist(key string, s models.Schedules) {
	ctx := a.context()
	a.refresher.Go(func() {
		if err := a.refresher.Persist(ctx, key, s); err != nil {
			select {
			case a.persistErrs <- err.Error():
			default:
			}
		}
	})
}

func (a *App) publish() {
	v := &View{
		Schedules: a.schedules,
		Status: models.DashboardStatus{
			Locale:     a.Locale(),
			Refresh:    a.state,
			Counts:     a.schedules.Counts(),
			CacheError: a.cacheError,
			UpdatedAt:  a.now(),
		},
	}
	a.view.Store(v)
	a.notify(*v)
}

func (a *App) context() context.Context {
	a.ctxMu.Lock()
	defer a.ctxMu.Unlock()
	return a.ctx
}

// Schedules returns the current snapshot. Callers must not modify it.
func (a *App) Schedules() models.Schedules {
	return a.view.Load().Schedules
}

// RefreshState returns the state of the latest refresh event.
func (a *App) RefreshState() models.RefreshState {
	return a.view.Load().Status.Refresh
}

// Status returns the current status view.
func (a *App) Status() models.DashboardStatus {
	return a.view.Load().Status
}

// View returns the current view.
func (a *App) View() View {
	return *a.view.Load()
}

// Locale returns the locale used for the next refresh ("" for default).
func (a *App) Locale() string {
	if l := a.locale.Load(); l != nil {
		return *l
	}
	return ""
}

// SetLocale changes the locale of subsequent refreshes. It does not
// trigger a refresh by itself.
func (a *App) SetLocale(raw string) {
	n := locale.Normalize(raw)
	a.locale.Store(&n)
}

// RequestRefresh starts a refresh for the current locale.
func (a *App) RequestRefresh(cacheAllowed bool) {
	a.refresher.Request(a.context(), a.Locale(), cacheAllowed)
}

// Subscribe returns a channel receiving every published view. Slow
// subscribers miss intermediate views. The channel is closed when the
// returned cancel func is called or the loop stops.
func (a *App) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	a.subMu.Lock()
	a.subscribers[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			defer a.subMu.Unlock()
			if _, ok := a.subscribers[ch]; ok {
				delete(a.subscribers, ch)
				close(ch)
			}
		})
	}
}

func (a *App) notify(v View) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subscribers {
		select {
		case ch <- v:
		default:
			// Replace the stale pending view with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func (a *App) closeSubscribers() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}
