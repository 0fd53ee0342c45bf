// Package weekview loads per-day data for the selected week and keeps it in
// step with the week selector.
package weekview

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/username/sithub-client/internal/sithub"
	"github.com/username/sithub-client/internal/weekselector"
	"github.com/username/sithub-client/pkg/dateutil"
)

const defaultMaxConcurrency = 4

// DayFetcher loads the items shown for one date
type DayFetcher interface {
	FetchDay(ctx context.Context, date string) ([]sithub.Resource[sithub.Item], error)
}

// DayFetcherFunc adapts a function to DayFetcher
type DayFetcherFunc func(ctx context.Context, date string) ([]sithub.Resource[sithub.Item], error)

// FetchDay implements DayFetcher
func (f DayFetcherFunc) FetchDay(ctx context.Context, date string) ([]sithub.Resource[sithub.Item], error) {
	return f(ctx, date)
}

// ItemLister is the part of the SitHub client the item group fetcher needs
type ItemLister interface {
	Items(ctx context.Context, itemGroupID, date string) ([]sithub.Resource[sithub.Item], error)
}

// ItemGroupFetcher fetches the items of one item group
func ItemGroupFetcher(client ItemLister, itemGroupID string) DayFetcher {
	return DayFetcherFunc(func(ctx context.Context, date string) ([]sithub.Resource[sithub.Item], error) {
		return client.Items(ctx, itemGroupID, date)
	})
}

// Day is the loaded state of one date
type Day struct {
	Date  string
	Items []sithub.Resource[sithub.Item]
	Err   error
}

// Snapshot is the applied view: the key it was loaded for and its days in
// date order
type Snapshot struct {
	Key  weekselector.Key
	Days []Day
}

// KeySelector is the part of the week selector the loader reads
type KeySelector interface {
	SelectionKey() weekselector.Key
	DatesFor(key weekselector.Key) []string
	Subscribe(fn func(weekselector.Key))
}

// Option customises a Loader
type Option func(*Loader)

// WithMaxConcurrency bounds the number of dates fetched at once
func WithMaxConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxConcurrency = n
		}
	}
}

// WithUpdateHandler registers fn to receive every applied snapshot
func WithUpdateHandler(fn func(Snapshot)) Option {
	return func(l *Loader) {
		l.onUpdate = fn
	}
}

// Loader fetches one result per date of the selection and applies results
// only while their key is still the selector's current key.
type Loader struct {
	selector       KeySelector
	fetcher        DayFetcher
	logger         *zap.Logger
	maxConcurrency int
	onUpdate       func(Snapshot)

	mu      sync.Mutex
	loaded  bool
	applied weekselector.Key
	days    map[string]Day
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLoader creates a loader for selector backed by fetcher
func NewLoader(selector KeySelector, fetcher DayFetcher, logger *zap.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{
		selector:       selector,
		fetcher:        fetcher,
		logger:         logger,
		maxConcurrency: defaultMaxConcurrency,
		days:           make(map[string]Day),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Attach loads the current selection and reloads in the background after
// every selection change until ctx is done. Use Wait to drain loads.
func (l *Loader) Attach(ctx context.Context) error {
	l.selector.Subscribe(func(key weekselector.Key) {
		if ctx.Err() != nil {
			return
		}
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if err := l.Load(ctx, key); err != nil {
				l.logger.Debug("Week load not applied", zap.Any("key", key), zap.Error(err))
			}
		}()
	})
	return l.Load(ctx, l.selector.SelectionKey())
}

// Wait blocks until background loads started by Attach have finished
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Load brings the view to key. A new week refetches every date; turning
// weekends on fetches only Saturday and Sunday; turning them off drops
// those entries without fetching. Returns context.Canceled when key is no
// longer the selection, either on entry or once the fetch completes.
func (l *Loader) Load(ctx context.Context, key weekselector.Key) error {
	dates := l.selector.DatesFor(key)

	l.mu.Lock()
	// A superseded key must not cancel the load of the current one
	if key != l.selector.SelectionKey() {
		l.mu.Unlock()
		l.logger.Debug("Skipping superseded week load", zap.String("week", key.Week))
		return context.Canceled
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	sameWeek := l.loaded && l.applied.Week == key.Week
	if sameWeek && l.applied.ShowWeekends == key.ShowWeekends {
		l.mu.Unlock()
		return nil
	}
	if sameWeek && !key.ShowWeekends {
		l.applyLocked(key, dates, nil)
		snap := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Debug("Weekend days dropped", zap.String("week", key.Week))
		l.publish(snap)
		return nil
	}

	var need []string
	if sameWeek {
		for _, date := range dates {
			if _, ok := l.days[date]; !ok {
				need = append(need, date)
			}
		}
	} else {
		need = dates
	}

	loadCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	l.logger.Debug("Loading week",
		zap.String("week", key.Week),
		zap.Bool("show_weekends", key.ShowWeekends),
		zap.Strings("dates", need))

	fetched := l.fetch(loadCtx, need)

	l.mu.Lock()
	if current := l.selector.SelectionKey(); current != key || loadCtx.Err() != nil {
		l.mu.Unlock()
		l.logger.Debug("Discarding stale week load",
			zap.String("week", key.Week),
			zap.String("current_week", current.Week))
		return context.Canceled
	}
	l.applyLocked(key, dates, fetched)
	l.cancel = nil
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.publish(snap)
	return nil
}

// Snapshot returns the applied view
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Loader) fetch(ctx context.Context, dates []string) []Day {
	p := pool.NewWithResults[Day]().
		WithMaxGoroutines(l.maxConcurrency).
		WithContext(ctx)

	for _, date := range dates {
		date := date
		p.Go(func(ctx context.Context) (Day, error) {
			items, err := l.fetcher.FetchDay(ctx, date)
			if err != nil {
				l.logger.Warn("Failed to load day", zap.String("date", date), zap.Error(err))
			}
			return Day{Date: date, Items: items, Err: err}, nil
		})
	}

	days, _ := p.Wait()
	return days
}

// applyLocked replaces the view with key's dates, keeping already loaded
// days and merging fetched ones
func (l *Loader) applyLocked(key weekselector.Key, dates []string, fetched []Day) {
	next := make(map[string]Day, len(dates))
	if l.loaded && l.applied.Week == key.Week {
		for _, date := range dates {
			if day, ok := l.days[date]; ok {
				next[date] = day
			}
		}
	}
	for _, day := range fetched {
		next[day.Date] = day
	}

	l.days = next
	l.applied = key
	l.loaded = true
}

func (l *Loader) snapshotLocked() Snapshot {
	snap := Snapshot{Key: l.applied, Days: make([]Day, 0, len(l.days))}
	for _, date := range l.selector.DatesFor(l.applied) {
		if day, ok := l.days[date]; ok {
			snap.Days = append(snap.Days, day)
		}
	}
	return snap
}

func (l *Loader) publish(snap Snapshot) {
	if l.onUpdate != nil {
		l.onUpdate(snap)
	}
}

// IsWeekendDate reports whether a "YYYY-MM-DD" date falls on a weekend
func IsWeekendDate(date string) bool {
	t, err := dateutil.ParseDate(date, nil)
	return err == nil && dateutil.IsWeekend(t)
}
