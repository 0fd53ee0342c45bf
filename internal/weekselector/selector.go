// Package weekselector holds the state behind the week picker: the next
// eight selectable weeks, the selected week and its resolved day list.
package weekselector

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/username/sithub-client/internal/locale"
	"github.com/username/sithub-client/pkg/dateutil"
	"go.uber.org/zap"
)

// OptionCount is the number of weeks offered by the picker
const OptionCount = 8

// Clock supplies the current wall-clock time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now
var SystemClock Clock = ClockFunc(time.Now)

// WeekendSource reports whether Saturday and Sunday are shown
type WeekendSource interface {
	ShowWeekends() bool
}

// StaticWeekends is a WeekendSource with a fixed value
type StaticWeekends bool

// ShowWeekends implements WeekendSource
func (s StaticWeekends) ShowWeekends() bool { return bool(s) }

// WeekOption is one entry of the week picker
type WeekOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Key identifies what the day list was computed from. Fetches started for
// one key must not be applied once the key has changed.
type Key struct {
	Week         string
	ShowWeekends bool
}

// Selector is safe for concurrent use
type Selector struct {
	clock     Clock
	formatter locale.DateFormatter
	weekends  WeekendSource
	logger    *zap.Logger

	mu           sync.RWMutex
	selectedWeek string
	lastWeekends bool
	listeners    []func(Key)
}

// New creates a selector with the current week selected
func New(clock Clock, formatter locale.DateFormatter, weekends WeekendSource, logger *zap.Logger) *Selector {
	if clock == nil {
		clock = SystemClock
	}
	if weekends == nil {
		weekends = StaticWeekends(false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Selector{
		clock:     clock,
		formatter: formatter,
		weekends:  weekends,
		logger:    logger,
	}
	s.selectedWeek = s.WeekOptions()[0].Value
	s.lastWeekends = weekends.ShowWeekends()
	return s
}

// WeekOptions returns the eight weeks starting with the current one.
// The clock is read on every call so a long-lived session rolls over.
func (s *Selector) WeekOptions() []WeekOption {
	monday := dateutil.MondayOfWeek(s.clock.Now())

	options := make([]WeekOption, 0, OptionCount)
	for i := 0; i < OptionCount; i++ {
		weekMonday := monday.AddDate(0, 0, i*7)
		options = append(options, WeekOption{
			Label: fmt.Sprintf("%s - Week %d", s.formatDate(weekMonday), dateutil.ISOWeekNumber(weekMonday)),
			Value: dateutil.ISOWeekString(weekMonday),
		})
	}
	return options
}

// SelectedWeek returns the selected "YYYY-Www" value
func (s *Selector) SelectedWeek() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedWeek
}

// SetSelectedWeek selects week. Values outside WeekOptions are accepted,
// including ones that do not parse; see SelectedMonday.
func (s *Selector) SetSelectedWeek(week string) {
	s.mu.Lock()
	if s.selectedWeek == week {
		s.mu.Unlock()
		return
	}
	s.selectedWeek = week
	key := Key{Week: week, ShowWeekends: s.lastWeekends}
	listeners := append([]func(Key){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("Selected week changed", zap.String("week", week))
	notify(listeners, key)
}

// SelectedMonday returns the Monday of the selected week. A selection that
// is not YYYY-Www falls back to the Monday of the current week.
func (s *Selector) SelectedMonday() time.Time {
	monday, err := s.ResolveSelectedMonday()
	if err != nil {
		s.logger.Debug("Selected week not a valid ISO week",
			zap.String("week", s.SelectedWeek()),
			zap.String("monday", dateutil.FormatDate(monday)),
			zap.Error(err))
	}
	return monday
}

// ResolveSelectedMonday is SelectedMonday for callers that need to know
// whether the selection was valid. The returned Monday is always usable:
// ErrWeekOutOfRange comes with the Monday the week number lands on,
// ErrInvalidWeekFormat with the Monday of the current week.
func (s *Selector) ResolveSelectedMonday() (time.Time, error) {
	return resolveWeek(s.SelectedWeek(), s.clock.Now())
}

// SelectedWeekDates returns the 5 or 7 "YYYY-MM-DD" dates of the selected week
func (s *Selector) SelectedWeekDates() []string {
	return dateutil.WeekdayDates(s.SelectedMonday(), s.weekends.ShowWeekends())
}

// DatesFor returns the dates a key stands for, resolving the week the same
// way as SelectedMonday
func (s *Selector) DatesFor(key Key) []string {
	monday, _ := resolveWeek(key.Week, s.clock.Now())
	return dateutil.WeekdayDates(monday, key.ShowWeekends)
}

// SelectionKey snapshots the inputs of SelectedWeekDates
func (s *Selector) SelectionKey() Key {
	return Key{Week: s.SelectedWeek(), ShowWeekends: s.weekends.ShowWeekends()}
}

// Subscribe registers fn to run after every effective selection change
func (s *Selector) Subscribe(fn func(Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// NotifyWeekendsChanged re-reads the weekend source and notifies
// subscribers if the flag actually flipped.
func (s *Selector) NotifyWeekendsChanged() {
	current := s.weekends.ShowWeekends()

	s.mu.Lock()
	if current == s.lastWeekends {
		s.mu.Unlock()
		return
	}
	s.lastWeekends = current
	key := Key{Week: s.selectedWeek, ShowWeekends: current}
	listeners := append([]func(Key){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("Weekend visibility changed", zap.Bool("show_weekends", current))
	notify(listeners, key)
}

// HasOption reports whether week is one of the current picker entries
func (s *Selector) HasOption(week string) bool {
	for _, opt := range s.WeekOptions() {
		if opt.Value == week {
			return true
		}
	}
	return false
}

func (s *Selector) formatDate(date time.Time) string {
	if s.formatter == nil {
		return dateutil.FormatDate(date)
	}
	return s.formatter.FormatDate(date)
}

func resolveWeek(week string, now time.Time) (time.Time, error) {
	monday, err := dateutil.ParseISOWeek(week, now.Location())
	if errors.Is(err, dateutil.ErrInvalidWeekFormat) {
		return dateutil.MondayOfWeek(now), err
	}
	return monday, err
}

func notify(listeners []func(Key), key Key) {
	for _, fn := range listeners {
		fn(key)
	}
}
