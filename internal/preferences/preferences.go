// Package preferences persists the client's display preferences (weekend
// visibility, booking mode, theme) behind an injectable Storage.
package preferences

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Storage keys shared with the web client
const (
	KeyShowWeekends = "sithub_show_weekends"
	KeyBookingMode  = "sithub_booking_mode"
	KeyTheme        = "sithub_theme"
)

// BookingMode selects single-day or whole-week booking
type BookingMode string

const (
	BookingModeDay  BookingMode = "day"
	BookingModeWeek BookingMode = "week"
)

// Theme is the colour scheme preference
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var (
	// ErrUnknownBookingMode is returned for modes other than day and week
	ErrUnknownBookingMode = errors.New("booking mode must be 'day' or 'week'")
	// ErrUnknownTheme is returned for themes other than auto, light and dark
	ErrUnknownTheme = errors.New("theme must be 'auto', 'light' or 'dark'")
)

// SafeStorage wraps a possibly unavailable Storage. Failures read as
// "not stored" and writes are dropped; neither reaches the caller.
type SafeStorage struct {
	storage Storage
	logger  *zap.Logger
}

// NewSafeStorage wraps storage, which may be nil
func NewSafeStorage(storage Storage, logger *zap.Logger) *SafeStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SafeStorage{storage: storage, logger: logger}
}

// Available reports whether a backing store is present
func (s *SafeStorage) Available() bool {
	return s.storage != nil
}

// Get returns the stored value, or ok=false when absent or unreadable
func (s *SafeStorage) Get(key string) (value string, ok bool) {
	if s.storage == nil {
		return "", false
	}
	value, ok, err := s.storage.Get(key)
	if err != nil {
		s.logger.Warn("Preference storage unavailable, using default",
			zap.String("key", key),
			zap.Error(err))
		return "", false
	}
	return value, ok
}

// Set stores value, logging and dropping failures
func (s *SafeStorage) Set(key, value string) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Set(key, value); err != nil {
		s.logger.Warn("Failed to persist preference",
			zap.String("key", key),
			zap.String("value", value),
			zap.Error(err))
	}
}

// WeekendPreference is the "show weekends" flag, default false
type WeekendPreference struct {
	storage *SafeStorage
	value   bool
}

// NewWeekendPreference reads the stored flag once
func NewWeekendPreference(storage *SafeStorage) *WeekendPreference {
	stored, _ := storage.Get(KeyShowWeekends)
	return &WeekendPreference{
		storage: storage,
		value:   stored == "true",
	}
}

// ShowWeekends returns the current flag
func (p *WeekendPreference) ShowWeekends() bool {
	return p.value
}

// SetShowWeekends updates the flag and writes it through
func (p *WeekendPreference) SetShowWeekends(show bool) {
	p.value = show
	p.storage.Set(KeyShowWeekends, strconv.FormatBool(show))
}

// BookingModePreference is the day/week booking mode, default day
type BookingModePreference struct {
	storage *SafeStorage
	value   BookingMode
}

// NewBookingModePreference reads the stored mode once
func NewBookingModePreference(storage *SafeStorage) *BookingModePreference {
	stored, _ := storage.Get(KeyBookingMode)
	mode, err := ParseBookingMode(stored)
	if err != nil {
		mode = BookingModeDay
	}
	return &BookingModePreference{storage: storage, value: mode}
}

// Mode returns the current booking mode
func (p *BookingModePreference) Mode() BookingMode {
	return p.value
}

// SetMode updates the mode and writes it through
func (p *BookingModePreference) SetMode(mode BookingMode) error {
	if _, err := ParseBookingMode(string(mode)); err != nil {
		return err
	}
	p.value = mode
	p.storage.Set(KeyBookingMode, string(mode))
	return nil
}

// ParseBookingMode validates a stored or user-supplied mode
func ParseBookingMode(s string) (BookingMode, error) {
	switch BookingMode(s) {
	case BookingModeDay, BookingModeWeek:
		return BookingMode(s), nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrUnknownBookingMode, s)
	}
}

// ThemePreference is the colour theme, default auto
type ThemePreference struct {
	storage *SafeStorage
	value   Theme
}

// NewThemePreference reads the stored theme once
func NewThemePreference(storage *SafeStorage) *ThemePreference {
	stored, _ := storage.Get(KeyTheme)
	theme := ThemeAuto
	if stored == string(ThemeLight) || stored == string(ThemeDark) {
		theme = Theme(stored)
	}
	return &ThemePreference{storage: storage, value: theme}
}

// Theme returns the current theme
func (p *ThemePreference) Theme() Theme {
	return p.value
}

// SetTheme updates the theme and writes it through
func (p *ThemePreference) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	p.value = theme
	p.storage.Set(KeyTheme, string(theme))
	return nil
}

// ParseTheme validates a user-supplied theme
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeAuto, ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrUnknownTheme, s)
	}
}
