package dateutil

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2026, 2, 11, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestMondayOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Wednesday returns Monday",
			input:    time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Monday returns same Monday",
			input:    time.Date(2026, 2, 9, 23, 59, 0, 0, time.UTC),
			expected: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Sunday returns previous Monday",
			input:    time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC),
			expected: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Crosses month boundary",
			input:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), // Sunday
			expected: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Crosses year boundary",
			input:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), // Friday
			expected: time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MondayOfWeek(tt.input)

			if !result.Equal(tt.expected) {
				t.Errorf("MondayOfWeek(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"),
					result.Format("2006-01-02 Mon"),
					tt.expected.Format("2006-01-02 Mon"))
			}
		})
	}
}

func TestMondayOfWeek_AlwaysMondayAndIdempotent(t *testing.T) {
	start := time.Date(2024, 12, 1, 15, 0, 0, 0, time.Local)

	for i := 0; i < 800; i++ {
		d := start.AddDate(0, 0, i)
		monday := MondayOfWeek(d)

		if monday.Weekday() != time.Monday {
			t.Fatalf("MondayOfWeek(%s) = %s, not a Monday",
				d.Format("2006-01-02"), monday.Format("2006-01-02 Mon"))
		}
		if again := MondayOfWeek(monday); !again.Equal(monday) {
			t.Fatalf("MondayOfWeek not idempotent for %s: %s != %s",
				d.Format("2006-01-02"), again, monday)
		}
		if monday.Hour() != 0 || monday.Minute() != 0 {
			t.Fatalf("MondayOfWeek(%s) kept time of day: %s", d.Format("2006-01-02"), monday)
		}
	}
}

func TestMondayOfWeek_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// DST starts on Sunday 2026-03-08 in New York
	sunday := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)
	monday := MondayOfWeek(sunday)

	if got := FormatDate(monday); got != "2026-03-02" {
		t.Errorf("MondayOfWeek(%v) = %s, want 2026-03-02", sunday, got)
	}
	if monday.Hour() != 0 {
		t.Errorf("MondayOfWeek(%v) hour = %d, want 0", sunday, monday.Hour())
	}

	dates := WeekdayDates(time.Date(2026, 3, 2, 0, 0, 0, 0, loc), true)
	if dates[6] != "2026-03-08" {
		t.Errorf("WeekdayDates across DST ends at %s, want 2026-03-08", dates[6])
	}
}

func TestISOWeekNumber(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  int
	}{
		{"Jan 1 2026 is a Thursday in week 1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), 1},
		{"Feb 9 2026 Monday", time.Date(2026, 2, 9, 0, 0, 0, 0, time.Local), 7},
		{"Dec 30 2024 belongs to next year's week 1", time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local), 1},
		{"Jan 3 2021 Sunday belongs to week 53", time.Date(2021, 1, 3, 0, 0, 0, 0, time.Local), 53},
		{"Dec 31 2026 in week 53", time.Date(2026, 12, 31, 0, 0, 0, 0, time.Local), 53},
		{"Late evening does not shift the week", time.Date(2026, 2, 15, 23, 59, 59, 0, time.Local), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ISOWeekNumber(tt.input)

			if got != tt.want {
				t.Errorf("ISOWeekNumber(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), got, tt.want)
			}
		})
	}
}

func TestISOWeekNumber_MatchesStdlib(t *testing.T) {
	start := time.Date(2019, 12, 20, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3000; i++ {
		d := start.AddDate(0, 0, i)
		_, want := d.ISOWeek()

		if got := ISOWeekNumber(d); got != want {
			t.Fatalf("ISOWeekNumber(%s) = %d, want %d", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestISOWeekNumber_MondayAgreesWithThursday(t *testing.T) {
	monday := time.Date(2025, 12, 29, 0, 0, 0, 0, time.Local)

	for i := 0; i < 60; i++ {
		m := monday.AddDate(0, 0, i*7)
		th := m.AddDate(0, 0, 3)

		if ISOWeekNumber(m) != ISOWeekNumber(th) {
			t.Errorf("week of Monday %s (%d) != week of Thursday %s (%d)",
				FormatDate(m), ISOWeekNumber(m), FormatDate(th), ISOWeekNumber(th))
		}
	}
}

func TestISOWeekString(t *testing.T) {
	tests := []struct {
		name   string
		monday time.Time
		want   string
	}{
		{"Formats week 7", time.Date(2026, 2, 9, 0, 0, 0, 0, time.Local), "2026-W07"},
		{"Pads single digit weeks", time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local), "2026-W02"},
		{"Year comes from Thursday", time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local), "2025-W01"},
		{"Week 53 stays in its year", time.Date(2026, 12, 28, 0, 0, 0, 0, time.Local), "2026-W53"},
		{"Week 53 of 2020 starts in December", time.Date(2020, 12, 28, 0, 0, 0, 0, time.Local), "2020-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ISOWeekString(tt.monday)

			if got != tt.want {
				t.Errorf("ISOWeekString(%v) = %v, want %v", FormatDate(tt.monday), got, tt.want)
			}
		})
	}
}

func TestISOWeeksInYear(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2020, 53},
		{2021, 52},
		{2025, 52},
		{2026, 53},
		{2027, 52},
	}

	for _, tt := range tests {
		if got := ISOWeeksInYear(tt.year); got != tt.want {
			t.Errorf("ISOWeeksInYear(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestParseISOWeek(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"Week 7 of 2026", "2026-W07", "2026-02-09", nil},
		{"Week 1 starting in previous year", "2025-W01", "2024-12-30", nil},
		{"Week 53 of 2026", "2026-W53", "2026-12-28", nil},
		{"Week 53 of 2020", "2020-W53", "2020-12-28", nil},
		{"Lowercase w", "2026-w07", "", ErrInvalidWeekFormat},
		{"Single digit week", "2026-W7", "", ErrInvalidWeekFormat},
		{"Trailing text", "2026-W07x", "", ErrInvalidWeekFormat},
		{"Empty", "", "", ErrInvalidWeekFormat},
		{"Week 00", "2026-W00", "2025-12-22", ErrWeekOutOfRange},
		{"Week 53 in a 52 week year", "2025-W53", "2025-12-29", ErrWeekOutOfRange},
		{"Week 54", "2026-W54", "2027-01-04", ErrWeekOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISOWeek(tt.input, time.Local)

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseISOWeek(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.want == "" {
				if !got.IsZero() {
					t.Errorf("ParseISOWeek(%q) = %s, want zero time", tt.input, FormatDate(got))
				}
				return
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("ParseISOWeek(%q) unexpected error: %v", tt.input, err)
			}
			if FormatDate(got) != tt.want {
				t.Errorf("ParseISOWeek(%q) = %s, want %s", tt.input, FormatDate(got), tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("ParseISOWeek(%q) = %s, not a Monday", tt.input, got.Format("Mon"))
			}
		})
	}
}

func TestParseISOWeek_RoundTrip(t *testing.T) {
	monday := time.Date(2019, 12, 30, 0, 0, 0, 0, time.Local)

	for i := 0; i < 420; i++ {
		m := monday.AddDate(0, 0, i*7)
		week := ISOWeekString(m)

		parsed, err := ParseISOWeek(week, time.Local)
		if err != nil {
			t.Fatalf("ParseISOWeek(%q) error: %v", week, err)
		}
		if !parsed.Equal(m) {
			t.Fatalf("ParseISOWeek(%q) = %s, want %s", week, FormatDate(parsed), FormatDate(m))
		}
		if back := ISOWeekString(parsed); back != week {
			t.Fatalf("round trip %q -> %q", week, back)
		}
	}
}

func TestWeekdayDates(t *testing.T) {
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.Local)

	t.Run("Monday to Friday by default", func(t *testing.T) {
		want := []string{"2026-02-09", "2026-02-10", "2026-02-11", "2026-02-12", "2026-02-13"}
		got := WeekdayDates(monday, false)
		assertDates(t, got, want)
	})

	t.Run("Monday to Sunday with weekends", func(t *testing.T) {
		want := []string{
			"2026-02-09", "2026-02-10", "2026-02-11", "2026-02-12", "2026-02-13",
			"2026-02-14", "2026-02-15",
		}
		got := WeekdayDates(monday, true)
		assertDates(t, got, want)
	})

	t.Run("Weekend toggle keeps weekdays", func(t *testing.T) {
		short := WeekdayDates(monday, false)
		long := WeekdayDates(monday, true)
		assertDates(t, long[:5], short)
	})

	t.Run("Crosses month and year", func(t *testing.T) {
		want := []string{
			"2026-12-28", "2026-12-29", "2026-12-30", "2026-12-31", "2027-01-01",
			"2027-01-02", "2027-01-03",
		}
		got := WeekdayDates(time.Date(2026, 12, 28, 0, 0, 0, 0, time.Local), true)
		assertDates(t, got, want)
	})

	t.Run("Repeatable", func(t *testing.T) {
		assertDates(t, WeekdayDates(monday, true), WeekdayDates(monday, true))
	})
}

func TestWeekdayLabel(t *testing.T) {
	tests := []struct {
		name  string
		index int
		short bool
		want  string
	}{
		{"Monday", 0, false, "MO"},
		{"Friday", 4, false, "FR"},
		{"Saturday", 5, false, "SA"},
		{"Sunday", 6, false, "SU"},
		{"Monday short", 0, true, "M"},
		{"Friday short", 4, true, "F"},
		// Expected collisions: Tuesday/Thursday and Saturday/Sunday share a letter.
		{"Tuesday short", 1, true, "T"},
		{"Thursday short", 3, true, "T"},
		{"Saturday short", 5, true, "S"},
		{"Sunday short", 6, true, "S"},
		{"Past Sunday", 7, false, ""},
		{"Past Sunday short", 7, true, ""},
		{"Negative", -1, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekdayLabel(tt.index, tt.short); got != tt.want {
				t.Errorf("WeekdayLabel(%d, %v) = %q, want %q", tt.index, tt.short, got, tt.want)
			}
		})
	}
}

func TestFormatAndParseDate(t *testing.T) {
	d := time.Date(2026, 2, 9, 22, 0, 0, 0, time.Local)
	if got := FormatDate(d); got != "2026-02-09" {
		t.Errorf("FormatDate(%v) = %s, want 2026-02-09", d, got)
	}
	if got := FormatDate(time.Date(987, 1, 2, 0, 0, 0, 0, time.UTC)); got != "0987-01-02" {
		t.Errorf("FormatDate pads year: got %s", got)
	}

	parsed, err := ParseDate("2026-02-09", time.Local)
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if !parsed.Equal(time.Date(2026, 2, 9, 0, 0, 0, 0, time.Local)) {
		t.Errorf("ParseDate = %v", parsed)
	}

	if _, err := ParseDate("09.02.2026", time.Local); err == nil {
		t.Error("ParseDate accepted non ISO date")
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  bool
	}{
		{"Saturday is weekend", time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), true},
		{"Sunday is weekend", time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{"Monday is not weekend", time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), false},
		{"Friday is not weekend", time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWeekend(tt.input); got != tt.want {
				t.Errorf("IsWeekend(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), got, tt.want)
			}
		})
	}
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func assertDates(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d dates %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, got[i], want[i])
		}
		if !datePattern.MatchString(got[i]) {
			t.Errorf("dates[%d] = %q is not YYYY-MM-DD", i, got[i])
		}
	}
}
