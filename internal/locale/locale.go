// Package locale renders week picker dates the way the user's locale writes
// a numeric date (numeric year, 2-digit month, 2-digit day).
package locale

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DateFormatter formats a calendar date for display
type DateFormatter interface {
	FormatDate(date time.Time) string
}

type numericLayout struct {
	tag    language.Tag
	layout string
}

// The first entry is what the matcher falls back to.
var numericLayouts = []numericLayout{
	{language.Und, "2006-01-02"},
	{language.AmericanEnglish, "01/02/2006"},
	{language.English, "01/02/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "02.01.2006"},
	{language.French, "02/01/2006"},
	{language.Spanish, "02/01/2006"},
	{language.Italian, "02/01/2006"},
	{language.Portuguese, "02/01/2006"},
	{language.Russian, "02.01.2006"},
	{language.Polish, "02.01.2006"},
	{language.Dutch, "02-01-2006"},
	{language.Swedish, "2006-01-02"},
	{language.Japanese, "2006/01/02"},
	{language.Chinese, "2006/01/02"},
	{language.Korean, "2006. 01. 02."},
}

var matcher = newMatcher()

func newMatcher() language.Matcher {
	tags := make([]language.Tag, len(numericLayouts))
	for i, l := range numericLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}

// NumericFormatter formats dates with the numeric layout of a locale
type NumericFormatter struct {
	tag    language.Tag
	layout string
}

// NewNumericFormatter resolves name (BCP 47 like "de-DE" or POSIX like
// "de_DE.UTF-8"). An empty name uses the runtime environment.
func NewNumericFormatter(name string) *NumericFormatter {
	if strings.TrimSpace(name) == "" {
		name = FromEnvironment()
	}

	tag := parseTag(name)
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		index = 0
	}

	return &NumericFormatter{
		tag:    tag,
		layout: numericLayouts[index].layout,
	}
}

// FormatDate implements DateFormatter
func (f *NumericFormatter) FormatDate(date time.Time) string {
	return date.Format(f.layout)
}

// Tag returns the locale the formatter was built for
func (f *NumericFormatter) Tag() language.Tag {
	return f.tag
}

// Layout returns the Go time layout in use
func (f *NumericFormatter) Layout() string {
	return f.layout
}

// FromEnvironment returns the locale name from LC_ALL, LC_TIME or LANG,
// in that order of precedence. Returns "" if none is set.
func FromEnvironment() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func parseTag(name string) language.Tag {
	name = strings.TrimSpace(name)
	// POSIX: language_TERRITORY.codeset@modifier
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "_", "-")

	if name == "" || name == "C" || name == "POSIX" {
		return language.Und
	}

	tag, err := language.Parse(name)
	if err != nil {
		return language.Und
	}
	return tag
}
