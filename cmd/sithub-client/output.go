package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/username/sithub-client/internal/preferences"
)

// palette holds the colours for one theme
type palette struct {
	header   *color.Color
	selected *color.Color
	ok       *color.Color
	warn     *color.Color
	fail     *color.Color
	muted    *color.Color
}

var (
	lightPalette = palette{
		header:   color.New(color.Bold),
		selected: color.New(color.FgBlue, color.Bold),
		ok:       color.New(color.FgGreen),
		warn:     color.New(color.FgYellow),
		fail:     color.New(color.FgRed),
		muted:    color.New(color.Faint),
	}

	darkPalette = palette{
		header:   color.New(color.FgHiWhite, color.Bold),
		selected: color.New(color.FgHiCyan, color.Bold),
		ok:       color.New(color.FgHiGreen),
		warn:     color.New(color.FgHiYellow),
		fail:     color.New(color.FgHiRed),
		muted:    color.New(color.FgWhite, color.Faint),
	}
)

// printer writes coloured CLI output
type printer struct {
	out io.Writer
	p   palette
}

func newPrinter(out io.Writer, theme preferences.Theme, noColor bool) *printer {
	if out == nil {
		out = os.Stdout
	}
	if noColor || !isTerminal(out) {
		color.NoColor = true
	}
	p := lightPalette
	if theme == preferences.ThemeDark {
		p = darkPalette
	}
	return &printer{out: out, p: p}
}

// isTerminal reports whether out is a terminal. Non-file writers count as
// terminals so tests and pipes configured by the caller keep their setting.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (pr *printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(pr.out, format, a...)
}

func (pr *printer) Println(a ...interface{}) {
	fmt.Fprintln(pr.out, a...)
}

func (pr *printer) Header(s string) string   { return pr.p.header.Sprint(s) }
func (pr *printer) Selected(s string) string { return pr.p.selected.Sprint(s) }
func (pr *printer) OK(s string) string       { return pr.p.ok.Sprint(s) }
func (pr *printer) Warn(s string) string     { return pr.p.warn.Sprint(s) }
func (pr *printer) Fail(s string) string     { return pr.p.fail.Sprint(s) }
func (pr *printer) Muted(s string) string    { return pr.p.muted.Sprint(s) }

// Availability renders an "available/total" count
func (pr *printer) Availability(available, total int) string {
	s := fmt.Sprintf("%d/%d", available, total)
	switch {
	case total == 0:
		return pr.Muted(s)
	case available == 0:
		return pr.Fail(s)
	case available*4 <= total:
		return pr.Warn(s)
	default:
		return pr.OK(s)
	}
}
