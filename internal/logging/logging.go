// Package logging sets up the build logger: the log/slog API backed by a
// charmbracelet/log handler, plus canonical field helpers.
package logging

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// New returns a logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Canonical log field names.
const (
	KeyPath     = "path"
	KeySection  = "section"
	KeyTemplate = "template"
	KeyCount    = "count"
	KeyReason   = "reason"
	KeyError    = "error"
)

func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func Section(s string) slog.Attr  { return slog.String(KeySection, s) }
func Template(t string) slog.Attr { return slog.String(KeyTemplate, t) }
func Count(n int) slog.Attr       { return slog.Int(KeyCount, n) }
func Reason(r string) slog.Attr   { return slog.String(KeyReason, r) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
