// Package cli implements the corkboard command-line interface.
//
// Commands open the position store named in corkboard.toml (or by flag),
// run board sessions against it and print lipgloss-styled status lines.
//
// # Commands
//
//   - serve: run the backend HTTP API over a store
//   - seed, items, move: manage the items of a board
//   - place: reconcile stored positions and write corrections back
//   - render: draw a board snapshot as DOT, SVG, PNG or PDF
//   - view: interactive terminal board with drag, stack, pan and zoom
//   - cache: manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Libraries get
// the CLI logger passed in, so their key/value records share one format.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Records carry a short wall-clock
// timestamp ("14:32:01.45") so the steps of one command line up.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
}

// progress times one command step (a load, a placement, a render).
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and a "took" duration in
// milliseconds.
func (p *progress) done(msg string, keyvals ...any) {
	took := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "took", took)...)
}
