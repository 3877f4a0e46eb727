package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the diagnostics logger: timestamped, written to w,
// filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel maps --verbose and --quiet onto a level. Neither flag keeps
// current; cobra rejects both together.
func logLevel(current log.Level, verbose, quiet bool) log.Level {
	switch {
	case verbose:
		return LogDebug
	case quiet:
		return LogError
	}
	return current
}

// attachLogger applies the verbosity flags to the CLI logger and stores it
// in the command context for the pipeline stages.
func (c *CLI) attachLogger(ctx context.Context, verbose, quiet bool) context.Context {
	c.SetLogLevel(logLevel(c.Logger.GetLevel(), verbose, quiet))
	return withLogger(ctx, c.Logger)
}

// stage times one step of an audit (load, classify) and reports it once.
type stage struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) *stage {
	return &stage{logger: l, start: time.Now()}
}

// done logs the formatted summary with the elapsed time, e.g.
// "Classified 42 packages (1.234s)".
func (s *stage) done(format string, args ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), elapsed)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger stored by withLogger, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
