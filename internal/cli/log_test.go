package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name           string
		current        log.Level
		verbose, quiet bool
		want           log.Level
	}{
		{"default keeps info", LogInfo, false, false, LogInfo},
		{"default keeps explicit level", LogError, false, false, LogError},
		{"verbose", LogInfo, true, false, LogDebug},
		{"quiet", LogInfo, false, true, LogError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevel(tt.current, tt.verbose, tt.quiet))
		})
	}
}

func TestAttachLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	ctx := c.attachLogger(context.Background(), true, false)
	l := loggerFromContext(ctx)
	require.Same(t, c.Logger, l)

	l.Debug("querying", "release", "sid", "package", "serde")
	assert.Contains(t, buf.String(), "querying")
	assert.Contains(t, buf.String(), "package=serde")
}

func TestAttachLoggerQuiet(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	l := loggerFromContext(c.attachLogger(context.Background(), false, true))
	startStage(l).done("Classified %d packages", 3)
	l.Warn("caching disabled")
	assert.Empty(t, buf.String())

	l.Error("connect to database")
	assert.Contains(t, buf.String(), "connect to database")
}

func TestStageDone(t *testing.T) {
	var buf bytes.Buffer
	startStage(newLogger(&buf, LogInfo)).done("Classified %d packages", 42)

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Regexp(t, regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `), out)
	assert.Regexp(t, regexp.MustCompile(`Classified 42 packages \(\d+(\.\d+)?m?s\)`), out)
}

func TestLoggerFromContextDefault(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))
}
