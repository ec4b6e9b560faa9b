package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(),
		slog.Group("dcmrmel", slog.String("run", "abc123")))
	log.InfoContext(ctx, "hello", "path", "/tmp/x")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"run":"abc123"`)
	assert.Contains(t, out, `"path":"/tmp/x"`)
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
