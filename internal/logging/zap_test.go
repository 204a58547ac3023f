package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZapLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.With("node_id", "n1").Info(context.Background(), "node created", "type", "Article")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"node created"`)
	assert.Contains(t, out, `"node_id":"n1"`)
	assert.Contains(t, out, `"type":"Article"`)
}

func TestNew_SelectsImplementation(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&buf, "zap", "warn")
	require.NoError(t, err)
	_, ok := l.(*ZapLogger)
	assert.True(t, ok)

	l, err = New(&buf, "text", "debug")
	require.NoError(t, err)
	_, ok = l.(*SlogLogger)
	assert.True(t, ok)

	_, err = New(&buf, "xml", "info")
	assert.Error(t, err)

	_, err = New(&buf, "json", "loud")
	assert.Error(t, err)
}
