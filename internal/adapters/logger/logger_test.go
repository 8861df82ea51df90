package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"listing-web/internal/core/port"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	logger.WithFields(port.Fields{"component": "test"}).Info("hello", port.Fields{"page": 2})
	logger.Debug("hidden", nil)
	logger.Error("failed", errors.New("boom"), port.Fields{"status_code": 502})

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "hello", records[0]["msg"])
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "test", records[0]["component"])
	assert.Equal(t, float64(2), records[0]["page"])

	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, "boom", records[1]["error"])
	assert.Equal(t, float64(502), records[1]["status_code"])
}

func TestSlogAdapter_TextAndTint(t *testing.T) {
	var text bytes.Buffer
	NewSlogAdapter(SlogConfig{Writer: &text}).Warn("plain", port.Fields{"b": 1, "a": 2})
	out := text.String()
	assert.Contains(t, out, "msg=plain")
	assert.Less(t, strings.Index(out, "a=2"), strings.Index(out, "b=1"), "fields are sorted by key")

	var colored bytes.Buffer
	NewSlogAdapter(SlogConfig{Writer: &colored, UseColor: true, Level: slog.LevelDebug}).Debug("tinted", nil)
	assert.Contains(t, colored.String(), "tinted")
}

type recordedPost struct {
	tag    string
	record port.Fields
}

type fakeFluent struct {
	posts []recordedPost
	err   error
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.posts = append(f.posts, recordedPost{tag: tag, record: message.(port.Fields)})
	return f.err
}

func TestFluentLoggerAdapter(t *testing.T) {
	client := &fakeFluent{err: errors.New("fluent unavailable")}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)

	scoped := adapter.WithFields(port.Fields{"service_name": "listing-web"})
	scoped.Debug("skipped", nil)
	scoped.Info("started", port.Fields{"port": "8080"})
	scoped.Error("crashed", errors.New("boom"), nil)

	require.Len(t, client.posts, 2)
	assert.Equal(t, "info", client.posts[0].tag)
	assert.Equal(t, "started", client.posts[0].record["message"])
	assert.Equal(t, "listing-web", client.posts[0].record["service_name"])
	assert.Equal(t, "8080", client.posts[0].record["port"])
	assert.NotEmpty(t, client.posts[0].record["timestamp"])

	assert.Equal(t, "error", client.posts[1].tag)
	assert.Equal(t, "boom", client.posts[1].record["error"])

	// родительский логгер не получил поля дочернего
	adapter.Warn("parent", nil)
	assert.NotContains(t, client.posts[2].record, "service_name")
}

func TestNewFluentLoggerAdapter_NilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

type countingLogger struct {
	counts map[string]int
	fields port.Fields
}

func newCountingLogger() *countingLogger {
	return &countingLogger{counts: map[string]int{}, fields: port.Fields{}}
}

func (c *countingLogger) Info(string, port.Fields)         { c.counts["info"]++ }
func (c *countingLogger) Warn(string, port.Fields)         { c.counts["warn"]++ }
func (c *countingLogger) Error(string, error, port.Fields) { c.counts["error"]++ }
func (c *countingLogger) Debug(string, port.Fields)        { c.counts["debug"]++ }
func (c *countingLogger) WithFields(f port.Fields) port.LoggerPort {
	for k, v := range f {
		c.fields[k] = v
	}
	return c
}

func TestMultiloggerAdapter(t *testing.T) {
	a, b := newCountingLogger(), newCountingLogger()
	multi, err := NewMultiloggerAdapter(a, nil, b)
	require.NoError(t, err)

	scoped := multi.WithFields(port.Fields{"component": "x"})
	scoped.Info("i", nil)
	scoped.Warn("w", nil)
	scoped.Error("e", nil, nil)
	scoped.Debug("d", nil)

	for _, l := range []*countingLogger{a, b} {
		assert.Equal(t, map[string]int{"info": 1, "warn": 1, "error": 1, "debug": 1}, l.counts)
		assert.Equal(t, "x", l.fields["component"])
	}

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}
