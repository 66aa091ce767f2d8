package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("builds a console logger", func(t *testing.T) {
		log, err := New(&Config{Level: "debug", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("builds a json logger", func(t *testing.T) {
		log, err := New(&Config{Level: "warn", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		log, err := New(nil)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, err := New(&Config{Level: "loud", Format: "json", Output: "stdout"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown log level")
	})

	t.Run("logs to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "facturio.log")

		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("invoice issued",
			zap.String("document_number", "FAC-2026-0042"),
			zap.String("status", "sent"),
		)
		require.NoError(t, log.Sync())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &entry))
		assert.Equal(t, "invoice issued", entry["msg"])
		assert.Equal(t, "FAC-2026-0042", entry["document_number"])
		assert.Equal(t, "sent", entry["status"])
	})

	t.Run("unwritable file path is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "facturio.log")
		_, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.Error(t, err)
	})
}

func TestDefaultAndProductionConfig(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "stdout", dev.Output)
	assert.Equal(t, time.RFC3339, dev.TimeFormat)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "info", prod.Level)
	assert.Equal(t, "stdout", prod.Output)
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"production", "Production", "development", "staging", ""} {
		log, err := NewForEnvironment(env)
		require.NoError(t, err, env)
		require.NotNil(t, log, env)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: "info", want: zapcore.InfoLevel},
		{input: "INFO", want: zapcore.InfoLevel},
		{input: " warn ", want: zapcore.WarnLevel},
		{input: "warning", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "fatal", want: zapcore.FatalLevel},
		{input: "", want: zapcore.InfoLevel},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEncoder(t *testing.T) {
	t.Run("console format", func(t *testing.T) {
		enc := buildEncoder(&Config{Format: "console"})
		buf, err := enc.EncodeEntry(zapcore.Entry{
			Level:   zapcore.InfoLevel,
			Time:    time.Now(),
			Message: "quote accepted",
		}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "quote accepted")
	})

	t.Run("json format with custom time layout", func(t *testing.T) {
		enc := buildEncoder(&Config{Format: "json", TimeFormat: "2006-01-02"})
		buf, err := enc.EncodeEntry(zapcore.Entry{
			Level:   zapcore.InfoLevel,
			Time:    time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
			Message: "payment recorded",
		}, nil)
		require.NoError(t, err)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "payment recorded", entry["msg"])
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "2026-03-15", entry["time"])
	})
}

func TestOpenSink(t *testing.T) {
	t.Run("standard streams", func(t *testing.T) {
		for _, output := range []string{"stdout", "stderr", ""} {
			sink, err := openSink(output)
			require.NoError(t, err, output)
			assert.NotNil(t, sink, output)
		}
	})

	t.Run("file sink appends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sweep.log")

		sink, err := openSink(path)
		require.NoError(t, err)
		_, err = sink.Write([]byte("overdue sweep started\n"))
		require.NoError(t, err)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "overdue sweep started")
	})
}

func TestSync(t *testing.T) {
	assert.NoError(t, Sync(nil))

	path := filepath.Join(t.TempDir(), "sync.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	log.Info("shutting down")
	assert.NoError(t, Sync(log))
}
