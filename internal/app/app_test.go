package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/rockiq/internal/testutil"
)

func TestNewConfig(t *testing.T) {
	t.Run("document path is required", func(t *testing.T) {
		_, err := NewConfig(Config{})
		require.Error(t, err)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		cfg, err := NewConfig(Config{DocumentPath: "./doc.yml"})
		require.NoError(t, err)
		assert.Equal(t, DefaultListen, cfg.Listen)
		assert.Equal(t, DefaultWatchDebounce, cfg.WatchDebounce)
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		cfg, err := NewConfig(Config{DocumentPath: "./doc.yml", Listen: ":9"})
		require.NoError(t, err)
		assert.Equal(t, ":9", cfg.Listen)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("json format at debug level", func(t *testing.T) {
		var buf testutil.SafeBuffer
		logger := newLogger("debug", "json", &buf)
		logger.Debug("Hello.")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(buf.String()), &entry))
		assert.Equal(t, "Hello.", entry["msg"])
		assert.Equal(t, "DEBUG", entry["level"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf testutil.SafeBuffer
		logger := newLogger("shouting", LogFormatText, &buf)
		logger.Debug("Hidden.")
		logger.Info("Shown.")
		assert.NotContains(t, buf.String(), "Hidden.")
		assert.Contains(t, buf.String(), "Shown.")
	})

	t.Run("info level suppresses debug", func(t *testing.T) {
		var buf testutil.SafeBuffer
		logger := newLogger("info", "text", &buf)
		logger.Debug("Hidden.")
		assert.Empty(t, buf.String())
	})
}

func TestAppServesRoutes(t *testing.T) {
	path := testutil.WriteDocument(t, testutil.SampleDocument)
	cfg, err := NewConfig(Config{DocumentPath: path, LogFormat: "json", LogLevel: "info"})
	require.NoError(t, err)

	var out testutil.SafeBuffer
	a := NewApp(&out, cfg)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("graph", func(t *testing.T) {
		w := httptest.NewRecorder()
		a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Len(t, body["nodes"], 3)
	})
}
