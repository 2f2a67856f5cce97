package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestResponseStatus(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	upgrade := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "WebSocket")

	assert.Equal(t, http.StatusNotFound, responseStatus(http.StatusNotFound, upgrade))
	assert.Equal(t, http.StatusSwitchingProtocols, responseStatus(0, upgrade))
	assert.Equal(t, http.StatusOK, responseStatus(0, plain))
}

func TestRequestLogger_HandlerWithoutWriteHeader(t *testing.T) {
	buf := captureLog(t)
	h := RequestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, http.StatusSwitchingProtocols, line["status"])
	assert.Equal(t, "info", line["level"])
}
