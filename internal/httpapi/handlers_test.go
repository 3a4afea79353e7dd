package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/vault/agents"
	"github.com/s4birli/MindVault/internal/vault/chatclient"
	"github.com/s4birli/MindVault/internal/vault/router"
)

func TestDecodeIngestItems_WrappedShape(t *testing.T) {
	t.Parallel()
	items, err := decodeIngestItems([]byte(`{"items":[{"subject":"a"},{"subject":"b"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Subject)
}

func TestDecodeIngestItems_RawArrayShape(t *testing.T) {
	t.Parallel()
	items, err := decodeIngestItems([]byte(`[{"subject":"a"}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDecodeIngestItems_SingleObjectShape(t *testing.T) {
	t.Parallel()
	items, err := decodeIngestItems([]byte(`{"subject":"solo"}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "solo", items[0].Subject)
}

func TestDecodeIngestItems_InvalidJSONErrors(t *testing.T) {
	t.Parallel()
	_, err := decodeIngestItems([]byte(`not json`))
	require.Error(t, err)
}

func TestParseTime(t *testing.T) {
	t.Parallel()
	_, ok := parseTime("")
	assert.False(t, ok)
	_, ok = parseTime("garbage")
	assert.False(t, ok)
	ts, ok := parseTime("2026-01-01T00:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2026, ts.Year())
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty())
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	s := NewServer(Deps{Env: map[string]any{"environment": "test"}})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
}

func TestHandleIngestGmailExists_MissingHashReturns400(t *testing.T) {
	t.Parallel()
	s := NewServer(Deps{})
	req := httptest.NewRequest(http.MethodHead, "/ingest/gmail/exists?account_id=acct-1", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngestGmailExists_MissingAccountIDWithoutGlobalReturns400(t *testing.T) {
	t.Parallel()
	s := NewServer(Deps{})
	req := httptest.NewRequest(http.MethodHead, "/ingest/gmail/exists?hash=abc", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAgentAct_NoMatchReturnsSoft200(t *testing.T) {
	t.Parallel()
	registry := agents.NewRegistry()
	intentRouter := router.New(chatclient.New(nil), "intent-model", registry.Names())
	s := NewServer(Deps{Agents: registry, Router: intentRouter})

	body := []byte(`{"text":"what's the weather"}`)
	req := httptest.NewRequest(http.MethodPost, "/agent/act", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Nil(t, out["intent"])
}
