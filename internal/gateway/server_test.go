package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-capture-workers/internal/capture"
	"lead-capture-workers/internal/common/config"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

type memStore struct {
	saved map[string]models.LeadPayload
}

func (m *memStore) Save(_ context.Context, payload models.LeadPayload) error {
	m.saved[payload.CorrelationID] = payload
	return nil
}

func (m *memStore) Get(_ context.Context, correlationID string) (models.LeadPayload, error) {
	p, ok := m.saved[correlationID]
	if !ok {
		return models.LeadPayload{}, commonerrors.NewPayloadNotFoundError(correlationID)
	}
	return p, nil
}

func (m *memStore) Delete(_ context.Context, correlationID string) error {
	delete(m.saved, correlationID)
	return nil
}

type testServer struct {
	server *Server
	store  *memStore
	engine *capture.Engine
}

func newTestServer(t *testing.T) *testServer {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(webhook.Close)

	engine, err := capture.NewEngine(config.CaptureConfig{
		CustomerID:      "cust_test",
		Endpoint:        webhook.URL,
		TransmitTimeout: 5000,
	}, logger.NewTestLogger(), nil)
	require.NoError(t, err)

	store := &memStore{saved: map[string]models.LeadPayload{}}
	server, err := NewServer(engine, store, logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(engine.Flush)
	return &testServer{server: server, store: store, engine: engine}
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCaptureEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, "/v1/capture", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"name": "email", "type": "email", "value": "jane@x.com"},
			{"name": "full_name", "type": "text", "value": "Jane Doe"},
		},
		"source_url": "https://example.com/contact",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp captureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CorrelationID)
	assert.Equal(t, 2, resp.Captured)

	saved, ok := ts.store.saved[resp.CorrelationID]
	require.True(t, ok, "payload persisted for the downstream join")
	assert.Equal(t, []string{"jane@x.com"}, saved.Signals.Email)
	assert.Equal(t, []string{"Jane Doe"}, saved.Signals.Name)
}

func TestCaptureEndpoint_SchemaViolation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, "/v1/capture", map[string]interface{}{
		"source_url": "https://example.com",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PAYLOAD_INVALID", resp["error"])
}

func TestCaptureHTMLEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, "/v1/capture/html", map[string]interface{}{
		"html":         `<form id="f"><input name="email" type="email" value="a@b.com"></form>`,
		"container_id": "f",
		"source_url":   "https://example.com",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp captureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Captured)
}

func TestCaptureHTMLEndpoint_MissingContainer(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, "/v1/capture/html", map[string]interface{}{
		"html":         `<form id="f"></form>`,
		"container_id": "nope",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FIELD_ACCESS_ERROR", resp["error"])
}

func TestCaptureRawEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.post(t, "/v1/capture/raw", map[string]interface{}{
		"signals": map[string]interface{}{
			"email": []string{"manual@x.com"},
		},
		"source_url": "https://example.com",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp captureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	saved := ts.store.saved[resp.CorrelationID]
	assert.Equal(t, []string{"manual@x.com"}, saved.Signals.Email)
	assert.Equal(t, "manual", saved.LeadSource.Type)
	assert.NotNil(t, saved.Signals.Phone, "omitted buckets backfilled")
}

func TestOutboundPayloadSchema(t *testing.T) {
	v, err := newSchemaValidator()
	require.NoError(t, err)

	good := models.LeadPayload{
		CorrelationID: "gw_abc",
		CustomerID:    "cust_test",
		Timestamp:     "2026-03-14T03:56:53Z",
		Signals:       models.NewSignals(),
	}
	wire, err := json.Marshal(good)
	require.NoError(t, err)
	assert.NoError(t, validate(v.payload, wire))

	// A nil signal bucket marshals as null and must be rejected.
	bad := good
	bad.Signals.Phone = nil
	wire, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.Error(t, validate(v.payload, wire))
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
