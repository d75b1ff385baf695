package capture

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-capture-workers/internal/common/config"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

type ingestRecorder struct {
	mu       sync.Mutex
	payloads []models.LeadPayload
	srv      *httptest.Server
}

func newIngestRecorder(t *testing.T) *ingestRecorder {
	rec := &ingestRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.LeadPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, p)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *ingestRecorder) received() []models.LeadPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LeadPayload, len(r.payloads))
	copy(out, r.payloads)
	return out
}

func testCaptureConfig(endpoint string) config.CaptureConfig {
	return config.CaptureConfig{
		CustomerID:      "cust_test",
		Endpoint:        endpoint,
		TransmitTimeout: 5000,
	}
}

func TestNewEngine_MissingConfigIsFatal(t *testing.T) {
	_, err := NewEngine(config.CaptureConfig{Endpoint: "http://x"}, logger.NewTestLogger(), nil)
	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeConfigurationMissing, stdErr.Code)
	assert.Equal(t, "capture.customer_id", stdErr.Details)

	_, err = NewEngine(config.CaptureConfig{CustomerID: "c"}, logger.NewTestLogger(), nil)
	require.Error(t, err)
	stdErr, ok = err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, "capture.endpoint", stdErr.Details)
}

func TestInit_Idempotent(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	cfg := testCaptureConfig("http://127.0.0.1:1")
	first, err := Init(cfg, logger.NewTestLogger(), nil)
	require.NoError(t, err)

	second, err := Init(cfg, logger.NewTestLogger(), nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCaptureForm_EndToEnd(t *testing.T) {
	rec := newIngestRecorder(t)
	engine, err := NewEngine(testCaptureConfig(rec.srv.URL), logger.NewTestLogger(), nil)
	require.NoError(t, err)

	payload := engine.CaptureForm([]Field{
		{Name: "full_name", Type: "text", Value: "Jane Doe"},
		{Name: "email", Type: "email", Value: "jane@x.com"},
		{Name: "notes", Type: "text", Value: "Urgent, Tier-1"},
	}, SubmissionContext{
		SourceURL: "https://example.com/contact",
		Referrer:  "https://google.com",
	})
	engine.Flush()

	assert.Equal(t, "cust_test", payload.CustomerID)
	assert.Equal(t, "form_submit", payload.LeadSource.Type)
	assert.Equal(t, []string{"Jane Doe"}, payload.Signals.Name)
	assert.Equal(t, []string{"jane@x.com"}, payload.Signals.Email)
	assert.Equal(t, []string{"notes: Urgent, Tier-1"}, payload.Signals.Message)

	_, perr := time.Parse(time.RFC3339, payload.Timestamp)
	assert.NoError(t, perr)

	got := rec.received()
	require.Len(t, got, 1)
	assert.Equal(t, payload.CorrelationID, got[0].CorrelationID)
	assert.Equal(t, payload.Signals, got[0].Signals)
}

func TestCaptureRaw_ManualTrigger(t *testing.T) {
	rec := newIngestRecorder(t)
	engine, err := NewEngine(testCaptureConfig(rec.srv.URL), logger.NewTestLogger(), nil)
	require.NoError(t, err)

	payload := engine.CaptureRaw(models.Signals{
		Email: []string{"lead@x.com"},
	}, SubmissionContext{SourceURL: "https://example.com"})
	engine.Flush()

	assert.Equal(t, "manual", payload.LeadSource.Type)
	assert.Equal(t, []string{"lead@x.com"}, payload.Signals.Email)
	// Buckets the caller omitted are backfilled, never null.
	assert.NotNil(t, payload.Signals.Name)
	assert.NotNil(t, payload.Signals.Phone)
	assert.NotNil(t, payload.Signals.Message)

	// Manual captures still leave an audit trail.
	require.Len(t, payload.RawFields, 1)
	assert.Equal(t, "manual", payload.RawFields[0].Type)
	assert.Equal(t, "email", payload.RawFields[0].InferredAs)
	assert.Equal(t, "lead@x.com", payload.RawFields[0].Value)

	require.Len(t, rec.received(), 1)
}

func TestCaptureForm_CompletionCallback(t *testing.T) {
	rec := newIngestRecorder(t)
	done := make(chan string, 1)
	engine, err := NewEngine(testCaptureConfig(rec.srv.URL), logger.NewTestLogger(),
		func(id string, err error) {
			assert.NoError(t, err)
			done <- id
		})
	require.NoError(t, err)

	payload := engine.CaptureForm([]Field{
		{Name: "email", Type: "email", Value: "a@b.com"},
	}, SubmissionContext{})

	select {
	case id := <-done:
		assert.Equal(t, payload.CorrelationID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
	}
}
