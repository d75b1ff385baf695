package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

func testPayload() models.LeadPayload {
	return models.LeadPayload{
		CorrelationID: "gw_test",
		CustomerID:    "cust_1",
		Signals:       models.NewSignals(),
	}
}

func TestSendSync_Success(t *testing.T) {
	var received models.LeadPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, 5*time.Second, logger.NewTestLogger(), nil)
	err := s.SendSync(context.Background(), testPayload())

	require.NoError(t, err)
	assert.Equal(t, "gw_test", received.CorrelationID)
}

func TestSendSync_Non2xxIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, 5*time.Second, logger.NewTestLogger(), nil)
	err := s.SendSync(context.Background(), testPayload())

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeTransportFailure, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestSendSync_ConnectionRefused(t *testing.T) {
	s := NewSender("http://127.0.0.1:1", time.Second, logger.NewTestLogger(), nil)
	err := s.SendSync(context.Background(), testPayload())

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeTransportFailure, stdErr.Code)
}

func TestSend_InvokesCompletionCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var gotID string
	var gotErr error
	done := make(chan struct{})

	s := NewSender(srv.URL, 5*time.Second, logger.NewTestLogger(), func(id string, err error) {
		mu.Lock()
		gotID, gotErr = id, err
		mu.Unlock()
		close(done)
	})

	s.Send(testPayload())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "gw_test", gotID)
	assert.NoError(t, gotErr)
}

func TestSend_CallbackReceivesFailure(t *testing.T) {
	done := make(chan error, 1)
	s := NewSender("http://127.0.0.1:1", time.Second, logger.NewTestLogger(), func(id string, err error) {
		done <- err
	})

	s.Send(testPayload())

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("completion callback never fired")
	}
}

func TestFlush_WaitsForInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	completed := make(chan struct{})
	s := NewSender(srv.URL, 5*time.Second, logger.NewTestLogger(), func(string, error) {
		close(completed)
	})

	s.Send(testPayload())
	close(release)
	s.Flush()

	select {
	case <-completed:
	case <-time.After(time.Second):
		t.Fatal("Flush returned before the transmission completed")
	}
}
