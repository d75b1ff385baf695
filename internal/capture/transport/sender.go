// internal/capture/transport/sender.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	commonerrors "lead-capture-workers/internal/common/errors"
	commonhttp "lead-capture-workers/internal/common/http"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

// CompletionFunc is invoked when a transmission finishes. It receives the
// payload's correlation id and the error, nil on success. The callback runs
// on the sender's goroutine.
type CompletionFunc func(correlationID string, err error)

// Sender transmits capture payloads to the ingest endpoint.
//
// Send is fire-and-forget: the transmission is handed to a background
// goroutine on a detached context so it survives the caller's request
// lifecycle, the way a keepalive request survives page unload. The caller
// observes completion only through the injected callback, and a completed
// hand-off is reported as success regardless of the eventual outcome.
type Sender struct {
	endpoint   string
	client     *commonhttp.Client
	logger     logger.Logger
	onComplete CompletionFunc

	wg sync.WaitGroup
}

func NewSender(endpoint string, timeout time.Duration, log logger.Logger, onComplete CompletionFunc) *Sender {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if onComplete == nil {
		onComplete = func(string, error) {}
	}
	return &Sender{
		endpoint:   endpoint,
		client:     commonhttp.NewClient(timeout),
		logger:     log,
		onComplete: onComplete,
	}
}

// Send queues the payload for background transmission and returns
// immediately. The hand-off itself cannot fail.
func (s *Sender) Send(payload models.LeadPayload) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.SendSync(context.Background(), payload)
		if err != nil {
			s.logger.WithError(err).Warn("lead transmission failed", map[string]interface{}{
				"correlation_id": payload.CorrelationID,
			})
		}
		s.onComplete(payload.CorrelationID, err)
	}()
}

// SendSync transmits the payload and waits for the response. Any failure,
// including a non-2xx status, comes back as a transport failure.
func (s *Sender) SendSync(ctx context.Context, payload models.LeadPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return commonerrors.NewTransportFailureError(s.endpoint, err)
	}

	resp, err := s.client.PostJSON(ctx, s.endpoint, body)
	if err != nil {
		return commonerrors.NewTransportFailureError(s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return commonerrors.NewTransportFailureError(s.endpoint,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	s.logger.Debug("lead transmitted", map[string]interface{}{
		"correlation_id": payload.CorrelationID,
		"status":         resp.StatusCode,
	})
	return nil
}

// Flush blocks until every queued transmission has completed. Shutdown path.
func (s *Sender) Flush() {
	s.wg.Wait()
}
