// internal/capture/engine.go
package capture

import (
	"sync"
	"time"

	"lead-capture-workers/internal/capture/transport"
	"lead-capture-workers/internal/common/config"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/common/metrics"
	"lead-capture-workers/internal/models"
)

// Engine ties the classifier, orchestrator, payload builder and sender into
// the capture entry points. One engine per deployment.
type Engine struct {
	cfg          config.CaptureConfig
	orchestrator *Orchestrator
	builder      *PayloadBuilder
	sender       *transport.Sender
	logger       logger.Logger
}

var (
	initMu     sync.Mutex
	initEngine *Engine
)

// Init builds the process-wide engine. Calling it again is a no-op returning
// the existing engine, so double wiring cannot double-capture.
func Init(cfg config.CaptureConfig, log logger.Logger, onComplete transport.CompletionFunc) (*Engine, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if initEngine != nil {
		return initEngine, nil
	}

	engine, err := NewEngine(cfg, log, onComplete)
	if err != nil {
		return nil, err
	}
	initEngine = engine
	return initEngine, nil
}

// ResetForTest clears the process-wide engine. Tests only.
func ResetForTest() {
	initMu.Lock()
	defer initMu.Unlock()
	initEngine = nil
}

// NewEngine validates the capture configuration and assembles a standalone
// engine. Missing customer id or endpoint is fatal; nothing should be
// captured into the void.
func NewEngine(cfg config.CaptureConfig, log logger.Logger, onComplete transport.CompletionFunc) (*Engine, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if cfg.CustomerID == "" {
		return nil, commonerrors.NewConfigurationMissingError("capture.customer_id")
	}
	if cfg.Endpoint == "" {
		return nil, commonerrors.NewConfigurationMissingError("capture.endpoint")
	}

	classifier := NewClassifier(ClassifierConfig{
		EmailKeywords:   cfg.Classifier.Email,
		PhoneKeywords:   cfg.Classifier.Phone,
		NameKeywords:    cfg.Classifier.Name,
		NameExclusions:  cfg.Classifier.NameExclusions,
		MessageKeywords: cfg.Classifier.Message,
	})

	timeout := time.Duration(cfg.TransmitTimeout) * time.Millisecond
	return &Engine{
		cfg:          cfg,
		orchestrator: NewOrchestrator(classifier, log, cfg.Debug),
		builder:      NewPayloadBuilder(cfg.CustomerID),
		sender:       transport.NewSender(cfg.Endpoint, timeout, log, onComplete),
		logger:       log,
	}, nil
}

// CaptureForm processes one form submission end to end: classify, route,
// build and queue for transmission. The returned payload is what went on
// the wire.
func (e *Engine) CaptureForm(fields []Field, sub SubmissionContext) models.LeadPayload {
	if sub.TriggerType == "" {
		sub.TriggerType = "form_submit"
	}
	result := e.orchestrator.Capture(fields)
	payload := e.builder.Build(NewCorrelationID(), sub, result)

	metrics.CapturesTotal.WithLabelValues(sub.TriggerType).Inc()
	for _, obs := range result.Observations {
		metrics.CaptureFieldsTotal.WithLabelValues(obs.InferredAs).Inc()
	}

	e.logger.Info("form captured", map[string]interface{}{
		"correlation_id": payload.CorrelationID,
		"fields":         len(result.Observations),
		"source_url":     sub.SourceURL,
	})

	e.sender.Send(payload)
	return payload
}

// CaptureRaw is the manual trigger: the caller supplies ready-made signals
// and the engine only stamps, wraps and transmits. Missing signal buckets
// are backfilled so the four keys are always present, and the audit trail
// records one manual observation per supplied value.
func (e *Engine) CaptureRaw(signals models.Signals, sub SubmissionContext) models.LeadPayload {
	if sub.TriggerType == "" {
		sub.TriggerType = "manual"
	}
	normalized := normalizeSignals(signals)
	payload := e.builder.Build(NewCorrelationID(), sub, CaptureResult{
		Observations: manualObservations(normalized),
		Signals:      normalized,
	})

	metrics.CapturesTotal.WithLabelValues(sub.TriggerType).Inc()

	e.logger.Info("raw capture", map[string]interface{}{
		"correlation_id": payload.CorrelationID,
		"source_url":     sub.SourceURL,
	})

	e.sender.Send(payload)
	return payload
}

// manualObservations synthesizes an audit entry for each value handed in
// through the manual trigger, so raw captures are traceable the same way
// form captures are.
func manualObservations(signals models.Signals) []models.FieldObservation {
	obs := []models.FieldObservation{}
	add := func(category string, values []string) {
		for _, v := range values {
			obs = append(obs, models.FieldObservation{
				Name:       category,
				Type:       "manual",
				Label:      category,
				Value:      v,
				InferredAs: category,
			})
		}
	}
	add("name", signals.Name)
	add("email", signals.Email)
	add("phone", signals.Phone)
	add("message", signals.Message)
	return obs
}

// Flush drains in-flight transmissions. Call on shutdown.
func (e *Engine) Flush() {
	e.sender.Flush()
}

func normalizeSignals(s models.Signals) models.Signals {
	if s.Name == nil {
		s.Name = []string{}
	}
	if s.Email == nil {
		s.Email = []string{}
	}
	if s.Phone == nil {
		s.Phone = []string{}
	}
	if s.Message == nil {
		s.Message = []string{}
	}
	return s
}
