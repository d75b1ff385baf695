// internal/gateway/server.go

// Package gateway is the HTTP front door of the pipeline: it hosts the
// capture engine for server-side callers, persists every payload into the
// join store and exposes health and metrics endpoints.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lead-capture-workers/internal/capture"
	"lead-capture-workers/internal/capture/domscan"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/leadstore"
	"lead-capture-workers/internal/models"
)

const maxRequestBody = 1 << 20 // 1 MiB

type Server struct {
	engine    *capture.Engine
	store     leadstore.Store
	validator *schemaValidator
	logger    logger.Logger
	router    chi.Router
}

func NewServer(engine *capture.Engine, store leadstore.Store, log logger.Logger) (*Server, error) {
	validator, err := newSchemaValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:    engine,
		store:     store,
		validator: validator,
		logger:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/capture", s.handleCapture)
		r.Post("/capture/html", s.handleCaptureHTML)
		r.Post("/capture/raw", s.handleCaptureRaw)
	})

	s.router = r
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type captureRequest struct {
	Fields      []capture.Field   `json:"fields"`
	SourceURL   string            `json:"source_url"`
	Referrer    string            `json:"referrer"`
	TriggerType string            `json:"trigger_type"`
	UTMParams   map[string]string `json:"utm_params"`
}

type htmlCaptureRequest struct {
	HTML        string            `json:"html"`
	ContainerID string            `json:"container_id"`
	SourceURL   string            `json:"source_url"`
	Referrer    string            `json:"referrer"`
	TriggerType string            `json:"trigger_type"`
	UTMParams   map[string]string `json:"utm_params"`
}

type rawCaptureRequest struct {
	Signals     models.Signals `json:"signals"`
	SourceURL   string         `json:"source_url"`
	Referrer    string         `json:"referrer"`
	TriggerType string         `json:"trigger_type"`
}

type captureResponse struct {
	CorrelationID string `json:"correlation_id"`
	Captured      int    `json:"captured_fields"`
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validate(s.validator.capture, body); err != nil {
		s.writeError(w, err)
		return
	}

	var req captureRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}

	payload := s.engine.CaptureForm(req.Fields, capture.SubmissionContext{
		SourceURL:   req.SourceURL,
		Referrer:    req.Referrer,
		TriggerType: req.TriggerType,
		UTMParams:   req.UTMParams,
	})

	s.persist(r.Context(), payload)
	s.writeJSON(w, http.StatusAccepted, captureResponse{
		CorrelationID: payload.CorrelationID,
		Captured:      len(payload.RawFields),
	})
}

func (s *Server) handleCaptureHTML(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validate(s.validator.html, body); err != nil {
		s.writeError(w, err)
		return
	}

	var req htmlCaptureRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}

	fields, err := domscan.ParseFields(req.HTML, req.ContainerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload := s.engine.CaptureForm(fields, capture.SubmissionContext{
		SourceURL:   req.SourceURL,
		Referrer:    req.Referrer,
		TriggerType: req.TriggerType,
		UTMParams:   req.UTMParams,
	})

	s.persist(r.Context(), payload)
	s.writeJSON(w, http.StatusAccepted, captureResponse{
		CorrelationID: payload.CorrelationID,
		Captured:      len(payload.RawFields),
	})
}

func (s *Server) handleCaptureRaw(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := validate(s.validator.raw, body); err != nil {
		s.writeError(w, err)
		return
	}

	var req rawCaptureRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}

	payload := s.engine.CaptureRaw(req.Signals, capture.SubmissionContext{
		SourceURL:   req.SourceURL,
		Referrer:    req.Referrer,
		TriggerType: req.TriggerType,
	})

	s.persist(r.Context(), payload)
	s.writeJSON(w, http.StatusAccepted, captureResponse{
		CorrelationID: payload.CorrelationID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// persist stores the payload for the downstream join. The payload is checked
// against the outbound schema first so a broken contract shows up in the
// gateway logs, not three workers later. Neither a schema miss nor a store
// failure fails the capture: the payload already went to the webhook, and
// losing the join beats losing the lead.
func (s *Server) persist(ctx context.Context, payload models.LeadPayload) {
	if wire, err := json.Marshal(payload); err == nil {
		if verr := validate(s.validator.payload, wire); verr != nil {
			s.logger.WithError(verr).Error("outbound payload violates contract", map[string]interface{}{
				"correlation_id": payload.CorrelationID,
			})
		}
	}
	if err := s.store.Save(ctx, payload); err != nil {
		s.logger.WithError(err).Error("payload store save failed", map[string]interface{}{
			"correlation_id": payload.CorrelationID,
		})
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return nil, false
	}
	return body, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := err.Error()

	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		code = string(stdErr.Code)
		message = stdErr.Message
		switch stdErr.Code {
		case commonerrors.ErrCodePayloadInvalid, commonerrors.ErrCodeFieldAccessError:
			status = http.StatusBadRequest
		case commonerrors.ErrCodeStoreUnavailable:
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("write response failed", nil)
	}
}
