// internal/workers/leadpipeline/deliver-record/handler.go
package deliverrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/common/metrics"
	"lead-capture-workers/internal/models"
	"lead-capture-workers/internal/records"
)

const (
	TaskType = "deliver-record"
)

// Sink interfaces, narrowed for mocking.
type CRMSink interface {
	UpsertFromRecord(ctx context.Context, record models.NormalizedLeadRecord) (string, error)
}

type SearchSink interface {
	IndexRecord(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error
}

type SpamNotifier interface {
	SpamAlert(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error
}

type Handler struct {
	config       *Config
	repo         records.Repository
	crm          CRMSink
	search       SearchSink
	notifier     SpamNotifier
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, repo records.Repository, crm CRMSink, search SearchSink, notifier SpamNotifier, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		repo:         repo,
		crm:          crm,
		search:       search,
		notifier:     notifier,
		logger:       workerLog,
		errorHandler: commonerrors.NewErrorHandler(workerLog),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, commonerrors.NewPayloadInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute fans the record out to the sinks. The Postgres row is the system
// of record and must land; everything after it is best effort except the CRM
// sync for real leads, which fails the job so the workflow can retry it.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.repo.Insert(ctx, input.CorrelationID, input.Record); err != nil {
		metrics.RecordsDelivered.WithLabelValues("postgres", "error").Inc()
		return nil, err
	}
	metrics.RecordsDelivered.WithLabelValues("postgres", "ok").Inc()

	output := &Output{
		CorrelationID: input.CorrelationID,
		Stored:        true,
	}

	if input.Record.Status == "Possible Spam" {
		// Spam goes to a human, not to the CRM. A failed alert is logged
		// rather than failing the job: the record is already stored and a
		// reviewer can still find it there.
		if h.notifier != nil {
			if err := h.notifier.SpamAlert(ctx, input.CorrelationID, input.Record); err != nil {
				h.logger.WithError(err).Warn("spam alert failed", map[string]interface{}{
					"correlationId": input.CorrelationID,
				})
				metrics.RecordsDelivered.WithLabelValues("notify", "error").Inc()
			} else {
				output.SpamAlerted = true
				metrics.RecordsDelivered.WithLabelValues("notify", "ok").Inc()
			}
		}
	} else if h.config.CRMEnabled && h.crm != nil {
		contactID, err := h.crm.UpsertFromRecord(ctx, input.Record)
		if err != nil {
			metrics.RecordsDelivered.WithLabelValues("zoho", "error").Inc()
			return nil, err
		}
		output.CRMContactID = contactID
		metrics.RecordsDelivered.WithLabelValues("zoho", "ok").Inc()
	}

	if h.config.IndexEnabled && h.search != nil {
		if err := h.search.IndexRecord(ctx, input.CorrelationID, input.Record); err != nil {
			h.logger.WithError(err).Warn("search index write failed", map[string]interface{}{
				"correlationId": input.CorrelationID,
			})
			metrics.RecordsDelivered.WithLabelValues("elasticsearch", "error").Inc()
		} else {
			output.Indexed = true
			metrics.RecordsDelivered.WithLabelValues("elasticsearch", "ok").Inc()
		}
	}

	h.logger.Info("record delivered", map[string]interface{}{
		"correlationId": input.CorrelationID,
		"status":        input.Record.Status,
		"crmContactId":  output.CRMContactID,
		"indexed":       output.Indexed,
	})

	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
