// internal/capture/capture.go
package capture

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"lead-capture-workers/internal/common/logger"
	"lead-capture-workers/internal/models"
)

// CaptureResult carries the two parallel views of one submission: the
// lossless audit trail of every observed field, and the routed semantic
// signals the downstream pipeline consumes.
type CaptureResult struct {
	Observations []models.FieldObservation
	Signals      models.Signals
}

// Orchestrator walks the observed fields of a submission, applies the
// exclusion rules, classifies what remains and routes values into signal
// buckets. It never mutates its input.
type Orchestrator struct {
	classifier *Classifier
	logger     logger.Logger
	debug      bool
}

func NewOrchestrator(classifier *Classifier, log logger.Logger, debug bool) *Orchestrator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Orchestrator{classifier: classifier, logger: log, debug: debug}
}

// Capture processes the fields of one submission.
//
// Exclusions come first and are absolute: password inputs, disabled inputs
// and fields with an empty trimmed value appear nowhere in the output, not
// even in the audit trail. Hidden fields are recorded in the audit trail but
// contribute no signal. Every other field is classified and its value routed:
// email, phone and name go into their buckets verbatim; message fields push
// the raw value; unknown fields are preserved as "label: value" in the
// message bucket so no user-entered data is dropped.
func (o *Orchestrator) Capture(fields []Field) CaptureResult {
	result := CaptureResult{
		Observations: []models.FieldObservation{},
		Signals:      models.NewSignals(),
	}

	for _, f := range fields {
		if f.Type == "password" || f.Disabled {
			continue
		}
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}

		category := o.classifier.Classify(f)

		result.Observations = append(result.Observations, models.FieldObservation{
			Name:       f.Name,
			Type:       f.Type,
			Label:      f.Label,
			Value:      value,
			InferredAs: string(category),
		})

		switch category {
		case CategoryEmail:
			result.Signals.Email = append(result.Signals.Email, value)
		case CategoryPhone:
			result.Signals.Phone = append(result.Signals.Phone, value)
		case CategoryName:
			result.Signals.Name = append(result.Signals.Name, value)
		case CategoryMessage:
			result.Signals.Message = append(result.Signals.Message, value)
		case CategoryUnknown:
			result.Signals.Message = append(result.Signals.Message, fieldLabel(f)+": "+value)
		case CategoryHidden:
			// audit trail only
		}

		if o.debug {
			o.logger.Debug("field captured", map[string]interface{}{
				"field":       f.Name,
				"inferred_as": string(category),
			})
		}
	}

	return result
}

func fieldLabel(f Field) string {
	if f.Label != "" {
		return f.Label
	}
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// NewCorrelationID returns a fresh submission identifier. UUIDs are the
// normal path; if the random source fails the fallback derives an id from
// the clock plus a pseudo-random suffix, which is unique enough for join
// purposes within a deployment.
func NewCorrelationID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "gw_" + strconv.FormatInt(time.Now().UnixMilli(), 36) +
			strconv.FormatInt(rand.Int63n(1<<31), 36)
	}
	return "gw_" + id.String()
}
