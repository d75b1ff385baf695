// internal/capture/payload.go
package capture

import (
	"time"

	"lead-capture-workers/internal/models"
)

// PayloadBuilder assembles the wire payload for one submission. The clock is
// injectable so the build-time timestamp is testable.
type PayloadBuilder struct {
	customerID string
	now        func() time.Time
}

func NewPayloadBuilder(customerID string) *PayloadBuilder {
	return &PayloadBuilder{customerID: customerID, now: time.Now}
}

// WithClock overrides the timestamp source. Tests only.
func (b *PayloadBuilder) WithClock(now func() time.Time) *PayloadBuilder {
	b.now = now
	return b
}

// SubmissionContext is the page-level metadata accompanying one capture.
type SubmissionContext struct {
	SourceURL   string
	Referrer    string
	TriggerType string
	UTMParams   map[string]string
}

// Build stamps the payload at build time, in UTC, RFC 3339. The raw field
// observations ride along so the audit trail survives transport.
func (b *PayloadBuilder) Build(correlationID string, sub SubmissionContext, result CaptureResult) models.LeadPayload {
	return models.LeadPayload{
		CorrelationID: correlationID,
		CustomerID:    b.customerID,
		SourceURL:     sub.SourceURL,
		Timestamp:     b.now().UTC().Format(time.RFC3339),
		LeadSource: models.LeadSource{
			Referrer:  sub.Referrer,
			Type:      sub.TriggerType,
			UTMParams: sub.UTMParams,
		},
		Signals:   result.Signals,
		RawFields: result.Observations,
	}
}
