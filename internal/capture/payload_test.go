package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lead-capture-workers/internal/models"
)

func TestPayloadBuilder_Build(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("IST", 5*3600+1800))
	b := NewPayloadBuilder("cust_42").WithClock(func() time.Time { return fixed })

	result := CaptureResult{
		Observations: []models.FieldObservation{
			{Name: "email", Type: "email", Value: "jane@x.com", InferredAs: "email"},
		},
		Signals: models.NewSignals(),
	}
	result.Signals.Email = append(result.Signals.Email, "jane@x.com")

	payload := b.Build("gw_abc", SubmissionContext{
		SourceURL:   "https://example.com/contact",
		Referrer:    "https://google.com",
		TriggerType: "form_submit",
		UTMParams:   map[string]string{"utm_source": "newsletter"},
	}, result)

	assert.Equal(t, "gw_abc", payload.CorrelationID)
	assert.Equal(t, "cust_42", payload.CustomerID)
	assert.Equal(t, "https://example.com/contact", payload.SourceURL)
	// Timestamp is converted to UTC before formatting.
	assert.Equal(t, "2026-03-14T03:56:53Z", payload.Timestamp)
	assert.Equal(t, "https://google.com", payload.LeadSource.Referrer)
	assert.Equal(t, "form_submit", payload.LeadSource.Type)
	assert.Equal(t, "newsletter", payload.LeadSource.UTMParams["utm_source"])
	assert.Equal(t, []string{"jane@x.com"}, payload.Signals.Email)
	assert.Len(t, payload.RawFields, 1)
}

func TestPayloadBuilder_StampsAtBuildTime(t *testing.T) {
	calls := 0
	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC),
	}
	b := NewPayloadBuilder("c").WithClock(func() time.Time {
		t := times[calls]
		calls++
		return t
	})

	p1 := b.Build("gw_1", SubmissionContext{}, CaptureResult{Signals: models.NewSignals()})
	p2 := b.Build("gw_2", SubmissionContext{}, CaptureResult{Signals: models.NewSignals()})

	assert.Equal(t, "2026-01-01T00:00:00Z", p1.Timestamp)
	assert.Equal(t, "2026-01-01T00:00:05Z", p2.Timestamp)
}
