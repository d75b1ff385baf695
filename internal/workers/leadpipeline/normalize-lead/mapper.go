// internal/workers/leadpipeline/normalize-lead/mapper.go
package normalizelead

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lead-capture-workers/internal/models"
)

const (
	statusSpam    = "Possible Spam"
	statusNewLead = "New Lead"

	noPhone     = "No Phone"
	noEmail     = "No Email"
	noName      = "Unknown"
	noDetails   = "No additional metadata captured"
	noReasoning = "N/A"

	defaultSource  = "Direct"
	defaultTrigger = "Standard"
	defaultUTM     = "None"

	// Sortable rendering for "Created at" / "Updated at". The sink binds on
	// this exact shape.
	sortableTimeLayout = "2006-01-02 15:04:05"
)

// Mapper turns a captured payload plus its AI classification into the fixed
// sink-facing record. Aside from "Updated at", mapping the same inputs twice
// yields the same record.
type Mapper struct {
	location *time.Location
	now      func() time.Time
}

// NewMapper builds a mapper rendering "Formatted Time Local" in the given
// timezone. An unknown zone falls back to UTC rather than failing the job.
func NewMapper(timezone string) *Mapper {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Mapper{location: loc, now: time.Now}
}

// WithClock overrides the processing-time source. Tests only.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	m.now = now
	return m
}

// Map applies the fixed normalization policy. Every output field always has
// a value; absence is encoded with the documented placeholder strings, never
// with empty cells.
func (m *Mapper) Map(payload models.LeadPayload, classification models.AIClassification) models.NormalizedLeadRecord {
	createdAt := m.parseCreatedAt(payload.Timestamp)

	return models.NormalizedLeadRecord{
		Name:         mapName(payload.Signals.Name),
		EmailAddress: mapEmail(payload.Signals.Email),
		PhoneNumber:  mapPhone(payload.Signals.Phone),
		LeadDetails:  mapDetails(payload.Signals.Message),
		Status:       mapStatus(classification.Status),
		AIReasoning:  mapReasoning(classification.Reason),

		SubmissionURL: payload.SourceURL,
		LeadSource:    fallback(payload.LeadSource.Referrer, defaultSource),
		TriggerType:   mapTrigger(payload.LeadSource.Type),
		UTMParams:     mapUTM(payload.LeadSource.UTMParams),

		CustomerName:       payload.CustomerID,
		CreatedAt:          createdAt.UTC().Format(sortableTimeLayout),
		FormattedTimeLocal: createdAt.In(m.location).Format("02/01/2006, 15:04:05"),
		UpdatedAt:          m.now().UTC().Format(sortableTimeLayout),
	}
}

// parseCreatedAt keeps the capture-time stamp when it parses; a mangled
// stamp degrades to processing time so the record still sorts sensibly.
func (m *Mapper) parseCreatedAt(stamp string) time.Time {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return t
	}
	return m.now()
}

// mapStatus collapses whatever the AI said into the two statuses the sink
// understands. Any mention of spam flags the record, "SPAM - ignore"
// included.
func mapStatus(status string) string {
	if strings.Contains(strings.ToLower(status), "spam") {
		return statusSpam
	}
	return statusNewLead
}

func mapName(names []string) string {
	joined := strings.TrimSpace(strings.Join(names, " "))
	return fallback(joined, noName)
}

func mapEmail(emails []string) string {
	if len(emails) > 0 && emails[0] != "" {
		return emails[0]
	}
	return noEmail
}

// mapPhone prefixes the number with an apostrophe so spreadsheet sinks keep
// it as text instead of mangling it into a number.
func mapPhone(phones []string) string {
	if len(phones) > 0 && phones[0] != "" {
		return "'" + phones[0]
	}
	return noPhone
}

func mapDetails(messages []string) string {
	joined := strings.TrimSpace(strings.Join(messages, "\n"))
	return fallback(joined, noDetails)
}

func mapReasoning(reason string) string {
	return fallback(strings.TrimSpace(reason), noReasoning)
}

func mapTrigger(triggerType string) string {
	switch triggerType {
	case "", "form_submit":
		return defaultTrigger
	default:
		return triggerType
	}
}

func mapUTM(params map[string]string) string {
	if len(params) == 0 {
		return defaultUTM
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(parts, ", ")
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
