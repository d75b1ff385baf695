// internal/models/lead.go
package models

// FieldObservation is one captured input field, exactly as seen on the page.
// Observations are immutable once created and preserved regardless of how the
// field was classified, so no captured value is ever lost.
type FieldObservation struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	InferredAs string `json:"inferred_as"`
}

// Signals groups captured values by inferred semantic category. Multiple
// values per category are kept in encounter order (a form may carry two
// phone-like fields).
//
// All four keys must always be present on the wire, even when empty.
// Downstream normalization keys off presence, not truthiness, so the slices
// must marshal as [] and never as null. Use NewSignals to get a correctly
// initialized value.
type Signals struct {
	Name    []string `json:"name"`
	Email   []string `json:"email"`
	Phone   []string `json:"phone"`
	Message []string `json:"message"`
}

// NewSignals returns a Signals with every category initialized to an empty,
// non-nil slice.
func NewSignals() Signals {
	return Signals{
		Name:    []string{},
		Email:   []string{},
		Phone:   []string{},
		Message: []string{},
	}
}

// LeadSource carries traffic attribution for one submission.
type LeadSource struct {
	Referrer  string            `json:"referrer"`
	Type      string            `json:"type,omitempty"`
	UTMParams map[string]string `json:"utm_params,omitempty"`
}

// LeadPayload is the outbound wire contract POSTed to the automation
// endpoint, and the same document the normalization workers consume later.
type LeadPayload struct {
	CorrelationID string             `json:"correlation_id"`
	CustomerID    string             `json:"customer_id"`
	SourceURL     string             `json:"source_url"`
	Timestamp     string             `json:"timestamp"`
	LeadSource    LeadSource         `json:"lead_source"`
	Signals       Signals            `json:"signals"`
	RawFields     []FieldObservation `json:"raw_fields,omitempty"`
}

// AIClassification is the usable result of the upstream AI classification
// step after defensive parsing. The raw AI output uses arbitrary-cased keys
// (status/Status, reason/Reason); the parser resolves those before anything
// downstream sees the value.
type AIClassification struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
