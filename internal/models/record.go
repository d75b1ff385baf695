// internal/models/record.go
package models

// NormalizedLeadRecord is the fixed-schema, sink-facing output of the
// normalization stage. The JSON names (including spaces) are an external
// contract: the destination spreadsheet/CRM binds columns by these exact
// names, so they must never be renamed or reordered.
type NormalizedLeadRecord struct {
	Name         string `json:"Name"`
	EmailAddress string `json:"Email Address"`
	PhoneNumber  string `json:"Phone Number"`
	LeadDetails  string `json:"Lead Details"`
	Status       string `json:"Status"`
	AIReasoning  string `json:"AI Reasoning"`

	// Traffic and attribution
	SubmissionURL string `json:"Submission URL"`
	LeadSource    string `json:"Lead Source"`
	TriggerType   string `json:"Trigger Type"`
	UTMParams     string `json:"UTM Params"`

	// Operational
	CustomerName       string `json:"Customer Name"`
	CreatedAt          string `json:"Created at"`
	FormattedTimeLocal string `json:"Formatted Time Local"`
	UpdatedAt          string `json:"Updated at"`
}
