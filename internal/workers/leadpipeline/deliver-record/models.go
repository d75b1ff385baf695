// internal/workers/leadpipeline/deliver-record/models.go
package deliverrecord

import "lead-capture-workers/internal/models"

type Input struct {
	CorrelationID string                      `json:"correlationId"`
	Record        models.NormalizedLeadRecord `json:"record"`
}

type Output struct {
	CorrelationID string `json:"correlationId"`
	Stored        bool   `json:"stored"`
	CRMContactID  string `json:"crmContactId,omitempty"`
	Indexed       bool   `json:"indexed"`
	SpamAlerted   bool   `json:"spamAlerted"`
}
