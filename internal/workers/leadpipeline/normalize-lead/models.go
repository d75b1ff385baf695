// internal/workers/leadpipeline/normalize-lead/models.go
package normalizelead

import "lead-capture-workers/internal/models"

type Input struct {
	CorrelationID  string                  `json:"correlationId"`
	Classification models.AIClassification `json:"classification"`
}

type Output struct {
	CorrelationID string                      `json:"correlationId"`
	Record        models.NormalizedLeadRecord `json:"record"`
}
