// internal/workers/leadpipeline/extract-ai-response/models.go
package extractairesponse

import (
	"encoding/json"

	"lead-capture-workers/internal/models"
)

type Input struct {
	CorrelationID string          `json:"correlationId"`
	AgentOutput   json.RawMessage `json:"agentOutput"`
}

type Output struct {
	CorrelationID  string                  `json:"correlationId"`
	Classification models.AIClassification `json:"classification"`
}
