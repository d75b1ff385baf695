// internal/workers/leadpipeline/extract-ai-response/repair.go
package extractairesponse

import (
	"encoding/json"
	"regexp"
	"strings"

	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

// Models wrap their JSON in markdown fences more often than not.
var fenceRegex = regexp.MustCompile("```json|```")

// RepairAndParse strips markdown fences from the extracted text and parses
// the classification object. The keys arrive with arbitrary casing
// (status/Status, reason/Reason), and Go's unmarshaler would happily match
// either into the same field, so the variants are resolved by exact key
// lookup with lowercase winning ties.
func RepairAndParse(text string) (models.AIClassification, error) {
	cleaned := strings.TrimSpace(fenceRegex.ReplaceAllString(text, ""))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return models.AIClassification{}, commonerrors.NewMalformedAIOutputError(err)
	}

	return models.AIClassification{
		Status: stringKey(fields, "status", "Status"),
		Reason: stringKey(fields, "reason", "Reason"),
	}, nil
}

func stringKey(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
