// internal/workers/leadpipeline/extract-ai-response/extractor.go
package extractairesponse

import (
	"encoding/json"
	"fmt"

	commonerrors "lead-capture-workers/internal/common/errors"
)

// The AI agent's response envelope changed shape across agent versions.
// Both shapes are probed in order; the nested one came first historically
// and still dominates in production.
//
//	{"output": [{"content": [{"text": "..."}]}]}
//	{"content": [{"text": "..."}]}
type nestedEnvelope struct {
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

type flatEnvelope struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// ExtractText pulls the assistant's text out of a raw agent response. When
// neither envelope shape yields a non-empty text the whole submission is
// unprocessable, which is fatal rather than retryable: the same bytes will
// fail the same way every time.
func ExtractText(raw json.RawMessage) (string, error) {
	var nested nestedEnvelope
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested.Output) > 0 && len(nested.Output[0].Content) > 0 {
			if text := nested.Output[0].Content[0].Text; text != "" {
				return text, nil
			}
		}
	}

	var flat flatEnvelope
	if err := json.Unmarshal(raw, &flat); err == nil {
		if len(flat.Content) > 0 {
			if text := flat.Content[0].Text; text != "" {
				return text, nil
			}
		}
	}

	return "", commonerrors.NewExtractionFailedError(
		fmt.Sprintf("no text in either envelope shape (%d bytes)", len(raw)))
}
