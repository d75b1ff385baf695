// internal/gateway/schema.go
package gateway

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "lead-capture-workers/internal/common/errors"
)

// Request schemas are validated before any capture logic runs, so malformed
// clients get a 400 with field-level detail instead of a half-captured lead.
const captureRequestSchema = `{
	"type": "object",
	"required": ["fields"],
	"properties": {
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"id": {"type": "string"},
					"type": {"type": "string"},
					"placeholder": {"type": "string"},
					"label": {"type": "string"},
					"value": {"type": "string"},
					"disabled": {"type": "boolean"}
				}
			}
		},
		"source_url": {"type": "string"},
		"referrer": {"type": "string"},
		"trigger_type": {"type": "string"},
		"utm_params": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

const htmlCaptureRequestSchema = `{
	"type": "object",
	"required": ["html"],
	"properties": {
		"html": {"type": "string", "minLength": 1},
		"container_id": {"type": "string"},
		"source_url": {"type": "string"},
		"referrer": {"type": "string"},
		"trigger_type": {"type": "string"},
		"utm_params": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

const rawCaptureRequestSchema = `{
	"type": "object",
	"required": ["signals"],
	"properties": {
		"signals": {
			"type": "object",
			"properties": {
				"name": {"type": "array", "items": {"type": "string"}},
				"email": {"type": "array", "items": {"type": "string"}},
				"phone": {"type": "array", "items": {"type": "string"}},
				"message": {"type": "array", "items": {"type": "string"}}
			}
		},
		"source_url": {"type": "string"},
		"referrer": {"type": "string"},
		"trigger_type": {"type": "string"}
	}
}`

// The outbound payload is checked once more before it leaves the gateway.
// The four signal keys must be present as arrays, never null; downstream
// normalization keys off presence.
const leadPayloadSchema = `{
	"type": "object",
	"required": ["correlation_id", "customer_id", "timestamp", "signals"],
	"properties": {
		"correlation_id": {"type": "string", "pattern": "^gw_"},
		"customer_id": {"type": "string", "minLength": 1},
		"source_url": {"type": "string"},
		"timestamp": {"type": "string", "minLength": 1},
		"signals": {
			"type": "object",
			"required": ["name", "email", "phone", "message"],
			"properties": {
				"name": {"type": "array", "items": {"type": "string"}},
				"email": {"type": "array", "items": {"type": "string"}},
				"phone": {"type": "array", "items": {"type": "string"}},
				"message": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

type schemaValidator struct {
	capture *gojsonschema.Schema
	html    *gojsonschema.Schema
	raw     *gojsonschema.Schema
	payload *gojsonschema.Schema
}

func newSchemaValidator() (*schemaValidator, error) {
	capture, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(captureRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile capture schema: %w", err)
	}
	html, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(htmlCaptureRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile html schema: %w", err)
	}
	raw, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rawCaptureRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("compile raw schema: %w", err)
	}
	payload, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(leadPayloadSchema))
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &schemaValidator{capture: capture, html: html, raw: raw, payload: payload}, nil
}

func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return commonerrors.NewPayloadInvalidError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return commonerrors.NewPayloadInvalidError(strings.Join(details, "; "))
}
