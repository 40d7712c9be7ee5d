package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const scoreSchema = `{"type": "number", "minimum": 0, "maximum": 100}`

var biasReportSchema = mustSchema(`{
	"type": "object",
	"required": ["bias_analysis"],
	"properties": {
		"bias_analysis": {
			"type": "object",
			"required": ["overall_bias_score"],
			"properties": {
				"overall_bias_score": ` + scoreSchema + `,
				"bias_free_score": ` + scoreSchema + `,
				"gender_bias": {"type": "object", "properties": {"score": ` + scoreSchema + `}},
				"age_bias": {"type": "object", "properties": {"score": ` + scoreSchema + `}},
				"location_bias": {"type": "object", "properties": {"score": ` + scoreSchema + `}},
				"education_bias": {"type": "object", "properties": {"score": ` + scoreSchema + `}},
				"bias_recommendations": {"type": "array", "items": {"type": "string"}}
			}
		},
		"removed_personal_info": {
			"type": "object",
			"additionalProperties": {"type": "array", "items": {"type": "string"}}
		},
		"blind_resume_available": {"type": "boolean"}
	}
}`)

var interviewBundleSchema = mustSchema(`{
	"type": "object",
	"required": ["interview_questions"],
	"properties": {
		"interview_questions": {
			"type": "object",
			"required": ["questions"],
			"properties": {
				"questions": {
					"type": "object",
					"additionalProperties": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"red_flags_analysis": {
			"type": "object",
			"properties": {
				"overall_risk_score": {"type": "number", "minimum": 0, "maximum": 25},
				"risk_level": {"type": "string"},
				"red_flags": {
					"type": "object",
					"additionalProperties": {
						"type": "object",
						"properties": {
							"detected": {"type": "boolean"},
							"severity": {"type": "number", "minimum": 0, "maximum": 5}
						}
					}
				}
			}
		},
		"personality_insights": {
			"type": "object",
			"properties": {
				"dominant_traits": {
					"type": "array",
					"items": {"type": "array", "minItems": 2, "maxItems": 2}
				}
			}
		}
	}
}`)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// validatePayload checks data against schema and returns a readable error on mismatch.
func validatePayload(schema *gojsonschema.Schema, data []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (c *Client) getValidated(ctx context.Context, op, url string, schema *gojsonschema.Schema, target any) error {
	var raw json.RawMessage
	if err := c.getJSON(ctx, op, url, nil, &raw); err != nil {
		return err
	}

	if err := validatePayload(schema, raw); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	return decode(op, raw, target)
}
