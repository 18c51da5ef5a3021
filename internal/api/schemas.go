// internal/api/schemas.go
package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "github.com/sshreyx1/hot-triage/internal/common/errors"
)

// Inbound bodies are validated at the presence/type level only. An empty
// text still forwards upstream, which rejects it itself.
const parseRequestSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"age": {
			"type": "object",
			"properties": {"value": {"type": "integer", "minimum": 0}},
			"required": ["value"]
		},
		"sex": {"type": "string", "enum": ["male", "female"]}
	},
	"required": ["text"]
}`

const diagnosisRequestSchema = `{
	"type": "object",
	"properties": {
		"sex": {"type": "string", "enum": ["male", "female"]},
		"age": {
			"type": "object",
			"properties": {"value": {"type": "integer", "minimum": 0}},
			"required": ["value"]
		},
		"evidence": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"choice_id": {"type": "string"},
					"source": {"type": "string", "enum": ["initial", "suggest"]}
				},
				"required": ["id", "choice_id"]
			}
		},
		"interview_token": {"type": "string"}
	},
	"required": ["sex", "age"]
}`

var (
	parseSchema     = gojsonschema.NewStringLoader(parseRequestSchema)
	diagnosisSchema = gojsonschema.NewStringLoader(diagnosisRequestSchema)
)

// validateBody checks a raw request body against a schema and converts
// failures into an INVALID_REQUEST error listing every violation.
func validateBody(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return stderrors.NewInvalidRequestError(fmt.Sprintf("malformed JSON body: %v", err))
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return stderrors.NewInvalidRequestError(strings.Join(violations, "; "))
}
