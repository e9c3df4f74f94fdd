// internal/server/validation.go
package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "talent-pipeline/internal/common/errors"
)

const applyRequestSchema = `{
	"type": "object",
	"properties": {
		"candidateId": {"type": "string", "minLength": 1},
		"jobId": {"type": "string", "minLength": 1},
		"coverLetter": {"type": "string", "maxLength": 10000}
	},
	"required": ["candidateId", "jobId"],
	"additionalProperties": false
}`

var applySchemaLoader = gojsonschema.NewStringLoader(applyRequestSchema)

// validateApplyRequest checks the raw request body against the apply schema
// before it is decoded into a typed struct.
func validateApplyRequest(body []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(applySchemaLoader, documentLoader)
	if err != nil {
		return commonerrors.NewValidationError(fmt.Sprintf("malformed request body: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return commonerrors.NewValidationError(strings.Join(errs, "; "))
	}

	return nil
}
