// internal/appconfig/schema.go
package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes the shape of the configuration document. Validation
// catches type mistakes (for example a string chunk size) before unmarshal
// silently zeroes them.
const configSchema = `{
  "type": "object",
  "properties": {
    "vaultPath":           {"type": "string"},
    "indexPath":           {"type": "string"},
    "embeddingEndpoint":   {"type": "string"},
    "embeddingModel":      {"type": "string"},
    "chatEndpoint":        {"type": "string"},
    "chatModel":           {"type": "string"},
    "apiKey":              {"type": "string"},
    "systemPrompt":        {"type": "string"},
    "userName":            {"type": "string"},
    "semanticSearch":      {"type": "boolean"},
    "chunkSizeTokens":     {"type": "integer", "minimum": 1},
    "chunkOverlapTokens":  {"type": "integer", "minimum": 0},
    "topK":                {"type": "integer", "minimum": 1},
    "similarityThreshold": {"type": "number", "minimum": 0, "maximum": 1},
    "maxContextTokens":    {"type": "integer", "minimum": 1},
    "allowedExtensions":   {"type": "array", "items": {"type": "string"}},
    "excludeGlobs":        {"type": "array", "items": {"type": "string"}},
    "timeout":             {"type": "integer", "minimum": 1},
    "logFile":             {"type": "string"},
    "debug":               {"type": "boolean"}
  },
  "additionalProperties": true
}`

// ValidateDocument checks a raw configuration document against the config schema.
func ValidateDocument(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
