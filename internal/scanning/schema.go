package scanning

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema accepts the ML Kit text recognition result. Unknown
// properties such as cornerPoints or recognizedLanguages are allowed.
// Nothing is required: absent or null structure decodes to an empty
// document. Only properties present with the wrong type are rejected.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": ["object", "null"],
  "properties": {
    "text": {"type": ["string", "null"]},
    "blocks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": ["string", "null"]},
          "frame": {"$ref": "#/definitions/frame"},
          "lines": {
            "type": ["array", "null"],
            "items": {
              "type": "object",
              "properties": {
                "text": {"type": ["string", "null"]},
                "frame": {"$ref": "#/definitions/frame"}
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "frame": {
      "type": ["object", "null"],
      "properties": {
        "left": {"type": "number"},
        "top": {"type": "number"},
        "width": {"type": "number", "minimum": 0},
        "height": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var compiledDocumentSchema = jsonschema.MustCompileString("document.json", documentSchema)

// ValidateDocument checks raw JSON against the document schema
func ValidateDocument(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshaling document: %w", err)
	}
	if err := compiledDocumentSchema.Validate(v); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}

// DecodeDocument validates data and decodes it into a Document
func DecodeDocument(data []byte) (*Document, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}
