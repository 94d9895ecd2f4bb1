package cards

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// cardListSchema describes the card list accepted on input. The identifier
// key is "filename", as printed by `zk list --format json`; "identifier" is
// accepted too. Extra keys are ignored.
const cardListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "filename":   {"type": "string", "minLength": 1},
      "identifier": {"type": "string", "minLength": 1},
      "title":      {"type": "string"},
      "body":       {"type": "string"}
    },
    "required": ["title", "body"],
    "anyOf": [
      {"required": ["filename"]},
      {"required": ["identifier"]}
    ]
  }
}`

const schemaURL = "schema://cards.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// The jsonschema library expects a parsed JSON value (any), not raw bytes.
	var def any
	if err := json.Unmarshal([]byte(cardListSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// validate checks a decoded JSON value against the card list schema.
func validate(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
