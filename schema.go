package lintgate

import (
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// configSchema validates lintgate configuration documents before they are
// merged. Unknown top-level keys are rejected so typos fail loudly in CI
// instead of silently running with defaults.
const configSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "target": {"type": "string", "minLength": 1},
    "venvPath": {"type": "string", "minLength": 1},
    "gate": {
      "type": "array",
      "items": {"type": "string", "enum": ["flake8", "ruff", "docs"]}
    },
    "timeout": {"type": ["string", "number"]},
    "parallel": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "maxWorkers": {"type": "integer", "minimum": 1},
        "disableParallel": {"type": "boolean"}
      }
    },
    "checkers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "enabled": {"type": "boolean"},
          "config": {"type": "object"}
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// configJSONSchema compiles the embedded schema once.
func configJSONSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, schemaErr = compiler.Compile([]byte(configSchema))
	})
	return compiledSchema, schemaErr
}
