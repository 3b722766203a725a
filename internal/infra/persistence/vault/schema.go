package vault

import (
	"bytes"
	"strings"
	"sync"

	domainerrors "casevault/internal/domain/errors"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema is the structural contract of the persisted document.
// It pins the flat layout: entity arrays keyed by id at the top level,
// no nesting. Foreign-key resolution is checked separately in code.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "cases", "people", "financials", "notes", "alerts"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "cases": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "mcn", "name", "status", "person_id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "mcn": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "status": {"enum": ["Active", "Pending", "Closed", "Archived"]},
          "person_id": {"type": "string", "minLength": 1}
        }
      }
    },
    "people": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1}
        }
      }
    },
    "financials": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "case_id", "category", "amount"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "case_id": {"type": "string", "minLength": 1},
          "category": {"enum": ["resources", "income", "expenses"]},
          "amount": {"type": "number", "minimum": 0}
        }
      }
    },
    "notes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "case_id", "content"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "case_id": {"type": "string", "minLength": 1},
          "content": {"type": "string"}
        }
      }
    },
    "alerts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "status"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "status": {"enum": ["Open", "Resolved"]}
        }
      }
    },
    "category_config": {"type": "object"},
    "activity_log": {"type": "array"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			schemaErr = err

			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("casevault-document.json", doc); err != nil {
			schemaErr = err

			return
		}
		compiledSchema, schemaErr = compiler.Compile("casevault-document.json")
	})

	return compiledSchema, schemaErr
}

// validateDocumentBytes checks raw against the document schema.
func validateDocumentBytes(raw []byte) error {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return domainerrors.ErrInvalidDocument.WithDetails("document is not valid JSON")
	}
	if err := schema.Validate(inst); err != nil {
		return domainerrors.ErrInvalidDocument.WithDetails(err.Error())
	}

	return nil
}
