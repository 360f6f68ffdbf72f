package curriculum

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidDefinition is returned for curriculum definitions that break the
// structural rules (empty modules, duplicate IDs, blank names).
var ErrInvalidDefinition = errors.New("invalid curriculum definition")

const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["modules"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "modules": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "title", "concepts"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "concepts": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["id", "name"],
              "properties": {
                "id": {"type": "integer", "minimum": 1},
                "name": {"type": "string", "minLength": 1},
                "guide": {"type": "string"},
                "exercises": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["problem", "answer"],
                    "properties": {
                      "problem": {"type": "string", "minLength": 1},
                      "answer": {"type": "integer"}
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(definitionSchema)

// validateDocument checks a decoded YAML document against the definition schema.
func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
}

// Normalize returns a copy of the definition with every human-readable string
// trimmed and in Unicode NFC form.
func Normalize(def Definition) Definition {
	out := def
	out.Name = normalizeText(def.Name)
	out.Modules = make([]ModuleDefinition, len(def.Modules))
	for i, m := range def.Modules {
		m.Title = normalizeText(m.Title)
		m.Description = normalizeText(m.Description)
		concepts := make([]ConceptDefinition, len(m.Concepts))
		for j, c := range m.Concepts {
			c.Name = normalizeText(c.Name)
			c.Guide = norm.NFC.String(c.Guide)
			concepts[j] = c
		}
		m.Concepts = concepts
		out.Modules[i] = m
	}
	return out
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Validate checks the structural rules of a definition.
func Validate(def Definition) error {
	if len(def.Modules) == 0 {
		return fmt.Errorf("%w: no modules", ErrInvalidDefinition)
	}

	modules := make(map[ModuleID]bool, len(def.Modules))
	concepts := make(map[ConceptID]bool)
	for _, m := range def.Modules {
		if modules[m.ID] {
			return fmt.Errorf("%w: duplicate module id %d", ErrInvalidDefinition, m.ID)
		}
		modules[m.ID] = true

		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("%w: module %d has no title", ErrInvalidDefinition, m.ID)
		}
		if len(m.Concepts) == 0 {
			return fmt.Errorf("%w: module %d has no concepts", ErrInvalidDefinition, m.ID)
		}

		for _, c := range m.Concepts {
			if concepts[c.ID] {
				return fmt.Errorf("%w: duplicate concept id %d", ErrInvalidDefinition, c.ID)
			}
			concepts[c.ID] = true

			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("%w: concept %d has no name", ErrInvalidDefinition, c.ID)
			}
			for i, ex := range c.Exercises {
				if strings.TrimSpace(ex.Problem) == "" {
					return fmt.Errorf("%w: concept %d exercise %d has no problem", ErrInvalidDefinition, c.ID, i+1)
				}
			}
		}
	}
	return nil
}
