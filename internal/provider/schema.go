package provider

import (
	"encoding/json"
	"google.golang.org/genai"
	"strings"
)

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema describes the expected shape of a structured completion in a
// backend-neutral way. Backends with native structured output translate it
// to their own schema type; the rest render it into the prompt.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}

// gemini translates the schema for Gemini's native structured output.
func (s *Schema) gemini() *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{ //nolint:exhaustruct // optional fields filled below
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, prop := range s.Properties {
				out.Properties[name] = prop.gemini()
			}
		}
	case TypeArray:
		out.Type = genai.TypeArray
		out.Items = s.Items.gemini()
	case TypeString:
		out.Type = genai.TypeString
	case TypeInteger:
		out.Type = genai.TypeInteger
	case TypeBoolean:
		out.Type = genai.TypeBoolean
	}
	return out
}

// instruction renders the schema as a prompt directive for backends without
// native structured output. The skeleton uses descriptions and enums as
// placeholder values so the model knows what belongs in each field.
func (s *Schema) instruction() string {
	skeleton, err := json.MarshalIndent(s.skeleton(), "", "  ")
	if err != nil {
		// A skeleton of maps, slices and strings always marshals.
		return "Respond with a single JSON object and no prose around it."
	}
	var b strings.Builder
	b.WriteString("Respond with a single JSON ")
	if s.Type == TypeArray {
		b.WriteString("array")
	} else {
		b.WriteString("object")
	}
	b.WriteString(" matching this shape exactly, with no prose or markdown around it:\n")
	b.Write(skeleton)
	return b.String()
}

func (s *Schema) skeleton() any {
	if s == nil {
		return nil
	}
	switch s.Type {
	case TypeObject:
		obj := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			obj[name] = prop.skeleton()
		}
		return obj
	case TypeArray:
		return []any{s.Items.skeleton()}
	case TypeString:
		if len(s.Enum) > 0 {
			return strings.Join(s.Enum, "|")
		}
		if s.Description != "" {
			return s.Description
		}
		return "string"
	case TypeInteger:
		return 0
	case TypeBoolean:
		return false
	default:
		return nil
	}
}
