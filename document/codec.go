package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformed is returned for payloads that are not JSON or do not describe
// a document.
var ErrMalformed = errors.New("malformed document")

const schemaURL = "https://flowsmith.dev/schemas/document.json"

const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowsmith.dev/schemas/document.json",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "title": { "type": "string" },
    "isLocked": { "type": "boolean" },
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "connections": {
      "type": "array",
      "items": { "$ref": "#/$defs/connection" }
    },
    "containers": {
      "type": "array",
      "items": { "$ref": "#/$defs/container" }
    },
    "segments": {
      "type": "array",
      "items": { "$ref": "#/$defs/segment" }
    }
  },
  "$defs": {
    "port": {
      "type": "string",
      "enum": ["top", "right", "bottom", "left"]
    },
    "node": {
      "type": "object",
      "required": ["id", "type", "position"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["start-end", "process", "decision", "input-output", "connector"]
        },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          }
        },
        "text": { "type": "string" },
        "segment": { "type": "string" },
        "documents": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "name": { "type": "string" },
              "path": { "type": "string" }
            }
          }
        },
        "linkedFile": { "type": "string" },
        "width": { "type": "number", "minimum": 0 },
        "height": { "type": "number", "minimum": 0 }
      }
    },
    "connection": {
      "type": "object",
      "required": ["id", "from", "to"],
      "properties": {
        "id": { "type": "string" },
        "from": { "type": "string" },
        "to": { "type": "string" },
        "fromPort": { "$ref": "#/$defs/port" },
        "toPort": { "$ref": "#/$defs/port" },
        "decisionType": { "type": "string", "enum": ["yes", "no", ""] }
      }
    },
    "container": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string" },
        "x": { "type": "number" },
        "y": { "type": "number" },
        "width": { "type": "number", "minimum": 0 },
        "height": { "type": "number", "minimum": 0 },
        "color": { "type": "string" },
        "borderColor": { "type": "string" },
        "title": { "type": "string" }
      }
    },
    "segment": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "name": { "type": "string" },
        "color": { "type": "string" }
      }
    }
  }
}`

var documentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(documentSchemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// wireDocument is the on-disk shape. Segments are read when a file carries
// them but never written.
type wireDocument struct {
	Document
	Segments []Segment `json:"segments,omitempty"`
}

// Marshal encodes the persisted fields of doc as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	out := doc.Clone()
	out.Segments = nil
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Unmarshal validates and decodes a persisted document. Optional collections
// default to empty; the returned Segments are nil unless the payload had some.
func Unmarshal(raw []byte) (Document, error) {
	schema, err := documentSchema()
	if err != nil {
		return Document{}, fmt.Errorf("document schema: %w", err)
	}

	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := schema.Validate(value); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var wire wireDocument
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := wire.Document
	if doc.Connections == nil {
		doc.Connections = []Connection{}
	}
	if doc.Containers == nil {
		doc.Containers = []Container{}
	}
	for i := range doc.Nodes {
		if doc.Nodes[i].Segment == "" {
			doc.Nodes[i].Segment = DefaultSegmentID
		}
		if len(doc.Nodes[i].Documents) == 0 {
			doc.Nodes[i].Documents = nil
		}
	}
	if len(wire.Segments) > 0 {
		doc.Segments = withDefaultSegment(wire.Segments)
	}
	return doc, nil
}
