// Package snapshot exchanges the whole note collection as a portable document.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/grove/pkg/core"
)

const schemaURL = "https://grove.dev/schema/import.json"

// importSchema is the minimal shape check: a non-empty array whose first
// element is an object with a string id.
const importSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"prefixItems": [
		{
			"type": "object",
			"required": ["id"],
			"properties": {"id": {"type": "string"}}
		}
	]
}`

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(importSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Export writes records verbatim. JSON output is indented.
func Export(w io.Writer, records []core.NoteRecord, format Format) error {
	if records == nil {
		records = []core.NoteRecord{}
	}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Decode reads a whole artifact and checks its shape. Any failure wraps
// core.ErrImportShapeInvalid.
func Decode(r io.Reader, format Format) ([]core.NoteRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if format == FormatYAML {
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrImportShapeInvalid, err)
		}
	}

	schema, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImportShapeInvalid, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImportShapeInvalid, err)
	}

	var records []core.NoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImportShapeInvalid, err)
	}
	return records, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
