package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/record.schema.json
var recordSchemaJSON string

const recordSchemaURL = "snappr://record.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func recordSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(recordSchemaURL, recordSchemaJSON)
	})
	return schema, schemaErr
}

// validatePayload checks raw JSON against the embedded record schema.
func validatePayload(raw []byte) error {
	s, err := recordSchema()
	if err != nil {
		return wrap(err, "compile record schema")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return wrap(err, "parse payload")
	}
	if err := s.Validate(doc); err != nil {
		return wrap(err, "payload violates record schema")
	}
	return nil
}
