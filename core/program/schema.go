package program

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const lookupRecordSchemaURL = "https://eox-nelp.local/schemas/program-lookup-record.json"

const lookupRecordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "program_name", "program_code", "training_location", "date_start", "date_start_hijri",
    "date_end", "date_end_hijri", "trainer_type", "type_of_activity", "type_of_activity_id",
    "unit", "duration", "mandatory", "program_approve", "code"
  ],
  "properties": {
    "program_name":        {"type": "string"},
    "program_code":        {"type": "string", "minLength": 1, "maxLength": 64},
    "training_location":   {"const": "FutureX"},
    "date_start":          {"type": "string", "format": "date"},
    "date_start_hijri":    {"type": "string"},
    "date_end":            {"type": ["string", "null"], "format": "date"},
    "date_end_hijri":      {"type": ["string", "null"]},
    "trainer_type":        {"const": 10},
    "type_of_activity":    {"type": "string"},
    "type_of_activity_id": {"type": "integer"},
    "unit":                {"const": "hour"},
    "duration":            {"type": "integer", "minimum": 0},
    "mandatory":           {"enum": ["01", "00"]},
    "program_approve":     {"enum": ["01", "00"]},
    "code":                {"type": "string"}
  }
}`

// RecordValidator checks assembled lookup records before they are exposed.
type RecordValidator struct {
	schema *jsonschema.Schema
}

func NewRecordValidator() (*RecordValidator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true
	if err := c.AddResource(lookupRecordSchemaURL, strings.NewReader(lookupRecordSchema)); err != nil {
		return nil, errors.Wrap(err, "loading lookup record schema")
	}
	schema, err := c.Compile(lookupRecordSchemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "compiling lookup record schema")
	}
	return &RecordValidator{schema: schema}, nil
}

// Validate returns the validation messages of the record keyed by field, nil when it is valid.
func (v *RecordValidator) Validate(record LookupRecord) (map[string][]string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling lookup record")
	}
	var doc interface{}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshalling lookup record")
	}

	err = v.schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	vErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, errors.Wrap(err, "validating lookup record")
	}
	details := make(map[string][]string)
	collectLeafErrors(vErr, details)
	for field := range details {
		sort.Strings(details[field])
	}
	return details, nil
}

func collectLeafErrors(vErr *jsonschema.ValidationError, details map[string][]string) {
	if len(vErr.Causes) == 0 {
		field := strings.TrimPrefix(vErr.InstanceLocation, "/")
		if field == "" {
			field = "non_field_errors"
		}
		details[field] = append(details[field], vErr.Message)
		return
	}
	for _, cause := range vErr.Causes {
		collectLeafErrors(cause, details)
	}
}
