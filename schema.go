package finsight

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Oracle output is untrusted text. Every JSON payload returned by the
// reasoning oracle is checked against an embedded JSON Schema before it is
// decoded into typed values; malformed payloads fail loudly and are never
// evaluated or partially accepted.

//go:embed schemas/plan.json
var planSchemaJSON string

//go:embed schemas/entities.json
var entitiesSchemaJSON string

var (
	planSchema     *jsonschema.Schema
	entitiesSchema *jsonschema.Schema
)

func init() {
	planSchema = mustCompileSchema("plan.json", planSchemaJSON)
	entitiesSchema = mustCompileSchema("entities.json", entitiesSchemaJSON)
}

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(goerr.Wrap(err, "failed to parse embedded schema", goerr.V("schema", name)))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(goerr.Wrap(err, "failed to add schema resource", goerr.V("schema", name)))
	}

	return compiler.MustCompile(name)
}

// decodeOracleJSON validates raw oracle output against the given schema and
// decodes it into out. Providers occasionally wrap JSON in a markdown code
// fence even when asked not to, so fences are stripped before parsing.
func decodeOracleJSON(schema *jsonschema.Schema, raw string, out any) error {
	cleaned := stripCodeFence(raw)

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return goerr.Wrap(ErrMalformedOutput, "oracle output is not JSON", goerr.V("output", raw))
	}

	if err := schema.Validate(instance); err != nil {
		return goerr.Wrap(ErrMalformedOutput, "oracle output violates schema", goerr.V("cause", err.Error()))
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return goerr.Wrap(ErrMalformedOutput, "failed to decode oracle output")
	}

	return nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
