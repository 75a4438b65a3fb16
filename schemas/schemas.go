// Package schemas embeds the JSON Schema documents used to validate
// assistant outputs.
package schemas

import _ "embed"

// AssistantOutputSchemaJSON is the schema every assistant message must satisfy:
// an object with an "agendas" string array and a "tasks" array of
// {who, what, when} objects where who/when may be null.
//
//go:embed assistant_output.schema.json
var AssistantOutputSchemaJSON string
