package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/taskqa/internal/models"
	"github.com/spboyer/taskqa/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// outputSchema is the compiled JSON Schema for assistant outputs.
var outputSchema *jsonschema.Schema

func init() {
	outputSchema = mustCompileSchema(schemas.AssistantOutputSchemaJSON, "assistant_output.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Result is the outcome of validating one assistant output.
type Result struct {
	OK     bool
	Output *models.AssistantOutput
	// Errors describes why validation failed, one entry per violated rule.
	Errors []string
}

// ValidateAssistantOutput parses raw as JSON and checks it against the
// assistant output schema. Malformed input is reported in the result, never
// returned as an error.
func ValidateAssistantOutput(raw string) Result {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Result{Errors: []string{fmt.Sprintf("JSON parse error: %v", err)}}
	}

	if errs := validateAgainstSchema(outputSchema, doc); len(errs) > 0 {
		return Result{Errors: errs}
	}

	var out models.AssistantOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Result{Errors: []string{fmt.Sprintf("decode error: %v", err)}}
	}

	return Result{OK: true, Output: &out}
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
