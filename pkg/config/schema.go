package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/freeze_config_schema.json
var configSchemaJSON string

const configSchemaURL = "freeze_config_schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(configSchemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add config schema: %w", err)
	}
	return compiler.Compile(configSchemaURL)
})

// validateYAML checks raw YAML against the configuration schema. An empty
// document is valid.
func validateYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	jsonData = bytes.TrimSpace(jsonData)
	if len(jsonData) == 0 || string(jsonData) == "null" {
		return nil
	}

	var instance any
	if err := json.Unmarshal(jsonData, &instance); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if instance == nil {
		return nil
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(instance); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError flattens a schema error into one line per leaf
// cause, each prefixed with the offending JSON path.
func formatValidationError(err error) error {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var lines []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			path := "/" + strings.Join(e.InstanceLocation, "/")
			lines = append(lines, fmt.Sprintf("%s: %s", path, leafMessage(e)))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	sort.Strings(lines)

	return fmt.Errorf("schema validation failed:\n  %s", strings.Join(lines, "\n  "))
}

var messagePrinter = message.NewPrinter(language.English)

func leafMessage(e *jsonschema.ValidationError) string {
	return e.ErrorKind.LocalizedString(messagePrinter)
}
