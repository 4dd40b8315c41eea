package manifest

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Schema names known to the registry.
const (
	SchemaSource = "source"
	SchemaTarget = "target"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// registry holds pre-compiled schemas keyed by name.
var registry = make(map[string]*gojsonschema.Schema)

func init() {
	known := map[string]string{
		SchemaSource: "schemas/source.yaml",
		SchemaTarget: "schemas/target.yaml",
	}
	for name, path := range known {
		schema, err := compileYAMLSchema(path)
		if err != nil {
			// Validate reports the missing schema
			continue
		}
		registry[name] = schema
	}
}

// compileYAMLSchema converts a YAML-authored schema to JSON for gojsonschema.
func compileYAMLSchema(path string) (*gojsonschema.Schema, error) {
	schemaBytes, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var schemaData interface{}
	if err := yaml.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
}

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidateBytes checks raw JSON against the named schema. It returns the list of
// violations, which is empty for a conforming document.
func ValidateBytes(raw []byte, schemaName string) ([]ValidationError, error) {
	schema, ok := registry[schemaName]
	if !ok {
		return nil, fmt.Errorf("schema %s not found in registry", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		violations = append(violations, ValidationError{Path: field, Message: verr.Description()})
	}
	return violations, nil
}

func describeViolations(violations []ValidationError) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Path, v.Message))
	}
	return strings.Join(parts, "; ")
}
