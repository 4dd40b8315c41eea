package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/config.yaml
var configSchemaYAML []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		jsonBytes, err := yamlToJSON(configSchemaYAML)
		if err != nil {
			schemaErr = fmt.Errorf("failed to convert config schema: %v", err)
			return
		}
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	})
	return schema, schemaErr
}

// yamlToJSON converts YAML (or JSON, which YAML accepts) into JSON bytes.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}

// ValidateConfig validates raw configuration data (YAML or JSON) against the
// embedded schema
func ValidateConfig(configData []byte) error {
	jsonBytes, err := yamlToJSON(configData)
	if err != nil {
		return fmt.Errorf("%w: failed to parse configuration: %v", ErrInvalidConfig, err)
	}
	return validateJSON(jsonBytes)
}

// ValidateTOMLConfig validates raw TOML configuration data against the
// embedded schema
func ValidateTOMLConfig(configData []byte) error {
	jsonBytes, err := tomlToJSON(configData)
	if err != nil {
		return fmt.Errorf("%w: failed to parse TOML configuration: %v", ErrInvalidConfig, err)
	}
	return validateJSON(jsonBytes)
}

// tomlToJSON converts a TOML document into JSON bytes.
func tomlToJSON(data []byte) ([]byte, error) {
	doc := map[string]interface{}{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func validateJSON(jsonBytes []byte) error {
	s, err := loadSchema()
	if err != nil {
		return fmt.Errorf("%w: failed to load schema: %v", ErrInvalidConfig, err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return fmt.Errorf("%w: schema validation error: %v", ErrInvalidConfig, err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errors, "; "))
	}
	return nil
}

// ValidateFile validates the configuration file at path, decoding it by
// extension
func ValidateFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from --config or config discovery
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = ValidateTOMLConfig(data)
	case ".yaml", ".yml", ".json":
		err = ValidateConfig(data)
	default:
		err = fmt.Errorf("%w: unsupported config file type %q (want yaml, yml, json or toml)", ErrInvalidConfig, ext)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
