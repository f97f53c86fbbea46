package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Defs map[string]struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON and make sure every top-level section is known to the schema
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if def, ok := schema.Defs["Config"]; ok {
		for key := range configMap {
			if _, known := def.Properties[key]; !known {
				return fmt.Errorf("config section %q is not in schema", key)
			}
		}
	}

	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Registry.Path == "" {
		return fmt.Errorf("registry.path is required")
	}
	if cfg.Server.Enabled && cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required when server is enabled")
	}
	if cfg.Probe.Timeout == 0 {
		return fmt.Errorf("probe.timeout is required")
	}
	if cfg.Search.Enabled() {
		if cfg.Search.Timeout == 0 {
			return fmt.Errorf("search.timeout is required when search is enabled")
		}
		if cfg.Search.MaxCandidates < 1 {
			return fmt.Errorf("search.max_candidates must be at least 1")
		}
	}
	if cfg.Schedule.AutoAdd && len(cfg.Maintenance.Keywords) == 0 {
		return fmt.Errorf("maintenance.keywords are required when schedule.auto_add is enabled")
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
