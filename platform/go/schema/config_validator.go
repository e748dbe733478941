package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates integration config payloads against the JSON
// Schemas carried by the integration catalog. Compiled schemas are cached.
type ConfigValidator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewConfigValidator returns a validator with an empty schema cache.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the config document matches the integration's schema.
func (v *ConfigValidator) Validate(integrationKey, schemaDefinition, config string) error {
	if strings.TrimSpace(config) == "" {
		return fmt.Errorf("config is required for validation")
	}

	compiled, err := v.getOrCompile(integrationKey, schemaDefinition)
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal([]byte(config), &document); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if err := compiled.Validate(document); err != nil {
		return fmt.Errorf("config validation for %s: %w", integrationKey, err)
	}

	return nil
}

// ValidateSeeds checks every integration seed's default config against its
// declared schema. Run by the provisioner before seeding and by the registry
// tests, so a malformed catalog entry is caught before any tenant sees it.
func (v *ConfigValidator) ValidateSeeds() error {
	for _, seed := range Seeds() {
		if seed.Table != "integrations" {
			continue
		}
		schemaIdx, configIdx := -1, -1
		for i, col := range seed.Columns {
			switch col {
			case "config_schema":
				schemaIdx = i
			case "default_config":
				configIdx = i
			}
		}
		if schemaIdx < 0 || configIdx < 0 {
			continue
		}
		for _, row := range seed.Rows {
			key, _ := row[0].(string)
			schemaDef, _ := row[schemaIdx].(string)
			config, _ := row[configIdx].(string)
			if err := v.Validate(key, schemaDef, config); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *ConfigValidator) getOrCompile(key, schemaDefinition string) (*jsonschema.Schema, error) {
	cacheKey := "memory://integrations/" + key

	v.mu.RLock()
	compiled, ok := v.cache[cacheKey]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another goroutine may have populated the cache while we were waiting
	if compiled, ok = v.cache[cacheKey]; ok {
		return compiled, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(cacheKey, strings.NewReader(schemaDefinition)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", cacheKey, err)
	}

	newCompiled, err := compiler.Compile(cacheKey)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", cacheKey, err)
	}

	v.cache[cacheKey] = newCompiled
	return newCompiled, nil
}
