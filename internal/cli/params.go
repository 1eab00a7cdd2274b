package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseParams builds query parameters from an optional YAML (or JSON)
// file and key=value flags. Flag values override file values.
//
// Flag values are YAML scalars or flow collections: 30 is an integer,
// 1.5 a float, true a boolean, null is null, [1, 2] a list, {a: 1} a map.
// Quote a value to force a string: name='30'.
func parseParams(file string, flags []string) (map[string]any, error) {
	params := make(map[string]any)

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		var fromFile map[string]any
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parse params file %s: %w", file, err)
		}
		for k, v := range fromFile {
			params[k] = v
		}
	}

	for _, kv := range flags {
		key, raw, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", kv)
		}
		value, err := parseParamValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %s: %w", key, err)
		}
		params[key] = value
	}
	return params, nil
}

func parseParamValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}
