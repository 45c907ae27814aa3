package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadMetadata reads a flat table of TEI header variables from a .toml,
// .yaml/.yml, or .json file. Non-string scalar values such as a bare
// publication year are converted to strings.
func LoadMetadata(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	raw := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported metadata file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}

	meta := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			meta[key] = v
		case nil:
			meta[key] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("metadata %q must be a scalar", key)
		default:
			meta[key] = fmt.Sprint(v)
		}
	}
	return meta, nil
}

// MergeMetadata returns base overlaid with override. Blank override values
// do not replace base values.
func MergeMetadata(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if strings.TrimSpace(v) == "" {
			if _, ok := out[k]; ok {
				continue
			}
		}
		out[k] = v
	}
	return out
}
