package lintgate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ConfigLoader handles loading, validating, and merging configuration from
// the project's pyproject.toml, the user's global config, and project-level
// config files.
type ConfigLoader struct {
	projectDir string
	homeDir    string
}

// NewConfigLoader creates a loader rooted at the given project directory.
func NewConfigLoader(projectDir string) (*ConfigLoader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	return &ConfigLoader{
		projectDir: abs,
		homeDir:    homeDir,
	}, nil
}

// LoadConfig loads and merges configuration from every known source, in
// precedence order (lowest first):
//
//	defaults, pyproject.toml [tool.lintgate], user global,
//	project .lintgate.json/.lintgate.yaml, project .lintgate.local.json
func (cl *ConfigLoader) LoadConfig() (*AppConfig, error) {
	config := NewAppConfig()

	if err := cl.mergePyproject(config); err != nil {
		return nil, err
	}

	for _, path := range cl.configPaths() {
		if err := cl.loadAndMergeConfig(config, path); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// LoadConfigWithPaths loads configuration from explicit paths only, on top
// of the defaults. Missing paths are an error here, unlike the implicit
// search, because the caller asked for them by name.
func (cl *ConfigLoader) LoadConfigWithPaths(paths []string) (*AppConfig, error) {
	config := NewAppConfig()

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cl.loadAndMergeConfig(config, path); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// configPaths returns the implicit config file locations in merge order.
func (cl *ConfigLoader) configPaths() []string {
	return []string{
		filepath.Join(cl.homeDir, ".config", "lintgate", "lintgate.json"),
		filepath.Join(cl.projectDir, ".lintgate.json"),
		filepath.Join(cl.projectDir, ".lintgate.yaml"),
		filepath.Join(cl.projectDir, ".lintgate.yml"),
		filepath.Join(cl.projectDir, ".lintgate.local.json"),
	}
}

// ConfigPaths returns every path the loader will consult, for diagnostics.
func (cl *ConfigLoader) ConfigPaths() []string {
	paths := []string{filepath.Join(cl.projectDir, "pyproject.toml")}
	return append(paths, cl.configPaths()...)
}

// loadAndMergeConfig loads a single config file and merges it. Files that
// do not exist are skipped silently.
func (cl *ConfigLoader) loadAndMergeConfig(config *AppConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	jsonData := data
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		jsonData, err = yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cl.validate(jsonData, path); err != nil {
		return err
	}

	var fileConfig AppConfig
	if err := json.Unmarshal(jsonData, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.Merge(&fileConfig)
	return nil
}

// validate checks a config document against the embedded schema.
func (cl *ConfigLoader) validate(jsonData []byte, path string) error {
	schema, err := configJSONSchema()
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	result := schema.Validate(doc)
	if !result.IsValid() {
		details := make([]string, 0, len(result.Errors))
		for field, evalErr := range result.Errors {
			details = append(details, fmt.Sprintf("%s: %v", field, evalErr))
		}
		return fmt.Errorf("invalid config file %s: %s", path, strings.Join(details, "; "))
	}

	return nil
}

// yamlToJSON converts a YAML document into JSON so the same schema and
// struct tags apply to both formats.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML rewrites map[interface{}]interface{} trees into
// map[string]interface{} so they survive JSON marshaling.
func normalizeYAML(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for k, item := range value {
			value[k] = normalizeYAML(item)
		}
		return value
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, item := range value {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		for i, item := range value {
			value[i] = normalizeYAML(item)
		}
		return value
	default:
		return v
	}
}

// pyprojectFile models the slice of pyproject.toml lintgate reads.
type pyprojectFile struct {
	Tool struct {
		Lintgate *pyprojectConfig `toml:"lintgate"`
	} `toml:"tool"`
}

// pyprojectConfig is the [tool.lintgate] table. It intentionally covers the
// project-shape settings only; checker configuration stays in the JSON/YAML
// files where raw per-checker documents are representable.
type pyprojectConfig struct {
	VenvPath *string  `toml:"venv-path"`
	Gate     []string `toml:"gate"`
	Timeout  *string  `toml:"timeout"`
}

// mergePyproject merges [tool.lintgate] from the project's pyproject.toml.
func (cl *ConfigLoader) mergePyproject(config *AppConfig) error {
	path := filepath.Join(cl.projectDir, "pyproject.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	var file pyprojectFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if file.Tool.Lintgate == nil {
		return nil
	}

	overlay := &AppConfig{
		VenvPath: file.Tool.Lintgate.VenvPath,
		Gate:     file.Tool.Lintgate.Gate,
	}
	if file.Tool.Lintgate.Timeout != nil {
		d := &Duration{}
		if err := d.UnmarshalJSON([]byte(fmt.Sprintf("%q", *file.Tool.Lintgate.Timeout))); err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", path, err)
		}
		overlay.Timeout = d
	}

	config.Merge(overlay)
	return nil
}
