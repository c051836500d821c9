// Package rules loads an optional YAML file overriding the built-in pattern
// library, report keywords and regulatory thresholds.
package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/compliance"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

//go:embed schema.json
var schemaJSON []byte

type ruleSpec struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// File is the decoded rules file.
type File struct {
	Version    string                                         `yaml:"version"`
	Fields     map[patterns.Field][]ruleSpec                  `yaml:"fields"`
	Keywords   map[constants.ReportKind][]patterns.Keyword    `yaml:"keywords"`
	Thresholds map[constants.MonitoringType]entity.Thresholds `yaml:"thresholds"`
}

// Set is what the pipeline is built from.
type Set struct {
	Library    *patterns.Library
	Thresholds compliance.Thresholds
}

// Defaults returns the built-in rules.
func Defaults() Set {
	return Set{Library: patterns.Default(), Thresholds: compliance.DefaultThresholds()}
}

// Load reads path and overlays it on the defaults. An empty path yields the defaults.
func Load(path string, logger *slog.Logger) (Set, error) {
	if path == "" {
		return Defaults(), nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read rules file: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return Set{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	logger.Info("rules loaded", "path", path, "version", set.Library.Version())
	return set, nil
}

// Parse validates YAML data against the embedded schema and builds a Set.
func Parse(data []byte) (Set, error) {
	if err := validate(data); err != nil {
		return Set{}, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Set{}, fmt.Errorf("decode: %w", err)
	}

	version := f.Version
	if version == "" {
		version = patterns.DefaultVersion + "+custom"
	}

	custom := make(map[patterns.Field][]patterns.Rule, len(f.Fields))
	for field, specs := range f.Fields {
		rules := make([]patterns.Rule, 0, len(specs))
		for i, s := range specs {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("%s#%d", field, i+1)
			}
			r, err := patterns.NewRule(name, s.Pattern, patterns.DefaultAccept(field))
			if err != nil {
				return Set{}, err
			}
			rules = append(rules, r)
		}
		custom[field] = rules
	}

	lib := patterns.Default().WithRules(version, custom)
	if len(f.Keywords) > 0 {
		lib = lib.WithKeywords(version, f.Keywords)
	}
	th, err := compliance.DefaultThresholds().Merge(f.Thresholds)
	if err != nil {
		return Set{}, err
	}
	return Set{Library: lib, Thresholds: th}, nil
}

// validate round-trips YAML through JSON so the schema sees plain JSON types.
func validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}
