// Package config loads quill.yml.
//
// Every key has a default, so a repository without a config file works out
// of the box. Scalar keys can be overridden from the environment with the
// QUILL_ prefix and dots replaced by underscores, e.g. QUILL_SCHEMA_VARIANT=opt.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/simonhull/firebird-suite/quill/internal/generators/docs"
	"github.com/simonhull/firebird-suite/quill/internal/generators/optschema"
	"github.com/simonhull/firebird-suite/quill/internal/types"
)

// FileName is the config file looked up in the working directory.
const FileName = "quill.yml"

// Config is the whole of quill.yml.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	Repo     string         `mapstructure:"repo"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Docs     DocsConfig     `mapstructure:"docs"`
	Validate ValidateConfig `mapstructure:"validate"`

	// Root is the directory relative paths are resolved against: the
	// directory holding the config file, or "." without one.
	Root string `mapstructure:"-"`
	// File is the config file that was read, "" when defaults were used.
	File string `mapstructure:"-"`
}

type SchemaConfig struct {
	OutDir   string                   `mapstructure:"out_dir"`
	BaseURI  string                   `mapstructure:"base_uri"`
	Draft    string                   `mapstructure:"draft"`
	Variant  string                   `mapstructure:"variant"`
	Clean    bool                     `mapstructure:"clean"`
	Variants map[string]VariantConfig `mapstructure:"variants"`
}

// VariantConfig overrides a preset variant or defines a new one. Empty
// values keep the preset's.
type VariantConfig struct {
	RequiredFlag string   `mapstructure:"required_flag"`
	FilterFlag   string   `mapstructure:"filter_flag"`
	PatternKey   string   `mapstructure:"pattern_key"`
	References   string   `mapstructure:"references"`
	EntityTypes  []string `mapstructure:"entity_types"`
	Plan         []string `mapstructure:"plan"`
}

type DocsConfig struct {
	SourceDir string          `mapstructure:"source_dir"`
	OutDir    string          `mapstructure:"out_dir"`
	BuildDir  string          `mapstructure:"build_dir"`
	Files     []string        `mapstructure:"files"`
	HTML      bool            `mapstructure:"html"`
	Clean     bool            `mapstructure:"clean"`
	Projects  []ProjectConfig `mapstructure:"projects"`
	PlantUML  PlantUMLConfig  `mapstructure:"plantuml"`
}

type ProjectConfig struct {
	Key         string `mapstructure:"key"`
	Stereotype  string `mapstructure:"stereotype"`
	Shorthand   string `mapstructure:"shorthand"`
	Description string `mapstructure:"description"`
}

type PlantUMLConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Java    string `mapstructure:"java"`
	Jar     string `mapstructure:"jar"` // "" means <build_dir>/<release jar>
	URL     string `mapstructure:"url"`
}

type ValidateConfig struct {
	ExamplesDir string `mapstructure:"examples_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("repo", "")

	v.SetDefault("schema.out_dir", "schema")
	v.SetDefault("schema.base_uri", "")
	v.SetDefault("schema.draft", "")
	v.SetDefault("schema.variant", "opt_db")
	v.SetDefault("schema.clean", true)

	v.SetDefault("docs.source_dir", "docs_src")
	v.SetDefault("docs.out_dir", "docs")
	v.SetDefault("docs.build_dir", "build")
	v.SetDefault("docs.files", docs.DefaultFiles)
	v.SetDefault("docs.html", false)
	v.SetDefault("docs.clean", true)
	v.SetDefault("docs.plantuml.enabled", true)
	v.SetDefault("docs.plantuml.java", "java")
	v.SetDefault("docs.plantuml.jar", "")
	v.SetDefault("docs.plantuml.url", docs.DefaultJarURL)

	v.SetDefault("validate.examples_dir", "examples")
}

// Load reads the config. With an empty path, quill.yml is looked up in the
// working directory and may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", displayName(path), err)
		}
	}

	cfg := &Config{Root: "."}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", displayName(path), err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.File = used
		cfg.Root = filepath.Dir(used)
	}
	return cfg, nil
}

func displayName(path string) string {
	if path == "" {
		return FileName
	}
	return path
}

// Path resolves p against the config root. Absolute paths are kept.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Variant builds the schema variant called name, or the configured
// default when name is empty. Presets are adjusted by a matching entry
// under schema.variants; other names must be fully defined there.
func (c *Config) Variant(name string) (optschema.Variant, error) {
	if name == "" {
		name = c.Schema.Variant
	}

	override, configured := c.Schema.Variants[name]
	variant, err := optschema.Preset(name)
	if err != nil {
		if !configured {
			return optschema.Variant{}, err
		}
		variant = optschema.Variant{Name: name}
	}
	if !configured {
		return variant, nil
	}

	if override.RequiredFlag != "" {
		variant.Target.Required = override.RequiredFlag
	}
	if override.FilterFlag != "" {
		variant.Target.Filter = override.FilterFlag
	}
	if override.PatternKey != "" {
		variant.PatternKey = override.PatternKey
	}
	if override.References != "" {
		strategy, err := types.ParseReferenceStrategy(override.References)
		if err != nil {
			return optschema.Variant{}, fmt.Errorf("schema.variants.%s: %w", name, err)
		}
		variant.References = strategy
	}
	if override.EntityTypes != nil {
		variant.EntityTypes = append([]string(nil), override.EntityTypes...)
	}
	if override.Plan != nil {
		variant.Plan = append([]string(nil), override.Plan...)
	}
	if variant.References == "" {
		variant.References = types.ReferenceDirect
	}

	if err := variant.Validate(); err != nil {
		return optschema.Variant{}, err
	}
	return variant, nil
}

// Projects returns the configured project tags, or the defaults.
func (c *Config) Projects() []docs.ProjectTag {
	if len(c.Docs.Projects) == 0 {
		return docs.DefaultProjects
	}
	tags := make([]docs.ProjectTag, len(c.Docs.Projects))
	for i, p := range c.Docs.Projects {
		tags[i] = docs.ProjectTag{
			Key:         p.Key,
			Stereotype:  p.Stereotype,
			Shorthand:   p.Shorthand,
			Description: p.Description,
		}
	}
	return tags
}

// JarPath is where the PlantUML jar is expected.
func (c *Config) JarPath() string {
	if c.Docs.PlantUML.Jar != "" {
		return c.Path(c.Docs.PlantUML.Jar)
	}
	return filepath.Join(c.Path(c.Docs.BuildDir), docs.DefaultJarName)
}
