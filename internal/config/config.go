// Package config provides Viper-based configuration loading for the village
// server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/notevillage/internal/village"
)

// VaultConfig holds note vault settings.
type VaultConfig struct {
	// Path is the root directory of the markdown vault.
	Path string `mapstructure:"path"`
	// ExcludedFolders are vault-relative folder prefixes skipped while scanning.
	ExcludedFolders []string `mapstructure:"excluded_folders"`
	// ExcludedTags are tags that never become zones.
	ExcludedTags []string `mapstructure:"excluded_tags"`
}

// GeneratorConfig holds village generation settings.
type GeneratorConfig struct {
	// Seed drives all procedural decisions. Empty means derive from the vault path.
	Seed string `mapstructure:"seed"`
	// TopTagCount is how many of the most-used tags become zones.
	TopTagCount int `mapstructure:"top_tag_count"`
	// MaxVillagers caps the total villager population.
	MaxVillagers int `mapstructure:"max_villagers"`
	// PlazaRadius is the radius of the central plaza.
	PlazaRadius float64 `mapstructure:"plaza_radius"`
	// ZoneInnerRadius is the structure-free clearance around the plaza center.
	ZoneInnerRadius float64 `mapstructure:"zone_inner_radius"`
	// ZoneWidth is the side length of each square zone.
	ZoneWidth float64 `mapstructure:"zone_width"`
	// HousesPerVillager is the probability each villager gets a house.
	HousesPerVillager float64 `mapstructure:"houses_per_villager"`
	// DecorationDensity scales how many decorations each zone receives.
	DecorationDensity float64 `mapstructure:"decoration_density"`
}

// HTTPConfig holds API listener settings.
type HTTPConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-request read timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-request write timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown on stop.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DialogueConfig holds villager conversation settings.
type DialogueConfig struct {
	// ScriptDir is the directory of authored Lua dialogue scripts. Zone
	// scripts live in subdirectories named by zone ID; files at the top level
	// load into the global fallback VM. Empty disables scripted dialogue.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps Lua opcodes per script execution. 0 uses the
	// built-in default.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// AnthropicAPIKey enables AI dialogue when set. Usually supplied via the
	// NOTEVILLAGE_DIALOGUE_ANTHROPIC_API_KEY environment variable.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	// Model is the Anthropic model used for free-form dialogue.
	Model string `mapstructure:"model"`
	// MaxTokens bounds each AI reply.
	MaxTokens int64 `mapstructure:"max_tokens"`
	// TranscriptsEnabled controls writing conversation transcripts back into
	// the vault.
	TranscriptsEnabled bool `mapstructure:"transcripts_enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Vault     VaultConfig     `mapstructure:"vault"`
	Generator GeneratorConfig `mapstructure:"generator"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Dialogue  DialogueConfig  `mapstructure:"dialogue"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Options converts the generator and vault sections into village generation
// options. An empty seed falls back to the vault path so the same vault
// always produces the same village.
func (c Config) Options() village.Options {
	seed := c.Generator.Seed
	if seed == "" {
		seed = c.Vault.Path
	}
	opts := village.DefaultOptions(seed)
	opts.TopTagCount = c.Generator.TopTagCount
	opts.MaxVillagers = c.Generator.MaxVillagers
	opts.PlazaRadius = c.Generator.PlazaRadius
	opts.ZoneInnerRadius = c.Generator.ZoneInnerRadius
	opts.ZoneWidth = c.Generator.ZoneWidth
	opts.HousesPerVillager = c.Generator.HousesPerVillager
	opts.DecorationDensity = c.Generator.DecorationDensity
	opts.ExcludedFolders = c.Vault.ExcludedFolders
	opts.ExcludedTags = c.Vault.ExcludedTags
	return opts
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateVault(c.Vault); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Options().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDialogue(c.Dialogue); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateVault(v VaultConfig) error {
	if v.Path == "" {
		return errors.New("vault.path must not be empty")
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if h.ShutdownTimeout < 0 {
		errs = append(errs, "http.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDialogue(d DialogueConfig) error {
	var errs []string
	if d.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("dialogue.instruction_limit must be >= 0, got %d", d.InstructionLimit))
	}
	if d.MaxTokens < 1 {
		errs = append(errs, fmt.Sprintf("dialogue.max_tokens must be >= 1, got %d", d.MaxTokens))
	}
	if d.AnthropicAPIKey != "" && d.Model == "" {
		errs = append(errs, "dialogue.model must not be empty when an API key is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with NOTEVILLAGE_ prefix
	v.SetEnvPrefix("NOTEVILLAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault.path", "")
	v.SetDefault("vault.excluded_folders", []string{})
	v.SetDefault("vault.excluded_tags", []string{})

	v.SetDefault("generator.seed", "")
	v.SetDefault("generator.top_tag_count", village.DefaultTopTagCount)
	v.SetDefault("generator.max_villagers", village.DefaultMaxVillagers)
	v.SetDefault("generator.plaza_radius", village.DefaultPlazaRadius)
	v.SetDefault("generator.zone_inner_radius", village.DefaultZoneInnerRadius)
	v.SetDefault("generator.zone_width", village.DefaultZoneWidth)
	v.SetDefault("generator.houses_per_villager", village.DefaultHousesPerVillager)
	v.SetDefault("generator.decoration_density", village.DefaultDecorationDensity)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "2m")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("dialogue.script_dir", "")
	v.SetDefault("dialogue.instruction_limit", 0)
	v.SetDefault("dialogue.model", "claude-sonnet-4-20250514")
	v.SetDefault("dialogue.max_tokens", 512)
	v.SetDefault("dialogue.transcripts_enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
