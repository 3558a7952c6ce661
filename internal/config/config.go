// =============================================================================
// Sales Aggregator - Configuration Module
// =============================================================================
//
// This module loads the run configuration: which entity dimensions exist,
// where their definition and summary files live, how record files are named
// and how wide a total may grow.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (branch + commodity, 10-digit totals)
//   2. The YAML config file, if present
//   3. Environment overrides for logging (SALESAGG_LOG_MODE, SALESAGG_LOG_LEVEL),
//      optionally populated from a .env file by the CLI
//
// ARCHITECTURE:
//   Load -> applyDefaults -> validate, as for every config in this codebase.
//   Struct rules are declared with go-playground/validator tags; regular
//   expressions are compiled during validation so a bad pattern fails early.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// ENVIRONMENT KEYS
// =============================================================================

const (
	EnvLogMode  = "SALESAGG_LOG_MODE"
	EnvLogLevel = "SALESAGG_LOG_LEVEL"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the configuration of an aggregation run.
type MainConfig struct {
	// =========================================================================
	// RECORD FILES
	// =========================================================================

	// RecordPattern matches record file base names. The first 8 characters
	// of a matching name must be the zero-padded sequence number.
	// Default: "^[0-9]{8}\.rcd$"
	RecordPattern string `yaml:"record_pattern" validate:"required"`

	// Delimiter separates fields in definition and summary files.
	// Default: ","
	Delimiter string `yaml:"delimiter" validate:"required"`

	// MaxTotalDigits is the display width of a total; a total must stay
	// below 10^MaxTotalDigits.
	// Default: 10
	MaxTotalDigits int `yaml:"max_total_digits" validate:"min=1,max=30"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogMode selects the zap preset.
	// Valid values: "development", "production"
	// Default: "development"
	LogMode string `yaml:"log_mode" validate:"oneof=development production dev prod"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// =========================================================================
	// DIMENSIONS
	// =========================================================================

	// Dimensions lists the entity dimensions in record field order.
	// One dimension gives two-line record files, two give three-line files.
	Dimensions []DimensionConfig `yaml:"dimensions" validate:"min=1,dive"`

	recordRegexp *regexp.Regexp
	dimensions   []types.Dimension
}

// DimensionConfig configures one entity dimension.
type DimensionConfig struct {
	// Name identifies the dimension, e.g. "branch".
	Name string `yaml:"name" validate:"required"`

	// Label is used in user messages. Default: Name.
	Label string `yaml:"label"`

	// DefinitionFile is the code,name list inside the run directory.
	DefinitionFile string `yaml:"definition_file" validate:"required"`

	// CodePattern is the regular expression a code must fully match.
	CodePattern string `yaml:"code_pattern" validate:"required"`

	// SummaryFile receives the per-entity totals.
	SummaryFile string `yaml:"summary_file" validate:"required"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the validated built-in configuration: branch and commodity
// dimensions with the classic file names.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	if err := validateMainConfig(config); err != nil {
		panic(fmt.Sprintf("built-in configuration is invalid: %v", err))
	}
	return config
}

// defaultDimensions are used when the config file lists none.
func defaultDimensions() []DimensionConfig {
	return []DimensionConfig{
		{
			Name:           "branch",
			Label:          "branch",
			DefinitionFile: "branch.lst",
			CodePattern:    "^[0-9]{3}$",
			SummaryFile:    "branch.out",
		},
		{
			Name:           "commodity",
			Label:          "commodity",
			DefinitionFile: "commodity.lst",
			CodePattern:    "^[a-zA-Z0-9]{8}$",
			SummaryFile:    "commodity.out",
		},
	}
}

// applyMainConfigDefaults sets default values for any unset option.
func applyMainConfigDefaults(config *MainConfig) {
	if config.RecordPattern == "" {
		config.RecordPattern = `^[0-9]{8}\.rcd$`
	}
	if config.Delimiter == "" {
		config.Delimiter = ","
	}
	if config.MaxTotalDigits == 0 {
		config.MaxTotalDigits = 10
	}
	if config.LogMode == "" {
		config.LogMode = "development"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if len(config.Dimensions) == 0 {
		config.Dimensions = defaultDimensions()
	}
	for i := range config.Dimensions {
		if config.Dimensions[i].Label == "" {
			config.Dimensions[i].Label = config.Dimensions[i].Name
		}
	}
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file.
//
// PARAMETERS:
//   - fs: The filesystem to read from.
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the validated MainConfig.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(fs afero.Fs, configPath string) (*MainConfig, error) {
	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseMainConfig(data)
}

// LoadOrDefault behaves like LoadMainConfig but returns Default() when
// configPath does not exist.
func LoadOrDefault(fs afero.Fs, configPath string) (*MainConfig, error) {
	config, err := LoadMainConfig(fs, configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

func parseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ApplyEnvOverrides replaces the log settings with values found through
// lookup (normally os.LookupEnv) and re-validates the result.
func ApplyEnvOverrides(config *MainConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogMode); ok && v != "" {
		config.LogMode = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		config.LogLevel = v
	}
	if err := validateMainConfig(config); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var structValidator = validator.New()

// validateMainConfig validates config and compiles its patterns.
func validateMainConfig(config *MainConfig) error {
	if err := structValidator.Struct(config); err != nil {
		return err
	}

	recordRegexp, err := regexp.Compile(config.RecordPattern)
	if err != nil {
		return fmt.Errorf("record_pattern: %w", err)
	}

	names := make(map[string]bool)
	files := make(map[string]string)
	dimensions := make([]types.Dimension, 0, len(config.Dimensions))

	for _, d := range config.Dimensions {
		if names[d.Name] {
			return fmt.Errorf("dimension %q is defined twice", d.Name)
		}
		names[d.Name] = true

		for _, f := range []string{d.DefinitionFile, d.SummaryFile} {
			if owner, ok := files[f]; ok {
				return fmt.Errorf("dimension %q reuses file %q of dimension %q", d.Name, f, owner)
			}
			files[f] = d.Name
		}
		if recordRegexp.MatchString(d.DefinitionFile) || recordRegexp.MatchString(d.SummaryFile) {
			return fmt.Errorf("dimension %q: file names must not match record_pattern", d.Name)
		}

		// Codes must match the whole field, whether or not the pattern is anchored.
		codeRegexp, err := regexp.Compile(`^(?:` + d.CodePattern + `)$`)
		if err != nil {
			return fmt.Errorf("dimension %q code_pattern: %w", d.Name, err)
		}

		dimensions = append(dimensions, types.Dimension{
			Name:           d.Name,
			Label:          d.Label,
			DefinitionFile: d.DefinitionFile,
			SummaryFile:    d.SummaryFile,
			CodePattern:    codeRegexp,
		})
	}

	config.recordRegexp = recordRegexp
	config.dimensions = dimensions
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// RecordRegexp returns the compiled record file pattern.
func (c *MainConfig) RecordRegexp() *regexp.Regexp {
	return c.recordRegexp
}

// DimensionList returns the compiled dimensions in record field order.
func (c *MainConfig) DimensionList() []types.Dimension {
	out := make([]types.Dimension, len(c.dimensions))
	copy(out, c.dimensions)
	return out
}

// RecordLineCount is the number of lines every record file must have.
func (c *MainConfig) RecordLineCount() int {
	return len(c.dimensions) + 1
}
