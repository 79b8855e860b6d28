// Package config loads the layered rpt configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/school-reports/internal/export"
)

// Error variables for configuration.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrOutputDirEmpty     = errors.New("output-dir cannot be empty")
	ErrInvalidPageSize    = errors.New("page_size must be positive")
	ErrInvalidOrientation = errors.New("orientation must be portrait or landscape")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn or error")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	InstitutionName    string `json:"institution_name,omitempty"`
	InstitutionAddress string `json:"institution_address,omitempty"`
	OutputDir          string `json:"output_dir"`
	DatasetDir         string `json:"dataset_dir"`
	PageSize           int    `json:"page_size"`
	Orientation        string `json:"orientation"`
	LogLevel           string `json:"log_level"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd  string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	OutputDirAbs  string `json:"-"` // Absolute path exports are written to
	DatasetDirAbs string `json:"-"` // Absolute path dataset names are looked up in

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		OutputDir:   "exports",
		DatasetDir:  ".",
		PageSize:    10,
		Orientation: string(export.Portrait),
		LogLevel:    "warn",
	}
}

// FileName is the default project config file name.
const FileName = ".rpt.json"

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/rpt/config.json if set, otherwise ~/.config/rpt/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "rpt", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "rpt", "config.json")
	}

	return ""
}

// Overrides are values set on the command line. Nil means not set.
type Overrides struct {
	OutputDir *string
	PageSize  *int
	LogLevel  *string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // CLI overrides
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/rpt/config.json or $XDG_CONFIG_HOME/rpt/config.json)
// 3. Project config file at default location (.rpt.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty), replacing 3
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	globalCfg, globalFile, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalFile
	cfg = merge(cfg, globalCfg)

	projectCfg, projectFile, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectFile
	cfg = merge(cfg, projectCfg)

	if o := input.Overrides; o.OutputDir != nil {
		if *o.OutputDir == "" {
			return Config{}, ErrOutputDirEmpty
		}

		cfg.OutputDir = *o.OutputDir
	}

	if o := input.Overrides; o.PageSize != nil {
		cfg.PageSize = *o.PageSize
	}

	if o := input.Overrides; o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}

	validateErr := validate(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir
	cfg.OutputDirAbs = resolve(workDir, cfg.OutputDir)
	cfg.DatasetDirAbs = resolve(workDir, cfg.DatasetDir)

	return cfg, nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadGlobal loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads the project config file (.rpt.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProject(workDir, configPath string) (Config, string, error) {
	var path string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		// Default project config file - optional
		path = filepath.Join(workDir, FileName)
	}

	cfg, loaded, err := loadFile(path, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, whether the file was loaded, and any error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, parseErr := Parse(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

// Parse decodes one HuJSON config file. Keys that are present but set to
// an unusable value are rejected here, since merge cannot tell them from
// unset keys.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["output_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrOutputDirEmpty
		}
	}

	if val, exists := raw["page_size"]; exists {
		if n, ok := val.(float64); ok && n < 1 {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidPageSize, n)
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.InstitutionName != "" {
		base.InstitutionName = overlay.InstitutionName
	}

	if overlay.InstitutionAddress != "" {
		base.InstitutionAddress = overlay.InstitutionAddress
	}

	if overlay.OutputDir != "" {
		base.OutputDir = overlay.OutputDir
	}

	if overlay.DatasetDir != "" {
		base.DatasetDir = overlay.DatasetDir
	}

	if overlay.PageSize != 0 {
		base.PageSize = overlay.PageSize
	}

	if overlay.Orientation != "" {
		base.Orientation = overlay.Orientation
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

func validate(cfg Config) error {
	if cfg.OutputDir == "" {
		return ErrOutputDirEmpty
	}

	if cfg.PageSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, cfg.PageSize)
	}

	if _, err := export.ParseOrientation(cfg.Orientation); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, cfg.Orientation)
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}

// Institution returns the configured letterhead.
func (c Config) Institution() export.Institution {
	return export.Institution{Name: c.InstitutionName, Address: c.InstitutionAddress}
}

// PageOrientation returns the validated orientation.
func (c Config) PageOrientation() export.Orientation {
	o, _ := export.ParseOrientation(c.Orientation)
	return o
}

// Format renders the effective configuration as key=value lines.
func (c Config) Format() string {
	lines := []string{
		"effective_cwd=" + c.EffectiveCwd,
		"output_dir=" + c.OutputDirAbs,
		"dataset_dir=" + c.DatasetDirAbs,
		fmt.Sprintf("page_size=%d", c.PageSize),
		"orientation=" + string(c.PageOrientation()),
		"log_level=" + c.LogLevel,
	}

	if c.InstitutionName != "" {
		lines = append(lines, "institution_name="+c.InstitutionName)
	}

	if c.InstitutionAddress != "" {
		lines = append(lines, "institution_address="+c.InstitutionAddress)
	}

	return strings.Join(lines, "\n")
}
