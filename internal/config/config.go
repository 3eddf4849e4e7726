// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/lead-harvester/internal/schemas"
)

// Default values applied when neither the config file, the environment nor a flag sets them.
const (
	DefaultDailyLimit         = 20
	DefaultTargetsFile        = "leads.json"
	DefaultScreenshotsDir     = "screenshots"
	DefaultLandingURL         = "https://www.linkedin.com/"
	DefaultCooldownMinSeconds = 60
	DefaultCooldownMaxSeconds = 180
	DefaultDrafter            = "template"
	profileDirName            = "user_data"
)

// Environment variables read by ApplyEnv.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDailyLimit  = "LEAD_AGENT_DAILY_LIMIT"
)

// fileSchema rejects unknown keys and wrongly typed values in a config file.
var fileSchema = schemas.MustCompile("config.json", `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"database_url":         {"type": "string"},
		"targets_file":         {"type": "string"},
		"profile_dir":          {"type": "string"},
		"screenshots_dir":      {"type": "string"},
		"browser_path":         {"type": "string"},
		"landing_url":          {"type": "string"},
		"user_agent":           {"type": "string"},
		"headless":             {"type": "boolean"},
		"daily_limit":          {"type": "integer", "minimum": 0},
		"cooldown_min_seconds": {"type": "number", "minimum": 0},
		"cooldown_max_seconds": {"type": "number", "minimum": 0},
		"drafter":              {"type": "string", "enum": ["template", "gemini"]},
		"api_key":              {"type": "string"},
		"model":                {"type": "string"},
		"verbose":              {"type": "boolean"}
	}
}`)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Store
	DatabaseURL string `json:"database_url,omitempty"` // postgres:// or sqlite:// URL

	// Paths
	TargetsFile    string `json:"targets_file,omitempty"`    // JSON/YAML list of profile URLs
	ProfileDir     string `json:"profile_dir,omitempty"`     // Persistent browser profile directory
	ScreenshotsDir string `json:"screenshots_dir,omitempty"` // Diagnostics artifact directory
	BrowserPath    string `json:"browser_path,omitempty"`    // Chrome executable; empty uses the system default

	// Session
	LandingURL string `json:"landing_url,omitempty" validate:"omitempty,url"`
	UserAgent  string `json:"user_agent,omitempty"`
	Headless   bool   `json:"headless,omitempty"`

	// Limits
	DailyLimit         *int    `json:"daily_limit,omitempty" validate:"omitempty,gte=0"` // nil means unset; 0 is a real limit
	CooldownMinSeconds float64 `json:"cooldown_min_seconds,omitempty" validate:"gte=0"`
	CooldownMaxSeconds float64 `json:"cooldown_max_seconds,omitempty" validate:"gte=0,gtefield=CooldownMinSeconds"`

	// Drafting
	Drafter string `json:"drafter,omitempty" validate:"omitempty,oneof=template gemini"`
	APIKey  string `json:"api_key,omitempty"` // Gemini API key
	Model   string `json:"model,omitempty"`   // Gemini model override

	Verbose bool `json:"verbose,omitempty"` // Debug-level logging
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if json.Valid(data) {
		if err := fileSchema.ValidateJSONString(string(data)); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Drafter == "gemini" && c.APIKey == "" {
		return fmt.Errorf("config error: drafter 'gemini' requires an API key (%s)", EnvAPIKey)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer flags over the environment over the config file over built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.TargetsFile == "" {
		result.TargetsFile = defaults.TargetsFile
	}
	if result.ProfileDir == "" {
		result.ProfileDir = defaults.ProfileDir
	}
	if result.ScreenshotsDir == "" {
		result.ScreenshotsDir = defaults.ScreenshotsDir
	}
	if result.BrowserPath == "" {
		result.BrowserPath = defaults.BrowserPath
	}
	if result.LandingURL == "" {
		result.LandingURL = defaults.LandingURL
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.Drafter == "" {
		result.Drafter = defaults.Drafter
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	if result.DailyLimit == nil && defaults.DailyLimit != nil {
		result.DailyLimit = Int(*defaults.DailyLimit)
	}

	// Numeric fields: use default if zero
	if result.CooldownMinSeconds == 0 {
		result.CooldownMinSeconds = defaults.CooldownMinSeconds
	}
	if result.CooldownMaxSeconds == 0 {
		result.CooldownMaxSeconds = defaults.CooldownMaxSeconds
	}

	// Bool fields: cannot distinguish unset from false, so either layer enables them
	result.Headless = result.Headless || defaults.Headless
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Limit returns the daily limit, or DefaultDailyLimit when none was set.
func (c *Config) Limit() int {
	if c.DailyLimit == nil {
		return DefaultDailyLimit
	}
	return *c.DailyLimit
}

// Int returns a pointer to n, for optional numeric fields.
func Int(n int) *int {
	return &n
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		TargetsFile:        DefaultTargetsFile,
		ProfileDir:         DefaultProfileDir(),
		ScreenshotsDir:     DefaultScreenshotsDir,
		LandingURL:         DefaultLandingURL,
		DailyLimit:         Int(DefaultDailyLimit),
		CooldownMinSeconds: DefaultCooldownMinSeconds,
		CooldownMaxSeconds: DefaultCooldownMaxSeconds,
		Drafter:            DefaultDrafter,
	}
}

// DefaultProfileDir returns user_data next to the running executable,
// falling back to the working directory when the executable path is unknown.
func DefaultProfileDir() string {
	exe, err := os.Executable()
	if err != nil {
		return profileDirName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), profileDirName)
}

// ApplyEnv fills empty fields from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = strings.TrimSpace(getenv(EnvDatabaseURL))
	}
	if c.APIKey == "" {
		c.APIKey = strings.TrimSpace(getenv(EnvAPIKey))
	}
	if v := strings.TrimSpace(getenv(EnvDailyLimit)); v != "" && c.DailyLimit == nil {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s must be an integer, got %q", EnvDailyLimit, v)
		}
		c.DailyLimit = &n
	}
	return nil
}
