// Package config handles the configuration directory, config file and the
// remote sync settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskforge"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// InventoryFile is the local crystal inventory filename.
	InventoryFile = "crystals.yaml"

	// OAuthClientFile is the OAuth client credentials filename (googletasks backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (googletasks backend).
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKFORGE_HOST.
	EnvPrefix = "TASKFORGE"
)

// Backend names.
const (
	BackendTaskServer  = "taskserver"
	BackendGoogleTasks = "googletasks"
)

// Defaults for the remote sync settings.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 8000
	DefaultTimeout     = 10 * time.Second
	MinTimeout         = 100 * time.Millisecond
	DefaultTargetAgent = "taskforge"
	DefaultProject     = "madness_interactive"
)

// DefaultProjects is the built-in project list, used for argument parsing
// and as the fallback when the server cannot list projects.
var DefaultProjects = []string{
	"madness_interactive",
	"omnispindle",
	"terraria",
	"devcrystal",
	"todomill",
	"inventorium",
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Host and Port locate the task server; BaseURL derives from them.
	Host string
	Port int

	// Enabled turns remote sync on or off.
	Enabled bool

	// Backend selects the remote implementation.
	Backend string

	// Timeout bounds every remote request.
	Timeout time.Duration

	// Token, when set, is sent as a bearer token to the task server.
	Token string

	// TargetAgent is sent with every created task.
	TargetAgent string

	// DefaultProject is used when a task names no project.
	DefaultProject string

	// Projects lists the project names recognised in command arguments.
	Projects []string
}

// New creates a Config with default settings for the default or specified
// config directory. If configDir is empty, uses XDG_CONFIG_HOME/taskforge
// or $HOME/.config/taskforge.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:            dir,
		Host:           DefaultHost,
		Port:           DefaultPort,
		Enabled:        true,
		Backend:        BackendTaskServer,
		Timeout:        DefaultTimeout,
		TargetAgent:    DefaultTargetAgent,
		DefaultProject: DefaultProject,
		Projects:       append([]string(nil), DefaultProjects...),
	}
	return cfg, nil
}

// Load creates a Config like New and then applies config.yaml from the
// config directory and TASKFORGE_* environment overrides.
// A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("enabled", cfg.Enabled)
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("timeout", cfg.Timeout.String())
	v.SetDefault("token", "")
	v.SetDefault("target_agent", cfg.TargetAgent)
	v.SetDefault("default_project", cfg.DefaultProject)
	v.SetDefault("projects", cfg.Projects)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigFile(cfg.ConfigPath())
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	cfg.Host = strings.TrimSpace(v.GetString("host"))
	cfg.Port = v.GetInt("port")
	cfg.Enabled = v.GetBool("enabled")
	cfg.Backend = strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	if cfg.Timeout, err = parseTimeout(v.GetString("timeout")); err != nil {
		return nil, err
	}
	cfg.Token = v.GetString("token")
	cfg.TargetAgent = v.GetString("target_agent")
	cfg.DefaultProject = strings.ToLower(strings.TrimSpace(v.GetString("default_project")))
	if projects := v.GetStringSlice("projects"); len(projects) > 0 {
		cfg.Projects = projects
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the remote sync settings.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	switch c.Backend {
	case BackendTaskServer, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.Timeout < MinTimeout {
		return fmt.Errorf("timeout must be at least %s: %s", MinTimeout, c.Timeout)
	}
	return nil
}

// parseTimeout accepts a Go duration ("10s", "1m30s") or a bare number of
// seconds ("10", "2.5").
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %q", raw)
	}
	return d, nil
}

// BaseURL returns the task server URL derived from host and port.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// IsProject reports whether name is one of the configured projects.
func (c *Config) IsProject(name string) bool {
	name = strings.ToLower(name)
	for _, p := range c.Projects {
		if strings.ToLower(p) == name {
			return true
		}
	}
	return false
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// InventoryPath returns the path to the local crystal inventory.
func (c *Config) InventoryPath() string {
	return filepath.Join(c.Dir, InventoryFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
