package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/auth"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/store"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the complete kubeportal configuration
type Config struct {
	Server     ServerConfig     `toml:"server"`
	API        APIConfig        `toml:"api,omitempty"`
	Workspace  WorkspaceConfig  `toml:"workspace,omitempty"`
	Clipboard  ClipboardConfig  `toml:"clipboard,omitempty"`
	Appearance AppearanceConfig `toml:"appearance,omitempty"`
}

// ServerConfig points at the portal backend.
type ServerConfig struct {
	URL        string `toml:"url"`
	Token      string `toml:"token,omitempty"`
	Insecure   bool   `toml:"insecure,omitempty"`
	CACert     string `toml:"ca_cert,omitempty"`
	CAPath     string `toml:"ca_path,omitempty"`
	ClientCert string `toml:"client_cert,omitempty"`
	ClientKey  string `toml:"client_key,omitempty"`
}

// APIConfig holds request settings
type APIConfig struct {
	Timeout string `toml:"timeout,omitempty"` // Go duration, e.g. "30s"
}

// WorkspaceConfig is what the Home tab edits.
type WorkspaceConfig struct {
	Path          string `toml:"path,omitempty"`
	RequestsRepo  string `toml:"requests_repo,omitempty"`
	ProcessedRepo string `toml:"processed_repo,omitempty"`
}

// ClipboardConfig holds clipboard settings
type ClipboardConfig struct {
	Command string `toml:"command,omitempty"` // e.g. "wl-copy" or "xclip -selection clipboard"
}

// AppearanceConfig holds UI appearance settings
type AppearanceConfig struct {
	Theme string `toml:"theme,omitempty"` // preset name, see theme.Names
}

// GetConfigPath returns the path to the kubeportal configuration file
func GetConfigPath() string {
	if configPath := os.Getenv("KUBEPORTAL_CONFIG"); configPath != "" {
		return configPath
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "kubeportal", "config.toml")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "kubeportal", "config.toml")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "kubeportal", "config.toml")
	}
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(GetConfigPath())
	return err == nil
}

// GetDefaultConfig returns a config with sensible defaults
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:8000"},
	}
}

// LoadConfig loads the configuration with fallback to defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFromPath(GetConfigPath())
}

// LoadConfigFromPath reads path, returning defaults when it does not exist.
func LoadConfigFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigError("CONFIG_READ_FAILED",
			fmt.Sprintf("failed to read config from %s", path)).WithCause(err)
	}

	cfg := GetDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.ConfigError("CONFIG_PARSE_FAILED", "failed to parse config").
			WithCause(err).
			WithDetails(err.Error()).
			WithContext("path", path)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the config file
func SaveConfig(cfg *Config) error {
	return SaveConfigToPath(cfg, GetConfigPath())
}

// SaveConfigToPath writes cfg as TOML, creating the directory if needed.
func SaveConfigToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// The file may hold a token.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	return nil
}

// Keychain is where tokens are looked up and saved. Nil disables it.
var Keychain auth.TokenStore = auth.NewKeychainStore()

// GetToken returns the bearer token.
// Priority: KUBEPORTAL_TOKEN env var > keychain > config file
func (c *Config) GetToken() string {
	if tok := os.Getenv("KUBEPORTAL_TOKEN"); tok != "" {
		return tok
	}
	if Keychain != nil {
		tok, err := Keychain.LoadToken(c.Server.URL)
		switch {
		case err == nil && tok != "":
			return tok
		case err != nil && !errors.Is(err, auth.ErrNotFound):
			cblog.With("component", "config").Debug("keychain lookup failed", "err", err)
		}
	}
	return c.Server.Token
}

// APITimeout returns the configured request timeout, or zero for the default.
func (c *Config) APITimeout() (time.Duration, error) {
	if strings.TrimSpace(c.API.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.API.Timeout))
	if err != nil || d <= 0 {
		return 0, apperrors.ConfigError("INVALID_TIMEOUT",
			fmt.Sprintf("invalid api.timeout %q", c.API.Timeout))
	}
	return d, nil
}

// ToServer validates the server section and converts it.
func (c *Config) ToServer() (*model.Server, error) {
	raw := strings.TrimSpace(c.Server.URL)
	if raw == "" {
		return nil, apperrors.ConfigError("MISSING_SERVER_URL", "server.url is not set")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.ConfigError("INVALID_SERVER_URL",
			fmt.Sprintf("server.url %q must be an http(s) URL", raw))
	}
	return &model.Server{
		BaseURL:  strings.TrimRight(raw, "/"),
		Token:    c.GetToken(),
		Insecure: c.Server.Insecure,
	}, nil
}

// PortalConfig returns the Home tab fields.
func (c *Config) PortalConfig() store.PortalConfig {
	return store.PortalConfig{
		Workspace:     c.Workspace.Path,
		RequestsRepo:  c.Workspace.RequestsRepo,
		ProcessedRepo: c.Workspace.ProcessedRepo,
	}
}

// SetPortalConfig stores the Home tab fields.
func (c *Config) SetPortalConfig(p store.PortalConfig) {
	c.Workspace = WorkspaceConfig{
		Path:          p.Workspace,
		RequestsRepo:  p.RequestsRepo,
		ProcessedRepo: p.ProcessedRepo,
	}
}

// Saver writes Home tab changes back to the config file. Saves may come from
// several effect goroutines; they are applied one at a time.
type Saver struct {
	mu   sync.Mutex
	cfg  *Config
	path string
}

// NewSaver creates a Saver owning cfg, loaded from path.
func NewSaver(cfg *Config, path string) *Saver {
	return &Saver{cfg: cfg, path: path}
}

// SavePortalConfig stores the Home tab fields. A plaintext token in the file
// is moved to the keychain when one is available.
func (s *Saver) SavePortalConfig(p store.PortalConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.cfg
	next.SetPortalConfig(p)
	if next.Server.Token != "" && Keychain != nil {
		if err := Keychain.StoreToken(next.Server.URL, next.Server.Token); err != nil {
			cblog.With("component", "config").Debug("token stays in config file", "err", err)
		} else {
			next.Server.Token = ""
		}
	}
	if err := SaveConfigToPath(&next, s.path); err != nil {
		return err
	}
	*s.cfg = next
	return nil
}

// Current returns a copy of the last saved config.
func (s *Saver) Current() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cfg
}
