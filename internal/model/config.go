package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Account types.
const (
	AccountTypeIMAP = "imap"
	AccountTypeDir  = "dir"
)

// AccountConfig holds the configuration for one mail account.
type AccountConfig struct {
	// ID is the unique identifier for this account. It also names the
	// keyring entry holding the IMAP password.
	ID string `mapstructure:"id" yaml:"id"`

	// Type is AccountTypeIMAP or AccountTypeDir.
	Type string `mapstructure:"type" yaml:"type"`

	// Name is the label shown in the UI.
	Name string `mapstructure:"name" yaml:"name"`

	// Host and Port address the IMAP server (implicit TLS).
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	Username string `mapstructure:"username" yaml:"username"`

	// Mailbox is the IMAP folder to list. Defaults to INBOX.
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`

	// Path is the directory of .eml files for dir accounts.
	Path string `mapstructure:"path" yaml:"path"`

	// Limit caps how many recent messages are listed.
	Limit int `mapstructure:"limit" yaml:"limit"`

	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// TranslateConfig holds translation settings.
type TranslateConfig struct {
	TargetLanguage  string `mapstructure:"target_language" yaml:"target_language"`
	ProviderID      string `mapstructure:"provider_id" yaml:"provider_id"`
	InstallOnDemand bool   `mapstructure:"install_on_demand" yaml:"install_on_demand"`

	// HelperPath and InterpreterPath override helper lookup. They take
	// precedence over TRANSLATE_HELPER_PATH and TRANSLATE_PYTHON_BIN.
	HelperPath      string `mapstructure:"helper_path" yaml:"helper_path"`
	InterpreterPath string `mapstructure:"interpreter_path" yaml:"interpreter_path"`

	Debug bool `mapstructure:"debug" yaml:"debug"`

	// TimeoutSec bounds one translation. Zero means no deadline.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File is where the TUI writes its log. Empty uses DefaultLogPath.
	File string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Accounts  []AccountConfig `mapstructure:"accounts" yaml:"accounts"`
	Translate TranslateConfig `mapstructure:"translate" yaml:"translate"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtranslate/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtranslate", "config.yaml")
}

// DefaultDataDir returns ~/.local/state/mailtranslate, which holds the log
// and the history database.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "mailtranslate")
}

// DefaultLogPath returns the TUI log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultDataDir(), "mailtranslate.log")
}

// DefaultHistoryPath returns the translation history database path.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultDataDir(), "history.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Accounts: []AccountConfig{},
		Translate: TranslateConfig{
			TargetLanguage:  "en",
			ProviderID:      "google",
			InstallOnDemand: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. Keys can
// also be set from the environment, e.g.
// MAILTRANSLATE_TRANSLATE_TARGET_LANGUAGE.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("mailtranslate")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("translate.target_language", "en")
	v.SetDefault("translate.provider_id", "google")
	v.SetDefault("translate.install_on_demand", true)
	v.SetDefault("translate.helper_path", "")
	v.SetDefault("translate.interpreter_path", "")
	v.SetDefault("translate.debug", false)
	v.SetDefault("translate.timeout_sec", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return unmarshalConfig(v, path)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return unmarshalConfig(v, path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := unmarshalConfig(v, path)
	if err != nil {
		return nil, err
	}

	// Apply defaults for each account entry.
	for i := range cfg.Accounts {
		a := &cfg.Accounts[i]
		if a.Limit <= 0 {
			a.Limit = 50
		}
		if a.Type == AccountTypeIMAP {
			if a.Mailbox == "" {
				a.Mailbox = "INBOX"
			}
			if a.Port == 0 {
				a.Port = 993
			}
		}
		if !a.Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("accounts.%d.enabled", i)
			if !v.IsSet(key) {
				a.Enabled = true
			}
		}
	}

	return cfg, nil
}

func unmarshalConfig(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("accounts", cfg.Accounts)
	v.Set("translate", cfg.Translate)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Settings exposes the translate section to the orchestrator. It reads the
// config on every call so edits made in the settings form apply to the
// next request.
type Settings struct {
	cfg *AppConfig
}

// NewSettings returns a Settings view over cfg.
func NewSettings(cfg *AppConfig) Settings {
	return Settings{cfg: cfg}
}

// TargetLanguage returns the configured target language code.
func (s Settings) TargetLanguage() string { return s.cfg.Translate.TargetLanguage }

// ProviderID returns the configured provider id.
func (s Settings) ProviderID() string { return s.cfg.Translate.ProviderID }

// Timeout returns the per-translation deadline, or zero for none.
func (s Settings) Timeout() time.Duration {
	if s.cfg.Translate.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(s.cfg.Translate.TimeoutSec) * time.Second
}
