package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL         = "http://127.0.0.1:7333"
	DefaultDBFileName     = ".roster.db"
	DefaultAvatarsDirName = "avatars"
	DefaultLogLevel       = "info"

	configFileName = ".roster.toml"
	dotEnvFileName = ".env"

	configDirEnvKey          = "ROSTER_CONFIG_DIR"
	trustProjectConfigEnvKey = "ROSTER_TRUST_PROJECT_CONFIG"
	apiURLEnvKey             = "ROSTER_API_URL"
	dbPathEnvKey             = "ROSTER_DB"
	avatarsDirEnvKey         = "ROSTER_AVATARS_DIR"

	snapCommonConfigRelativePath = "snap/roster/common/.roster.toml"
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// AvatarConfig defines where avatar files are stored.
type AvatarConfig struct {
	Dir string `toml:"dir"`
}

// Config defines runtime configuration for roster.
type Config struct {
	APIURL                   string       `toml:"api_url"`
	DBPath                   string       `toml:"db_path"`
	LogLevel                 string       `toml:"log_level"`
	Avatars                  AvatarConfig `toml:"avatars"`
	TrustedProjectConfigPath string       `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
	}
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// loadDotEnv exports variables from .env in the working directory.
// Variables already present in the environment win.
func loadDotEnv() error {
	if err := godotenv.Load(dotEnvFileName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", dotEnvFileName, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, configFileName), true
}

func trustProjectConfig() bool {
	raw := strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey))
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return value
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"avatars.dir",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	return slices.Contains(allowedKeys, key)
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "avatars.dir":
		return c.Avatars.Dir, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	homePath := filepath.Join(home, configFileName)
	if info, statErr := os.Stat(homePath); statErr == nil && !info.IsDir() {
		return homePath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	snapPath := filepath.Join(home, snapCommonConfigRelativePath)
	if info, statErr := os.Stat(snapPath); statErr == nil && !info.IsDir() {
		return snapPath, nil
	} else if statErr != nil && !os.IsNotExist(statErr) {
		return "", statErr
	}

	return homePath, nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads .env, then config from trusted files, and applies env overrides.
// ROSTER_LOG_LEVEL is resolved by the CLI logger, not here.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			homePath := filepath.Join(home, configFileName)
			homeLoaded, loadErr := loadFileIfExists(homePath, &cfg)
			if loadErr != nil {
				return nil, loadErr
			}
			if !homeLoaded {
				snapPath := filepath.Join(home, snapCommonConfigRelativePath)
				if err := loadFile(snapPath, &cfg); err != nil {
					return nil, err
				}
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, configFileName)
				info, statErr := os.Stat(projectPath)
				switch {
				case statErr == nil && !info.IsDir():
					if err := loadFile(projectPath, &cfg); err != nil {
						return nil, err
					}
					cfg.TrustedProjectConfigPath = projectPath
				case statErr != nil && !os.IsNotExist(statErr):
					return nil, statErr
				}
			}
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if dir := os.Getenv(avatarsDirEnvKey); dir != "" {
		cfg.Avatars.Dir = dir
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}
	if strings.TrimSpace(cfg.Avatars.Dir) == "" && cfg.DBPath != "" {
		cfg.Avatars.Dir = filepath.Join(filepath.Dir(cfg.DBPath), DefaultAvatarsDirName)
	}

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "log_level":
		if !slices.Contains(logLevels, strings.ToLower(value)) {
			return nil, fmt.Errorf("log_level must be one of %s", strings.Join(logLevels, ", "))
		}
		return strings.ToLower(value), nil
	case "avatars.dir", "db_path":
		if value == "" {
			return nil, fmt.Errorf("%s must not be empty", key)
		}
		return value, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}
