package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SKILLSCAN_"

// Config represents the skillscan configuration.
type Config struct {
	SkillsDir      string        `koanf:"skills_dir" json:"skillsDir"`
	Skills         []string      `koanf:"skills" json:"skills"`
	Format         string        `koanf:"format" json:"format"`
	FailOn         string        `koanf:"fail_on" json:"failOn"`
	MaxDiffBytes   int           `koanf:"max_diff_bytes" json:"maxDiffBytes"`
	Concurrency    int           `koanf:"concurrency" json:"concurrency"`
	TimeoutSeconds int           `koanf:"timeout_seconds" json:"timeoutSeconds"`
	Exclude        []string      `koanf:"exclude" json:"exclude"`
	LogLevel       string        `koanf:"log_level" json:"logLevel"`
	LogFormat      string        `koanf:"log_format" json:"logFormat"`
	Cache          CacheConfig   `koanf:"cache" json:"cache"`
	Privacy        PrivacyConfig `koanf:"privacy" json:"privacy"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled    bool   `koanf:"enabled" json:"enabled"`
	Dir        string `koanf:"dir" json:"dir,omitempty"`
	TTLSeconds int    `koanf:"ttl_seconds" json:"ttlSeconds"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `koanf:"redact_secrets" json:"redactSecrets"`
	RedactPaths   []string `koanf:"redact_paths" json:"redactPaths,omitempty"`
}

// listKeys are split on commas when read from the environment.
var listKeys = []string{"skills", "exclude", "privacy.redact_paths"}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		SkillsDir:      defaultSkillsDir(),
		Skills:         []string{},
		Format:         "text",
		FailOn:         "none",
		MaxDiffBytes:   500000,
		Concurrency:    4,
		TimeoutSeconds: 60,
		Exclude:        []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		LogLevel:       "warn",
		LogFormat:      "console",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

func defaultSkillsDir() string {
	dir, err := ConfigDir()
	if err != nil {
		return "skills"
	}
	return filepath.Join(dir, "skills")
}

// ConfigDir returns the platform-appropriate config directory for skillscan.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skillscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "skillscan"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "skillscan"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "skillscan"), nil
	default:
		return filepath.Join(home, ".config", "skillscan"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// Override keys use the same dotted names as the config file ("fail_on",
// "cache.enabled"); empty values are ignored.
func Load(overrides map[string]string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(toMap(Default()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	if err := loadFile(k, path); err != nil {
		return Config{}, err
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if len(overrides) > 0 {
		set := make(map[string]any, len(overrides))
		for key, v := range overrides {
			if v == "" {
				continue
			}
			if slices.Contains(listKeys, key) {
				set[key] = splitList(v)
				continue
			}
			set[key] = v
		}
		if err := k.Load(confmap.Provider(set, "."), nil); err != nil {
			return Config{}, fmt.Errorf("applying overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads only the config file. Returns zero Config and nil error if
// the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	k := koanf.New(".")
	if err := loadFile(k, path); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config file: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Save writes the config to the config file as TOML.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg in the config file's TOML layout.
func Marshal(cfg Config) ([]byte, error) {
	k, err := fromConfig(cfg)
	if err != nil {
		return nil, err
	}
	data, err := k.Marshal(toml.Parser())
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Get returns the value of a single key in its file form ("fail_on",
// "cache.ttl_seconds"). Lists are joined with commas.
func Get(cfg Config, key string) (string, error) {
	k, err := fromConfig(cfg)
	if err != nil {
		return "", err
	}
	if !k.Exists(key) || len(k.MapKeys(key)) > 0 {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	if slices.Contains(listKeys, key) {
		return strings.Join(k.Strings(key), ","), nil
	}
	return k.String(key), nil
}

func fromConfig(cfg Config) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(toMap(cfg), "."), nil); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return k, nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "skills_dir":
		cfg.SkillsDir = value
	case "skills":
		cfg.Skills = splitList(value)
	case "format":
		cfg.Format = value
	case "fail_on":
		cfg.FailOn = value
	case "max_diff_bytes":
		return setInt(&cfg.MaxDiffBytes, key, value)
	case "concurrency":
		return setInt(&cfg.Concurrency, key, value)
	case "timeout_seconds":
		return setInt(&cfg.TimeoutSeconds, key, value)
	case "exclude":
		cfg.Exclude = splitList(value)
	case "log_level":
		cfg.LogLevel = value
	case "log_format":
		cfg.LogFormat = value
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttl_seconds":
		return setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redact_secrets":
		return setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "privacy.redact_paths":
		cfg.Privacy.RedactPaths = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

// envKey maps SKILLSCAN_CACHE__TTL_SECONDS to cache.ttl_seconds. A double
// underscore separates sections since single underscores appear in key names.
func envKey(k, v string) (string, any) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "__", ".")
	if slices.Contains(listKeys, key) {
		return key, splitList(v)
	}
	return key, v
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toMap(cfg Config) map[string]any {
	return map[string]any{
		"skills_dir":             cfg.SkillsDir,
		"skills":                 nonNil(cfg.Skills),
		"format":                 cfg.Format,
		"fail_on":                cfg.FailOn,
		"max_diff_bytes":         cfg.MaxDiffBytes,
		"concurrency":            cfg.Concurrency,
		"timeout_seconds":        cfg.TimeoutSeconds,
		"exclude":                nonNil(cfg.Exclude),
		"log_level":              cfg.LogLevel,
		"log_format":             cfg.LogFormat,
		"cache.enabled":          cfg.Cache.Enabled,
		"cache.dir":              cfg.Cache.Dir,
		"cache.ttl_seconds":      cfg.Cache.TTLSeconds,
		"privacy.redact_secrets": cfg.Privacy.RedactSecrets,
		"privacy.redact_paths":   nonNil(cfg.Privacy.RedactPaths),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
