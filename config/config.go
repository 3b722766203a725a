package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "1MB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	SecretKey struct {
		Session string `json:"session" yaml:"session"`
	} `json:"secretKey" yaml:"secretKey"`

	// Vault configuration for the encrypted data file
	Vault *VaultConfig `json:"vault" yaml:"vault"`

	// Autosave configuration for the background persistence engine
	Autosave *AutosaveConfig `json:"autosave" yaml:"autosave"`

	// Crypto configuration for key derivation
	Crypto *CryptoConfig `json:"crypto" yaml:"crypto"`

	// HandleStore configuration for the durable directory-handle store
	HandleStore *HandleStoreConfig `json:"handleStore" yaml:"handleStore"`

	// Session configuration for unlock tokens
	Session *SessionConfig `json:"session" yaml:"session"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// VaultConfig defines the on-disk layout of the vault inside the granted
// directory.
type VaultConfig struct {
	// FileName is the canonical data file name inside the granted directory.
	FileName string `json:"fileName" yaml:"fileName"`

	// BackupSuffix is appended to FileName for the backup-then-replace step.
	BackupSuffix string `json:"backupSuffix" yaml:"backupSuffix"`

	// Encrypt controls whether documents are sealed in an envelope. The
	// unlock flow requires it; plaintext is only for development.
	Encrypt bool `json:"encrypt" yaml:"encrypt"`
}

// AutosaveConfig defines debounce and retry behavior of the persistence
// engine. The retry bounds are deliberately configurable; the defaults are
// 5 attempts with exponential delay capped at 30s.
type AutosaveConfig struct {
	// Debounce is how long a queued mutation waits for more mutations
	// before the write happens.
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// BulkDebounce replaces Debounce while a bulk operation is in progress.
	BulkDebounce time.Duration `json:"bulkDebounce" yaml:"bulkDebounce"`

	// MaxRetries is the retry ceiling before the engine parks in error.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// InitialBackoff is the first retry delay.
	InitialBackoff time.Duration `json:"initialBackoff" yaml:"initialBackoff"`

	// MaxBackoff caps the exponential retry delay.
	MaxBackoff time.Duration `json:"maxBackoff" yaml:"maxBackoff"`
}

// CryptoConfig defines key-derivation parameters.
type CryptoConfig struct {
	// Iterations for PBKDF2-SHA256.
	Iterations int `json:"iterations" yaml:"iterations"`

	// SaltLength in bytes.
	SaltLength int `json:"saltLength" yaml:"saltLength"`
}

// HandleStoreConfig locates the small durable key-value store that persists
// the directory handle across sessions. This lives outside the vault
// directory so it survives disconnects.
type HandleStoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// SessionConfig defines unlock session token behavior.
type SessionConfig struct {
	TokenTTL time.Duration `json:"tokenTtl" yaml:"tokenTtl"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: AUTOSAVE_BULKDEBOUNCE -> autosave.bulkDebounce
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.Vault == nil {
		cfg.Vault = &VaultConfig{}
	}
	if cfg.Vault.FileName == "" {
		cfg.Vault.FileName = "casevault-data.json"
	}
	if cfg.Vault.BackupSuffix == "" {
		cfg.Vault.BackupSuffix = ".backup"
	}
	if cfg.Autosave == nil {
		cfg.Autosave = &AutosaveConfig{}
	}
	if cfg.Autosave.Debounce <= 0 {
		cfg.Autosave.Debounce = 5 * time.Second
	}
	if cfg.Autosave.BulkDebounce <= 0 {
		cfg.Autosave.BulkDebounce = 15 * time.Second
	}
	if cfg.Autosave.MaxRetries <= 0 {
		cfg.Autosave.MaxRetries = 5
	}
	if cfg.Autosave.InitialBackoff <= 0 {
		cfg.Autosave.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.Autosave.MaxBackoff <= 0 {
		cfg.Autosave.MaxBackoff = 30 * time.Second
	}
	if cfg.Crypto == nil {
		cfg.Crypto = &CryptoConfig{}
	}
	if cfg.Crypto.Iterations <= 0 {
		cfg.Crypto.Iterations = 600_000
	}
	if cfg.Crypto.SaltLength <= 0 {
		cfg.Crypto.SaltLength = 16
	}
	if cfg.HandleStore == nil {
		cfg.HandleStore = &HandleStoreConfig{}
	}
	if cfg.HandleStore.Path == "" {
		cfg.HandleStore.Path = "casevault-handles.db"
	}
	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.TokenTTL <= 0 {
		cfg.Session.TokenTTL = 8 * time.Hour
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
