// config.go: This file contains the configuration for the libris console. It defines
// the settings struct and functions to load, validate and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// RotationType defines the log rotation strategy.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // path to log file
	Rotation RotationType // rotation type
	MaxSize  int64        // max size in bytes for RotationSize
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of the node/instance, used in logs
	Log  LogConfig // main log configuration
}

// ServerSettings describes the remote REST backend.
type ServerSettings struct {
	URL     string        // base URL of the REST API, e.g. https://library.example.org/api
	Token   string        // bearer token for authenticated requests
	Timeout time.Duration // per-request timeout
	PerPage int           // page size for paginated listings
}

// CacheSettings controls the client-side query cache.
type CacheSettings struct {
	TTL time.Duration // how long a cached query result is considered fresh
}

// StorageSettings describes the external blob store used for book cover images.
type StorageSettings struct {
	URL    string // base URL of the object storage service
	Bucket string // bucket holding cover images
	APIKey string // service key for upload/remove operations
}

// Settings contains all configuration options for the libris console.
type Settings struct {
	Debug bool // true to enable debug behavior

	Main    MainSettings
	Server  ServerSettings
	Cache   CacheSettings
	Storage StorageSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration into the provided settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	// Initialize viper and read config
	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	// Unmarshal config into struct
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Environment variables override file values, e.g. LIBRIS_SERVER_TOKEN.
	viper.SetEnvPrefix("libris")
	viper.AutomaticEnv()

	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file from the embedded template
// and writes it to the first default config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig returns the embedded default configuration as a string.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading default config file: %v", err)
	}
	return string(data)
}

// setDefaultConfig sets fallback values used when a key is absent from the
// config file and environment.
func setDefaultConfig() {
	viper.SetDefault("main.name", "libris")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/libris.log")
	viper.SetDefault("main.log.rotation", string(RotationDaily))
	viper.SetDefault("main.log.maxsize", 100*1024*1024)
	viper.SetDefault("debug", false)
	viper.SetDefault("server.url", "http://localhost:8000/api")
	viper.SetDefault("server.timeout", "30s")
	viper.SetDefault("server.perpage", 12)
	viper.SetDefault("cache.ttl", "60s")
	viper.SetDefault("storage.bucket", "book-covers")
}

// ValidateSettings checks settings for missing or inconsistent values.
func ValidateSettings(settings *Settings) error {
	if settings.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if settings.Server.PerPage <= 0 {
		return fmt.Errorf("server.perpage must be positive, got %d", settings.Server.PerPage)
	}
	if settings.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", settings.Server.Timeout)
	}
	if settings.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", settings.Cache.TTL)
	}
	switch settings.Main.Log.Rotation {
	case RotationDaily, RotationWeekly, RotationSize, "":
	default:
		return fmt.Errorf("unknown log rotation type: %s", settings.Main.Log.Rotation)
	}
	return nil
}

// SaveSettings writes the current settings to the given path as YAML.
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing settings: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the default configuration file locations in
// order of precedence: current directory, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting user config directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(configDir, "libris"),
	}, nil
}

// Setting returns the current settings instance, loading it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SetSettings replaces the current settings instance. Intended for tests.
func SetSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
}
