package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"photogrid/internal/eventbus"
)

// DefaultEndpoint is the Pixabay image search API
const DefaultEndpoint = "https://pixabay.com/api/"

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version" mapstructure:"version"`
	API     APISettings     `toml:"api" mapstructure:"api"`
	Search  SearchSettings  `toml:"search" mapstructure:"search"`
	UI      UISettings      `toml:"ui" mapstructure:"ui"`
	Log     LogSettings     `toml:"log" mapstructure:"log"`
	Metrics MetricsSettings `toml:"metrics" mapstructure:"metrics"`
}

// APISettings configures the image search API
type APISettings struct {
	Endpoint      string   `toml:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	Key           string   `toml:"key,omitempty" mapstructure:"key" validate:"required"`
	Timeout       Duration `toml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	RatePerMinute int      `toml:"rate_per_minute" mapstructure:"rate_per_minute" validate:"gte=0"` // 0 = unlimited
}

// SearchSettings configures the query pipeline
type SearchSettings struct {
	Debounce         Duration `toml:"debounce" mapstructure:"debounce" validate:"gt=0"`
	PageSize         int      `toml:"page_size" mapstructure:"page_size" validate:"min=3,max=200"`
	SafeSearch       bool     `toml:"safe_search" mapstructure:"safe_search"`
	FallbackQuery    string   `toml:"fallback_query" mapstructure:"fallback_query"`
	CancelSuperseded bool     `toml:"cancel_superseded" mapstructure:"cancel_superseded"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	Columns  int  `toml:"columns" mapstructure:"columns" validate:"gte=0,lte=8"` // 0 = fit to width
	ShowTags bool `toml:"show_tags" mapstructure:"show_tags"`
}

// LogSettings configures the log file
type LogSettings struct {
	File  string `toml:"file" mapstructure:"file"`
	Level string `toml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// MetricsSettings configures the optional Prometheus endpoint
type MetricsSettings struct {
	Addr string `toml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// Duration is a time.Duration written as text ("1s") in the config file
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service for the file at path.
// An empty path selects the per-user default location.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// DefaultPath returns $XDG_CONFIG_HOME/photogrid/config.toml or its platform equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "photogrid", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the service's file. A missing file yields defaults
// merged with the environment.
func (cs *configService) Load() (*Config, error) {
	cfg, err := load(cs.filePath, true)
	if err != nil {
		return nil, err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path, which must exist
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	return load(path, false)
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold the API key
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			Endpoint:      DefaultEndpoint,
			Timeout:       Duration(10 * time.Second),
			RatePerMinute: 100,
		},
		Search: SearchSettings{
			Debounce:         Duration(time.Second),
			PageSize:         200,
			SafeSearch:       true,
			CancelSuperseded: true,
		},
		UI: UISettings{
			ShowTags: true,
		},
		Log: LogSettings{
			File:  "photogrid.log",
			Level: "info",
		},
	}
}

// LoadDotEnv loads KEY=value pairs from the given .env files into the process
// environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for missing or out-of-range values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch {
	case fe.Namespace() == "Config.API.Key":
		return "api.key is required (set PIXABAY_API_KEY, add it to .env, or pass --api-key)"
	case fe.Param() != "":
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// load reads path through viper, layering defaults < file < environment
func load(path string, allowMissing bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("PHOTOGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Pixabay's own variable name is accepted for the key as well
	if err := v.BindEnv("api.key", "PHOTOGRID_API_KEY", "PIXABAY_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !allowMissing {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("api.endpoint", d.API.Endpoint)
	v.SetDefault("api.key", d.API.Key)
	v.SetDefault("api.timeout", d.API.Timeout.Std().String())
	v.SetDefault("api.rate_per_minute", d.API.RatePerMinute)
	v.SetDefault("search.debounce", d.Search.Debounce.Std().String())
	v.SetDefault("search.page_size", d.Search.PageSize)
	v.SetDefault("search.safe_search", d.Search.SafeSearch)
	v.SetDefault("search.fallback_query", d.Search.FallbackQuery)
	v.SetDefault("search.cancel_superseded", d.Search.CancelSuperseded)
	v.SetDefault("ui.columns", d.UI.Columns)
	v.SetDefault("ui.show_tags", d.UI.ShowTags)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}
