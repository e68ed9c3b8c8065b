// Package config provides configuration management for the scholarly
// infrastructure service.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, an INI file (rc.cfg), and SCHOLAPI_* environment variables.
// Provider credentials live in the file's [DEFAULT] section.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/helixir/scholinfra-service/internal/domain"
)

// Credential keys in the [DEFAULT] section.
const (
	// KeyEmail is the contact address sent to Unpaywall and used as the
	// Dimensions username.
	KeyEmail = "email"
	// KeyDimensionsPassword is the Dimensions account password.
	KeyDimensionsPassword = "dimensions_password"
	// KeyRePEcToken is the RePEc API access code.
	KeyRePEcToken = "repec_token"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SCHOLAPI_DEFAULT_EMAIL.
	EnvPrefix = "SCHOLAPI"

	// EnvConfigFile names an rc.cfg to load when no path is given.
	EnvConfigFile = EnvPrefix + "_CONFIG"

	defaultSection = "default"
	maskedValue    = "********"
)

// SearchPaths are tried in order when no config file is named.
var SearchPaths = []string{
	"rc.cfg",
	"config/rc.cfg",
	"/etc/scholapi/rc.cfg",
}

// Config holds all configuration for the scholarly infrastructure service.
type Config struct {
	// Credentials holds the provider credentials from the [DEFAULT] section.
	Credentials CredentialsConfig `mapstructure:"default"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// HTTP contains outbound provider client settings.
	HTTP HTTPConfig `mapstructure:"http"`
	// Server contains gateway server settings.
	Server ServerConfig `mapstructure:"server"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// CredentialsConfig holds provider credentials. Each is optional at load
// time; a provider that needs a missing one fails when it is called.
type CredentialsConfig struct {
	// Email is the contact address for Unpaywall and the Dimensions username.
	Email string `mapstructure:"email" validate:"omitempty,email"`
	// DimensionsPassword is the Dimensions account password.
	DimensionsPassword string `mapstructure:"dimensions_password"`
	// RePEcToken is the RePEc API access code.
	RePEcToken string `mapstructure:"repec_token"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic"`
	// Format is the log format (json, console, pretty).
	Format string `mapstructure:"format" validate:"oneof=json console pretty"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output" validate:"oneof=stdout stderr"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// HTTPConfig holds settings shared by every provider client.
type HTTPConfig struct {
	// Timeout bounds each provider request.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// RateLimit is the sustained requests per second per client.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gt=0"`
	// Burst is the number of requests allowed above the sustained rate.
	Burst int `mapstructure:"burst" validate:"min=1"`
	// UserAgent is sent with every provider request.
	UserAgent string `mapstructure:"user_agent" validate:"required"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port" validate:"min=1,max=65535"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path" validate:"startswith=/"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" validate:"required"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from defaults, the INI file at path, and
// environment variables. With an empty path, $SCHOLAPI_CONFIG and then
// SearchPaths are tried; finding no file is not an error. A named file
// that cannot be read is.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		file = os.Getenv(EnvConfigFile)
	}
	if file == "" {
		file = findConfigFile()
	}

	if file != "" {
		sections, err := readINI(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.MergeConfigMap(sections); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = file
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func findConfigFile() string {
	for _, p := range SearchPaths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// readINI reads an INI file into nested maps keyed by lowercased section
// and key names. The unnamed leading section is the default section.
func readINI(path string) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, sec := range f.Sections() {
		name := strings.ToLower(sec.Name())
		if name == strings.ToLower(ini.DefaultSection) {
			name = defaultSection
		}
		keys := sec.KeysHash()
		if len(keys) == 0 {
			continue
		}
		values := make(map[string]any, len(keys))
		for k, val := range keys {
			values[strings.ToLower(k)] = val
		}
		out[name] = values
	}
	return out, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Credentials have no defaults; registering them makes env overrides visible.
	v.SetDefault("default.email", "")
	v.SetDefault("default.dimensions_password", "")
	v.SetDefault("default.repec_token", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Provider client defaults
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.rate_limit", 10.0)
	v.SetDefault("http.burst", 10)
	v.SetDefault("http.user_agent", "Helixir-ScholInfra/1.0")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "scholinfra")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("mapstructure")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Validate validates the configuration. The first failing field is
// reported as a *domain.ValidationError named by its dotted key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return domain.NewValidationError(fieldKey(fe.Namespace()),
		fmt.Sprintf("failed %q check (value %v)", fe.Tag(), fe.Value()))
}

// fieldKey turns "Config.logging.level" into "logging.level".
func fieldKey(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// Require returns the credential stored under key, or a
// *domain.ConfigurationError when it is unset.
func (c *Config) Require(key string) (string, error) {
	var val string
	switch key {
	case KeyEmail:
		val = c.Credentials.Email
	case KeyDimensionsPassword:
		val = c.Credentials.DimensionsPassword
	case KeyRePEcToken:
		val = c.Credentials.RePEcToken
	}
	if val == "" {
		return "", domain.NewConfigurationError(key)
	}
	return val, nil
}

// Setting is one dotted key and its display value.
type Setting struct {
	Key   string
	Value string
}

// Masked lists the credential settings sorted by key, with secrets replaced
// by a fixed mask. Unset values are shown empty.
func (c *Config) Masked() []Setting {
	settings := []Setting{
		{Key: defaultSection + "." + KeyEmail, Value: c.Credentials.Email},
		{Key: defaultSection + "." + KeyDimensionsPassword, Value: mask(c.Credentials.DimensionsPassword)},
		{Key: defaultSection + "." + KeyRePEcToken, Value: mask(c.Credentials.RePEcToken)},
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return maskedValue
}
