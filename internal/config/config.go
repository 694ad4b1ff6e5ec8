package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SALEORWIPE_ENDPOINT.
	EnvPrefix = "SALEORWIPE"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "SALEORWIPE_CONFIG"
)

// Configuration keys. They double as flag names.
const (
	KeyEndpoint = "endpoint"
	KeyEmail    = "email"
	KeyPassword = "password"
	KeyChannel  = "channel"
	KeyPageSize = "page-size"
	KeyTimeout  = "timeout"
	KeyMaxPages = "max-pages"
)

// Defaults
const (
	DefaultChannel  = "zakladny"
	DefaultPageSize = 100
	DefaultTimeout  = 30 * time.Second
	MaxPageSize     = 100
)

// Keys lists every key accepted by Set, in display order.
var Keys = []string{KeyEndpoint, KeyEmail, KeyPassword, KeyChannel, KeyPageSize, KeyTimeout, KeyMaxPages}

// Settings is the resolved connection configuration of a run.
type Settings struct {
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Email    string        `mapstructure:"email" validate:"required,email"`
	Password string        `mapstructure:"password" validate:"required"`
	Channel  string        `mapstructure:"channel" validate:"required"`
	PageSize int           `mapstructure:"page-size" validate:"min=1,max=100"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// MaxPages caps how many pages a run may fetch. 0 means no limit.
	MaxPages int `mapstructure:"max-pages" validate:"min=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that the settings are complete enough to talk to the API.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required (flag --%s or %s)", key, key, EnvName(key))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", key)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", key)
	case "min", "max":
		if key == KeyMaxPages {
			return fmt.Sprintf("%s cannot be negative", key)
		}
		return fmt.Sprintf("%s must be between 1 and %d", key, MaxPageSize)
	case "gt":
		return fmt.Sprintf("%s must be positive", key)
	}
	return fmt.Sprintf("%s failed %q validation", key, fe.Tag())
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Config manages the on-disk configuration file
type Config struct {
	path  string
	viper *viper.Viper
}

// New creates a new Config with the default path (~/.saleorwipe/config.yaml)
// The path can be overridden by setting the SALEORWIPE_CONFIG environment variable.
func New() *Config {
	if configPath := os.Getenv(EnvConfigPath); configPath != "" {
		return NewWithPath(configPath)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return NewWithPath(filepath.Join(homeDir, ".saleorwipe", "config.yaml"))
}

// NewWithPath creates a new Config with a custom path
func NewWithPath(path string) *Config {
	return &Config{
		path:  path,
		viper: fileViper(path),
	}
}

func fileViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.path
}

// Load reads the configuration file. A missing file is not an error.
func (c *Config) Load() error {
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	}
	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", c.path, err)
	}
	return nil
}

// Save writes the configuration to disk. The file may hold a password, so
// it is only readable by the owner.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	if err := c.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config %s: %w", c.path, err)
	}
	return os.Chmod(c.path, 0600)
}

// Get returns the value stored in the file for key.
func (c *Config) Get(key string) (string, error) {
	if err := c.Load(); err != nil {
		return "", err
	}
	return c.viper.GetString(key), nil
}

// Set validates value for key and stores it in the config file.
func (c *Config) Set(key, value string) error {
	normalized, err := normalize(key, value)
	if err != nil {
		return err
	}
	if err := c.Load(); err != nil {
		return err
	}
	c.viper.Set(key, normalized)
	return c.Save()
}

func normalize(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyEndpoint:
		if err := validate.Var(value, "required,url"); err != nil {
			return nil, fmt.Errorf("invalid endpoint '%s': must be a URL", value)
		}
		return value, nil
	case KeyEmail:
		if err := validate.Var(value, "required,email"); err != nil {
			return nil, fmt.Errorf("invalid email '%s'", value)
		}
		return value, nil
	case KeyPassword, KeyChannel:
		if value == "" {
			return nil, fmt.Errorf("%s cannot be empty", key)
		}
		return value, nil
	case KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxPageSize {
			return nil, fmt.Errorf("invalid page-size '%s': must be a number between 1 and %d", value, MaxPageSize)
		}
		return n, nil
	case KeyMaxPages:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid max-pages '%s': must be 0 (no limit) or a positive number", value)
		}
		return n, nil
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid timeout '%s': must be a positive duration like 30s", value)
		}
		return value, nil
	}
	known := append([]string(nil), Keys...)
	sort.Strings(known)
	return nil, fmt.Errorf("unknown config key '%s' (valid keys: %s)", key, strings.Join(known, ", "))
}

// Resolve merges defaults, the config file, SALEORWIPE_* environment
// variables and any changed flags, in increasing priority. flags may be nil.
// The result is not validated.
func (c *Config) Resolve(flags *pflag.FlagSet) (Settings, error) {
	v := fileViper(c.path)
	v.SetDefault(KeyChannel, DefaultChannel)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())

	if _, err := os.Stat(c.path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", c.path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, err
				}
			}
		}
	}

	timeout, err := time.ParseDuration(v.GetString(KeyTimeout))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid timeout '%s': %w", v.GetString(KeyTimeout), err)
	}

	return Settings{
		Endpoint: strings.TrimSpace(v.GetString(KeyEndpoint)),
		Email:    strings.TrimSpace(v.GetString(KeyEmail)),
		Password: v.GetString(KeyPassword),
		Channel:  strings.TrimSpace(v.GetString(KeyChannel)),
		PageSize: v.GetInt(KeyPageSize),
		Timeout:  timeout,
		MaxPages: v.GetInt(KeyMaxPages),
	}, nil
}

// LoadDotEnv exports the variables of a .env file without overriding ones
// already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
