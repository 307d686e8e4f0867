package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/circulation.yaml"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	Environment               string        `koanf:"environment" default:"production"`
	ExpirySweepInterval       time.Duration `koanf:"expiry_sweep_interval" default:"1h"`
	JWTSecret                 string        `koanf:"jwt_secret" required:"true"`
	MembershipDays            int           `koanf:"membership_days" default:"365"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`
	SessionMaxAge             time.Duration `koanf:"session_max_age" default:"168h"`
	WorkerEnabled             bool          `koanf:"worker_enabled" default:"true"`
}

// New loads the configuration. Defaults are applied first, then the YAML file
// pointed to by CONFIG_FILE (if it exists), then environment variables, so an
// env var always wins over the file.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", configFile)
		}
	}

	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a configuration suitable for tests: an in-memory
// database and a fixed secret. The worker is left disabled.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)

	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = "test"
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	cfg.WorkerEnabled = false

	return cfg
}

// IsTest reports whether the process runs with ENVIRONMENT=test.
func (cfg *Config) IsTest() bool {
	return cfg.Environment == "test"
}

func checkRequired(cfg *Config) error {
	missing := []string{}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if !v.Field(i).IsZero() {
			continue
		}
		key := toSnakeCase(field.Name)
		missing = append(missing, fmt.Sprintf("%s (env) / %s (yaml)", strings.ToUpper(key), key))
	}

	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
