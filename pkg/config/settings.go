package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "AGENT"

type Settings struct {
	Database       DbSettings           `mapstructure:"database"`
	Broker         BrokerSettings       `mapstructure:"broker"`
	Endpoint       EndpointSettings     `mapstructure:"endpoint"`
	SDK            SDKSettings          `mapstructure:"sdk"`
	Notification   NotificationSettings `mapstructure:"notification"`
	PollInterval   time.Duration        `mapstructure:"poll_interval" validate:"required"`
	BatchSize      int                  `mapstructure:"batch_size" validate:"min=1"`
	Concurrency    int                  `mapstructure:"concurrency" validate:"min=1"`
	RequestTimeout time.Duration        `mapstructure:"request_timeout"`
	Observability  Observability        `mapstructure:"observability"`
}

// envKeys are bound explicitly so that Unmarshal sees them without a config file.
var envKeys = []string{
	"database.type",
	"database.dsn",
	"database.uri",
	"database.db_name",
	"database.collection",
	"database.event_ttl",
	"broker.type",
	"broker.url",
	"broker.exchange",
	"broker.topic",
	"broker.project_id",
	"broker.brokers",
	"broker.pool_size",
	"endpoint.domain",
	"endpoint.endpoint_id",
	"endpoint.device_uuid",
	"endpoint.installation_id",
	"sdk.package_name",
	"sdk.version_name",
	"sdk.version_code",
	"sdk.sdk_version",
	"notification.channel_id",
	"notification.channel_name",
	"notification.default_screen",
	"notification.image_timeout",
	"poll_interval",
	"batch_size",
	"concurrency",
	"request_timeout",
	"observability.service_name",
	"observability.service_version",
	"observability.environment",
	"observability.tracing_url",
	"observability.tracing_secure",
	"observability.sample_ratio",
	"observability.log_level",
}

func (c *Settings) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.type", "memory")
	v.SetDefault("broker.pool_size", 5)
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("batch_size", 50)
	v.SetDefault("concurrency", 4)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("notification.image_timeout", 30*time.Second)
}

// LoadFromFile reads agent.yaml from dirPath, merges agent.{ENVIRONMENT}.yaml
// over it when present, then applies AGENT_* environment variables. A .env
// file in the working directory is loaded into the environment first.
func LoadFromFile(dirPath string) (*Settings, error) {
	_ = godotenv.Load()

	env := getEnvWithDefaultLookup("ENVIRONMENT", "development")

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetConfigName("agent")
	v.AddConfigPath(dirPath)
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := mergeConfig(v, dirPath, "agent."+env); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to merge %s config: %w", env, err)
		}
	}

	cfg := &Settings{}
	if err := cfg.loadFromEnv(v); err != nil {
		return nil, fmt.Errorf("failed to load from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv fills c from defaults and AGENT_* environment variables only.
func (c *Settings) LoadFromEnv() error {
	v := viper.New()
	setDefaults(v)
	return c.loadFromEnv(v)
}

func (c *Settings) loadFromEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // env vars like AGENT_DATABASE_TYPE
	v.AutomaticEnv()

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	return v.Unmarshal(c)
}

func mergeConfig(v *viper.Viper, path string, name string) error {
	v.SetConfigName(name)
	v.AddConfigPath(path)
	return v.MergeInConfig()
}

func getEnvWithDefaultLookup(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
