// Package config загружает настройки сервиса из файла config.yaml и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
}

// DatabaseConfig - параметры подключения к PostgreSQL, обязательны только для storage.driver=postgres
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           string `mapstructure:"port" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	SSLMode        string `mapstructure:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MigrationsPath string `mapstructure:"migrations_path" validate:"required_if=Enabled true"`
	MaxConns       int32  `mapstructure:"max_conns" validate:"gte=1"`
	MinConns       int32  `mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	Enabled        bool   `mapstructure:"-"`
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     string `mapstructure:"port" validate:"required_if=Enabled true"`
	User     string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	Queue    string `mapstructure:"queue" validate:"required_if=Enabled true"`
}

// URL - строка подключения в формате pgx
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/",
	}
	return u.String()
}

// Load читает конфигурацию. Переменные окружения важнее файла.
// configPath может быть пустым, тогда ищется ./config.yaml.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.driver", StoragePostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.queue", "task_lifecycle_events")

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TASKMANAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// те же имена переменных, что и в docker-compose
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"database.host", "DB_HOST"},
		{"database.port", "DB_PORT"},
		{"database.user", "DB_USER"},
		{"database.password", "DB_PASSWORD"},
		{"database.name", "DB_NAME"},
		{"rabbitmq.host", "RABBITMQ_HOST"},
		{"rabbitmq.port", "RABBITMQ_PORT"},
		{"rabbitmq.user", "RABBITMQ_USER"},
		{"rabbitmq.password", "RABBITMQ_PASSWORD"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, "TASKMANAGER_"+strings.ToUpper(strings.ReplaceAll(env.key, ".", "_")), env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Database.Enabled = cfg.Storage.Driver == StoragePostgres

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
