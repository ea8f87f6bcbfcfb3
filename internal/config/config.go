package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT"`
	Interface    string        `yaml:"interface" env:"SERVER_INTERFACE"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `yaml:"secret" env:"JWT_SECRET"`
	ExpirationSeconds int    `yaml:"expiration_seconds" env:"JWT_EXPIRATION_SECONDS"`
}

// RedisConfig holds Redis configuration; Redis is optional and the server
// degrades to uncached behavior when the host is empty or unreachable.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     string `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// Addr returns the host:port address for the Redis client
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// OpenAIConfig holds configuration for the external inference API.
// An empty API key disables AI features; callers fall back where defined.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model" env:"OPENAI_MODEL"`
}

// WebSocketConfig holds WebSocket tuning parameters
type WebSocketConfig struct {
	ReadLimitBytes   int64         `yaml:"read_limit_bytes" env:"WEBSOCKET_READ_LIMIT_BYTES"`
	SendBufferSize   int           `yaml:"send_buffer_size" env:"WEBSOCKET_SEND_BUFFER_SIZE"`
	PongTimeout      time.Duration `yaml:"pong_timeout" env:"WEBSOCKET_PONG_TIMEOUT"`
	WriteTimeout     time.Duration `yaml:"write_timeout" env:"WEBSOCKET_WRITE_TIMEOUT"`
	PingInterval     time.Duration `yaml:"ping_interval" env:"WEBSOCKET_PING_INTERVAL"`
	AllowedOrigins   []string      `yaml:"allowed_origins" env:"WEBSOCKET_ALLOWED_ORIGINS"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level            string `yaml:"level" env:"LOG_LEVEL"`
	IsDev            bool   `yaml:"is_dev" env:"LOG_IS_DEV"`
	LogDir           string `yaml:"log_dir" env:"LOG_DIR"`
	MaxAgeDays       int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
	MaxSizeMB        int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups       int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
	AlsoLogToConsole bool   `yaml:"also_log_to_console" env:"LOG_ALSO_LOG_TO_CONSOLE"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load(configFile string) (*Config, error) {
	config := getDefaultConfig()

	if configFile != "" {
		if err := loadFromYAML(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from YAML: %w", err)
		}
	}

	if err := overrideWithEnv(config); err != nil {
		return nil, fmt.Errorf("failed to override with environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// getDefaultConfig returns a configuration with default values
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Interface:    "0.0.0.0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Secret:            "",
				ExpirationSeconds: 86400,
			},
		},
		Redis: RedisConfig{
			Host:     "",
			Port:     "6379",
			Password: "",
			DB:       0,
		},
		OpenAI: OpenAIConfig{
			APIKey: "",
			Model:  "gpt-4o-mini",
		},
		WebSocket: WebSocketConfig{
			ReadLimitBytes: 65536,
			SendBufferSize: 256,
			PongTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			PingInterval:   30 * time.Second,
			AllowedOrigins: nil,
		},
		Logging: LoggingConfig{
			Level:            "info",
			IsDev:            true,
			LogDir:           "logs",
			MaxAgeDays:       7,
			MaxSizeMB:        100,
			MaxBackups:       10,
			AlsoLogToConsole: true,
		},
	}
}

// loadFromYAML loads configuration from a YAML file
func loadFromYAML(config *Config, filename string) error {
	data, err := os.ReadFile(filename) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// overrideWithEnv overrides configuration values with environment variables
func overrideWithEnv(config *Config) error {
	return overrideStructWithEnv(reflect.ValueOf(config).Elem())
}

// overrideStructWithEnv recursively overrides struct fields with environment variables
func overrideStructWithEnv(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := overrideStructWithEnv(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := setFieldFromString(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromString sets a struct field value from a string based on the field type
func setFieldFromString(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid bool value: %s", value)
		}
		field.SetBool(boolVal)
	case reflect.Int:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid int value: %s", value)
		}
		field.SetInt(int64(intVal))
	case reflect.Int64:
		// time.Duration fields accept Go duration syntax
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(duration))
		} else {
			intVal, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int64 value: %s", value)
			}
			field.SetInt(intVal)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			slice := make([]string, 0, len(parts))
			for _, part := range parts {
				trimmed := strings.TrimSpace(part)
				if trimmed != "" {
					slice = append(slice, trimmed)
				}
			}
			field.Set(reflect.ValueOf(slice))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Auth.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required (set JWT_SECRET)")
	}
	if c.Auth.JWT.ExpirationSeconds <= 0 {
		return fmt.Errorf("JWT expiration must be positive")
	}
	if c.WebSocket.SendBufferSize <= 0 {
		return fmt.Errorf("websocket send buffer size must be positive")
	}
	return nil
}
