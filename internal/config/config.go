package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	DB       DBConfig       `toml:"db"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Params   string `toml:"params"`
}

// RedisConfig enables the message list cache when Addr is set.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	ListTTLSeconds  int    `toml:"list_ttl_seconds"`
	DirtyTTLSeconds int    `toml:"dirty_ttl_seconds"`
}

// RabbitMQConfig enables message.created events when URL is set.
type RabbitMQConfig struct {
	URL               string `toml:"url"`
	MessageEventQueue string `toml:"message_event_queue"`
}

func Load() (*Config, error) {
	cfg := Default()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	envPath := getEnv("DOTENV_FILE", ".env")
	if _, err := os.Stat(envPath); err == nil {
		// godotenv.Load never overrides variables already set in the process.
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load dotenv file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects values that would otherwise panic later in gin.SetMode.
func (c *Config) validate() error {
	switch c.App.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid gin mode %q: want %s, %s or %s", c.App.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.Name,
		c.DB.Params,
	)
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Two-Tier App",
			Env:     "development",
			Host:    "0.0.0.0",
			Port:    5000,
			GinMode: "debug",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     3307,
			User:     "root",
			Password: "root",
			Name:     "twotierdb",
			Params:   "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			ListTTLSeconds:  30,
			DirtyTTLSeconds: 5,
		},
		RabbitMQ: RabbitMQConfig{
			MessageEventQueue: "messages.created",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvAsInt("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.Params = getEnv("DB_PARAMS", cfg.DB.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ListTTLSeconds = getEnvAsInt("REDIS_LIST_TTL_SECONDS", cfg.Redis.ListTTLSeconds)
	cfg.Redis.DirtyTTLSeconds = getEnvAsInt("REDIS_DIRTY_TTL_SECONDS", cfg.Redis.DirtyTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.MessageEventQueue = getEnv("RABBITMQ_MESSAGE_EVENT_QUEUE", cfg.RabbitMQ.MessageEventQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
