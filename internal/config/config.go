package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              string        `yaml:"port"`
	DBDSN             string        `yaml:"db_dsn"`
	RedisAddr         string        `yaml:"redis_addr"`
	AMQPURL           string        `yaml:"amqp_url"`
	LogFile           string        `yaml:"log_file"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	NotifyCooldown    time.Duration `yaml:"notify_cooldown"`
}

// Load reads configuration from the environment, optionally overlaid by a
// YAML file named in CONFIG_FILE. Environment values win over file values.
func Load() Config {
	cfg := Config{
		Port:              "8080",
		DBDSN:             "bazaar.db",
		RedisAddr:         "localhost:6379",
		LowStockThreshold: 10,
		NotifyCooldown:    60 * time.Second,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if b, err := os.ReadFile(path); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			log.Printf("[warn] could not parse config file %s: %v", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQPURL = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("NOTIFY_COOLDOWN"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.NotifyCooldown = d
		} else {
			log.Printf("[warn] bad NOTIFY_COOLDOWN %q: %v", v, err)
		}
	}

	log.Printf("[config] PORT=%s DB_DSN=%s REDIS_ADDR=%s COOLDOWN=%s", cfg.Port, cfg.DBDSN, cfg.RedisAddr, cfg.NotifyCooldown)
	return cfg
}
