package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Reporter ReporterConfig `json:"reporter"`
	Redis    RedisConfig    `json:"redis"`
	MongoDB  MongoDBConfig  `json:"mongodb"`
	GeoIP    GeoIPConfig    `json:"geoip"`
	Alerts   AlertsConfig   `json:"alerts"`
	Versions VersionsConfig `json:"versions"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	Host           string   `json:"host"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// ReporterConfig drives the device-side reporter (used by the agent
// script and by deployments embedding the reporter in the node process).
type ReporterConfig struct {
	CollectorURL    string `json:"collector_url"`
	IntervalSeconds uint   `json:"interval_seconds"`
}

type RedisConfig struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Enabled  bool   `json:"enabled"`
	UseTLS   bool   `json:"use_tls"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Enabled  bool   `json:"enabled"`
}

type GeoIPConfig struct {
	DBPath string `json:"db_path"`
}

type AlertsConfig struct {
	DiscordToken     string `json:"-"` // env only, never from file
	DiscordChannelID string `json:"discord_channel_id"`
	EvaluateInterval int    `json:"evaluate_interval_seconds"`
	StaleThreshold   int    `json:"stale_threshold_minutes"`
	Cooldown         int    `json:"cooldown_minutes"`
}

// VersionsConfig is the device_version policy the collector evaluates
// reports against.
type VersionsConfig struct {
	CurrentStable string `json:"current_stable"`
	MinSupported  string `json:"min_supported"`
	Deprecated    string `json:"deprecated"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			AllowedOrigins: []string{"*"},
		},
		Reporter: ReporterConfig{
			CollectorURL:    "http://127.0.0.1:8080/rpc",
			IntervalSeconds: 60,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
			DB:      0,
			Enabled: true,
			UseTLS:  false,
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "nodepulse",
			Enabled:  true,
		},
		GeoIP: GeoIPConfig{
			DBPath: "",
		},
		Alerts: AlertsConfig{
			EvaluateInterval: 60,
			StaleThreshold:   5,
			Cooldown:         30,
		},
		Versions: VersionsConfig{
			CurrentStable: "1.2.0",
			MinSupported:  "1.1.0",
			Deprecated:    "1.0.0",
		},
	}

	// Load from config file if exists
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err == nil {
			defer file.Close()
			if err := json.NewDecoder(file).Decode(cfg); err != nil {
				fmt.Printf("Warning: Failed to decode config file: %v\n", err)
			}
		}
	}

	// Environment variables override the file
	loadEnv(cfg)

	// Command-line flags override everything
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var serverPort int
	var serverHost string

	fs.IntVar(&serverPort, "port", 0, "Server port")
	fs.StringVar(&serverHost, "host", "", "Server host")

	_ = fs.Parse(os.Args[1:])

	if isFlagPassed(fs, "port") {
		cfg.Server.Port = serverPort
	}
	if isFlagPassed(fs, "host") {
		cfg.Server.Host = serverHost
	}

	return cfg, nil
}

func isFlagPassed(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func loadEnv(cfg *Config) {
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv("SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Server.AllowedOrigins = parts
	}

	if val := os.Getenv("COLLECTOR_URL"); val != "" {
		cfg.Reporter.CollectorURL = val
	}
	if val := os.Getenv("REPORT_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil && p > 0 {
			cfg.Reporter.IntervalSeconds = uint(p)
		}
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = p
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		cfg.Redis.Enabled = val == "true" || val == "1"
	}
	if val := os.Getenv("REDIS_TLS"); val != "" {
		cfg.Redis.UseTLS = val == "true" || val == "1"
	}

	if val := os.Getenv("MONGODB_URI"); val != "" {
		cfg.MongoDB.URI = val
	}
	if val := os.Getenv("MONGODB_DATABASE"); val != "" {
		cfg.MongoDB.Database = val
	}
	if val := os.Getenv("MONGODB_ENABLED"); val != "" {
		cfg.MongoDB.Enabled = val == "true" || val == "1"
	}

	if val := os.Getenv("GEOIP_DB_PATH"); val != "" {
		cfg.GeoIP.DBPath = val
	}

	cfg.Alerts.DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
	if val := os.Getenv("DISCORD_CHANNEL_ID"); val != "" {
		cfg.Alerts.DiscordChannelID = val
	}
	if val := os.Getenv("ALERT_EVALUATE_INTERVAL"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Alerts.EvaluateInterval = p
		}
	}
	if val := os.Getenv("ALERT_STALE_THRESHOLD"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Alerts.StaleThreshold = p
		}
	}
	if val := os.Getenv("ALERT_COOLDOWN"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Alerts.Cooldown = p
		}
	}

	if val := os.Getenv("VERSION_CURRENT_STABLE"); val != "" {
		cfg.Versions.CurrentStable = val
	}
	if val := os.Getenv("VERSION_MIN_SUPPORTED"); val != "" {
		cfg.Versions.MinSupported = val
	}
	if val := os.Getenv("VERSION_DEPRECATED"); val != "" {
		cfg.Versions.Deprecated = val
	}
}

// Helper methods for duration conversion
func (c *Config) ReportIntervalDuration() time.Duration {
	return time.Duration(c.Reporter.IntervalSeconds) * time.Second
}

func (c *Config) AlertEvaluateIntervalDuration() time.Duration {
	return time.Duration(c.Alerts.EvaluateInterval) * time.Second
}

func (c *Config) StaleThresholdDuration() time.Duration {
	return time.Duration(c.Alerts.StaleThreshold) * time.Minute
}

func (c *Config) AlertCooldownDuration() time.Duration {
	return time.Duration(c.Alerts.Cooldown) * time.Minute
}
