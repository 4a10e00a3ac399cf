package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	ConfigCacheTTL         time.Duration
	UploadMaxMB            int
	DisplayTimezone        string
	DisplayLocation        *time.Location
	DefaultLocale          string
	// AllowImmediateForNew offers "Yes, immediately" on new assignments.
	AllowImmediateForNew bool
	EventChannel         string
	VisibilityRateMax    int
	VisibilityRateWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SOLUTIONSHEET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Solution Sheet API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "solutionsheet/solutions")
	v.SetDefault("cache.config_ttl", "5m")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("display.timezone", "UTC")
	v.SetDefault("i18n.default_locale", "en-US")
	v.SetDefault("plugin.fromnowon", false)
	v.SetDefault("events.channel", "lms:events")
	v.SetDefault("ratelimit.visibility_max", 10)
	v.SetDefault("ratelimit.visibility_window", "1m")

	ttl, err := parseDuration(v.GetString("cache.config_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("ratelimit.visibility_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid visibility rate window: %w", err)
	}

	timezone := strings.TrimSpace(v.GetString("display.timezone"))
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid display timezone %q: %w", timezone, err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		ConfigCacheTTL:         ttl,
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		DisplayTimezone:        timezone,
		DisplayLocation:        location,
		DefaultLocale:          v.GetString("i18n.default_locale"),
		AllowImmediateForNew:   v.GetBool("plugin.fromnowon"),
		EventChannel:           v.GetString("events.channel"),
		VisibilityRateMax:      v.GetInt("ratelimit.visibility_max"),
		VisibilityRateWindow:   window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	if cfg.VisibilityRateMax <= 0 {
		cfg.VisibilityRateMax = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
