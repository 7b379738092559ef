package resources

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Name    string
	Version string
	Env     string

	HttpHost  string
	HttpPort  string
	DebugPort string

	ResponderURL     string
	ResponderTimeout time.Duration
	FallbackDelay    time.Duration
	ChatPanelOpen    bool
	SeedEvents       bool
	SeedFile         string

	LogLevel     string
	OtelEnabled  bool
	OtelEndpoint string
}

// LoadConfig reads .env (when present) and the process environment through
// the global viper instance.
func LoadConfig(name string, version string) *Config {
	_ = godotenv.Load()

	return NewConfig(viper.GetViper(), name, version)
}

func NewConfig(v *viper.Viper, name string, version string) *Config {
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "local")
	v.SetDefault("HTTP_HOST", "localhost")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DEBUG_PORT", "6060")
	v.SetDefault("RESPONDER_URL", "http://localhost:3001")
	v.SetDefault("RESPONDER_TIMEOUT", "0s")
	v.SetDefault("CHAT_FALLBACK_DELAY", "1s")
	v.SetDefault("CHAT_PANEL_OPEN", false)
	v.SetDefault("SEED_EVENTS", true)
	v.SetDefault("SEED_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_ENDPOINT", "localhost:4317")

	return &Config{
		Name:             name,
		Version:          version,
		Env:              v.GetString("APP_ENV"),
		HttpHost:         v.GetString("HTTP_HOST"),
		HttpPort:         v.GetString("HTTP_PORT"),
		DebugPort:        v.GetString("DEBUG_PORT"),
		ResponderURL:     v.GetString("RESPONDER_URL"),
		ResponderTimeout: v.GetDuration("RESPONDER_TIMEOUT"),
		FallbackDelay:    v.GetDuration("CHAT_FALLBACK_DELAY"),
		ChatPanelOpen:    v.GetBool("CHAT_PANEL_OPEN"),
		SeedEvents:       v.GetBool("SEED_EVENTS"),
		SeedFile:         v.GetString("SEED_FILE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		OtelEnabled:      v.GetBool("OTEL_ENABLED"),
		OtelEndpoint:     v.GetString("OTEL_ENDPOINT"),
	}
}
