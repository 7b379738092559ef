package resources

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CreateLogger installs the global zerolog logger and returns ctx carrying it.
func CreateLogger(ctx context.Context, cfg *Config) context.Context {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Env == "local" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().
		Str("service", cfg.Name).Str("version", cfg.Version).Str("env", cfg.Env).
		Logger()
	zerolog.DefaultContextLogger = &log.Logger

	return log.Logger.WithContext(ctx)
}

// LoggerMiddleware puts the global logger, tagged with the route, on every
// request context so handlers can use log.Ctx.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := log.Logger.With().Str("component", "rest").Str("http.route", c.FullPath()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}
