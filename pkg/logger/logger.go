// Package logger builds the application zap logger and the gin request
// logging middleware.
package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/middleware/requestid"
)

// New builds a zap logger from the Log section of the config. Production
// defaults to json encoding, everything else to the development preset.
// An unparsable level falls back to info rather than failing startup.
func New(cfg *config.Config) (*zap.Logger, error) {
	base := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		base = zap.NewProductionConfig()
	}

	if cfg.Log.Format == "console" {
		base.Encoding = "console"
	} else {
		base.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := base.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			base.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	base.EncoderConfig.TimeKey = "timestamp"
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return base.Build()
}

// GinMiddleware logs one line per request after the handler chain runs,
// tagged with the correlation id when present.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		l.Info("http_request", fields...)
	}
}
