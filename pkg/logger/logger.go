// pkg/logger/logger.go
package logger

import (
	"go.uber.org/zap"
)

type Sugared = *zap.SugaredLogger

// New builds the production encoder for env "prod" and the development one
// otherwise. level (LOG_LEVEL: debug, info, warn, error) overrides the
// preset's level; an empty or unknown value keeps the preset.
func New(env, level string) Sugared {
	zc := zap.NewDevelopmentConfig()
	if env == "prod" {
		zc = zap.NewProductionConfig()
	}
	if level != "" {
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			zc.Level = lvl
		}
	}
	z, err := zc.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return z.Sugar().Named("logviewer").With("env", env)
}
