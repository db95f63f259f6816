package logging

import (
	"go.uber.org/zap"
)

// NewZap builds the process logger. Production config by default; the
// development config is human-readable and used when APP_ENV=development.
func NewZap(env string) (*zap.Logger, error) {
	var zapConfig zap.Config
	if env == "development" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.DisableStacktrace = true

	return zapConfig.Build(zap.AddCaller())
}
