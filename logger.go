package pulseboard

import (
	"go.uber.org/zap"
)

// NewLogger builds a production zap logger at the given level
// ("debug", "info", "warn" or "error").
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
