package config

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Output always goes to stderr since
// stdout carries JSON-RPC in stdio mode.
func NewLogger(cfg Log) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		zc.Level = level
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	log, err := zc.Build()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return log, nil
}
