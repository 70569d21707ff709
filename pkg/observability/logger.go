package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide structured logger. Production gets
// JSON output at info level; everything else gets the console encoder
// with debug enabled.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
