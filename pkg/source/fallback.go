package source

import (
	"context"
	"fmt"

	"adreport/pkg/logger"

	"go.uber.org/zap"
)

// QueryFunc executes a single query
type QueryFunc func(ctx context.Context, query string) ([]Row, error)

// QueryWithFallback runs primary and, if it fails and fallback is set, runs
// fallback exactly once. The primary error is kept in the returned error
// when both fail.
func QueryWithFallback(ctx context.Context, primary, fallback string, exec QueryFunc) ([]Row, error) {
	rows, err := exec(ctx, primary)
	if err == nil {
		return rows, nil
	}
	if fallback == "" {
		return nil, err
	}

	logger.FromContext(ctx).Warn("Primary query failed, retrying with fallback",
		zap.Error(err))

	rows, fbErr := exec(ctx, fallback)
	if fbErr != nil {
		return nil, fmt.Errorf("fallback query failed: %w (primary: %v)", fbErr, err)
	}
	return rows, nil
}
