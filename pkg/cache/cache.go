// Package cache defines the budget summary cache contract. Values are always
// safe to recompute, so callers treat cache failures as misses.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ComputeFunc produces the encoded value for a missing key.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Cache stores derived values by key.
type Cache interface {
	// GetOrCompute returns the cached value for key, or runs compute, stores
	// its result and returns it. Concurrent misses on one key share a single
	// compute call.
	GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]byte, error)
	// Invalidate evicts key. Evicting a missing key is not an error.
	Invalidate(ctx context.Context, key string) error
}

// Load is GetOrCompute for JSON-encodable values.
func Load[T any](ctx context.Context, c Cache, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return out, nil
}

// SummaryKey addresses the cached summary of one budget.
func SummaryKey(budgetID uuid.UUID) string {
	return "budget:summary:" + budgetID.String()
}

// PeriodCategoryKey addresses the cached spending of one category within one
// budget period.
func PeriodCategoryKey(periodID, categoryID uuid.UUID) string {
	return "budget:period:" + periodID.String() + ":category:" + categoryID.String()
}
