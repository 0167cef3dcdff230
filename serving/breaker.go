// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package serving

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/recserve/internal/logging"
	"github.com/tomtom215/recserve/internal/metrics"
)

// BreakerClient wraps a serving layer client with the circuit breaker
// pattern, preventing cascading failures when the serving layer is
// unavailable or slow.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. The timing determines when to
// recover from failures, not data integrity. For unit tests, prefer testing
// the wrapped client directly.
type BreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// Ensure BreakerClient implements ClientInterface
var _ ClientInterface = (*BreakerClient)(nil)

// NewBreakerClient wraps client with a circuit breaker.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(client ClientInterface, name string) *BreakerClient {
	if name == "" {
		name = "serving-api"
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   name,
	}
}

// execute wraps a serving layer call with circuit breaker protection.
// Returns the result or an error if the circuit is open or the call fails.
// A StatusError carrying ErrNotFound does not count as a breaker failure:
// an unknown user is a data condition, not a serving layer outage.
func (bc *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := bc.cb.Execute(func() (interface{}, error) {
		result, err := fn()
		if err != nil && errors.Is(err, ErrNotFound) {
			return notFoundResult{result: result, err: err}, nil
		}
		return result, err
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
		}
		return nil, err
	}

	if nf, ok := result.(notFoundResult); ok {
		metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
		return nf.result, nf.err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	return result, nil
}

// notFoundResult smuggles a not-found outcome through the breaker as a
// success so it does not contribute to the failure rate.
type notFoundResult struct {
	result interface{}
	err    error
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// AddPreference adds a user-item association with circuit breaker protection.
func (bc *BreakerClient) AddPreference(ctx context.Context, userID, itemID int64, strength *float64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.AddPreference(ctx, userID, itemID, strength)
	})
	return err
}

// RemovePreference removes a user-item association with circuit breaker protection.
func (bc *BreakerClient) RemovePreference(ctx context.Context, userID, itemID int64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.RemovePreference(ctx, userID, itemID)
	})
	return err
}

// SetUserTag tags a user with circuit breaker protection.
func (bc *BreakerClient) SetUserTag(ctx context.Context, userID int64, tag string, strength float64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.SetUserTag(ctx, userID, tag, strength)
	})
	return err
}

// SetItemTag tags an item with circuit breaker protection.
func (bc *BreakerClient) SetItemTag(ctx context.Context, itemID int64, tag string, strength float64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.SetItemTag(ctx, itemID, tag, strength)
	})
	return err
}

// Ingest bulk-loads preferences with circuit breaker protection.
func (bc *BreakerClient) Ingest(ctx context.Context, preferences []Preference) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Ingest(ctx, preferences)
	})
	return err
}

// Recommend computes recommendations with circuit breaker protection.
func (bc *BreakerClient) Recommend(ctx context.Context, userID int64, opts *QueryOptions) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.Recommend(ctx, userID, opts)
	}))
}

// RecommendToMany computes group recommendations with circuit breaker protection.
func (bc *BreakerClient) RecommendToMany(ctx context.Context, userIDs []int64, opts *QueryOptions) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.RecommendToMany(ctx, userIDs, opts)
	}))
}

// RecommendToAnonymous computes anonymous recommendations with circuit breaker protection.
func (bc *BreakerClient) RecommendToAnonymous(ctx context.Context, preferences []ItemStrength, opts *QueryOptions) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.RecommendToAnonymous(ctx, preferences, opts)
	}))
}

// MostPopularItems retrieves popular items with circuit breaker protection.
func (bc *BreakerClient) MostPopularItems(ctx context.Context, opts *QueryOptions) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.MostPopularItems(ctx, opts)
	}))
}

// Because explains a recommendation with circuit breaker protection.
func (bc *BreakerClient) Because(ctx context.Context, userID, itemID int64, howMany int) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.Because(ctx, userID, itemID, howMany)
	}))
}

// MostSimilarItems computes similar items with circuit breaker protection.
func (bc *BreakerClient) MostSimilarItems(ctx context.Context, itemIDs []int64, opts *QueryOptions) ([]ScoredItem, error) {
	return castResult[[]ScoredItem](bc.execute(func() (interface{}, error) {
		return bc.client.MostSimilarItems(ctx, itemIDs, opts)
	}))
}

// SimilarityToItem computes similarities to one item with circuit breaker protection.
func (bc *BreakerClient) SimilarityToItem(ctx context.Context, toItemID int64, itemIDs []int64) ([]float64, error) {
	return castResult[[]float64](bc.execute(func() (interface{}, error) {
		return bc.client.SimilarityToItem(ctx, toItemID, itemIDs)
	}))
}

// Estimate estimates association strengths with circuit breaker protection.
func (bc *BreakerClient) Estimate(ctx context.Context, userID int64, itemIDs []int64) ([]float64, error) {
	return castResult[[]float64](bc.execute(func() (interface{}, error) {
		return bc.client.Estimate(ctx, userID, itemIDs)
	}))
}

// EstimateForAnonymous estimates an anonymous association strength with circuit breaker protection.
func (bc *BreakerClient) EstimateForAnonymous(ctx context.Context, toItemID int64, preferences []ItemStrength) (float64, error) {
	return castResult[float64](bc.execute(func() (interface{}, error) {
		return bc.client.EstimateForAnonymous(ctx, toItemID, preferences)
	}))
}

// Refresh requests a model rebuild with circuit breaker protection.
func (bc *BreakerClient) Refresh(ctx context.Context) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Refresh(ctx)
	})
	return err
}

// IsReady checks serving layer readiness with circuit breaker protection.
func (bc *BreakerClient) IsReady(ctx context.Context) (bool, error) {
	return castResult[bool](bc.execute(func() (interface{}, error) {
		return bc.client.IsReady(ctx)
	}))
}

// AllUserIDs lists all model user IDs with circuit breaker protection.
func (bc *BreakerClient) AllUserIDs(ctx context.Context) ([]int64, error) {
	return castResult[[]int64](bc.execute(func() (interface{}, error) {
		return bc.client.AllUserIDs(ctx)
	}))
}

// AllItemIDs lists all model item IDs with circuit breaker protection.
func (bc *BreakerClient) AllItemIDs(ctx context.Context) ([]int64, error) {
	return castResult[[]int64](bc.execute(func() (interface{}, error) {
		return bc.client.AllItemIDs(ctx)
	}))
}
