package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/core/optimistic"
)

var (
	// ErrOwnerImmutable is returned when a mutation would change or remove a provider owner
	ErrOwnerImmutable = errors.New("the provider owner cannot be changed or removed")
	// ErrPrimaryLocation is returned when deleting the primary location while others exist
	ErrPrimaryLocation = errors.New("set another location as primary before deleting this one")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// now is replaced in tests
var now = time.Now

// Env holds what every collection operation needs for the current session
type Env struct {
	Cache      *cache.QueryCache
	Controller *optimistic.Controller
	Logger     *zap.Logger
	Session    model.Session
}

func (e Env) key(entity cache.Entity) cache.Key {
	return cache.NewKey(entity, e.Session.ProviderID)
}

// fetchList reads a collection through the cache, loading it when stale
func fetchList[E any](ctx context.Context, qc *cache.QueryCache, key cache.Key) ([]E, error) {
	value, err := qc.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	items, ok := value.([]E)
	if !ok {
		return nil, fmt.Errorf("cached %s has unexpected type %T", key, value)
	}
	return items, nil
}

// cachedList returns the cached collection without fetching
func cachedList[E any](qc *cache.QueryCache, key cache.Key) []E {
	value, ok := qc.Get(key)
	if !ok {
		return nil
	}
	items, _ := value.([]E)
	return items
}

// replaceWhere returns a predict step applying update to every matching item
func replaceWhere[E any](match func(E) bool, update func(*E)) func([]E) []E {
	return func(items []E) []E {
		for i := range items {
			if match(items[i]) {
				update(&items[i])
			}
		}
		return items
	}
}

// removeWhere returns a predict step dropping every matching item
func removeWhere[E any](match func(E) bool) func([]E) []E {
	return func(items []E) []E {
		kept := make([]E, 0, len(items))
		for _, item := range items {
			if !match(item) {
				kept = append(kept, item)
			}
		}
		return kept
	}
}

func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
