// Package optimistic applies predicted mutations to cached collections ahead
// of the authoritative write, then confirms by refetching or rolls back.
package optimistic

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/cache"
)

// Notifier surfaces the outcome of a mutation to the user
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Command describes one user-initiated change to a cached collection
type Command[E any] struct {
	// Name labels the mutation in logs and metrics, e.g. "remove_member"
	Name string
	Key  cache.Key
	// Predict computes the expected collection after the write. It receives a
	// copy of the cached slice and may be nil when there is nothing to predict.
	Predict func(items []E) []E
	// Execute performs the authoritative remote write
	Execute        func(ctx context.Context) error
	SuccessMessage string
}

// Controller runs optimistic mutations against a cache store
type Controller struct {
	store    cache.Store
	notifier Notifier
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[cache.Key]*sync.Mutex
}

// NewController creates a controller writing predictions into store
func NewController(store cache.Store, notifier Notifier, logger *zap.Logger) *Controller {
	return &Controller{
		store:    store,
		notifier: notifier,
		logger:   logger,
		locks:    make(map[cache.Key]*sync.Mutex),
	}
}

// lock serializes mutations on the same key
func (c *Controller) lock(key cache.Key) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type mutation struct {
	name   string
	key    cache.Key
	state  State
	logger *zap.Logger
}

func (m *mutation) advance(e Event) {
	next, err := Next(m.state, e)
	if err != nil {
		m.logger.Error("Unexpected mutation transition",
			zap.String("command", m.name),
			zap.Stringer("key", m.key),
			zap.Error(err))
		return
	}
	m.logger.Debug("Mutation transition",
		zap.String("command", m.name),
		zap.Stringer("key", m.key),
		zap.Stringer("from", m.state),
		zap.Stringer("to", next))
	m.state = next
}

// Apply predicts cmd into the cache, executes it, and reconciles.
// On failure the cached collection is restored to its prior value, one error
// notification is sent, and the execute error is returned wrapped.
func Apply[E any](ctx context.Context, c *Controller, cmd Command[E]) error {
	if cmd.Execute == nil {
		return fmt.Errorf("mutation %s has no execute step", cmd.Name)
	}

	unlock := c.lock(cmd.Key)
	defer unlock()

	m := &mutation{name: cmd.Name, key: cmd.Key, state: Idle, logger: c.logger}
	m.advance(EventStart)

	// A refresh finishing after the prediction would clobber it
	c.store.Cancel(cmd.Key)

	var snapshot []E
	hasSnapshot := false
	if cached, ok := c.store.Get(cmd.Key); ok {
		items, ok := cached.([]E)
		if !ok {
			c.logger.Warn("Cached value has unexpected type, skipping prediction",
				zap.String("command", cmd.Name),
				zap.Stringer("key", cmd.Key),
				zap.String("type", fmt.Sprintf("%T", cached)))
		} else {
			snapshot = slices.Clone(items)
			hasSnapshot = true
			if cmd.Predict != nil {
				c.store.Set(cmd.Key, cmd.Predict(slices.Clone(items)))
			}
		}
	}
	m.advance(EventPredicted)

	if err := cmd.Execute(ctx); err != nil {
		m.advance(EventFailed)
		if hasSnapshot {
			c.store.Set(cmd.Key, snapshot)
		}
		c.logger.Warn("Mutation rolled back",
			zap.String("command", cmd.Name),
			zap.Stringer("key", cmd.Key),
			zap.Error(err))
		c.notifier.Error(err.Error())
		recordMutation(cmd.Name, m.state)
		m.advance(EventSettled)
		return fmt.Errorf("mutation %s failed: %w", cmd.Name, err)
	}

	m.advance(EventSucceeded)
	if err := c.store.Invalidate(ctx, cmd.Key); err != nil {
		// the write went through; the next read will retry the fetch
		c.logger.Warn("Failed to refetch after mutation",
			zap.String("command", cmd.Name),
			zap.Stringer("key", cmd.Key),
			zap.Error(err))
	}
	c.notifier.Success(cmd.SuccessMessage)
	recordMutation(cmd.Name, m.state)
	m.advance(EventSettled)

	c.logger.Debug("Mutation confirmed", zap.String("command", cmd.Name), zap.Stringer("key", cmd.Key))
	return nil
}
