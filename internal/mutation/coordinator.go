// Package mutation applies create, edit and delete to the local record
// store optimistically and reconciles them with the remote gateway.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/gateway"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/telemetry"
)

const meterName = "github.com/hammamikhairi/recipedesk/mutation"

// DefaultFetchLimit is how many records Load asks for.
const DefaultFetchLimit = 200

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithPolicy sets the reconciliation policy for failed edits and deletes.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithRetry retries failed edits and deletes on transient errors for up to
// maxElapsed before the policy applies. Creates are never retried since
// the remote may have created the record anyway.
func WithRetry(maxElapsed time.Duration) Option {
	return func(c *Coordinator) {
		if maxElapsed <= 0 {
			c.newBackoff = nil
			return
		}
		c.newBackoff = func() backoff.BackOff { return gateway.NewBackoff(maxElapsed) }
	}
}

// WithNotifier sets where failed confirmations are reported.
func WithNotifier(n domain.Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithFetchLimit sets how many records Load fetches.
func WithFetchLimit(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.fetchLimit = n
		}
	}
}

// Coordinator owns every write to the record store after startup.
type Coordinator struct {
	gw         domain.Gateway
	store      domain.RecordStore
	notifier   domain.Notifier
	log        *logger.Logger
	policy     Policy
	newBackoff func() backoff.BackOff
	fetchLimit int

	// mu serializes optimistic steps, reconciliation and load-replace so
	// the store and the overlay always move together.
	mu         sync.Mutex
	overlay    *overlay
	loadGen    uint64
	cancelLoad context.CancelFunc

	wg      sync.WaitGroup
	pending atomic.Int64

	mutations   metric.Int64Counter
	divergences metric.Int64Counter
}

// New creates a coordinator over store and gw.
func New(gw domain.Gateway, store domain.RecordStore, log *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		gw:         gw,
		store:      store,
		log:        log,
		policy:     DefaultPolicy,
		fetchLimit: DefaultFetchLimit,
		overlay:    newOverlay(),
	}
	for _, opt := range opts {
		opt(c)
	}

	m := telemetry.Meter(meterName)
	c.mutations, _ = m.Int64Counter("recipedesk.mutations",
		metric.WithDescription("Remote mutations by operation and outcome"),
	)
	c.divergences, _ = m.Int64Counter("recipedesk.divergences",
		metric.WithDescription("Failed confirmations of optimistic changes"),
	)
	return c
}

// Policy returns the configured reconciliation policy.
func (c *Coordinator) Policy() Policy { return c.policy }

// Pending returns the number of confirmations still in flight.
func (c *Coordinator) Pending() int { return int(c.pending.Load()) }

// Wait blocks until every in-flight confirmation has been reconciled.
func (c *Coordinator) Wait() { c.wg.Wait() }

// Load fetches the collection and replaces the store with it, then
// re-applies this session's local changes on top. A newer Load cancels an
// older one; the older one returns ErrSuperseded and leaves the store
// alone.
func (c *Coordinator) Load(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.loadGen++
	gen := c.loadGen
	ctx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	c.mu.Unlock()
	defer cancel()

	records, err := c.gw.FetchMany(ctx, c.fetchLimit, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		c.log.Debug("load %d superseded by %d", gen, c.loadGen)
		return 0, ErrSuperseded
	}
	c.cancelLoad = nil
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}

	c.store.Replace(records)
	injected, removed := c.overlay.apply(c.store)
	n := c.store.Len()
	c.log.Info("loaded %d records (fetched=%d reinjected=%d removed=%d)", n, len(records), injected, removed)
	return n, nil
}

// Create submits draft. The returned record is inserted at the front of
// the store only once the remote confirms it, and only if its id is not
// already present. A failed create inserts nothing.
func (c *Coordinator) Create(ctx context.Context, draft domain.Draft) *Task[domain.Recipe] {
	t := newTask[domain.Recipe]()
	c.track(func() {
		rec, err := c.gw.Create(ctx, draft)
		c.count(ctx, OpCreate, err)
		if err != nil {
			c.log.Warn("create %q failed: %v", draft.Name, err)
			t.resolve(domain.Recipe{}, fmt.Errorf("create %q: %w", draft.Name, err))
			return
		}

		c.mu.Lock()
		inserted, err := c.store.InsertIfAbsent(rec)
		if err == nil && inserted {
			c.overlay.addCreated(rec)
		}
		c.mu.Unlock()

		switch {
		case err != nil:
			err = fmt.Errorf("create %q: %w", draft.Name, err)
		case !inserted:
			c.log.Warn("create %q: id %d already present, not inserted", draft.Name, rec.ID)
		default:
			c.log.Info("created id %d %q", rec.ID, rec.Name)
		}
		t.resolve(rec, err)
	})
	return t
}

// Edit merges patch into the local record immediately and confirms it
// remotely in the background. The task yields the locally merged record,
// or a *DivergenceError if the remote rejected the patch.
func (c *Coordinator) Edit(ctx context.Context, id int, patch domain.Patch) *Task[domain.Recipe] {
	if patch.IsEmpty() {
		return failed[domain.Recipe](fmt.Errorf("edit %d: %w", id, domain.ErrEmptyPatch))
	}

	c.mu.Lock()
	before, after, err := c.store.Merge(id, patch)
	if err != nil {
		c.mu.Unlock()
		return failed[domain.Recipe](fmt.Errorf("edit %d: %w", id, err))
	}
	token := c.overlay.beginEdit(id, patch)
	c.mu.Unlock()
	c.log.Debug("edit %d applied locally", id)

	t := newTask[domain.Recipe]()
	c.track(func() {
		err := c.remote(ctx, func(ctx context.Context) error {
			_, err := c.gw.Update(ctx, id, patch)
			return err
		})
		c.count(ctx, OpEdit, err)

		c.mu.Lock()
		if err == nil {
			c.overlay.finishEdit(token, true)
			c.mu.Unlock()
			t.resolve(after, nil)
			return
		}
		// Fields a later edit has set belong to that edit.
		own := patch.Without(c.overlay.editedAfter(id, token))
		c.overlay.finishEdit(token, false)
		state := outcomeKept
		switch {
		case own.IsEmpty():
			state = outcomeSuperseded
		case c.policy == PolicyRevert:
			if _, _, merr := c.store.Merge(id, own.Inverse(before)); merr == nil {
				state = outcomeReverted
			}
		}
		current, gerr := c.store.Get(id)
		c.mu.Unlock()
		if gerr != nil {
			current = domain.Recipe{}
		}

		t.resolve(current, c.diverged(ctx, OpEdit, id, state, err))
	})
	return t
}

// Delete removes the record locally immediately and confirms it remotely
// in the background. A failed confirmation is always reported to the
// notifier.
func (c *Coordinator) Delete(ctx context.Context, id int) *Task[domain.Recipe] {
	c.mu.Lock()
	removed, pos, err := c.store.Remove(id)
	if err != nil {
		c.mu.Unlock()
		return failed[domain.Recipe](fmt.Errorf("delete %d: %w", id, err))
	}
	c.overlay.deleted[id] = struct{}{}
	c.mu.Unlock()
	c.log.Debug("delete %d applied locally (was at %d)", id, pos)

	t := newTask[domain.Recipe]()
	c.track(func() {
		err := c.remote(ctx, func(ctx context.Context) error {
			return c.gw.Delete(ctx, id)
		})
		c.count(ctx, OpDelete, err)

		c.mu.Lock()
		if err == nil {
			c.overlay.forgetCreated(id)
			c.mu.Unlock()
			c.log.Info("deleted id %d", id)
			t.resolve(removed, nil)
			return
		}
		delete(c.overlay.deleted, id)
		state := outcomeKept
		if c.policy == PolicyRevert {
			if inserted, ierr := c.store.InsertAt(pos, removed); ierr == nil && inserted {
				state = outcomeReverted
			}
		}
		c.mu.Unlock()

		t.resolve(removed, c.diverged(ctx, OpDelete, id, state, err))
	})
	return t
}

// remote runs op, retrying transient failures when retry is configured.
func (c *Coordinator) remote(ctx context.Context, op func(context.Context) error) error {
	if c.newBackoff == nil {
		return op(ctx)
	}
	return gateway.RetryTransient(ctx, c.newBackoff(), func() error { return op(ctx) })
}

func (c *Coordinator) track(fn func()) {
	c.wg.Add(1)
	c.pending.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.pending.Add(-1)
		fn()
	}()
}

func (c *Coordinator) diverged(ctx context.Context, op Op, id int, o outcome, err error) error {
	derr := &DivergenceError{
		Op:         op,
		ID:         id,
		Reverted:   o == outcomeReverted,
		Superseded: o == outcomeSuperseded,
		Err:        err,
	}
	c.log.Error("%v", derr)
	c.divergences.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", string(op)),
		attribute.String("policy", c.policy.String()),
	))
	if c.notifier != nil {
		nctx := context.WithoutCancel(ctx)
		if nerr := c.notifier.NotifyUrgent(nctx, derr.Error()); nerr != nil {
			c.log.Warn("notify divergence: %v", nerr)
		}
	}
	return derr
}

func (c *Coordinator) count(ctx context.Context, op Op, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
		if errors.Is(err, context.Canceled) {
			outcome = "canceled"
		}
	}
	c.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", string(op)),
		attribute.String("outcome", outcome),
	))
}
