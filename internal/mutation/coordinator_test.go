package mutation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/gateway"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/store"
)

// fakeGateway lets each test script the remote's answers.
type fakeGateway struct {
	fetch  func(ctx context.Context, limit, skip int) ([]domain.Recipe, error)
	create func(ctx context.Context, d domain.Draft) (domain.Recipe, error)
	update func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error)
	del    func(ctx context.Context, id int) error

	updates atomic.Int32
	deletes atomic.Int32
}

func (f *fakeGateway) FetchMany(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
	if f.fetch == nil {
		return nil, nil
	}
	return f.fetch(ctx, limit, skip)
}

func (f *fakeGateway) Create(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
	return f.create(ctx, d)
}

func (f *fakeGateway) Update(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
	f.updates.Add(1)
	if f.update == nil {
		return domain.Recipe{ID: id}, nil
	}
	return f.update(ctx, id, p)
}

func (f *fakeGateway) Delete(ctx context.Context, id int) error {
	f.deletes.Add(1)
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

type recordingNotifier struct {
	mu     sync.Mutex
	urgent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, message string) error { return nil }

func (n *recordingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urgent = append(n.urgent, message)
	return nil
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urgent...)
}

func seed() []domain.Recipe {
	return []domain.Recipe{
		{ID: 1, Name: "Taco", Rating: 4.2},
		{ID: 2, Name: "Pasta", Rating: 3.8},
		{ID: 3, Name: "Curry", Rating: 4.5},
	}
}

func newCoordinator(t *testing.T, gw *fakeGateway, opts ...Option) (*Coordinator, *store.MemoryStore) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	s := store.NewMemoryStore(log)
	s.Replace(seed())
	return New(gw, s, log, opts...), s
}

func storeIDs(s *store.MemoryStore) []int {
	snap, _ := s.Snapshot()
	out := make([]int, len(snap))
	for i, r := range snap {
		out[i] = r.ID
	}
	return out
}

func countID(s *store.MemoryStore, id int) int {
	n := 0
	for _, got := range storeIDs(s) {
		if got == id {
			n++
		}
	}
	return n
}

var errNotFound = &gateway.HTTPError{StatusCode: http.StatusNotFound, Detail: `{"message":"not found"}`}

func TestCreateInsertsExactlyOnce(t *testing.T) {
	tests := []struct {
		name  string
		prior []domain.Recipe
	}{
		{"empty store", nil},
		{"unrelated records", seed()},
		{"id already present", append(seed(), domain.Recipe{ID: 101, Name: "Old"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{create: func(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
				return d.Recipe(101), nil
			}}
			c, s := newCoordinator(t, gw)
			s.Replace(tt.prior)

			ctx := context.Background()
			for i := 0; i < 2; i++ {
				rec, err := c.Create(ctx, domain.Draft{Name: "New Dish"}).Wait(ctx)
				require.NoError(t, err)
				assert.Equal(t, 101, rec.ID)
			}
			assert.Equal(t, 1, countID(s, 101))
		})
	}
}

func TestCreatePrependsConfirmedRecord(t *testing.T) {
	gw := &fakeGateway{create: func(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
		return d.Recipe(101), nil
	}}
	c, s := newCoordinator(t, gw)

	ctx := context.Background()
	_, err := c.Create(ctx, domain.Draft{Name: "New Dish"}).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{101, 1, 2, 3}, storeIDs(s))
}

func TestCreateFailureInsertsNothing(t *testing.T) {
	gw := &fakeGateway{create: func(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
		return domain.Recipe{}, &gateway.HTTPError{StatusCode: 400, Detail: `{"message":"bad"}`}
	}}
	notifier := &recordingNotifier{}
	c, s := newCoordinator(t, gw, WithNotifier(notifier))

	ctx := context.Background()
	_, err := c.Create(ctx, domain.Draft{Name: "New Dish"}).Wait(ctx)
	require.Error(t, err)
	assert.Equal(t, 400, gateway.StatusCode(err))
	assert.Equal(t, []int{1, 2, 3}, storeIDs(s))
	assert.Empty(t, notifier.messages(), "create failures go to the caller only")
}

func TestEditAppliesBeforeConfirmation(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{update: func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
		<-release
		return domain.Recipe{ID: id}, nil
	}}
	c, s := newCoordinator(t, gw)

	ctx := context.Background()
	task := c.Edit(ctx, 2, domain.Patch{Rating: domain.Ptr(5.0)})

	got, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating, "optimistic merge must precede confirmation")
	assert.Equal(t, 1, c.Pending())

	_, _, done := task.Result()
	assert.False(t, done)

	close(release)
	rec, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec.Rating)
	assert.Equal(t, "Pasta", rec.Name)
	c.Wait()
	assert.Equal(t, 0, c.Pending())
}

func TestEditFailure(t *testing.T) {
	tests := []struct {
		name         string
		policy       Policy
		wantRating   float64
		wantReverted bool
	}{
		{"revert restores", PolicyRevert, 3.8, true},
		{"keep leaves divergence", PolicyKeep, 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{update: func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
				return domain.Recipe{}, errNotFound
			}}
			notifier := &recordingNotifier{}
			c, s := newCoordinator(t, gw, WithPolicy(tt.policy), WithNotifier(notifier))

			ctx := context.Background()
			rec, err := c.Edit(ctx, 2, domain.Patch{Rating: domain.Ptr(1.0)}).Wait(ctx)

			var derr *DivergenceError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, OpEdit, derr.Op)
			assert.Equal(t, 2, derr.ID)
			assert.Equal(t, tt.wantReverted, derr.Reverted)
			assert.Equal(t, 404, gateway.StatusCode(err))

			got, gerr := s.Get(2)
			require.NoError(t, gerr)
			assert.Equal(t, tt.wantRating, got.Rating)
			assert.Equal(t, tt.wantRating, rec.Rating)
			assert.Len(t, notifier.messages(), 1)
		})
	}
}

func TestEditFailureKeepsLaterConfirmedEdit(t *testing.T) {
	tests := []struct {
		name           string
		first          domain.Patch
		wantRating     float64
		wantReverted   bool
		wantSuperseded bool
	}{
		{"fully replaced", domain.Patch{Name: domain.Ptr("A")}, 4.2, false, true},
		{"partly replaced", domain.Patch{Name: domain.Ptr("A"), Rating: domain.Ptr(1.0)}, 4.2, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			gw := &fakeGateway{update: func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
				if p.Name != nil && *p.Name == "A" {
					<-release
					return domain.Recipe{}, errors.New("boom")
				}
				return domain.Recipe{ID: id}, nil
			}}
			c, s := newCoordinator(t, gw, WithPolicy(PolicyRevert))
			ctx := context.Background()

			first := c.Edit(ctx, 1, tt.first)
			_, err := c.Edit(ctx, 1, domain.Patch{Name: domain.Ptr("B")}).Wait(ctx)
			require.NoError(t, err)

			close(release)
			_, err = first.Wait(ctx)
			var derr *DivergenceError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.Equal(t, tt.wantReverted, derr.Reverted)
			assert.Equal(t, tt.wantSuperseded, derr.Superseded)

			got, gerr := s.Get(1)
			require.NoError(t, gerr)
			assert.Equal(t, "B", got.Name, "confirmed later edit must survive")
			assert.Equal(t, tt.wantRating, got.Rating)

			c.Wait()
			assert.Empty(t, c.overlay.edits, "edit log must be pruned once nothing is in flight")
		})
	}
}

func TestEditFailureRevertsWhenNotReplaced(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{update: func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
		if p.Rating != nil {
			<-release
			return domain.Recipe{}, errors.New("boom")
		}
		return domain.Recipe{ID: id}, nil
	}}
	c, s := newCoordinator(t, gw, WithPolicy(PolicyRevert))
	ctx := context.Background()

	first := c.Edit(ctx, 1, domain.Patch{Rating: domain.Ptr(1.0)})
	_, err := c.Edit(ctx, 1, domain.Patch{Name: domain.Ptr("B")}).Wait(ctx)
	require.NoError(t, err)

	close(release)
	_, err = first.Wait(ctx)
	var derr *DivergenceError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.True(t, derr.Reverted)

	got, _ := s.Get(1)
	assert.Equal(t, "B", got.Name)
	assert.Equal(t, 4.2, got.Rating)
}

func TestDeleteFailureKeepIsObservable(t *testing.T) {
	gw := &fakeGateway{del: func(ctx context.Context, id int) error {
		return errNotFound
	}}
	notifier := &recordingNotifier{}
	c, s := newCoordinator(t, gw, WithPolicy(PolicyKeep), WithNotifier(notifier))

	ctx := context.Background()
	task := c.Delete(ctx, 3)
	assert.False(t, s.Has(3), "delete is applied before confirmation")

	removed, err := task.Wait(ctx)
	var derr *DivergenceError
	require.True(t, errors.As(err, &derr))
	assert.False(t, derr.Reverted)
	assert.Equal(t, "Curry", removed.Name)

	// The record stays gone locally while the server still has it.
	assert.False(t, s.Has(3))
	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.Contains(msgs[0], "delete 3"), msgs[0])
}

func TestDeleteFailureRevertRestoresPosition(t *testing.T) {
	gw := &fakeGateway{del: func(ctx context.Context, id int) error {
		return errNotFound
	}}
	c, s := newCoordinator(t, gw)

	ctx := context.Background()
	_, err := c.Delete(ctx, 2).Wait(ctx)

	var derr *DivergenceError
	require.True(t, errors.As(err, &derr))
	assert.True(t, derr.Reverted)
	assert.Equal(t, []int{1, 2, 3}, storeIDs(s))
}

func TestUnknownIDsFailImmediately(t *testing.T) {
	gw := &fakeGateway{}
	c, _ := newCoordinator(t, gw)
	ctx := context.Background()

	_, err := c.Edit(ctx, 99, domain.Patch{Name: domain.Ptr("x")}).Wait(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.Delete(ctx, 99).Wait(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.Edit(ctx, 1, domain.Patch{}).Wait(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyPatch)

	assert.Equal(t, int32(0), gw.updates.Load())
	assert.Equal(t, int32(0), gw.deletes.Load())
}

func TestLoadReappliesSessionChanges(t *testing.T) {
	gw := &fakeGateway{
		fetch: func(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
			// The remote does not persist writes.
			return seed(), nil
		},
		create: func(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
			return d.Recipe(101), nil
		},
	}
	c, s := newCoordinator(t, gw)
	ctx := context.Background()

	_, err := c.Create(ctx, domain.Draft{Name: "New Dish"}).Wait(ctx)
	require.NoError(t, err)
	_, err = c.Delete(ctx, 2).Wait(ctx)
	require.NoError(t, err)
	_, err = c.Edit(ctx, 1, domain.Patch{Rating: domain.Ptr(5.0)}).Wait(ctx)
	require.NoError(t, err)

	n, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{101, 1, 3}, storeIDs(s))

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Rating)
}

func TestLoadKeepsCreateConfirmedMidFetch(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		fetch: func(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
			close(fetching)
			<-release
			return seed(), nil
		},
		create: func(ctx context.Context, d domain.Draft) (domain.Recipe, error) {
			return d.Recipe(101), nil
		},
	}
	c, s := newCoordinator(t, gw)
	s.Replace(nil)
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		loaded <- err
	}()
	<-fetching

	_, err := c.Create(ctx, domain.Draft{Name: "New Dish"}).Wait(ctx)
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-loaded)
	assert.Equal(t, []int{101, 1, 2, 3}, storeIDs(s))
}

func TestLoadSupersededIsDiscarded(t *testing.T) {
	var calls atomic.Int32
	firstStarted := make(chan struct{})
	gw := &fakeGateway{fetch: func(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []domain.Recipe{{ID: 7, Name: "Fresh"}}, nil
	}}
	c, s := newCoordinator(t, gw)
	ctx := context.Background()

	first := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		first <- err
	}()
	<-firstStarted

	n, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load was not cancelled")
	}
	assert.Equal(t, []int{7}, storeIDs(s))
}

func TestLoadFailureLeavesStore(t *testing.T) {
	gw := &fakeGateway{fetch: func(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
		assert.Equal(t, 50, limit)
		return nil, &gateway.HTTPError{StatusCode: 500, Detail: "Internal Server Error"}
	}}
	c, s := newCoordinator(t, gw, WithFetchLimit(50))

	_, err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, gateway.StatusCode(err))
	assert.Equal(t, []int{1, 2, 3}, storeIDs(s))
}

func TestRetryOnlyTransientFailures(t *testing.T) {
	fast := func(c *Coordinator) {
		c.newBackoff = func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 5)
		}
	}

	t.Run("transient then success", func(t *testing.T) {
		gw := &fakeGateway{}
		gw.update = func(ctx context.Context, id int, p domain.Patch) (domain.Recipe, error) {
			if gw.updates.Load() < 3 {
				return domain.Recipe{}, &gateway.HTTPError{StatusCode: 503}
			}
			return domain.Recipe{ID: id}, nil
		}
		c, _ := newCoordinator(t, gw, WithRetry(time.Second), fast)

		ctx := context.Background()
		_, err := c.Edit(ctx, 1, domain.Patch{Name: domain.Ptr("Tacos")}).Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(3), gw.updates.Load())
	})

	t.Run("client error is not retried", func(t *testing.T) {
		gw := &fakeGateway{del: func(ctx context.Context, id int) error { return errNotFound }}
		c, _ := newCoordinator(t, gw, WithRetry(time.Second), fast)

		ctx := context.Background()
		_, err := c.Delete(ctx, 1).Wait(ctx)
		require.Error(t, err)
		assert.Equal(t, int32(1), gw.deletes.Load())
	})

	t.Run("no retry configured", func(t *testing.T) {
		gw := &fakeGateway{del: func(ctx context.Context, id int) error {
			return &gateway.HTTPError{StatusCode: 503}
		}}
		c, _ := newCoordinator(t, gw)

		ctx := context.Background()
		_, err := c.Delete(ctx, 1).Wait(ctx)
		require.Error(t, err)
		assert.Equal(t, int32(1), gw.deletes.Load())
	})
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyRevert, false},
		{"revert", PolicyRevert, false},
		{"KEEP", PolicyKeep, false},
		{"ignore", PolicyRevert, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
	}
}
