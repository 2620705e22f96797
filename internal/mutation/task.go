package mutation

import "context"

// Task is the pending confirmation of one mutation. The optimistic local
// change has already happened when a Task is handed out.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// failed returns an already-resolved task carrying err.
func failed[T any](err error) *Task[T] {
	t := newTask[T]()
	t.resolve(*new(T), err)
	return t
}

func (t *Task[T]) resolve(v T, err error) {
	t.value = v
	t.err = err
	close(t.done)
}

// Done is closed once the task has resolved.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task resolves or ctx is done. A ctx error leaves
// the task running.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the task
// is still pending.
func (t *Task[T]) Result() (value T, err error, ok bool) {
	select {
	case <-t.done:
		return t.value, t.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
