package domain

import "context"

// Gateway is the remote record API. Implementations talk HTTP; tests use
// in-memory fakes.
type Gateway interface {
	// FetchMany returns up to limit records starting at offset skip.
	FetchMany(ctx context.Context, limit, skip int) ([]Recipe, error)
	// Create submits a draft and returns the record with its assigned id.
	Create(ctx context.Context, draft Draft) (Recipe, error)
	// Update applies a partial update and returns the remote's view of it.
	Update(ctx context.Context, id int, patch Patch) (Recipe, error)
	// Delete removes the record.
	Delete(ctx context.Context, id int) error
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal, a log, or nowhere.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// RecordStore is the client-side record collection the coordinator
// mutates. Implementations must be safe for concurrent use.
type RecordStore interface {
	Replace(records []Recipe)
	InsertIfAbsent(r Recipe) (bool, error)
	InsertAt(pos int, r Recipe) (bool, error)
	Merge(id int, patch Patch) (before, after Recipe, err error)
	Remove(id int) (Recipe, int, error)
	Get(id int) (Recipe, error)
	Has(id int) bool
	Len() int
}
