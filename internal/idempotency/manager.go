package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrRequestInProgress is returned when another goroutine or process is
// already handling the same update.
var ErrRequestInProgress = errors.New("request with this key is already in progress")

// lockTTL bounds how long a crashed handler can hold an update key.
const lockTTL = 5 * time.Minute

// pollInterval is how often a waiter re-reads the record while the
// first handler is still running.
const pollInterval = 100 * time.Millisecond

// Operation is the guarded unit of work.
type Operation func(ctx context.Context) (interface{}, error)

// Result is the operation outcome, either freshly computed or replayed
// from the store for a duplicate update.
type Result struct {
	Response  interface{}
	FromCache bool
}

// Manager executes an operation at most once per key. Duplicate
// Telegram updates (webhook redelivery, double-tapped buttons) resolve
// from the stored outcome instead of mutating the session again.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

// NewManager builds a Manager over the given store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{store: store, log: log}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	for {
		locked, err := m.store.Lock(ctx, key, lockTTL)
		if err != nil {
			return nil, err
		}

		if locked {
			return m.run(ctx, key, ttl, fn)
		}

		result, retry, err := m.resolveExisting(ctx, key)
		if err != nil {
			return nil, err
		}
		if !retry {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// run executes the operation under the held lock and stores its outcome
// for later duplicates.
func (m *manager) run(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	defer m.store.ReleaseLock(ctx, key)

	response, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}

	record := &Record{Status: StatusCompleted, Response: payload}
	if err := m.store.Set(ctx, key, record, ttl); err != nil {
		return nil, err
	}

	return &Result{Response: response, FromCache: false}, nil
}

// resolveExisting inspects the record left by the lock holder. retry is
// true when no usable record exists yet and the caller should poll.
func (m *manager) resolveExisting(ctx context.Context, key string) (result *Result, retry bool, err error) {
	record, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		// Lock held but no record written yet, or both expired between
		// our Lock attempt and this read.
		return nil, true, nil
	}

	switch record.Status {
	case StatusProcessing:
		return nil, false, ErrRequestInProgress
	case StatusCompleted:
		var response interface{}
		if len(record.Response) > 0 {
			if err := json.Unmarshal(record.Response, &response); err != nil {
				return nil, false, err
			}
		}
		return &Result{Response: response, FromCache: true}, false, nil
	default:
		return nil, true, nil
	}
}
