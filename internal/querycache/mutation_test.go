package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, message)
}

func seedBooks(t *testing.T, s *Store, key Key, books []string) {
	t.Helper()
	_, err := s.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return books, nil
	})
	require.NoError(t, err)
}

func removeBookMutation(s *Store, key Key, notifier Notifier, fn func(ctx context.Context, id string) (string, error)) *Mutation[string, string] {
	return &Mutation[string, string]{
		Name:  "delete-book",
		Store: s,
		Fn:    fn,
		OnMutate: func(id string) Rollback {
			prev, ok := s.SetEntry(key, func(data any) any {
				books := data.([]string)
				out := make([]string, 0, len(books))
				for _, b := range books {
					if b != id {
						out = append(out, b)
					}
				}
				return out
			})
			if !ok {
				return nil
			}
			return func() { s.Restore(key, prev) }
		},
		Invalidates: func(string) []Key {
			return []Key{NewKey("books")}
		},
		SuccessMessage: func(in, out string) string { return out },
		Notifier:       notifier,
	}
}

func TestMutationOptimisticEditThenInvalidate(t *testing.T) {
	t.Parallel()

	s := New(&Config{TTL: time.Minute})
	key := NewKey("books", "page=1")
	seedBooks(t, s, key, []string{"iliad", "odyssey"})

	notifier := &recordingNotifier{}
	var sawOptimistic atomic.Bool
	m := removeBookMutation(s, key, notifier, func(ctx context.Context, id string) (string, error) {
		// The edit lands before the network call goes out.
		snap, ok := s.Lookup(key)
		if ok {
			sawOptimistic.Store(assert.ObjectsAreEqual([]string{"odyssey"}, snap.Data))
		}
		return "Book deleted successfully", nil
	})

	var settled, succeeded bool
	out, err := m.Do(context.Background(), "iliad", &Callbacks[string]{
		OnSuccess: func(out string) { succeeded = true },
		OnSettled: func() { settled = true },
	})
	require.NoError(t, err)
	assert.Equal(t, "Book deleted successfully", out)
	assert.True(t, sawOptimistic.Load())
	assert.True(t, succeeded)
	assert.True(t, settled)
	assert.Equal(t, []string{"Book deleted successfully"}, notifier.successes)
	assert.Empty(t, notifier.failures)

	// Settling marks every books slot stale so the next read revalidates.
	snap, ok := s.Lookup(key)
	require.True(t, ok)
	assert.True(t, snap.Stale)
	assert.Equal(t, []string{"odyssey"}, snap.Data)
}

func TestMutationRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	s := New(&Config{TTL: time.Minute})
	key := NewKey("books", "page=1")
	seedBooks(t, s, key, []string{"iliad", "odyssey"})

	opErr := errors.New("book has active checkouts")
	notifier := &recordingNotifier{}
	m := removeBookMutation(s, key, notifier, func(ctx context.Context, id string) (string, error) {
		return "", opErr
	})
	m.Humanize = func(err error) []string {
		return []string{"This book cannot be deleted"}
	}

	var gotMessages []string
	_, err := m.Do(context.Background(), "iliad", &Callbacks[string]{
		OnError: func(err error, messages []string) { gotMessages = messages },
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, []string{"This book cannot be deleted"}, gotMessages)
	assert.Equal(t, []string{"This book cannot be deleted"}, notifier.failures)
	assert.Empty(t, notifier.successes)

	// The optimistic removal is undone, and the slot is still invalidated so
	// the cache reconverges with the server.
	snap, ok := s.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, []string{"iliad", "odyssey"}, snap.Data)
	assert.True(t, snap.Stale)
}

func TestMutationGuardRejectsWithoutSideEffects(t *testing.T) {
	t.Parallel()

	s := New(&Config{TTL: time.Minute})
	key := NewKey("checkouts", "page=1")
	_, err := s.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
		return "ledger", nil
	})
	require.NoError(t, err)

	guardErr := errors.New("renewal limit reached")
	notifier := &recordingNotifier{}
	var networkCalls atomic.Int32

	m := &Mutation[int, struct{}]{
		Name:  "renew-checkout",
		Store: s,
		Guard: func(int) error { return guardErr },
		Fn: func(ctx context.Context, id int) (struct{}, error) {
			networkCalls.Add(1)
			return struct{}{}, nil
		},
		Invalidates: func(int) []Key {
			return []Key{NewKey("checkouts")}
		},
		Humanize: func(err error) []string {
			return []string{"This checkout has reached its renewal limit"}
		},
		Notifier: notifier,
	}

	var settled bool
	_, err = m.Do(context.Background(), 7, &Callbacks[struct{}]{
		OnSettled: func() { settled = true },
	})
	require.ErrorIs(t, err, guardErr)
	assert.True(t, settled)
	assert.Equal(t, int32(0), networkCalls.Load())
	assert.Equal(t, []string{"This checkout has reached its renewal limit"}, notifier.failures)

	// No dispatch means no invalidation either: the slot stays fresh.
	snap, ok := s.Lookup(key)
	require.True(t, ok)
	assert.False(t, snap.Stale)
}

func TestMutationHumanizeFallsBackToErrorString(t *testing.T) {
	t.Parallel()

	opErr := errors.New("connection reset")
	notifier := &recordingNotifier{}
	m := &Mutation[struct{}, struct{}]{
		Name: "update-profile",
		Fn: func(ctx context.Context, in struct{}) (struct{}, error) {
			return struct{}{}, opErr
		},
		Notifier: notifier,
	}

	_, err := m.Do(context.Background(), struct{}{}, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"connection reset"}, notifier.failures)
}
