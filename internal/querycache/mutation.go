package querycache

import (
	"context"
	"io"
	"log/slog"

	"github.com/parishlib/libris/internal/errors"
)

// Notifier receives user-facing outcome messages from mutations. The notify
// package implements it; tests substitute a recorder.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Rollback undoes an optimistic edit after a failed mutation.
type Rollback func()

// Callbacks carries per-call hooks for one mutation execution. Any field may
// be nil.
type Callbacks[Out any] struct {
	// OnSuccess runs after the operation succeeds, before invalidation.
	OnSuccess func(out Out)
	// OnError runs after a failed operation has been rolled back. messages
	// holds the humanized, user-facing form of err.
	OnError func(err error, messages []string)
	// OnSettled runs last on both paths, after invalidation has been issued.
	OnSettled func()
}

// Mutation drives one write operation through the fixed consistency
// lifecycle: guard, optimistic edit, network dispatch, rollback or success
// notification, and unconditional invalidation of the declared key set on
// settle. The invalidation runs on success and on failure alike, so the cache
// reconverges with the server even when an optimistic edit or rollback left
// it wrong.
type Mutation[In, Out any] struct {
	// Name identifies the operation in logs.
	Name string

	Store *Store

	// Fn performs the network operation.
	Fn func(ctx context.Context, in In) (Out, error)

	// Guard, when set, runs before anything else. A non-nil error rejects the
	// mutation locally: no optimistic edit, no network call, no invalidation.
	Guard func(in In) error

	// OnMutate applies the optimistic edit and returns its rollback. Either
	// may be skipped by returning a nil Rollback.
	OnMutate func(in In) Rollback

	// Invalidates declares the key prefixes to invalidate on settle.
	Invalidates func(in In) []Key

	// Humanize converts an operation error to user-facing messages. When nil,
	// err.Error() is shown as-is.
	Humanize func(err error) []string

	// SuccessMessage produces the success notification. Empty string or nil
	// func suppresses the notification.
	SuccessMessage func(in In, out Out) string

	Notifier Notifier
	Logger   *slog.Logger
}

// Do executes the mutation. The returned error is the guard or operation
// error; by the time Do returns, rollback and invalidation have already been
// issued (background refetches may still be in flight).
func (m *Mutation[In, Out]) Do(ctx context.Context, in In, cb *Callbacks[Out]) (Out, error) {
	var zero Out
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cb == nil {
		cb = &Callbacks[Out]{}
	}

	if m.Guard != nil {
		if err := m.Guard(in); err != nil {
			logger.Debug("mutation rejected by guard", "mutation", m.Name, "error", err)
			m.notifyError(err)
			if cb.OnError != nil {
				cb.OnError(err, m.humanize(err))
			}
			if cb.OnSettled != nil {
				cb.OnSettled()
			}
			return zero, err
		}
	}

	var rollback Rollback
	if m.OnMutate != nil {
		rollback = m.OnMutate(in)
	}

	out, err := m.Fn(ctx, in)
	if err != nil {
		if rollback != nil {
			rollback()
		}
		logger.Debug("mutation failed, rolled back",
			"mutation", m.Name,
			"rolled_back", rollback != nil,
			"error", err)
		m.notifyError(err)
		if cb.OnError != nil {
			cb.OnError(err, m.humanize(err))
		}
		m.settle(in, cb)
		return zero, errors.Newf("%s failed: %w", m.Name, err).
			Component("querycache").
			Context("mutation", m.Name).
			Build()
	}

	if m.Notifier != nil && m.SuccessMessage != nil {
		if msg := m.SuccessMessage(in, out); msg != "" {
			m.Notifier.Success(msg)
		}
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(out)
	}
	logger.Debug("mutation succeeded", "mutation", m.Name)
	m.settle(in, cb)
	return out, nil
}

// settle invalidates the declared key set and fires OnSettled. It runs on
// success and on operation failure, never on guard rejection.
func (m *Mutation[In, Out]) settle(in In, cb *Callbacks[Out]) {
	if m.Invalidates != nil && m.Store != nil {
		for _, key := range m.Invalidates(in) {
			m.Store.Invalidate(key)
		}
	}
	if cb.OnSettled != nil {
		cb.OnSettled()
	}
}

func (m *Mutation[In, Out]) humanize(err error) []string {
	if m.Humanize != nil {
		if msgs := m.Humanize(err); len(msgs) > 0 {
			return msgs
		}
	}
	return []string{err.Error()}
}

func (m *Mutation[In, Out]) notifyError(err error) {
	if m.Notifier == nil {
		return
	}
	for _, msg := range m.humanize(err) {
		m.Notifier.Error(msg)
	}
}
