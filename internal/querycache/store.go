// Package querycache implements the client-side cache-consistency core: a
// process-wide store of query results keyed by structured query keys, a query
// coordinator providing stale-while-revalidate reads with request collapsing,
// and a mutation coordinator providing optimistic edits, rollback and
// multi-key invalidation.
//
// The store is not a language-level singleton: it is constructed at
// application start and passed by reference to every coordinator, so tests
// build a fresh instance each.
package querycache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/parishlib/libris/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Status describes the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Fetcher loads fresh data for a cache entry from the network.
type Fetcher func(ctx context.Context) (any, error)

// Entry is an immutable snapshot of a cache slot handed to callers. The
// underlying slot is owned exclusively by the store and mutated only through
// the query and mutation coordinators.
type Entry struct {
	Key       Key
	Data      any
	Status    Status
	Err       error
	UpdatedAt time.Time
	Stale     bool
}

// entry is the store-owned mutable state of one cache slot.
type entry struct {
	key       Key
	data      any
	hasData   bool
	status    Status
	err       error
	updatedAt time.Time
	stale     bool
	// gen is the generation token: it increments on invalidation and on
	// synchronous edits, and a fetch result is committed only if its captured
	// generation still matches, so out-of-order resolutions never regress the
	// slot to stale data.
	gen      uint64
	inflight bool
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:       e.key.Clone(),
		Data:      e.data,
		Status:    e.status,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale,
	}
}

// subscription records a live consumer of a key, so invalidation can refetch
// immediately instead of deferring to the next query.
type subscription struct {
	key   Key
	fetch Fetcher
}

// Config holds configuration for creating a Store.
type Config struct {
	// TTL is how long a successful result is considered fresh. Zero means
	// results are always revalidated (stale-while-revalidate on every read).
	TTL time.Duration

	Logger  *slog.Logger
	Metrics *metrics.QueryCacheMetrics
}

// Store is the process-wide query cache. Thread-safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]*subscription
	ttl     time.Duration
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.QueryCacheMetrics
	bg      sync.WaitGroup
	now     func() time.Time
}

// New creates an empty store.
func New(cfg *Config) *Store {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{
		entries: make(map[string]*entry),
		subs:    make(map[string]*subscription),
		ttl:     c.TTL,
		logger:  c.Logger,
		metrics: c.Metrics,
		now:     time.Now,
	}
}

// flightKey names the singleflight flight for one (key, generation) pair.
// Including the generation keeps a post-invalidation fetch from being
// collapsed into a superseded in-flight fetch for the same key.
func flightKey(key Key, gen uint64) string {
	return fmt.Sprintf("%s#%d", key.canonical(), gen)
}

func (s *Store) ensureLocked(key Key) *entry {
	ck := key.canonical()
	e, ok := s.entries[ck]
	if !ok {
		e = &entry{key: key.Clone(), status: StatusIdle}
		s.entries[ck] = e
	}
	return e
}

// freshLocked reports whether the entry can be served without revalidation.
func (s *Store) freshLocked(e *entry) bool {
	if e.status != StatusSuccess || e.stale {
		return false
	}
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(e.updatedAt) < s.ttl
}

// Fetch is the blocking read-through: it returns fresh cached data
// immediately, otherwise performs (or joins) the collapsed fetch for the key
// and waits for it. On fetch failure the last known-good data is returned
// alongside the error so callers can show stale content with an error banner
// instead of a blank state.
func (s *Store) Fetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	s.mu.Lock()
	e := s.ensureLocked(key)
	if s.freshLocked(e) {
		data := e.data
		s.mu.Unlock()
		s.metrics.IncrementCacheHits()
		return data, nil
	}
	s.metrics.IncrementCacheMisses()
	gen := e.gen
	if !e.hasData {
		e.status = StatusLoading
	}
	e.inflight = true
	s.mu.Unlock()

	v, err, shared := s.group.Do(flightKey(key, gen), func() (any, error) {
		return fetch(ctx)
	})
	if shared {
		s.metrics.IncrementCollapsedRequests()
	}
	s.commit(key, gen, v, err)

	if err != nil {
		if snap, ok := s.Lookup(key); ok && snap.Data != nil {
			return snap.Data, err
		}
		return nil, err
	}
	return v, nil
}

// Query is the non-blocking stale-while-revalidate read: it returns the
// current snapshot immediately and, when the entry is missing or stale and no
// fetch is in flight, starts a background refetch. The background fetch
// outlives ctx cancellation; its result lands in the cache for the next read.
func (s *Store) Query(ctx context.Context, key Key, fetch Fetcher) Entry {
	s.mu.Lock()
	e := s.ensureLocked(key)
	fresh := s.freshLocked(e)
	if !fresh && !e.inflight {
		if !e.hasData {
			e.status = StatusLoading
		}
		e.inflight = true
		gen := e.gen
		s.bg.Add(1)
		bgCtx := context.WithoutCancel(ctx)
		go func() {
			defer s.bg.Done()
			s.runFetch(bgCtx, key, gen, fetch)
		}()
	}
	snap := e.snapshot()
	s.mu.Unlock()

	if fresh {
		s.metrics.IncrementCacheHits()
	} else {
		s.metrics.IncrementCacheMisses()
	}
	return snap
}

// runFetch performs one collapsed fetch for a (key, generation) pair and
// commits its result.
func (s *Store) runFetch(ctx context.Context, key Key, gen uint64, fetch Fetcher) {
	s.metrics.IncrementRefetches()
	v, err, shared := s.group.Do(flightKey(key, gen), func() (any, error) {
		return fetch(ctx)
	})
	if shared {
		s.metrics.IncrementCollapsedRequests()
	}
	s.commit(key, gen, v, err)
}

// commit stores a fetch result unless the entry's generation has moved on, in
// which case the result is discarded: an invalidation or synchronous edit
// superseded this fetch while it was in flight.
func (s *Store) commit(key Key, gen uint64, v any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.canonical()]
	if !ok || e.gen != gen {
		s.metrics.IncrementDiscardedResults()
		s.logger.Debug("discarding superseded fetch result",
			"key", key.String(),
			"generation", gen)
		return
	}

	e.inflight = false
	if err != nil {
		// Keep the last good data; only the status and error change.
		e.status = StatusError
		e.err = err
		s.logger.Debug("fetch failed, retaining stale data",
			"key", key.String(),
			"has_data", e.hasData,
			"error", err)
		return
	}

	e.status = StatusSuccess
	e.err = nil
	e.data = v
	e.hasData = true
	e.updatedAt = s.now()
	e.stale = false
}

// Invalidate marks every cache slot whose key starts with prefix as stale and
// bumps its generation so in-flight fetches are superseded. Slots with a live
// subscriber are refetched immediately in the background; the rest refetch on
// their next query. Returns the number of slots touched.
func (s *Store) Invalidate(prefix Key) int {
	type refetch struct {
		key   Key
		gen   uint64
		fetch Fetcher
	}

	s.mu.Lock()
	var refetches []refetch
	touched := 0
	for ck, e := range s.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		touched++
		e.stale = true
		e.gen++
		e.inflight = false
		if sub, ok := s.subs[ck]; ok {
			e.inflight = true
			refetches = append(refetches, refetch{key: e.key.Clone(), gen: e.gen, fetch: sub.fetch})
		}
	}
	s.mu.Unlock()

	s.metrics.IncrementInvalidations(touched)
	s.logger.Debug("invalidated cache slots",
		"prefix", prefix.String(),
		"touched", touched,
		"refetching", len(refetches))

	for _, r := range refetches {
		r := r
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			s.runFetch(context.Background(), r.key, r.gen, r.fetch)
		}()
	}
	return touched
}

// SetEntry applies a synchronous, caller-driven edit to a slot's data. It is
// used exclusively by the mutation coordinator for optimistic edits. Status
// and error are preserved (an optimistic edit does not flip status to
// loading), the generation is bumped so in-flight fetches are superseded, and
// the previous data is returned for rollback.
func (s *Store) SetEntry(key Key, update func(data any) any) (prev any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key.canonical()]
	if !found || !e.hasData {
		return nil, false
	}
	prev = e.data
	e.data = update(e.data)
	e.gen++
	e.inflight = false
	s.metrics.IncrementOptimisticEdits()
	return prev, true
}

// Edit records one optimistic edit so a failed mutation can roll it back.
type Edit struct {
	Key  Key
	Prev any
}

// SetMatching applies update to every populated slot whose key starts with
// prefix. update returns the replacement data and whether the slot actually
// changed; unchanged slots are left untouched. Changed slots get their
// generation bumped and are recorded in the returned edits for rollback.
func (s *Store) SetMatching(prefix Key, update func(key Key, data any) (any, bool)) []Edit {
	s.mu.Lock()
	defer s.mu.Unlock()

	var edits []Edit
	for _, e := range s.entries {
		if !e.hasData || !e.key.HasPrefix(prefix) {
			continue
		}
		next, changed := update(e.key, e.data)
		if !changed {
			continue
		}
		edits = append(edits, Edit{Key: e.key.Clone(), Prev: e.data})
		e.data = next
		e.gen++
		e.inflight = false
		s.metrics.IncrementOptimisticEdits()
	}
	return edits
}

// RestoreAll rolls back a set of recorded edits.
func (s *Store) RestoreAll(edits []Edit) {
	for _, edit := range edits {
		s.Restore(edit.Key, edit.Prev)
	}
}

// Restore puts previously captured data back into a slot after a failed
// mutation. It targets exactly the key that was edited.
func (s *Store) Restore(key Key, data any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key.canonical()]
	if !found {
		return false
	}
	e.data = data
	e.hasData = true
	e.gen++
	e.inflight = false
	s.metrics.IncrementRollbacks()
	return true
}

// Lookup returns a snapshot of the slot for key, if present.
func (s *Store) Lookup(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.canonical()]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Subscribe registers a live consumer for key: invalidations of the key will
// refetch it immediately with the given fetcher instead of deferring. The
// returned function unsubscribes. A later subscription for the same key
// replaces the earlier one.
func (s *Store) Subscribe(key Key, fetch Fetcher) (unsubscribe func()) {
	ck := key.canonical()
	sub := &subscription{key: key.Clone(), fetch: fetch}

	s.mu.Lock()
	s.subs[ck] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.subs[ck] == sub {
			delete(s.subs, ck)
		}
	}
}

// Wait blocks until background refetches started so far have settled.
// Intended for shutdown and tests; callers must not rely on invalidated data
// being refreshed by the time a mutation's onSettled returns.
func (s *Store) Wait() {
	s.bg.Wait()
}

// Len returns the number of cache slots. Intended for diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
