// Package console is the application facade: it binds the entity repositories
// to the query cache and mutation coordinator so every surface (CLI commands,
// interactive views) reads through the cache and writes through the fixed
// mutation lifecycle. The package owns the query key layout and the declared
// invalidation set of every write operation.
package console

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/blobstore"
	"github.com/parishlib/libris/internal/errors"
	"github.com/parishlib/libris/internal/logging"
	"github.com/parishlib/libris/internal/notify"
	"github.com/parishlib/libris/internal/querycache"
)

var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "console.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "console", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize console file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "console")
		closeLogger = func() error { return nil }
	}
}

// Config holds the collaborators a Console binds together.
type Config struct {
	API      *api.Client
	Store    *querycache.Store
	Blobs    *blobstore.Client // optional; cover uploads are skipped when nil
	Notifier *notify.Service
}

// Console is the facade every user-facing surface talks to.
type Console struct {
	api      *api.Client
	store    *querycache.Store
	blobs    *blobstore.Client
	notifier *notify.Service
	// owned marks collaborators as created by FromSettings, so Close
	// releases them too.
	owned bool
}

// New creates a console facade. API and Store are required.
func New(cfg Config) (*Console, error) {
	if cfg.API == nil {
		return nil, errors.Newf("API client is required").
			Category(errors.CategoryConfiguration).
			Component("console").
			Build()
	}
	if cfg.Store == nil {
		return nil, errors.Newf("query store is required").
			Category(errors.CategoryConfiguration).
			Component("console").
			Build()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NewService(0)
	}
	return &Console{
		api:      cfg.API,
		store:    cfg.Store,
		blobs:    cfg.Blobs,
		notifier: cfg.Notifier,
	}, nil
}

// Store exposes the underlying query store for subscription management.
func (c *Console) Store() *querycache.Store {
	return c.store
}

// Notifier exposes the notification sink shared by all mutations.
func (c *Console) Notifier() *notify.Service {
	return c.notifier
}

// Close waits for background refetches, releases owned collaborators, and
// closes the console's log file.
func (c *Console) Close() {
	c.store.Wait()
	if c.owned {
		if c.blobs != nil {
			c.blobs.Close()
		}
		c.api.Close()
	}
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing console logger: %v", err)
		}
	}
}

// fetchAs reads a typed value through the cache. On fetch failure it returns
// the last known-good value, when one exists, alongside the error.
func fetchAs[T any](ctx context.Context, store *querycache.Store, key querycache.Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := store.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, err
	}
	return t, err
}

// Books returns one page of the books listing, cached per filter combination.
func (c *Console) Books(ctx context.Context, filter api.BookFilter) (*api.Page[api.Book], error) {
	return fetchAs(ctx, c.store, BooksKey(filter), func(ctx context.Context) (*api.Page[api.Book], error) {
		return c.api.ListBooks(ctx, filter)
	})
}

// Book returns a single book detail.
func (c *Console) Book(ctx context.Context, id int) (*api.Book, error) {
	return fetchAs(ctx, c.store, BookKey(id), func(ctx context.Context) (*api.Book, error) {
		return c.api.GetBook(ctx, id)
	})
}

// Categories returns all categories with their book counts.
func (c *Console) Categories(ctx context.Context) ([]api.Category, error) {
	return fetchAs(ctx, c.store, CategoriesKey(), func(ctx context.Context) ([]api.Category, error) {
		return c.api.ListCategories(ctx)
	})
}

// Members returns all members.
func (c *Console) Members(ctx context.Context) ([]api.Member, error) {
	return fetchAs(ctx, c.store, MembersKey(), func(ctx context.Context) ([]api.Member, error) {
		return c.api.ListMembers(ctx)
	})
}

// Member returns a single member detail.
func (c *Console) Member(ctx context.Context, id int) (*api.Member, error) {
	return fetchAs(ctx, c.store, MemberKey(id), func(ctx context.Context) (*api.Member, error) {
		return c.api.GetMember(ctx, id)
	})
}

// Checkouts returns the checkouts listing.
func (c *Console) Checkouts(ctx context.Context) (*api.Page[api.Checkout], error) {
	return fetchAs(ctx, c.store, CheckoutsKey(), func(ctx context.Context) (*api.Page[api.Checkout], error) {
		return c.api.ListCheckouts(ctx)
	})
}

// Analytics returns the dashboard aggregates.
func (c *Console) Analytics(ctx context.Context) (*api.Analytics, error) {
	return fetchAs(ctx, c.store, AnalyticsKey(), func(ctx context.Context) (*api.Analytics, error) {
		return c.api.GetAnalytics(ctx)
	})
}

// WatchBooks marks a books listing as live: invalidations refetch it
// immediately instead of waiting for the next read. Returns an unsubscribe
// function.
func (c *Console) WatchBooks(filter api.BookFilter) func() {
	return c.store.Subscribe(BooksKey(filter), func(ctx context.Context) (any, error) {
		return c.api.ListBooks(ctx, filter)
	})
}

// WatchCheckouts marks the checkouts listing as live.
func (c *Console) WatchCheckouts() func() {
	return c.store.Subscribe(CheckoutsKey(), func(ctx context.Context) (any, error) {
		return c.api.ListCheckouts(ctx)
	})
}

// WatchCategories marks the categories listing as live.
func (c *Console) WatchCategories() func() {
	return c.store.Subscribe(CategoriesKey(), func(ctx context.Context) (any, error) {
		return c.api.ListCategories(ctx)
	})
}

// WatchMembers marks the members listing as live.
func (c *Console) WatchMembers() func() {
	return c.store.Subscribe(MembersKey(), func(ctx context.Context) (any, error) {
		return c.api.ListMembers(ctx)
	})
}
