package console

import (
	"context"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/querycache"
)

// Category book counts are derived by the backend, so category writes never
// edit cached data optimistically: the listing is simply invalidated and
// refetched with authoritative counts.

// AddCategory creates a category and invalidates the categories listing.
func (c *Console) AddCategory(ctx context.Context, input api.CategoryInput) (*api.Category, error) {
	m := &querycache.Mutation[api.CategoryInput, *api.Category]{
		Name:  "add-category",
		Store: c.store,
		Fn: func(ctx context.Context, in api.CategoryInput) (*api.Category, error) {
			return c.api.CreateCategory(ctx, in)
		},
		Invalidates: func(api.CategoryInput) []querycache.Key {
			return []querycache.Key{CategoriesKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.CategoryInput, *api.Category) string {
			return "Category added successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// UpdateCategory updates a category and invalidates the categories listing.
func (c *Console) UpdateCategory(ctx context.Context, id int, input api.CategoryInput) (*api.Category, error) {
	m := &querycache.Mutation[api.CategoryInput, *api.Category]{
		Name:  "update-category",
		Store: c.store,
		Fn: func(ctx context.Context, in api.CategoryInput) (*api.Category, error) {
			return c.api.UpdateCategory(ctx, id, in)
		},
		Invalidates: func(api.CategoryInput) []querycache.Key {
			return []querycache.Key{CategoriesKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.CategoryInput, *api.Category) string {
			return "Category updated successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// DeleteCategory deletes a category and invalidates the categories listing.
// The backend refuses to delete a category that still has books; that
// rejection arrives as a business error and is surfaced verbatim.
func (c *Console) DeleteCategory(ctx context.Context, id int) error {
	m := &querycache.Mutation[int, string]{
		Name:  "delete-category",
		Store: c.store,
		Fn: func(ctx context.Context, id int) (string, error) {
			return c.api.DeleteCategory(ctx, id)
		},
		Invalidates: func(int) []querycache.Key {
			return []querycache.Key{CategoriesKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(_ int, message string) string {
			if message != "" {
				return message
			}
			return "Category deleted successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, id, nil)
	return err
}
