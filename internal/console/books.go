package console

import (
	"context"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/querycache"
)

// CoverImage is an optional cover upload accompanying a book create or
// update.
type CoverImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// applyCover uploads the cover and fills the storage fields on the input.
// A nil cover leaves the input untouched.
func (c *Console) applyCover(ctx context.Context, input *api.BookInput, cover *CoverImage) error {
	if cover == nil || c.blobs == nil {
		return nil
	}
	objectPath, err := c.blobs.Upload(ctx, cover.Filename, cover.ContentType, cover.Data)
	if err != nil {
		return err
	}
	input.CoverPath = objectPath
	input.CoverURL = c.blobs.PublicURL(objectPath)
	return nil
}

// AddBook uploads the cover (when given), creates the book, and invalidates
// the books listings.
func (c *Console) AddBook(ctx context.Context, input api.BookInput, cover *CoverImage) (*api.Book, error) {
	m := &querycache.Mutation[api.BookInput, *api.Book]{
		Name:  "add-book",
		Store: c.store,
		Fn: func(ctx context.Context, in api.BookInput) (*api.Book, error) {
			if err := c.applyCover(ctx, &in, cover); err != nil {
				return nil, err
			}
			return c.api.CreateBook(ctx, in)
		},
		Invalidates: func(api.BookInput) []querycache.Key {
			return []querycache.Key{BooksPrefix()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.BookInput, *api.Book) string {
			return "Book added successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// UpdateBook updates a book, replacing the cover first when a new one is
// given, and invalidates the books listings and the book's detail slot.
func (c *Console) UpdateBook(ctx context.Context, book api.Book, input api.BookInput, cover *CoverImage) (*api.Book, error) {
	m := &querycache.Mutation[api.BookInput, *api.Book]{
		Name:  "update-book",
		Store: c.store,
		Fn: func(ctx context.Context, in api.BookInput) (*api.Book, error) {
			if cover != nil && c.blobs != nil && book.CoverPath != "" {
				if err := c.blobs.Remove(ctx, book.CoverPath); err != nil {
					logger.Warn("failed to remove previous cover image",
						"book_id", book.ID,
						"object_path", book.CoverPath,
						"error", err)
				}
			}
			if err := c.applyCover(ctx, &in, cover); err != nil {
				return nil, err
			}
			return c.api.UpdateBook(ctx, book.ID, in)
		},
		Invalidates: func(api.BookInput) []querycache.Key {
			return []querycache.Key{BooksPrefix(), BookKey(book.ID)}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.BookInput, *api.Book) string {
			return "Book updated successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// removeBookFromPage returns a copy of the page without the given book, or
// (nil, false) when the book is not on the page.
func removeBookFromPage(page *api.Page[api.Book], id int) (*api.Page[api.Book], bool) {
	idx := -1
	for i := range page.Data {
		if page.Data[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	out := *page
	out.Data = make([]api.Book, 0, len(page.Data)-1)
	out.Data = append(out.Data, page.Data[:idx]...)
	out.Data = append(out.Data, page.Data[idx+1:]...)
	if out.Total > 0 {
		out.Total--
	}
	return &out, true
}

// DeleteBook optimistically removes the book from every cached books listing,
// deletes the stored cover image, deletes the book record, and invalidates
// the books listings. A failed delete rolls the listings back before the
// invalidation reconverges them with the server.
func (c *Console) DeleteBook(ctx context.Context, book api.Book) error {
	m := &querycache.Mutation[api.Book, struct{}]{
		Name:  "delete-book",
		Store: c.store,
		Fn: func(ctx context.Context, b api.Book) (struct{}, error) {
			if c.blobs != nil && b.CoverPath != "" {
				if err := c.blobs.Remove(ctx, b.CoverPath); err != nil {
					logger.Warn("failed to remove cover image",
						"book_id", b.ID,
						"object_path", b.CoverPath,
						"error", err)
				}
			}
			return struct{}{}, c.api.DeleteBook(ctx, b.ID)
		},
		OnMutate: func(b api.Book) querycache.Rollback {
			edits := c.store.SetMatching(BooksPrefix(), func(key querycache.Key, data any) (any, bool) {
				page, ok := data.(*api.Page[api.Book])
				if !ok {
					return nil, false
				}
				return removeBookFromPage(page, b.ID)
			})
			if len(edits) == 0 {
				return nil
			}
			return func() { c.store.RestoreAll(edits) }
		},
		Invalidates: func(api.Book) []querycache.Key {
			return []querycache.Key{BooksPrefix()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.Book, struct{}) string {
			return "Book deleted successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, book, nil)
	return err
}
