package api

import (
	"context"
	"fmt"
)

// BookFilter holds the filter and pagination parameters for book listings.
// Every field participates in the query cache key; see console.BooksKey.
type BookFilter struct {
	Page     int
	Title    string
	Category string // category id as string, "all" or empty means no filter
	Status   string // "available"/"unavailable", "all" or empty means no filter
}

// ListBooks retrieves one page of books matching the filter.
func (c *Client) ListBooks(ctx context.Context, filter BookFilter) (*Page[Book], error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	filters := map[string]string{"title": filter.Title}
	if filter.Category != "" && filter.Category != "all" {
		filters["category"] = filter.Category
	}
	if filter.Status != "" && filter.Status != "all" {
		filters["status"] = filter.Status
	}

	var result Page[Book]
	path := "/books?" + listQuery(c.perPage, page, filters)
	if err := c.doJSON(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBook retrieves a single book by id.
func (c *Client) GetBook(ctx context.Context, id int) (*Book, error) {
	env, err := doEnvelope[Book](ctx, c, "GET", fmt.Sprintf("/books/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateBook creates a new book.
func (c *Client) CreateBook(ctx context.Context, input BookInput) (*Book, error) {
	env, err := doEnvelope[Book](ctx, c, "POST", "/books", input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateBook updates an existing book.
func (c *Client) UpdateBook(ctx context.Context, id int, input BookInput) (*Book, error) {
	env, err := doEnvelope[Book](ctx, c, "PATCH", fmt.Sprintf("/books/%d", id), input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteBook deletes a book. Removal of the stored cover image is the
// caller's responsibility; the backend only owns the book record.
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	_, err := doEnvelope[struct{}](ctx, c, "DELETE", fmt.Sprintf("/books/%d", id), nil)
	return err
}
