package api

import (
	"context"
	"fmt"
)

// ListCategories retrieves all categories with their backend-derived book
// counts.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	env, err := doEnvelope[[]Category](ctx, c, "GET", "/categories", nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateCategory creates a new category.
func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	env, err := doEnvelope[Category](ctx, c, "POST", "/categories", input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateCategory updates an existing category.
func (c *Client) UpdateCategory(ctx context.Context, id int, input CategoryInput) (*Category, error) {
	env, err := doEnvelope[Category](ctx, c, "PATCH", fmt.Sprintf("/categories/%d", id), input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int) (string, error) {
	env, err := doEnvelope[struct{}](ctx, c, "DELETE", fmt.Sprintf("/categories/%d", id), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
