package api

import (
	"context"
	"fmt"
)

// ListMembers retrieves all members.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var result struct {
		Data []Member `json:"data"`
	}
	if err := c.doJSON(ctx, "GET", "/members", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// GetMember retrieves a single member by id.
func (c *Client) GetMember(ctx context.Context, id int) (*Member, error) {
	env, err := doEnvelope[Member](ctx, c, "GET", fmt.Sprintf("/members/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateMember creates a new member.
func (c *Client) CreateMember(ctx context.Context, input MemberInput) (*Member, error) {
	env, err := doEnvelope[Member](ctx, c, "POST", "/members", input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateMember updates an existing member.
func (c *Client) UpdateMember(ctx context.Context, id int, input MemberInput) (*Member, error) {
	env, err := doEnvelope[Member](ctx, c, "PATCH", fmt.Sprintf("/members/%d", id), input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteMember deletes a member.
func (c *Client) DeleteMember(ctx context.Context, id int) error {
	_, err := doEnvelope[struct{}](ctx, c, "DELETE", fmt.Sprintf("/members/%d", id), nil)
	return err
}
