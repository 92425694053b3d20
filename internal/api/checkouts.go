package api

import (
	"context"
	"fmt"

	"github.com/parishlib/libris/internal/errors"
)

// ErrRenewalCapReached is returned when a renewal is attempted on a completed
// checkout. The rejection happens client-side, before any network call.
var ErrRenewalCapReached = errors.NewStd("checkout is completed: renewal cap reached")

// ListCheckouts retrieves one page of checkouts.
func (c *Client) ListCheckouts(ctx context.Context) (*Page[Checkout], error) {
	var result Page[Checkout]
	if err := c.doJSON(ctx, "GET", "/checkouts", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateCheckout checks a book out to a member. The backend flips the book's
// availability; callers are expected to invalidate both the checkout and book
// query families afterwards.
func (c *Client) CreateCheckout(ctx context.Context, input CheckoutInput) (*Checkout, error) {
	env, err := doEnvelope[Checkout](ctx, c, "POST", "/checkouts", input)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// RenewCheckout renews a checkout (PATCH with no body). The renewal cap is
// enforced by the mutation layer before this call is ever made; the guard here
// is a second line of defense against direct repository use.
func (c *Client) RenewCheckout(ctx context.Context, checkout *Checkout) (string, error) {
	if checkout.Completed() {
		return "", errors.New(ErrRenewalCapReached).
			Category(errors.CategoryLimit).
			Context("checkout_id", checkout.ID).
			Context("renewal_number", checkout.RenewalNumber).
			Component("api").
			Build()
	}
	env, err := doEnvelope[struct{}](ctx, c, "PATCH", fmt.Sprintf("/checkouts/%d", checkout.ID), nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// ReturnCheckout closes a checkout (modeled as delete). The backend makes the
// book available again.
func (c *Client) ReturnCheckout(ctx context.Context, id int) error {
	_, err := doEnvelope[struct{}](ctx, c, "DELETE", fmt.Sprintf("/checkouts/%d", id), nil)
	return err
}
