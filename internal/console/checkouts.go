package console

import (
	"context"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/errors"
	"github.com/parishlib/libris/internal/querycache"
)

// CheckoutStatus is the display status of a checkout: a checkout that has
// exhausted its renewals is terminal.
func CheckoutStatus(checkout *api.Checkout) string {
	if checkout.Completed() {
		return "Completed"
	}
	return "Active"
}

// AddCheckout checks a book out to a member. The backend flips the book's
// availability, so both the checkouts and books families are invalidated.
func (c *Console) AddCheckout(ctx context.Context, input api.CheckoutInput) (*api.Checkout, error) {
	m := &querycache.Mutation[api.CheckoutInput, *api.Checkout]{
		Name:  "add-checkout",
		Store: c.store,
		Fn: func(ctx context.Context, in api.CheckoutInput) (*api.Checkout, error) {
			return c.api.CreateCheckout(ctx, in)
		},
		Invalidates: func(api.CheckoutInput) []querycache.Key {
			return []querycache.Key{CheckoutsKey(), BooksPrefix()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.CheckoutInput, *api.Checkout) string {
			return "Book checked out successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// RenewCheckout renews a checkout. A completed checkout is rejected by the
// guard before any network traffic; the renewal cap is terminal and no server
// round-trip can change that.
func (c *Console) RenewCheckout(ctx context.Context, checkout api.Checkout) error {
	m := &querycache.Mutation[api.Checkout, string]{
		Name:  "renew-checkout",
		Store: c.store,
		Guard: func(co api.Checkout) error {
			if !co.Completed() {
				return nil
			}
			return errors.New(api.ErrRenewalCapReached).
				Category(errors.CategoryLimit).
				Context("checkout_id", co.ID).
				Context("renewal_number", co.RenewalNumber).
				Component("console").
				Build()
		},
		Fn: func(ctx context.Context, co api.Checkout) (string, error) {
			return c.api.RenewCheckout(ctx, &co)
		},
		Invalidates: func(api.Checkout) []querycache.Key {
			return []querycache.Key{CheckoutsKey(), BooksPrefix()}
		},
		Humanize: func(err error) []string {
			if errors.Is(err, api.ErrRenewalCapReached) {
				return []string{"This checkout has reached its renewal limit"}
			}
			return api.UserMessages(err)
		},
		SuccessMessage: func(_ api.Checkout, message string) string {
			if message != "" {
				return message
			}
			return "Checkout renewed successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, checkout, nil)
	return err
}

// removeCheckoutFromPage returns a copy of the page without the given
// checkout, or (nil, false) when the checkout is not on the page.
func removeCheckoutFromPage(page *api.Page[api.Checkout], id int) (*api.Page[api.Checkout], bool) {
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
	out.Data = make([]api.Checkout, 0, len(page.Data)-1)
	out.Data = append(out.Data, page.Data[:idx]...)
	out.Data = append(out.Data, page.Data[idx+1:]...)
	if out.Total > 0 {
		out.Total--
	}
	return &out, true
}

// ReturnCheckout closes a checkout, optimistically removing it from the
// cached listing. Rollback targets exactly the key that was edited; the book
// availability flip is picked up when the checkouts listing refetches the
// embedded book snapshots.
func (c *Console) ReturnCheckout(ctx context.Context, id int) error {
	m := &querycache.Mutation[int, struct{}]{
		Name:  "return-checkout",
		Store: c.store,
		Fn: func(ctx context.Context, id int) (struct{}, error) {
			return struct{}{}, c.api.ReturnCheckout(ctx, id)
		},
		OnMutate: func(id int) querycache.Rollback {
			edits := c.store.SetMatching(CheckoutsKey(), func(key querycache.Key, data any) (any, bool) {
				page, ok := data.(*api.Page[api.Checkout])
				if !ok {
					return nil, false
				}
				return removeCheckoutFromPage(page, id)
			})
			if len(edits) == 0 {
				return nil
			}
			return func() { c.store.RestoreAll(edits) }
		},
		Invalidates: func(int) []querycache.Key {
			return []querycache.Key{CheckoutsKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(int, struct{}) string {
			return "Book returned successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, id, nil)
	return err
}
