package console

import (
	"context"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/querycache"
)

// AddMember creates a member and invalidates the members listing.
func (c *Console) AddMember(ctx context.Context, input api.MemberInput) (*api.Member, error) {
	m := &querycache.Mutation[api.MemberInput, *api.Member]{
		Name:  "add-member",
		Store: c.store,
		Fn: func(ctx context.Context, in api.MemberInput) (*api.Member, error) {
			return c.api.CreateMember(ctx, in)
		},
		Invalidates: func(api.MemberInput) []querycache.Key {
			return []querycache.Key{MembersKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.MemberInput, *api.Member) string {
			return "Member added successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// UpdateMember updates a member and invalidates the members listing plus the
// member's detail slot.
func (c *Console) UpdateMember(ctx context.Context, id int, input api.MemberInput) (*api.Member, error) {
	m := &querycache.Mutation[api.MemberInput, *api.Member]{
		Name:  "update-member",
		Store: c.store,
		Fn: func(ctx context.Context, in api.MemberInput) (*api.Member, error) {
			return c.api.UpdateMember(ctx, id, in)
		},
		Invalidates: func(api.MemberInput) []querycache.Key {
			return []querycache.Key{MembersKey(), MemberKey(id)}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(api.MemberInput, *api.Member) string {
			return "Member updated successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	return m.Do(ctx, input, nil)
}

// removeMember returns a copy of the members slice without the given member,
// or (nil, false) when the member is absent.
func removeMember(members []api.Member, id int) ([]api.Member, bool) {
	idx := -1
	for i := range members {
		if members[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	out := make([]api.Member, 0, len(members)-1)
	out = append(out, members[:idx]...)
	out = append(out, members[idx+1:]...)
	return out, true
}

// DeleteMember optimistically removes the member from the cached listing,
// deletes the record, and invalidates the members listing. A member with
// active checkouts is refused by the backend; the rollback puts the row back
// before the invalidation reconverges the listing.
func (c *Console) DeleteMember(ctx context.Context, id int) error {
	m := &querycache.Mutation[int, struct{}]{
		Name:  "delete-member",
		Store: c.store,
		Fn: func(ctx context.Context, id int) (struct{}, error) {
			return struct{}{}, c.api.DeleteMember(ctx, id)
		},
		OnMutate: func(id int) querycache.Rollback {
			edits := c.store.SetMatching(MembersKey(), func(key querycache.Key, data any) (any, bool) {
				members, ok := data.([]api.Member)
				if !ok {
					return nil, false
				}
				return removeMember(members, id)
			})
			if len(edits) == 0 {
				return nil
			}
			return func() { c.store.RestoreAll(edits) }
		},
		Invalidates: func(int) []querycache.Key {
			return []querycache.Key{MembersKey()}
		},
		Humanize: api.UserMessages,
		SuccessMessage: func(int, struct{}) string {
			return "Member deleted successfully"
		},
		Notifier: c.notifier,
		Logger:   logger,
	}
	_, err := m.Do(ctx, id, nil)
	return err
}
