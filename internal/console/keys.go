package console

import (
	"strconv"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/querycache"
)

// Entity names anchoring each query key family. Invalidation targets a family
// by its entity prefix, so every parameterized listing under it goes stale in
// one pass.
const (
	booksEntity      = "books"
	bookEntity       = "book"
	categoriesEntity = "categories"
	membersEntity    = "members"
	memberEntity     = "member"
	checkoutsEntity  = "checkouts"
	analyticsEntity  = "analytics"
)

// normalizeFilter folds the two "no filter" spellings into one so "" and
// "all" address the same cache slot.
func normalizeFilter(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

// BooksKey identifies one page of the books listing. Every filter parameter
// participates: changing the title search, category or status filter
// addresses a different slot.
func BooksKey(f api.BookFilter) querycache.Key {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return querycache.NewKey(booksEntity,
		"page="+strconv.Itoa(page),
		"title="+f.Title,
		"category="+normalizeFilter(f.Category),
		"status="+normalizeFilter(f.Status),
	)
}

// BooksPrefix covers every books listing slot regardless of parameters.
func BooksPrefix() querycache.Key {
	return querycache.NewKey(booksEntity)
}

// BookKey identifies a single book detail slot.
func BookKey(id int) querycache.Key {
	return querycache.NewKey(bookEntity, strconv.Itoa(id))
}

// BookPrefix covers every single-book detail slot.
func BookPrefix() querycache.Key {
	return querycache.NewKey(bookEntity)
}

// CategoriesKey identifies the categories listing slot.
func CategoriesKey() querycache.Key {
	return querycache.NewKey(categoriesEntity)
}

// MembersKey identifies the members listing slot.
func MembersKey() querycache.Key {
	return querycache.NewKey(membersEntity)
}

// MemberKey identifies a single member detail slot.
func MemberKey(id int) querycache.Key {
	return querycache.NewKey(memberEntity, strconv.Itoa(id))
}

// MemberPrefix covers every single-member detail slot.
func MemberPrefix() querycache.Key {
	return querycache.NewKey(memberEntity)
}

// CheckoutsKey identifies the checkouts listing slot.
func CheckoutsKey() querycache.Key {
	return querycache.NewKey(checkoutsEntity)
}

// AnalyticsKey identifies the dashboard analytics slot.
func AnalyticsKey() querycache.Key {
	return querycache.NewKey(analyticsEntity)
}
