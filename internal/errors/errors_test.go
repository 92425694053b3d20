package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasics(t *testing.T) {
	t.Parallel()

	err := Newf("fetching page %d: %s", 3, "timeout").
		Component("api").
		Category(CategoryNetwork).
		Context("endpoint", "/books").
		Build()

	assert.Equal(t, "fetching page 3: timeout", err.Error())
	assert.Equal(t, "api", err.GetComponent())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "/books", err.GetContext()["endpoint"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaultsToGeneric(t *testing.T) {
	t.Parallel()

	err := Newf("something broke").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, ComponentUnknown, err.GetComponent())
}

type fakeCategorized struct{ msg string }

func (f *fakeCategorized) Error() string                { return f.msg }
func (f *fakeCategorized) ErrorCategory() ErrorCategory { return CategoryLimit }

func TestBuildDerivesCategoryFromWrappedError(t *testing.T) {
	t.Parallel()

	inner := &fakeCategorized{msg: "cap reached"}
	err := Newf("renewing: %w", inner).Build()
	assert.Equal(t, CategoryLimit, err.Category)

	// An explicit category always wins.
	err = Newf("renewing: %w", inner).Category(CategoryState).Build()
	assert.Equal(t, CategoryState, err.Category)
}

func TestUnwrapChain(t *testing.T) {
	t.Parallel()

	sentinel := NewStd("not found")
	wrapped := Newf("loading book: %w", sentinel).
		Category(CategoryNotFound).
		Build()

	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsCategory(wrapped, CategoryNetwork))

	var ee *EnhancedError
	require.True(t, As(wrapped, &ee))
	assert.Same(t, wrapped, ee)
}

func TestGetContextReturnsCopy(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Context("key", "value").Build()
	ctx := err.GetContext()
	ctx["key"] = "mutated"
	assert.Equal(t, "value", err.GetContext()["key"])
}
