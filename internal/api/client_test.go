package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishlib/libris/internal/errors"
)

const testBaseURL = "https://library.example.com/api"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(Config{
		BaseURL: testBaseURL,
		Token:   func() string { return "test-token" },
		PerPage: 12,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	httpmock.ActivateNonDefault(c.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestListBooksQueryParameters(t *testing.T) {
	c := newTestClient(t)

	var gotQuery map[string][]string
	httpmock.RegisterResponder("GET", `=~^`+testBaseURL+`/books\?`,
		func(req *http.Request) (*http.Response, error) {
			gotQuery = req.URL.Query()
			return httpmock.NewJsonResponse(200, Page[Book]{CurrentPage: 1})
		})

	_, err := c.ListBooks(context.Background(), BookFilter{
		Page:     3,
		Title:    "augustine",
		Category: "2",
		Status:   "available",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, gotQuery["page"])
	assert.Equal(t, []string{"12"}, gotQuery["per_page"])
	assert.Equal(t, []string{"augustine"}, gotQuery["title"])
	assert.Equal(t, []string{"2"}, gotQuery["category"])
	assert.Equal(t, []string{"available"}, gotQuery["status"])

	// "all" means no filter: the parameters are omitted entirely.
	_, err = c.ListBooks(context.Background(), BookFilter{Page: 1, Category: "all", Status: "all"})
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "category")
	assert.NotContains(t, gotQuery, "status")
	assert.Contains(t, gotQuery, "title")
}

func TestRequestsCarryBearerToken(t *testing.T) {
	c := newTestClient(t)

	var gotAuth string
	httpmock.RegisterResponder("GET", testBaseURL+"/categories",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, Envelope[[]Category]{Status: true})
		})

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestEnvelopeRejectionOnHTTP200(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("DELETE", testBaseURL+"/categories/3",
		httpmock.NewStringResponder(200, `{"status":false,"message":"Category has books and cannot be deleted"}`))

	_, err := c.DeleteCategory(context.Background(), 3)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindBusiness, apiErr.Kind())
	assert.Equal(t, []string{"Category has books and cannot be deleted"}, apiErr.UserMessages())
}

func TestValidationErrorSurfacesFieldMap(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("POST", testBaseURL+"/books",
		httpmock.NewStringResponder(422, `{"errors":{"title":["The title field is required."]}}`))

	_, err := c.CreateBook(context.Background(), BookInput{})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindValidation, apiErr.Kind())
	assert.Equal(t, map[string][]string{"title": {"The title field is required."}}, apiErr.Fields)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestMalformedSuccessBodyIsParseError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", testBaseURL+"/analytics",
		httpmock.NewStringResponder(200, `<html>proxy error</html>`))

	_, err := c.GetAnalytics(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestRenewCheckoutGuardsCompletedWithoutNetwork(t *testing.T) {
	c := newTestClient(t)

	completed := &Checkout{ID: 7, RenewalNumber: MaxRenewals}
	require.True(t, completed.Completed())

	_, err := c.RenewCheckout(context.Background(), completed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenewalCapReached)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestRenewCheckoutPatchesWithoutBody(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("PATCH", testBaseURL+"/checkouts/7",
		httpmock.NewStringResponder(200, `{"status":true,"message":"Checkout renewed successfully"}`))

	msg, err := c.RenewCheckout(context.Background(), &Checkout{ID: 7, RenewalNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, "Checkout renewed successfully", msg)
}

func TestLoginRejectsFailedStatus(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("POST", testBaseURL+"/login",
		httpmock.NewStringResponder(200, `{"status":false,"message":"Invalid credentials"}`))

	_, err := c.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryAuth))
}
