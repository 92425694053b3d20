package blobstore

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(Config{
		URL:    "https://storage.example.com",
		Bucket: "covers",
		APIKey: "test-key",
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	httpmock.ActivateNonDefault(c.http.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestNewClientRequiresURLAndBucket(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Bucket: "covers"})
	assert.Error(t, err)

	_, err = NewClient(Config{URL: "https://storage.example.com"})
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	c := newTestClient(t)

	var gotAuth, gotAPIKey, gotPath string
	httpmock.RegisterResponder("POST", `=~^https://storage\.example\.com/storage/v1/object/covers/.+\.png$`,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			gotAPIKey = req.Header.Get("apikey")
			gotPath = req.URL.Path
			return httpmock.NewJsonResponse(200, map[string]string{"Key": "covers/uploaded"})
		})

	objectPath, err := c.Upload(context.Background(), "cover.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(objectPath, ".png"))
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "/storage/v1/object/covers/"+objectPath, gotPath)
}

func TestUploadRejectsEmptyData(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Upload(context.Background(), "cover.png", "image/png", nil)
	require.Error(t, err)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestUploadSurfacesStorageError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("POST", `=~^https://storage\.example\.com/storage/v1/object/covers/`,
		httpmock.NewStringResponder(403, `{"message":"access denied"}`))

	_, err := c.Upload(context.Background(), "cover.png", "image/png", []byte("png-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestPublicURL(t *testing.T) {
	c := newTestClient(t)

	u := c.PublicURL("abc.png")
	assert.Equal(t, "https://storage.example.com/storage/v1/object/public/covers/abc.png", u)

	// Second resolution is served from the memo.
	assert.Equal(t, u, c.PublicURL("abc.png"))
	_, cached := c.urls.Get("abc.png")
	assert.True(t, cached)
}

func TestRemove(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("DELETE", "https://storage.example.com/storage/v1/object/covers/abc.png",
		httpmock.NewStringResponder(200, `{"message":"deleted"}`))

	c.PublicURL("abc.png")
	require.NoError(t, c.Remove(context.Background(), "abc.png"))

	_, cached := c.urls.Get("abc.png")
	assert.False(t, cached)
}

func TestRemoveToleratesMissingObject(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("DELETE", "https://storage.example.com/storage/v1/object/covers/gone.png",
		httpmock.NewStringResponder(404, `{"message":"not found"}`))

	assert.NoError(t, c.Remove(context.Background(), "gone.png"))
	assert.NoError(t, c.Remove(context.Background(), ""))
}
