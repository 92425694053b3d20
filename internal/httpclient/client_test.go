package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return newTestClientWithConfig(t, nil)
}

func newTestClientWithConfig(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

func closeResponseBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		cfg := DefaultConfig()
		client := New(&cfg)

		require.NotNil(t, client, "expected non-nil client")
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.Equal(t, defaultUserAgent, client.userAgent, "expected default user agent")
	})

	t.Run("custom config", func(t *testing.T) {
		cfg := Config{
			DefaultTimeout: 5 * time.Second,
			UserAgent:      "TestAgent/1.0",
		}
		client := New(&cfg)

		assert.Equal(t, 5*time.Second, client.defaultTimeout, "expected timeout 5s")
		assert.Equal(t, "TestAgent/1.0", client.userAgent, "expected user agent 'TestAgent/1.0'")
	})

	t.Run("zero values use defaults", func(t *testing.T) {
		cfg := Config{}
		client := New(&cfg)

		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
		assert.NotEmpty(t, client.userAgent, "expected non-empty user agent")
	})

	t.Run("nil config", func(t *testing.T) {
		client := New(nil)
		require.NotNil(t, client, "expected non-nil client")
		assert.Equal(t, DefaultTimeout, client.defaultTimeout, "expected default timeout")
	})
}

func TestDo_BearerToken(t *testing.T) {
	receivedAuth := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	cfg := Config{Token: func() string { return "secret" }}
	client := newTestClientWithConfig(t, &cfg)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "Bearer secret", receivedAuth, "expected bearer credential injected")
}

func TestDo_TokenRotation(t *testing.T) {
	receivedAuth := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	closeResponseBody(t, resp)
	assert.Empty(t, receivedAuth, "expected no credential before provider is set")

	client.SetTokenProvider(func() string { return "rotated" })
	resp, err = client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)
	assert.Equal(t, "Bearer rotated", receivedAuth, "expected rotated credential")
}

func TestDo_ExplicitAuthorizationWins(t *testing.T) {
	receivedAuth := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	cfg := Config{Token: func() string { return "provider-token" }}
	client := newTestClientWithConfig(t, &cfg)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")
	req.Header.Set("Authorization", "Bearer caller-token")

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "Bearer caller-token", receivedAuth, "caller-set Authorization must not be overwritten")
}

func TestDo_RequestID(t *testing.T) {
	receivedID := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.NotEmpty(t, receivedID, "expected correlation id header")
}

func TestPost_JSONBody(t *testing.T) {
	var receivedBody map[string]any
	receivedContentType := ""
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	payload := map[string]string{"title": "Confessions"}
	resp, err := client.Post(context.Background(), server.URL, "", payload)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "application/json", receivedContentType, "expected JSON content type for marshaled body")
	assert.Equal(t, "Confessions", receivedBody["title"], "expected marshaled payload")
}

func TestPost_RawBody(t *testing.T) {
	var receivedBody []byte
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	resp, err := client.Post(context.Background(), server.URL, "image/png", []byte("png-bytes"))
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.Equal(t, "png-bytes", string(receivedBody), "expected raw bytes passed through")
}

func TestDo_Hooks(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	client := newTestClient(t)

	var beforeCalled bool
	var afterStatus int
	client.SetBeforeRequestHook(func(req *http.Request) {
		beforeCalled = true
	})
	client.SetAfterResponseHook(func(req *http.Request, resp *http.Response, err error) {
		if resp != nil {
			afterStatus = resp.StatusCode
		}
	})

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err, "request failed")
	defer closeResponseBody(t, resp)

	assert.True(t, beforeCalled, "expected before-request hook")
	assert.Equal(t, http.StatusTeapot, afterStatus, "expected after-response hook to observe status")
}

func TestDo_ContextCancellation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	cancel()

	resp, err := client.Do(ctx, req)
	defer closeResponseBody(t, resp)

	require.Error(t, err, "expected error from cancelled context")
	assert.ErrorIs(t, err, context.Canceled, "expected context.Canceled error")
}

func TestDo_DefaultTimeout(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	cfg := Config{DefaultTimeout: 50 * time.Millisecond}
	client := newTestClientWithConfig(t, &cfg)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err, "failed to create request")

	resp, err := client.Do(context.Background(), req)
	defer closeResponseBody(t, resp)

	require.Error(t, err, "expected timeout error")
	assert.ErrorIs(t, err, context.DeadlineExceeded, "expected context.DeadlineExceeded error")
}
