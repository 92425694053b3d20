// Package api contains the entity repositories for the libris REST backend.
// Repositories translate one domain operation into exactly one HTTP call with
// a typed request/response; they hold no caching logic of their own.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/errors"
	"github.com/parishlib/libris/internal/httpclient"
	"github.com/parishlib/libris/internal/logging"
	"github.com/parishlib/libris/internal/metrics"
)

// Package-level logger specific to the api service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "api.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "api", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize api file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "api")
		closeLogger = func() error { return nil }
	}
}

// Config holds configuration for the API client.
type Config struct {
	BaseURL string
	Token   httpclient.TokenProvider
	Timeout time.Duration
	PerPage int
	Metrics *metrics.APIMetrics
}

// ConfigFromSettings derives a Config from application settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	token := settings.Server.Token
	return Config{
		BaseURL: settings.Server.URL,
		Token:   func() string { return token },
		Timeout: settings.Server.Timeout,
		PerPage: settings.Server.PerPage,
	}
}

// Client provides typed access to the libris REST backend.
type Client struct {
	http    *httpclient.Client
	baseURL string
	perPage int
	metrics *metrics.APIMetrics
	debug   bool
}

// NewClient creates a new API client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.Newf("API base URL is required").
			Category(errors.CategoryConfiguration).
			Component("api").
			Build()
	}
	if config.PerPage == 0 {
		config.PerPage = 12
	}

	settings := conf.GetSettings()
	debug := settings != nil && settings.Debug

	httpCfg := httpclient.DefaultConfig()
	httpCfg.DefaultTimeout = config.Timeout
	httpCfg.Token = config.Token

	client := &Client{
		http:    httpclient.New(&httpCfg),
		baseURL: config.BaseURL,
		perPage: config.PerPage,
		metrics: config.Metrics,
		debug:   debug,
	}

	logger.Info("API client initialized",
		"base_url", config.BaseURL,
		"per_page", config.PerPage,
		"token_configured", config.Token != nil)

	return client, nil
}

// HTTPClient exposes the underlying http.Client so tests can install a mock
// transport.
func (c *Client) HTTPClient() *http.Client {
	return c.http.HTTPClient()
}

// SetTokenProvider replaces the bearer credential provider, e.g. after login.
func (c *Client) SetTokenProvider(fn httpclient.TokenProvider) {
	c.http.SetTokenProvider(fn)
}

// Close releases transport resources and the service log file.
func (c *Client) Close() {
	c.http.Close()
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing api logger: %v", err)
		}
	}
}

// endpoint joins the base URL with a path.
func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// doJSON executes a request and decodes the response body into result.
// Non-2xx responses are parsed into a structured API error; 2xx bodies that
// fail to decode yield a file-parsing error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	start := time.Now()
	endpoint := c.endpoint(path)

	var resp *http.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = c.http.Get(ctx, endpoint)
	case http.MethodPost:
		resp, err = c.http.Post(ctx, endpoint, "application/json", body)
	case http.MethodPatch:
		resp, err = c.http.Patch(ctx, endpoint, "application/json", body)
	case http.MethodDelete:
		resp, err = c.http.Delete(ctx, endpoint, "application/json", body)
	default:
		return errors.Newf("unsupported method %s", method).
			Category(errors.CategoryState).
			Component("api").
			Build()
	}

	duration := time.Since(start)
	c.metrics.ObserveRequest(method, path, duration.Seconds())

	if err != nil {
		c.metrics.IncrementErrors(method, path, "network")
		logger.Error("API request failed",
			"method", method,
			"path", path,
			"error", err)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("path", path).
			Component("api").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		c.metrics.IncrementErrors(method, path, "network")
		logger.Error("Failed to read response body",
			"method", method,
			"path", path,
			"status_code", resp.StatusCode,
			"error", readErr)
		return errors.Newf("failed to read response body: %w", readErr).
			Category(errors.CategoryNetwork).
			Context("path", path).
			Context("status_code", resp.StatusCode).
			Component("api").
			Build()
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(resp.StatusCode, bodyBytes)
		c.metrics.IncrementErrors(method, path, string(apiErr.Kind()))
		logger.Warn("API error response",
			"method", method,
			"path", path,
			"status_code", resp.StatusCode,
			"kind", string(apiErr.Kind()))
		return errors.Newf("API error (status %d): %w", resp.StatusCode, apiErr).
			Context("method", method).
			Context("path", path).
			Context("status_code", resp.StatusCode).
			Component("api").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			c.metrics.IncrementErrors(method, path, "decode")
			responsePreview := string(bodyBytes)
			if len(responsePreview) > 500 {
				responsePreview = responsePreview[:500] + "..."
			}
			logger.Error("Failed to parse API response",
				"method", method,
				"path", path,
				"error", err,
				"response_preview", responsePreview)
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("path", path).
				Context("response_size", len(bodyBytes)).
				Component("api").
				Build()
		}
	}

	if c.debug {
		logger.Debug("API request successful",
			"method", method,
			"path", path,
			"status_code", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"response_size", len(bodyBytes))
	}

	return nil
}

// doEnvelope executes a mutation request and enforces the
// `{status, message?, data?, errors?}` envelope: a 2xx response whose envelope
// status is false is converted into a structured API error.
func doEnvelope[T any](ctx context.Context, c *Client, method, path string, body any) (*Envelope[T], error) {
	var env Envelope[T]
	if err := c.doJSON(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		apiErr := &Error{StatusCode: 200, Message: env.Message, Fields: env.Errors}
		c.metrics.IncrementErrors(method, path, string(apiErr.Kind()))
		return nil, errors.Newf("API rejected %s %s: %w", method, path, apiErr).
			Context("method", method).
			Context("path", path).
			Component("api").
			Build()
	}
	return &env, nil
}

// listQuery builds the query string for paginated, filtered listings.
func listQuery(perPage, page int, filters map[string]string) string {
	values := url.Values{}
	values.Set("per_page", strconv.Itoa(perPage))
	values.Set("page", strconv.Itoa(page))
	for key, val := range filters {
		values.Set(key, val)
	}
	return values.Encode()
}
