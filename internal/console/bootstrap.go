package console

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/parishlib/libris/internal/api"
	"github.com/parishlib/libris/internal/blobstore"
	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/errors"
	"github.com/parishlib/libris/internal/metrics"
	"github.com/parishlib/libris/internal/notify"
	"github.com/parishlib/libris/internal/querycache"
)

// FromSettings wires a fully assembled console from application settings:
// metrics registry, API client, query store, optional blob store and the
// notification sink. The returned console owns its collaborators; Close
// releases them.
func FromSettings(settings *conf.Settings) (*Console, error) {
	registry := prometheus.NewRegistry()

	cacheMetrics, err := metrics.NewQueryCacheMetrics(registry)
	if err != nil {
		return nil, errors.Newf("creating cache metrics: %w", err).
			Component("console").
			Build()
	}
	apiMetrics, err := metrics.NewAPIMetrics(registry)
	if err != nil {
		return nil, errors.Newf("creating API metrics: %w", err).
			Component("console").
			Build()
	}

	apiCfg := api.ConfigFromSettings(settings)
	apiCfg.Metrics = apiMetrics
	apiClient, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, err
	}

	store := querycache.New(&querycache.Config{
		TTL:     settings.Cache.TTL,
		Logger:  logger,
		Metrics: cacheMetrics,
	})

	var blobs *blobstore.Client
	if settings.Storage.URL != "" {
		blobs, err = blobstore.NewClient(blobstore.ConfigFromSettings(settings))
		if err != nil {
			apiClient.Close()
			return nil, err
		}
	} else {
		logger.Warn("no storage URL configured, cover image handling disabled")
	}

	c, err := New(Config{
		API:      apiClient,
		Store:    store,
		Blobs:    blobs,
		Notifier: notify.NewService(0),
	})
	if err != nil {
		apiClient.Close()
		if blobs != nil {
			blobs.Close()
		}
		return nil, err
	}
	c.owned = true
	return c, nil
}
