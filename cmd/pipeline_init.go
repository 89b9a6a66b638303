package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/alert"
	"github.com/openfiling/disclosure-cli/internal/archive"
	"github.com/openfiling/disclosure-cli/internal/connector"
	"github.com/openfiling/disclosure-cli/internal/fetcher"
	"github.com/openfiling/disclosure-cli/internal/ingest"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// pipelineEnv bundles the wired-up ingestion pipeline and its store.
type pipelineEnv struct {
	Store  store.Store
	Feeds  []connector.Feed
	Runner *ingest.Runner
}

// initPipeline connects the store and assembles feeds, archiver, engine, and
// runner from configuration.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := store.NewPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	var archiver archive.Archiver = archive.Disabled{}
	if cfg.Archive.Bucket != "" {
		archiver, err = archive.NewObjectStore(archive.Options{
			Endpoint:  cfg.Archive.Endpoint,
			Bucket:    cfg.Archive.Bucket,
			Prefix:    cfg.Archive.Prefix,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		zap.L().Info("provenance archival enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    cfg.Fetch.Timeout(),
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	var feeds []connector.Feed
	if cfg.Feeds.HouseURL != "" {
		feeds = append(feeds, connector.NewHouse(f, cfg.Feeds.HouseURL))
	}
	if cfg.Feeds.SenateURL != "" {
		feeds = append(feeds, connector.NewSenate(f, cfg.Feeds.SenateURL))
	}
	if cfg.Feeds.UKURL != "" {
		feeds = append(feeds, connector.NewUKRegister(f, cfg.Feeds.UKURL))
	}

	engine := ingest.NewEngine(st, archiver)
	notifier := alert.NewNotifier(st, nil)
	runner := ingest.NewRunner(feeds, engine, st, notifier)

	return &pipelineEnv{Store: st, Feeds: feeds, Runner: runner}, nil
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
