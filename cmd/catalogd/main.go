package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/catalogd/catalogd/admin"
	"github.com/catalogd/catalogd/catalog"
	"github.com/catalogd/catalogd/cfg"
	"github.com/catalogd/catalogd/gate"
	"github.com/catalogd/catalogd/loader"
	"github.com/catalogd/catalogd/metastore"
	"github.com/catalogd/catalogd/notify"
	"github.com/catalogd/catalogd/sink"
	"github.com/catalogd/catalogd/telemetry"
)

func main() {
	flag.Parse()

	if err := cfg.Load(*cfg.ConfigPathFlag); err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	var writer io.Writer = zerolog.NewConsoleWriter()
	if cfg.Config.Logging.Format == "json" {
		writer = os.Stdout
	}
	gLog := zerolog.New(writer).With().Timestamp().Str("service_id_seed", cfg.Config.ServiceIDSeed).Logger()
	if cfg.Config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("catalogd starting")
	telemetry.InitializeTelemetry()
	telemetry.InitMetrics()

	cat := catalog.New(cfg.Config.ServiceIDSeed, catalog.Config{
		MaxSkippedTopicUpdates:  cfg.Config.MaxSkippedTopicUpdates,
		TopicUpdateLogRetention: cfg.Config.TopicUpdateLogRetention,
	})

	hub := notify.NewHub()
	cat.SetDatabaseTouchedHook(hub.Signal)

	metastoreClient, err := initMetastoreClient()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metastore client")
		return
	}
	if closer, ok := metastoreClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	ld := loader.New(cat, metastoreClient, cfg.Config.NumLoadingThreads)
	ld.Start()
	defer ld.Stop()

	gt := gate.New(cfg.Config.MaxParallelPartialFetch)

	publisher, err := initPublisher()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize northbound sinks")
		return
	}
	if publisher.Full != nil {
		defer publisher.Full.Close()
	}
	if publisher.Minimal != nil && publisher.Minimal != publisher.Full {
		defer publisher.Minimal.Close()
	}

	collector := telemetry.NewMetricsCollector(cat, 10*time.Second)
	collector.Start()
	defer collector.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if hdfsClient, ok := metastoreClient.(metastore.HDFSClient); ok {
		poller := metastore.NewCachePoolPoller(cat, hdfsClient, time.Duration(cfg.Config.Metastore.HDFSCachePoolPollSec)*time.Second)
		go poller.Run(ctx)
	}

	go runDeltaBuildLoop(ctx, cat, publisher)

	mux := http.NewServeMux()
	if cfg.Config.Admin.Enabled {
		handlers := admin.NewHandlers(cat, ld, gt)
		admin.RegisterRoutes(mux, handlers)
	}
	if cfg.Config.Prometheus.Enabled {
		mux.Handle("/metrics", telemetry.GetMetricsHandler())
	}

	adminAddr := fmt.Sprintf("%s:%d", cfg.Config.Admin.BindAddress, cfg.Config.Admin.Port)
	httpServer := &http.Server{Addr: adminAddr, Handler: mux}
	go func() {
		log.Info().Str("addr", adminAddr).Msg("admin/metrics http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin http server exited")
		}
	}()

	log.Info().Str("service_id", cat.ServiceID()).Msg("catalogd operational")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("catalogd shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

// initMetastoreClient constructs the southbound client configured by
// metastore.grpc_target, falling back to the in-memory fake when no
// target is configured (local development, integration tests run via
// `go run`).
func initMetastoreClient() (metastore.Client, error) {
	if cfg.Config.Metastore.GRPCTarget == "" {
		log.Warn().Msg("metastore.grpc_target not set, using in-memory fake metastore client")
		return metastore.NewFake(), nil
	}
	client, err := metastore.DialGRPC(cfg.Config.Metastore.GRPCTarget)
	if err != nil {
		return nil, fmt.Errorf("dialing metastore at %s: %w", cfg.Config.Metastore.GRPCTarget, err)
	}
	return client, nil
}

// initPublisher builds the FULL and/or MINIMAL sink per topic_mode
// (spec.md §6 "Northbound").
func initPublisher() (*sink.Publisher, error) {
	p := &sink.Publisher{Mode: sink.Mode(cfg.Config.TopicMode)}

	filter, err := sink.NewGlobFilter(cfg.Config.Sink.DatabaseGlobs, cfg.Config.Sink.NameGlobs)
	if err != nil {
		return nil, err
	}
	p.Filter = filter

	fullCfg := cfg.Config.SinkFull
	if fullCfg.Type == "" {
		fullCfg = cfg.Config.Sink
	}

	switch p.Mode {
	case sink.ModeFull:
		full, err := sink.New(toSinkConfig(fullCfg))
		if err != nil {
			return nil, err
		}
		p.Full = full
	case sink.ModeMinimal:
		minimal, err := sink.New(toSinkConfig(cfg.Config.Sink))
		if err != nil {
			return nil, err
		}
		p.Minimal = minimal
	case sink.ModeMixed:
		full, err := sink.New(toSinkConfig(fullCfg))
		if err != nil {
			return nil, err
		}
		minimal, err := sink.New(toSinkConfig(cfg.Config.Sink))
		if err != nil {
			return nil, err
		}
		p.Full = full
		p.Minimal = minimal
	}
	return p, nil
}

func toSinkConfig(c cfg.SinkConfiguration) sink.Config {
	return sink.Config{
		Type:      c.Type,
		NatsURL:   c.NatsURL,
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
	}
}

// runDeltaBuildLoop drives the Delta Builder (spec.md §4.4) on a fixed
// tick, publishing each delta and advancing last_published_topic.
func runDeltaBuildLoop(ctx context.Context, cat *catalog.Catalog, publisher *sink.Publisher) {
	ticker := time.NewTicker(time.Duration(cfg.Config.DeltaBuildIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	fromV := cat.LastPublishedTopic()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delta := cat.BuildDelta(ctx, fromV)
			if delta == nil {
				continue
			}
			if err := publisher.PublishDelta(delta); err != nil {
				log.Error().Err(err).Msg("delta publish encountered errors, see per-record logs")
			}
			cat.CommitDelta(delta)
			fromV = delta.ToVersion
		}
	}
}
