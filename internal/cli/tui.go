package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photogrid/internal/config"
	"photogrid/internal/eventbus"
	"photogrid/internal/gateway"
	"photogrid/internal/logger"
	"photogrid/internal/metrics"
	"photogrid/internal/pipeline"
	"photogrid/internal/query"
	"photogrid/internal/ui"
)

// runTUI opens the interactive search screen
func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New(log)
	defer bus.Close()

	a.writeDefaultConfig(bus, log)

	recordMetrics := cfg.Metrics.Addr != ""
	if recordMetrics {
		metrics.Register()
	}

	feed := ui.NewStateFeed()
	session, err := pipeline.NewSession(ctx, pipeline.SessionOptions{
		Options: pipeline.Options{
			Gateway:          newGateway(cfg, log),
			Encoder:          newEncoder(cfg),
			Debounce:         cfg.Search.Debounce.Std(),
			CancelSuperseded: cfg.Search.CancelSuperseded,
			Bus:              bus,
			Logger:           log,
			OnChange:         feed.Push,
		},
		RecordMetrics: recordMetrics,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if recordMetrics {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, log)
		})
	}

	g.Go(func() error {
		// leaving the UI stops the metrics server too
		defer cancel()
		return ui.Run(gctx, ui.Options{
			Searcher:     session,
			Feed:         feed,
			Settings:     cfg.UI,
			InitialQuery: strings.Join(args, " "),
			Logger:       log,
		})
	})

	return g.Wait()
}

// writeDefaultConfig creates the default config file on first run. An explicit
// --config path is never created implicitly.
func (a *app) writeDefaultConfig(bus eventbus.EventBus, log *zap.Logger) {
	if a.configPath != "" || fileExists(config.DefaultPath()) {
		return
	}

	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ConfigSavedEvent); ok {
			log.Info("wrote default config", zap.String("path", ev.Path))
		}
	})

	if err := config.NewConfigServiceWithBus("", bus).Save(config.DefaultConfig()); err != nil {
		log.Warn("could not write default config", zap.Error(err))
	}
}

func newGateway(cfg *config.Config, log *zap.Logger) *gateway.Client {
	return gateway.NewClient(&gateway.Config{
		Endpoint:      cfg.API.Endpoint,
		APIKey:        cfg.API.Key,
		Timeout:       cfg.API.Timeout.Std(),
		RatePerMinute: cfg.API.RatePerMinute,
		Logger:        log,
	})
}

func newEncoder(cfg *config.Config) *query.Encoder {
	return query.NewEncoder(cfg.Search.PageSize, cfg.Search.SafeSearch, cfg.Search.FallbackQuery)
}
