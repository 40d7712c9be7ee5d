package cmd

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hr-screener/internal/artifacts"
	"github.com/spigell/hr-screener/internal/backend"
	"github.com/spigell/hr-screener/internal/chat"
	"github.com/spigell/hr-screener/internal/hr"
	"github.com/spigell/hr-screener/internal/logger"
	"github.com/spigell/hr-screener/internal/matching"
	"github.com/spigell/hr-screener/internal/metrics"
	"github.com/spigell/hr-screener/internal/store"
)

// application is the set of components shared by every command.
type application struct {
	config   *Config
	logger   *zap.Logger
	client   *backend.Client
	store    *store.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApplication() *application {
	config, err := getConfig(viper.GetViper())
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}

	client := backend.New(logger, backend.Options{
		APIURL:    config.API.URL,
		Timeout:   config.API.Timeout,
		UserAgent: config.API.UserAgent,
	})

	registry := prometheus.NewRegistry()

	logger.Debug("application configured", zap.String("api_url", client.APIURL))

	return &application{
		config:   config,
		logger:   logger,
		client:   client,
		store:    store.New(client, logger),
		registry: registry,
		metrics:  metrics.New(registry),
	}
}

// load populates the store or stops the program.
func (a *application) load(ctx context.Context) []backend.Candidate {
	candidates, err := a.store.Load(ctx)
	if err != nil {
		a.logger.Fatal("failed to load candidates", zap.Error(err))
	}

	a.logger.Debug("candidates loaded", zap.Int("count", len(candidates)))

	return candidates
}

func (a *application) aggregator() *artifacts.Aggregator {
	return artifacts.New(a.client, a.store, a.logger, a.metrics)
}

func (a *application) orchestrator() *matching.Orchestrator {
	return matching.New(a.client, matching.Options{
		RequestsPerSecond: a.config.Match.RequestsPerSecond,
	}, a.logger, a.metrics)
}

func (a *application) gateway() *hr.Gateway {
	return hr.New(a.client, a.logger)
}

func (a *application) chatOptions() []chat.Option {
	opts := []chat.Option{chat.WithLogger(a.logger), chat.WithMetrics(a.metrics)}
	if !a.config.Chat.Greeting {
		opts = append(opts, chat.WithGreeting(""))
	}
	return opts
}

func (a *application) sync() {
	_ = a.logger.Sync()
}
