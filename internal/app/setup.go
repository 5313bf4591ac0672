// Package app wires the inventory components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/stockguard/internal/auth"
	"github.com/abgdnv/stockguard/internal/config"
	"github.com/abgdnv/stockguard/internal/inventory/risk"
	"github.com/abgdnv/stockguard/internal/inventory/service"
	"github.com/abgdnv/stockguard/internal/inventory/store"
	"github.com/abgdnv/stockguard/internal/metrics"
	"github.com/abgdnv/stockguard/internal/report"
	"github.com/abgdnv/stockguard/internal/transport/rest"
	pkgauth "github.com/abgdnv/stockguard/pkg/auth"
	"github.com/abgdnv/stockguard/pkg/messaging"
	"github.com/abgdnv/stockguard/pkg/nats"
	"github.com/abgdnv/stockguard/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Store       *store.Store
	Service     *service.Service
	Credentials *auth.HashedStore
	Reports     *report.Registry
	Metrics     *metrics.Metrics
	Publisher   messaging.Publisher
	Logger      *slog.Logger

	closers []func()
}

// SetupDependencies loads the inventory table and builds the service with its collaborators.
// The caller must Close the returned Dependencies.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: logger}

	credentials, err := auth.NewHashedStore(cfg.Auth.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	deps.Credentials = credentials

	deps.Store = store.New(NewBackend(cfg.Inventory))
	if err := deps.Store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	logger.Info("Inventory loaded", "backend", cfg.Inventory.Backend, "file", cfg.Inventory.File, "products", len(deps.Store.Snapshot()))

	deps.Reports = NewReportRegistry(cfg.Report)
	deps.Metrics = metrics.New()

	publisher, err := deps.setupPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.Publisher = publisher

	deps.Service = service.NewService(deps.Store, risk.NewClassifier(cfg.Inventory.LowLimit), deps.Reports,
		service.WithPublisher(deps.Publisher),
		service.WithRecorder(deps.Metrics),
		service.WithLogger(logger.With("component", "service")),
	)
	deps.Service.Sync()
	return deps, nil
}

// NewBackend selects the table backend named by the configuration.
func NewBackend(cfg config.InventoryConfig) store.Backend {
	if cfg.Backend == config.BackendMemory {
		return store.NewInMemoryBackend()
	}
	return store.NewCSVBackend(cfg.File)
}

// NewReportRegistry registers the renderers enabled in the configuration.
func NewReportRegistry(cfg config.ReportConfig) *report.Registry {
	registry := report.NewRegistry(cfg.Dir)
	if cfg.PDF.Enabled {
		registry.Register(report.PDFRenderer{})
	}
	if cfg.CSV.Enabled {
		registry.Register(report.CSVRenderer{})
	}
	return registry
}

// setupPublisher connects to JetStream when NATS is enabled, otherwise alerts are dropped.
func (d *Dependencies) setupPublisher(ctx context.Context, cfg *config.Config) (messaging.Publisher, error) {
	if !cfg.NATS.Enabled {
		d.Logger.Info("NATS is disabled, low stock alerts are not published")
		return messaging.NopPublisher{}, nil
	}

	nc, err := nats.NewClient(cfg.NATS)
	if err != nil {
		return nil, err
	}
	js, err := nats.NewJetStreamContext(nc)
	if err != nil {
		return nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err := nats.EnsureStream(streamCtx, js, messaging.AlertsStream, messaging.LowStockSubject); err != nil {
		nc.Close()
		return nil, err
	}
	d.closers = append(d.closers, func() {
		if err := nc.Drain(); err != nil {
			d.Logger.Warn("Failed to drain NATS connection", "error", err)
		}
	})
	d.Logger.Info("Connected to NATS", "url", nc.ConnectedUrlRedacted(), "stream", messaging.AlertsStream)
	return nats.NewNatsPublisher(js), nil
}

// Close releases the broker connection. It reports the table durability error, if any.
func (d *Dependencies) Close() error {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
	if d.Store == nil {
		return nil
	}
	if err := d.Store.DurabilityErr(); err != nil {
		return fmt.Errorf("last inventory change was not saved: %w", err)
	}
	return nil
}

// NewSessionIssuer builds the token issuer of the HTTP API.
func NewSessionIssuer(cfg config.SessionConfig) (*pkgauth.SessionIssuer, error) {
	issuer, err := pkgauth.NewSessionIssuer(cfg.Secret, cfg.Issuer, cfg.TTL)
	if err != nil {
		if errors.Is(err, pkgauth.ErrWeakSecret) {
			return nil, fmt.Errorf("auth.session.secret: %w", err)
		}
		return nil, err
	}
	return issuer, nil
}

// SetupHttpHandler initializes the router with the API routes, health check and metrics.
// Used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies, sessions rest.SessionManager) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, sessions)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies, sessions rest.SessionManager) {
	handler := rest.NewHandler(deps.Service, deps.Credentials, sessions, deps.Logger)
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", deps.Metrics.Handler())
}

// SetupHttpServer creates the HTTP server of the inventory API.
func SetupHttpServer(deps *Dependencies, sessions rest.SessionManager, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(server.FromConfig(cfg.HTTPServer), SetupHttpHandler(deps, sessions))
}
