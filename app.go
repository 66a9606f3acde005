package prerender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vango-dev/prerender/internal/config"
	"github.com/vango-dev/prerender/internal/dev"
	"github.com/vango-dev/prerender/pkg/assets"
	"github.com/vango-dev/prerender/pkg/middleware"
	"github.com/vango-dev/prerender/pkg/render"
	"github.com/vango-dev/prerender/pkg/server"
	"github.com/vango-dev/prerender/pkg/store"
)

const (
	// ReloadPath reloads configuration, reducers and assets in development.
	ReloadPath = "/_prerender/reload"

	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"

	shutdownTimeout = 10 * time.Second
	devtoolsTTL     = 24 * time.Hour
)

// Options configures an App.
type Options struct {
	// Config is the project configuration. Defaults to config.New().
	Config *config.Config

	Flags config.Flags

	// Registry resolves the names in Config. Defaults to an empty registry
	// holding only the default root.
	Registry *Registry

	Logger *slog.Logger

	// Metrics receives the Prometheus collectors. Defaults to a new
	// registry with the Go and process collectors.
	Metrics *prometheus.Registry

	// Persist overrides the devtools session backend.
	Persist store.Backend

	// AssetSource overrides the source derived from Config.Assets.
	AssetSource assets.Source

	// ErrorOutput receives pretty-printed errors in development.
	ErrorOutput io.Writer
}

// App wires configuration, registry and the render pipeline into an HTTP
// server.
type App struct {
	flags    config.Flags
	registry *Registry
	logger   *slog.Logger
	cfg      atomic.Pointer[config.Config]

	stores   *store.Factory
	assets   *assets.Tools
	handler  *server.Handler
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	hub      *dev.ReloadHub
	static   atomic.Pointer[staticFiles]
	redis    *redis.Client
	mux      atomic.Pointer[chi.Mux]

	// fixedSource is the caller-supplied asset source, kept across reloads.
	fixedSource assets.Source

	reloadMu sync.Mutex
}

// New creates an App. Every name in the configuration must resolve in the
// registry; unknown names fail with E104 and unknown providers with E103.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	a := &App{
		flags:    opts.Flags,
		registry: opts.Registry,
		logger:   opts.Logger,
	}
	a.cfg.Store(cfg)
	if a.flags.Development && cfg.Dev.LiveReload {
		a.hub = dev.NewReloadHub(a.logger)
	}

	pipeline, err := a.buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	persist := opts.Persist
	if persist == nil && a.flags.DevToolsRedisURL != "" {
		redisOpts, err := redis.ParseURL(a.flags.DevToolsRedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse devtools redis url: %w", err)
		}
		a.redis = redis.NewClient(redisOpts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("devtools redis unreachable", "error", err)
		}
		persist = store.NewRedisBackend(a.redis, "", devtoolsTTL)
	}

	a.stores, err = store.NewFactory(store.FactoryOptions{
		Flags:   a.flags,
		Reducer: pipeline.Reducer,
		Persist: persist,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, err
	}

	a.fixedSource = opts.AssetSource
	source, err := a.assetSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.assets = assets.NewTools(source, cfg.Assets.PublicPath, a.logger)
	if err := a.assets.Refresh(ctx); err != nil {
		if !a.flags.Development {
			return nil, err
		}
		a.logger.Warn("assets not loaded yet", "source", source.String(), "error", err)
	}

	reg := opts.Metrics
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.gatherer = reg
	a.metrics = middleware.NewMetrics(middleware.WithRegistry(reg))

	a.handler, err = server.New(server.Options{
		Flags:       a.flags,
		Stores:      a.stores,
		Assets:      a.assets,
		Pipeline:    pipeline,
		Observer:    a.metrics,
		Logger:      a.logger,
		ErrorOutput: opts.ErrorOutput,
	})
	if err != nil {
		return nil, err
	}

	a.static.Store(newStaticFiles(cfg.StaticPath(), cfg.Static.Prefix, a.flags.Development))
	a.mux.Store(a.routes(cfg))
	return a, nil
}

// buildPipeline resolves every configured name up front.
func (a *App) buildPipeline(cfg *config.Config) (server.Pipeline, error) {
	rootRenderer, err := a.registry.Root(cfg.RootName())
	if err != nil {
		return server.Pipeline{}, err
	}
	routes, err := a.registry.Routes(cfg.Routes)
	if err != nil {
		return server.Pipeline{}, err
	}
	if _, err := a.registry.Middleware(cfg.Redux.Middleware); err != nil {
		return server.Pipeline{}, err
	}
	reducer, err := a.registry.Reducer(cfg.Redux.Reducers)
	if err != nil {
		return server.Pipeline{}, err
	}
	if _, err := a.registry.Providers().Lookup(cfg.Providers); err != nil {
		return server.Pipeline{}, err
	}

	doc := render.Document{
		Title: cfg.Document.Title,
		Lang:  cfg.Document.Lang,
		Meta:  cfg.Document.Meta,
	}
	if a.hub != nil {
		doc.LiveReload = dev.LivePath
	}

	middlewareName := cfg.Redux.Middleware
	return server.Pipeline{
		Routes: routes,
		Middleware: func() ([]store.Middleware, error) {
			return a.registry.Middleware(middlewareName)
		},
		Reducer:   reducer,
		Root:      rootRenderer,
		Providers: append([]string(nil), cfg.Providers...),
		Document:  doc,
	}, nil
}

func (a *App) routes(cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Recoverer(a.logger),
		a.metrics.Handler,
		middleware.Tracing(middleware.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != HealthPath && r.URL.Path != MetricsPath
		})),
	)

	r.Get(HealthPath, a.healthz)
	r.Handle(MetricsPath, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	if a.flags.Development {
		r.Post(ReloadPath, a.handleReload)
		if a.hub != nil {
			r.Handle(dev.LivePath, a.hub)
		}
	}

	r.Group(func(r chi.Router) {
		if cfg.Server.Compress {
			r.Use(chimw.Compress(5))
		}
		r.Handle("/*", http.HandlerFunc(a.pages))
	})
	return r
}

func (a *App) pages(w http.ResponseWriter, r *http.Request) {
	if a.static.Load().serve(w, r) {
		return
	}
	a.handler.ServeHTTP(w, r)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"assets": a.assets.Loaded(),
	})
}

func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := a.Reload(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.Load().ServeHTTP(w, r)
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	return a.cfg.Load()
}

// Stores returns the store factory.
func (a *App) Stores() *store.Factory {
	return a.stores
}

// Reload re-reads the configuration file, re-resolves every name and
// swaps the pipeline and reducer. Live stores keep their state. On failure
// the previous setup stays in place.
func (a *App) Reload(ctx context.Context) error {
	return a.reload(ctx, "")
}

func (a *App) reload(ctx context.Context, file string) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	err := a.swap(ctx)
	if err != nil {
		a.logger.Error("reload failed", "error", err)
		if a.hub != nil {
			a.hub.NotifyError(err.Error())
		}
		return err
	}

	a.logger.Info("reloaded", "file", file)
	if a.hub != nil {
		a.hub.NotifyReload(file)
	}
	return nil
}

func (a *App) swap(ctx context.Context) error {
	cfg := a.Config()
	if cfg.Path() != "" {
		next, err := config.LoadFile(cfg.Path())
		if err != nil {
			return err
		}
		cfg = next
	}

	pipeline, err := a.buildPipeline(cfg)
	if err != nil {
		return err
	}
	source, err := a.assetSource(ctx, cfg)
	if err != nil {
		return err
	}
	// New requests take the reducer from the pipeline; SetReducer only
	// reaches stores already in flight.
	if err := a.handler.SetPipeline(pipeline); err != nil {
		return err
	}
	a.stores.SetReducer(pipeline.Reducer)
	a.static.Store(newStaticFiles(cfg.StaticPath(), cfg.Static.Prefix, a.flags.Development))
	a.assets.Retarget(source, cfg.Assets.PublicPath)
	a.mux.Store(a.routes(cfg))
	a.cfg.Store(cfg)

	if err := a.assets.Refresh(ctx); err != nil {
		a.logger.Warn("asset refresh failed", "error", err)
	}
	return nil
}

// assetSource returns the caller's source or the one cfg describes.
func (a *App) assetSource(ctx context.Context, cfg *config.Config) (assets.Source, error) {
	if a.fixedSource != nil {
		return a.fixedSource, nil
	}
	return assets.NewSource(ctx, cfg)
}

// Watch reloads on changes to the configured watch paths until ctx is
// done. It returns immediately outside development.
func (a *App) Watch(ctx context.Context) error {
	if !a.flags.Development {
		return nil
	}
	w := dev.NewWatcher(dev.WatcherConfig{
		Paths:  a.Config().WatchPaths(),
		Logger: a.logger,
	})
	w.OnChange(func(changes []dev.Change) {
		_ = a.reload(ctx, changes[0].Path)
	})
	err := w.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Server returns an http.Server for the configured address and timeouts.
func (a *App) Server() *http.Server {
	cfg := a.Config()
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := a.Server()
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", srv.Addr, "development", a.flags.Development)
		errCh <- srv.ListenAndServe()
	}()

	if a.flags.Development {
		go func() {
			if err := a.Watch(ctx); err != nil {
				a.logger.Warn("watcher stopped", "error", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		a.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("shutdown error", "error", err)
			return err
		}
		a.logger.Info("server shutdown complete")
		return nil
	}
}

// Close releases live-reload connections and the devtools Redis client.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
