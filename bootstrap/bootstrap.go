// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file when one is given, otherwise from
// TIERGATE_* environment variables.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/crowelogic/tiergate/adapters/backend"
	"github.com/crowelogic/tiergate/adapters/clock"
	"github.com/crowelogic/tiergate/adapters/hasher"
	apihttp "github.com/crowelogic/tiergate/adapters/http"
	"github.com/crowelogic/tiergate/adapters/http/admin"
	"github.com/crowelogic/tiergate/adapters/idgen"
	"github.com/crowelogic/tiergate/adapters/memory"
	"github.com/crowelogic/tiergate/adapters/metrics"
	redisledger "github.com/crowelogic/tiergate/adapters/redis"
	"github.com/crowelogic/tiergate/adapters/sqlite"
	"github.com/crowelogic/tiergate/app"
	"github.com/crowelogic/tiergate/config"
	"github.com/crowelogic/tiergate/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// periodTTL bounds one usage period for Redis key expiry.
const periodTTL = 31 * 24 * time.Hour

// Options configures application initialization.
type Options struct {
	// ConfigPath is the YAML file to load. When empty or missing, the
	// configuration comes from environment variables only.
	ConfigPath string

	// Watch enables hot reload on file change and SIGHUP.
	Watch bool

	// Version is reported by /version and the admin doctor.
	Version string

	// Clock overrides the wall clock (tests).
	Clock ports.Clock

	// LogOutput overrides stdout for logs (tests).
	LogOutput io.Writer
}

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	Engine     *app.Engine
	Generate   *app.GenerateService
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Registry   *prometheus.Registry

	holder *config.Holder
	static *config.Config
	redis  *redisledger.Ledger
	checks map[string]apihttp.HealthChecker

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	a := &App{stopCh: make(chan struct{})}

	if err := a.loadConfig(opts); err != nil {
		return nil, err
	}
	cfg := a.Config()

	a.Logger = setupLogger(cfg.Logging, opts.LogOutput)
	if a.holder != nil {
		a.holder.SetLogger(a.Logger.With().Str("component", "config").Logger())
	}
	a.Logger.Info().Str("version", opts.Version).Msg("initializing tiergate")

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	if cfg.Metrics.Enabled {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = metrics.NewWithRegistry(a.Registry)
		a.Logger.Info().Msg("prometheus metrics enabled")
	}

	ctx := context.Background()
	subs, ledger, err := a.initStores(ctx, cfg)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	gen, err := backend.New(backend.Config{
		Kind:    cfg.Backend.Kind,
		URL:     cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
		Headers: cfg.Backend.Headers,
		Latency: cfg.Backend.Latency,
	})
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("init backend: %w", err)
	}
	a.Logger.Info().Str("kind", cfg.Backend.Kind).Msg("generation backend configured")

	var meter ports.Meter
	if a.Metrics != nil {
		meter = a.Metrics
	}

	a.Engine = app.NewEngine(app.EngineDeps{
		Subscriptions: subs,
		Usage:         ledger,
		Clock:         clk,
		Meter:         meter,
		Logger:        a.Logger,
	})
	a.Generate = app.NewGenerateService(app.GenerateDeps{
		Engine:  a.Engine,
		Backend: gen,
		Clock:   clk,
		IDGen:   idgen.UUID{},
		Meter:   meter,
		Logger:  a.Logger,
	})

	if err := a.seedSubscriptions(ctx, cfg.Subscriptions); err != nil {
		a.closeStores()
		return nil, err
	}

	a.initHTTPServer(cfg, opts.Version)

	if a.holder != nil {
		a.holder.OnChange(a.onConfigChange)
		if opts.Watch {
			if err := a.holder.WatchFile(); err != nil {
				a.Logger.Warn().Err(err).Msg("config file watch disabled")
			}
			a.holder.WatchSignals()
		}
	}

	return a, nil
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	if a.holder != nil {
		return a.holder.Get()
	}
	return a.static
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.HTTPServer.Handler
}

func (a *App) loadConfig(opts Options) error {
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			h, err := config.NewHolder(opts.ConfigPath, zerolog.Nop())
			if err != nil {
				return err
			}
			a.holder = h
			return nil
		}
	}

	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.static = cfg
	return nil
}

func (a *App) initStores(ctx context.Context, cfg *config.Config) (ports.SubscriptionStore, ports.UsageLedger, error) {
	a.checks = map[string]apihttp.HealthChecker{}

	if cfg.NeedsSQLite() {
		db, err := sqlite.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.checks["database"] = db
		a.Logger.Info().Str("dsn", cfg.Storage.DSN).Msg("database initialized")
	}

	var subs ports.SubscriptionStore
	switch cfg.Storage.Subscriptions {
	case config.StorageSQLite:
		subs = sqlite.NewSubscriptionStore(a.DB)
	default:
		subs = memory.NewSubscriptionStore()
	}

	var ledger ports.UsageLedger
	switch cfg.Storage.Usage {
	case config.StorageSQLite:
		ledger = sqlite.NewUsageLedger(a.DB)
	case config.StorageRedis:
		l, err := redisledger.Dial(ctx, cfg.Storage.Redis.URL, redisledger.Config{
			KeyPrefix: cfg.Storage.Redis.KeyPrefix,
			TTL:       time.Duration(cfg.Usage.RetentionPeriods) * periodTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = l
		a.checks["redis"] = l
		ledger = l
	default:
		ledger = memory.NewUsageLedger(memory.UsageLedgerConfig{NumShards: cfg.Usage.Shards})
	}

	a.Logger.Info().
		Str("subscriptions", cfg.Storage.Subscriptions).
		Str("usage", cfg.Storage.Usage).
		Msg("stores initialized")
	return subs, ledger, nil
}

func (a *App) initHTTPServer(cfg *config.Config, version string) {
	handler := apihttp.NewHandler(a.Engine, a.Generate, a.Logger)

	routerCfg := apihttp.RouterConfig{
		Metrics:        a.Metrics,
		EnableOpenAPI:  cfg.OpenAPI.Enabled,
		Health:         apihttp.NewHealthHandler(a.checks),
		Version:        version,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if a.Registry != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
	}

	if cfg.Auth.AdminKeyHash != "" {
		adminHandler := admin.NewHandler(admin.Deps{
			Engine:       a.Engine,
			Hasher:       hasher.NewBcrypt(0),
			AdminKeyHash: cfg.Auth.AdminKeyHash,
			Checks:       a.checks,
			Version:      version,
			Logger:       a.Logger,
		})
		routerCfg.AdminHandler = adminHandler.Router()
		a.Logger.Info().Msg("admin api enabled at /admin")
	}

	router := apihttp.NewRouter(handler, a.Logger, routerCfg)

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("http server configured")
}

// Run starts the HTTP server and blocks until SIGINT, SIGTERM or a server
// error.
func (a *App) Run() error {
	a.StartBackground()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// StartBackground starts the usage retention loop.
func (a *App) StartBackground() {
	interval := a.Config().Usage.PruneInterval
	if interval <= 0 {
		return
	}
	a.wg.Add(1)
	go a.pruneLoop(interval)
}

// Shutdown gracefully stops the application. Safe to call twice.
func (a *App) Shutdown() error {
	a.stopOnce.Do(func() {
		close(a.stopCh)

		timeout := a.Config().Server.ShutdownTimeout
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if a.holder != nil {
			a.holder.Stop()
		}

		if a.HTTPServer != nil {
			if err := a.HTTPServer.Shutdown(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("http server shutdown error")
			}
		}

		a.wg.Wait()
		a.closeStores()
		a.Logger.Info().Msg("shutdown complete")
	})
	return nil
}

func (a *App) closeStores() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("redis close error")
		}
		a.redis = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
		a.DB = nil
	}
}

func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "tiergate").Logger()
}

// Reload re-reads the configuration file and applies its reloadable fields.
func (a *App) Reload() error {
	if a.holder == nil {
		return errors.New("reload: no configuration file loaded")
	}
	return a.holder.Reload()
}
