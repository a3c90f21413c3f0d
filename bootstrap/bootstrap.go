// Package bootstrap wires all dependencies and starts the standalone
// panel server. Embedding applications normally wire the packages
// directly; the bootstrap exists for the flyoutd binary and for tests
// that want a fully assembled stack.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/adapters/currency"
	"github.com/arraypress/flyouts/adapters/memory"
	"github.com/arraypress/flyouts/adapters/metrics"
	"github.com/arraypress/flyouts/adapters/nonce"
	"github.com/arraypress/flyouts/adapters/render"
	"github.com/arraypress/flyouts/app"
	"github.com/arraypress/flyouts/config"
	"github.com/arraypress/flyouts/core/component"
	"github.com/arraypress/flyouts/core/hostfn"
	"github.com/arraypress/flyouts/core/manager"
	"github.com/arraypress/flyouts/core/registry"
	"github.com/arraypress/flyouts/core/sanitize"
	"github.com/arraypress/flyouts/ports"
	"github.com/arraypress/flyouts/web"
)

// Options configures application assembly. Zero-value fields fall back
// to the built-in adapters.
type Options struct {
	// ConfigPath locates the YAML config. Empty falls back to
	// environment variables.
	ConfigPath string

	// Callbacks resolves manifest callback names. Required when the
	// config lists panel manifests.
	Callbacks *hostfn.Registry

	// Permissions overrides the capability checker built from
	// security.capabilities.
	Permissions ports.PermissionChecker

	// Renderer overrides the reference renderer.
	Renderer ports.Renderer

	// Attachments overrides the attachment checker used on save.
	Attachments ports.AttachmentChecker
}

// App is the assembled application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Holder     *config.Holder
	Registry   *registry.Registry
	Components *component.Registry
	Sanitizer  *sanitize.Sanitizer
	Dispatcher *app.Dispatcher
	Metrics    *metrics.Collector
	HTTPServer *http.Server

	callbacks *hostfn.Registry
}

// New assembles the application.
func New(opts Options) (*App, error) {
	var (
		cfg     *config.Config
		err     error
		hasFile bool
	)
	if opts.ConfigPath != "" {
		if _, statErr := os.Stat(opts.ConfigPath); statErr == nil {
			hasFile = true
			cfg, err = config.Load(opts.ConfigPath)
			if err != nil {
				return nil, err
			}
		}
	}
	if cfg == nil {
		cfg, err = config.LoadFromEnv()
		if err != nil {
			return nil, err
		}
	}

	// The logger exists before the holder so reload and watch events are
	// not silently discarded.
	logger := setupLogger(cfg.Logging)

	var holder *config.Holder
	if hasFile {
		holder, err = config.NewHolder(opts.ConfigPath, logger)
		if err != nil {
			return nil, err
		}
		cfg = holder.Get()
	}
	a := &App{
		Logger:    logger,
		Config:    cfg,
		Holder:    holder,
		callbacks: opts.Callbacks,
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.Components = component.NewRegistry()

	a.Sanitizer = sanitize.New(sanitize.Deps{
		Currency:    currency.New(),
		Attachments: attachments(opts),
		Logger:      logger,
	})

	nonces := nonceIssuer(cfg.Security)
	a.Registry = registry.New(func(ns string) *manager.Manager {
		return manager.New(ns, manager.Deps{
			Components: a.Components,
			Nonces:     nonces,
			BasePath:   cfg.Routes.BasePath,
			Logger:     logger,
		})
	})

	if err := a.registerPanels(cfg); err != nil {
		return nil, fmt.Errorf("register panels: %w", err)
	}
	if holder != nil {
		holder.OnChange(func(newCfg *config.Config) {
			if err := a.registerPanels(newCfg); err != nil {
				logger.Error().Err(err).Msg("panel reload failed, keeping registered panels")
			}
		})
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New()
	}
	permissions := opts.Permissions
	if permissions == nil {
		permissions = permissionChecker(cfg.Security)
	}

	a.Dispatcher = app.NewDispatcher(app.Deps{
		Registry:    a.Registry,
		Sanitizer:   a.Sanitizer,
		Permissions: permissions,
		Renderer:    renderer,
		Logger:      logger,
	})
	// Dispatcher nonce verification is opt-in via app.Deps.Nonces;
	// the standalone server leaves it off.

	a.initHTTPServer(cfg)
	return a, nil
}

// registerPanels loads every configured manifest and registers its
// panels. Re-registration replaces definitions in place; panels removed
// from a manifest stay registered until restart.
func (a *App) registerPanels(cfg *config.Config) error {
	manifests, err := config.LoadManifests(cfg.Panels)
	if err != nil {
		return err
	}
	if len(manifests) > 0 && a.callbacks == nil {
		return fmt.Errorf("panel manifests configured but no callback registry provided")
	}

	for _, m := range manifests {
		defs, err := m.Definitions(a.callbacks)
		if err != nil {
			return err
		}
		mgr, _ := a.Registry.GetOrCreate(m.Manager)
		for local, def := range defs {
			if err := mgr.RegisterPanel(local, def); err != nil {
				return fmt.Errorf("register %s: %w", registry.JoinID(m.Manager, local), err)
			}
			a.Logger.Info().
				Str("panel", registry.JoinID(m.Manager, local)).
				Msg("panel registered")
		}
	}
	return nil
}

func (a *App) initHTTPServer(cfg *config.Config) {
	handler := web.NewHandler(web.Deps{
		Dispatcher: a.Dispatcher,
		Logger:     a.Logger,
		Metrics:    a.Metrics,
	})

	r := chi.NewRouter()
	r.Mount(cfg.Routes.BasePath, handler.Routes())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	a.HTTPServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// shuts down gracefully.
func (a *App) Run() error {
	if a.Holder != nil {
		if err := a.Holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config watch unavailable")
		}
		a.Holder.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("server listening")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Close()
	return nil
}

// Close releases background resources.
func (a *App) Close() {
	if a.Holder != nil {
		a.Holder.Stop()
	}
}

func setupLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if lc.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func nonceIssuer(sc config.SecurityConfig) ports.NonceIssuer {
	if sc.NonceKey != "" {
		return nonce.New(nonce.WithKey([]byte(sc.NonceKey)))
	}
	return nonce.New()
}

func permissionChecker(sc config.SecurityConfig) ports.PermissionChecker {
	if len(sc.Capabilities) == 0 {
		return memory.AllowAll()
	}
	return memory.NewPermissions(sc.Capabilities...)
}

func attachments(opts Options) ports.AttachmentChecker {
	if opts.Attachments != nil {
		return opts.Attachments
	}
	return memory.NewAttachments()
}
