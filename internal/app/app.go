package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/specialistvlad/primcall/internal/catalog"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/dispatch"
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/specialistvlad/primcall/internal/engine/remote"
	"github.com/specialistvlad/primcall/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	errW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	closeFn    func() error
	httpServer *http.Server
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	engine engine.Engine
}

// WithEngine makes the app call e instead of building an engine from the
// configuration.
func WithEngine(e engine.Engine) Option {
	return func(o *options) { o.engine = e }
}

// NewApp is the constructor for the main application. Results go to outW,
// logs and diagnostics to errW. Startup failures (bad catalog, unreachable
// engine) panic; the entrypoint recovers them.
func NewApp(outW, errW io.Writer, cfg *Config, opts ...Option) *App {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := newLogger(cfg, errW)
	if err != nil {
		panic(fmt.Errorf("failed to configure logger: %w", err))
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	descs, err := catalog.Load(ctx, cfg.CatalogPath)
	if err != nil {
		panic(fmt.Errorf("failed to load function catalog: %w", err))
	}
	reg, err := registry.New(descs...)
	if err != nil {
		// A broken catalog is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry built.", "functions", reg.Len())

	closeFn := func() error { return nil }
	eng := o.engine
	switch {
	case eng != nil:
		logger.Debug("Using injected engine.")
	case cfg.EngineURL != "":
		client, err := remote.Dial(ctx, cfg.EngineURL, remoteOptions(cfg))
		if err != nil {
			panic(fmt.Errorf("failed to connect to engine: %w", err))
		}
		eng, closeFn = client, client.Close
	default:
		logger.Debug("Using in-process engine.")
		local := engine.NewLocal()
		for _, name := range unservedFunctions(reg, local) {
			logger.Warn("Function target is not exported by the in-process engine.", "function", name)
		}
		eng = local
	}

	return &App{
		outW:       outW,
		errW:       errW,
		logger:     logger,
		config:     cfg,
		registry:   reg,
		dispatcher: dispatch.New(reg, engine.NewHost(eng)),
		closeFn:    closeFn,
	}
}

func remoteOptions(cfg *Config) remote.Options {
	return remote.Options{
		Namespace:          cfg.EngineNamespace,
		InsecureSkipVerify: cfg.EngineInsecureSkipVerify,
		ConnectTimeout:     cfg.EngineConnectTimeout,
	}
}

// unservedFunctions names the registered functions whose target the local
// engine does not export. Calling them fails at evaluation time.
func unservedFunctions(reg *registry.Registry, local *engine.Local) []string {
	var names []string
	for _, name := range reg.Names() {
		id, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		module, symbol := engine.SplitName(reg.Resolve(id).Address())
		if !slices.Contains(local.Symbols(module), symbol) {
			names = append(names, name)
		}
	}
	return names
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Close releases the engine connection and stops the health check server.
func (a *App) Close() error {
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	if err := a.closeHealthCheckServer(ctx); err != nil {
		return err
	}
	return a.closeFn()
}
