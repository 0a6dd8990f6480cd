package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"walletbridge/bridge"
	"walletbridge/channel"
	"walletbridge/config"
	"walletbridge/platform"
	"walletbridge/platform/desktop"
	"walletbridge/platform/simhost"
	"walletbridge/wallet"
)

// App holds the host, the channel registry and the metrics of one bridge
// process.
type App struct {
	cfg      config.Config
	log      *zap.Logger
	host     platform.Host
	desktop  *desktop.Host
	registry *channel.Registry
	metrics  *prometheus.Registry
}

// NewApp builds the configured host and registers the wallet channels.
func NewApp(cfg config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		log:     log,
		metrics: prometheus.NewRegistry(),
	}
	app.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	switch cfg.Host {
	case config.HostDesktop:
		app.desktop = desktop.New(cfg.Desktop, log.Named("desktop"))
		app.host = app.desktop
	default:
		dev, err := openDevice(cfg, log)
		if err != nil {
			return nil, err
		}
		app.host = dev.Host()
	}

	app.registry = channel.NewRegistry(log.Named("channel"), bridge.NewMetrics(app.metrics))
	wallet.New(app.host, cfg.Wallet, log).Register(app.registry)
	log.Info("channels registered", zap.String("host", cfg.Host), zap.Strings("channels", app.registry.Channels()))
	return app, nil
}

func openDevice(cfg config.Config, log *zap.Logger) (*simhost.Device, error) {
	return simhost.Open(cfg.Sim.Path, simhost.DefaultState(simhost.Flavour(cfg.Sim.Flavour)), log.Named("sim"))
}

// Run serves the unix socket and the websocket endpoint until ctx is
// canceled or either server fails.
func (a *App) Run(ctx context.Context) error {
	sock, err := bridge.Listen(a.registry, a.cfg.Socket, a.log.Named("bridge"))
	if err != nil {
		return err
	}
	web := bridge.NewWebServer(a.registry, a.cfg.Web, a.metrics, a.log.Named("web"))

	group, ctx := errgroup.WithContext(ctx)
	group.Go(sock.Serve)
	if a.cfg.Web.Addr != "" {
		group.Go(web.ListenAndServe)
	}
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(web.Shutdown(shutdownCtx), sock.Close())
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.log.Info("bridge stopped", zap.Error(err))
	return err
}

// Close releases host resources.
func (a *App) Close() error {
	if a.desktop != nil {
		return a.desktop.Close()
	}
	return nil
}
