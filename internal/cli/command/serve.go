package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/0823nobuo-png/System-Validator/internal/infra/buildinfo"
	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/shutdown"
	"github.com/0823nobuo-png/System-Validator/internal/infra/tlsroots"
	"github.com/0823nobuo-png/System-Validator/internal/server/httpserver"
	"github.com/0823nobuo-png/System-Validator/internal/server/localserver"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/metric"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/tracer"
)

// DefaultAddr is the panel address when neither --addr nor a loadable
// configuration names one.
const DefaultAddr = "0.0.0.0:8000"

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the status panel over the configuration directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address (default: API_BIND_HOST:API_BIND_PORT, else " + DefaultAddr + ")",
				EnvVars: []string{"SYSTEM_VALIDATOR_ADDR"},
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "Per-IP requests per second, 0 disables",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "Per-IP burst size",
				Value: 40,
			},
			&cli.BoolFlag{
				Name:  "no-access-log",
				Usage: "Disable per-request logging",
			},
			&cli.StringFlag{
				Name:  "tls-cert",
				Usage: "Serve HTTPS with this certificate (reloaded on change)",
			},
			&cli.StringFlag{
				Name:  "tls-key",
				Usage: "Private key for --tls-cert",
			},
			&cli.StringFlag{
				Name:    "socket",
				Usage:   "Also serve the panel on this Unix socket (owner-only access)",
				EnvVars: []string{"SYSTEM_VALIDATOR_SOCKET"},
			},
			&cli.StringFlag{
				Name:    "otlp-endpoint",
				Usage:   "Export traces to this OTLP collector (host:port), empty disables tracing",
				EnvVars: []string{"SYSTEM_VALIDATOR_OTLP_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:  "otlp-protocol",
				Usage: "OTLP protocol: http, grpc",
				Value: tracer.ExporterHTTP,
			},
			&cli.BoolFlag{
				Name:  "otlp-insecure",
				Usage: "Connect to the collector without TLS",
			},
			&cli.Float64Flag{
				Name:  "trace-sample-rate",
				Usage: "Fraction of requests traced, 0.0 to 1.0",
				Value: 1,
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Grace period for in-flight requests",
				Value: 10 * time.Second,
			},
		},
		Action: serve,
	}
}

// resolveAddr picks the listen address: the flag, then the loaded
// settings, then DefaultAddr.
func resolveAddr(flagAddr string, snap confloader.Snapshot) string {
	if flagAddr != "" {
		return flagAddr
	}
	if !snap.OK() {
		return DefaultAddr
	}
	settings, err := snap.Config.Settings()
	if err != nil {
		return DefaultAddr
	}
	return settings.BindAddr()
}

func serve(c *cli.Context) error {
	certFile, keyFile := c.String("tls-cert"), c.String("tls-key")
	if (certFile == "") != (keyFile == "") {
		return cli.Exit("--tls-cert and --tls-key must be given together", ExitError)
	}

	log := getLogger(c)
	reg := metric.Global()
	dir := c.String("dir")

	traces, err := tracer.NewProvider(c.Context, tracer.Config{
		Enabled:        c.String("otlp-endpoint") != "",
		ServiceName:    buildinfo.Name,
		ServiceVersion: buildinfo.Version,
		Exporter:       c.String("otlp-protocol"),
		Endpoint:       c.String("otlp-endpoint"),
		Insecure:       c.Bool("otlp-insecure"),
		SamplingRate:   c.Float64("trace-sample-rate"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("init tracing: %v", err), ExitError)
	}

	reloader := confloader.NewReloader(newLoader(c, confloader.WithObserver(reg)), dir,
		confloader.WithReloaderLogger(log),
		confloader.WithTracerProvider(traces.TracerProvider()),
	)
	reloader.OnReload(func(snap confloader.Snapshot) {
		reg.SetGeneration(snap.Generation)
	})

	snap := reloader.Reload(c.Context)
	if snap.Err != nil {
		log.Warn("initial configuration load failed", "base_dir", dir, "error", snap.Err)
	}
	addr := resolveAddr(c.String("addr"), snap)

	cfg := httpserver.DefaultRouterConfig()
	cfg.Reloader = reloader
	cfg.Metrics = reg
	cfg.Logger = log
	cfg.TracerProvider = traces.TracerProvider()
	cfg.RateLimit = rate.Limit(c.Float64("rate-limit"))
	cfg.Burst = c.Int("burst")
	cfg.EnableAudit = !c.Bool("no-access-log")

	var (
		opts  []httpserver.Option
		certs *tlsroots.CertReloader
	)
	if certFile != "" {
		certs, err = tlsroots.NewCertReloader(certFile, keyFile, tlsroots.WithLogger(log))
		if err != nil {
			_ = traces.Shutdown(c.Context)
			return cli.Exit(err.Error(), ExitError)
		}
		opts = append(opts, httpserver.WithTLSConfig(certs.ServerTLSConfig()))
	}
	router := httpserver.NewRouter(cfg)
	srv := httpserver.New(addr, router, opts...)

	var local *localserver.Server
	if path := c.String("socket"); path != "" {
		local = localserver.New(path, router)
		if err := local.Listen(); err != nil {
			_ = traces.Shutdown(c.Context)
			return cli.Exit(fmt.Sprintf("listen on %s: %v", path, err), ExitError)
		}
	}

	sh := shutdown.NewHandler(c.Duration("shutdown-timeout"), shutdown.WithLogger(log))
	ctx, stop := sh.Context(c.Context)
	defer stop()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	var watchers sync.WaitGroup
	watchers.Add(1)
	go func() {
		defer watchers.Done()
		if err := reloader.Watch(watchCtx); err != nil {
			log.Error("configuration watcher failed", "base_dir", dir, "error", err)
		}
	}()
	if certs != nil {
		watchers.Add(1)
		go func() {
			defer watchers.Done()
			if err := certs.Run(watchCtx); err != nil {
				log.Error("certificate watcher failed", "error", err)
			}
		}()
	}
	watchDone := make(chan struct{})
	go func() {
		watchers.Wait()
		close(watchDone)
	}()

	// Hooks run newest first: listeners close, then the watcher stops,
	// then pending spans are flushed.
	sh.OnShutdown("tracer", traces.Shutdown)
	sh.OnShutdown("watcher", func(ctx context.Context) error {
		cancelWatch()
		select {
		case <-watchDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	sh.OnShutdown("http", srv.Shutdown)
	if local != nil {
		sh.OnShutdown("socket", local.Shutdown)
	}

	serveErr := make(chan error, 2)
	if local != nil {
		go func() {
			log.Info("status panel listening", "socket", local.Path())
			if err := local.Serve(); err != nil {
				serveErr <- fmt.Errorf("socket %s: %w", local.Path(), err)
			}
		}()
	}
	go func() {
		log.Info("status panel listening", "addr", addr, "base_dir", dir, "tls", srv.TLS())
		if srv.TLS() {
			serveErr <- srv.ListenAndServeTLS("", "")
			return
		}
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		_ = sh.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return cli.Exit(fmt.Sprintf("serve %s: %v", addr, err), ExitError)
	case <-ctx.Done():
		log.Info("shutting down status panel")
		if err := sh.Shutdown(); err != nil {
			return cli.Exit(fmt.Sprintf("shutdown: %v", err), ExitError)
		}
		return nil
	}
}
