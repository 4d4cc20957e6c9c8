package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/guardian/internal/api/grpc/monitor"
	"github.com/oshokin/guardian/internal/config"
	"github.com/oshokin/guardian/internal/logger"
	"github.com/oshokin/guardian/internal/process"
	"github.com/oshokin/guardian/internal/settings"
)

const (
	// shutdownTimeout bounds how long an in-flight escalation may delay exit.
	shutdownTimeout = time.Minute
	// readHeaderTimeout protects the metrics endpoint from slow clients.
	readHeaderTimeout = 5 * time.Second
)

// Options controls the guardian-monitor process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides server_addr for the gRPC listener.
	ListenAddress string
	// Force skips the single instance check.
	Force bool
	// PromptOutput receives every prompt text when set.
	PromptOutput io.Writer
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the daemon and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "guardian-monitor")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(cfg.LogLevel, logger.Format(cfg.LogFormat))

	if !opts.Force {
		if err = process.EnsureSingle(nil, process.CurrentExecutable()); err != nil {
			return err
		}
	}

	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	settingsPath, err := filepath.Abs(configPath(opts.ConfigPath))
	if err != nil {
		return fmt.Errorf("resolve settings path: %w", err)
	}

	d, err := newDaemon(ctx, cfg, settingsPath, opts.PromptOutput)
	if err != nil {
		return fmt.Errorf("initialise daemon: %w", err)
	}

	defer d.close(ctx)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(ctx)))
	api.RegisterMonitorServiceServer(grpcServer, api.NewServer(d))

	var metricsServer *http.Server

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.metrics.Handler())

		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	logger.InfoKV(ctx, "Guardian monitor listening",
		"listen_address", listenAddress,
		"metrics_address", cfg.MetricsAddress,
		"audit_driver", cfg.Audit.Driver,
		"audit_path", cfg.Audit.Path,
		"language", d.store.PreferredLanguage(),
		"voice_confirmation", d.store.VoiceConfirmationEnabled(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		err := d.store.Watch(gctx)
		if errors.Is(err, settings.ErrNoPath) {
			return nil
		}

		if err != nil {
			// The daemon keeps working on the settings read at startup.
			logger.WarnKV(ctx, "Settings reload disabled", "error", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		return shutdown(ctx, d, grpcServer, metricsServer)
	})

	return g.Wait()
}

// shutdown stops the servers and lets a running escalation finish.
func shutdown(ctx context.Context, d *daemon, grpcServer *grpc.Server, metricsServer *http.Server) error {
	logger.Info(ctx, "Shutting down guardian monitor")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()

	var errs []error

	if err := d.drain(stopCtx); err != nil {
		errs = append(errs, err)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}

	logger.Info(ctx, "Guardian monitor stopped")

	return errors.Join(errs...)
}

// loggingInterceptor logs every control call at debug level.
func loggingInterceptor(ctx context.Context) grpc.UnaryServerInterceptor {
	return func(
		callCtx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		started := time.Now()
		callCtx = logger.ToContext(callCtx, logger.FromContext(ctx))

		resp, err := handler(callCtx, req)

		logger.DebugKV(callCtx, "Control call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(started),
		)

		return resp, err
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// The override wins; otherwise server_addr is used as is, so a loopback
// address keeps the daemon private to the host.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}

func configPath(path string) string {
	if path == "" {
		return config.DefaultConfigFilename
	}

	return path
}
