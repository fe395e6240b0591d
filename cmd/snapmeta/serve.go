// ABOUTME: serve subcommand: follows configured servers and exposes the HTTP API
// ABOUTME: Loads config, starts the manager, and shuts down gracefully on signals
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/snapmeta/internal/application/config"
	"github.com/harper/snapmeta/internal/application/logging"
	"github.com/harper/snapmeta/internal/application/manager"
	"github.com/harper/snapmeta/internal/infrastructure/http"
)

type serveOptions struct {
	configPath string
	listen     string
	logLevel   string
	logJSON    bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Follow every configured server and serve the status API",
		Example: "  snapmeta serve --config snapmeta.yaml\n  snapmeta serve --config snapmeta.toml --listen :8780",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.configPath, "config", "c", "config.yaml", "Config file (.yaml, .toml, .json, .jsonc)")
	fs.StringVar(&opts.listen, "listen", "", "HTTP listen address host:port (overrides config)")
	addLogFlags(fs, &opts.logLevel, &opts.logJSON)
	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.listen != "" {
		host, port, err := splitListen(opts.listen)
		if err != nil {
			return err
		}
		cfg.Listen.Host, cfg.Listen.Port = host, port
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logJSON {
		cfg.Logging.JSON = true
	}

	log := logging.New(cfg.Logging)

	mgr, err := manager.NewFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("create manager: %w", err)
	}
	if err := mgr.Start(); err != nil {
		return fmt.Errorf("start servers: %w", err)
	}

	addr := net.JoinHostPort(cfg.Listen.Host, strconv.Itoa(cfg.Listen.Port))
	srv := &nethttp.Server{
		Addr: addr,
		Handler: http.NewRouter(mgr, http.RouterOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Logger:         log.With().Str("component", "http").Logger(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("servers", len(cfg.Servers)).Msg("listening (try /servers)")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down...")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	if err := mgr.Shutdown(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown servers: %w", err))
	}

	if runErr == nil {
		log.Info().Msg("shutdown complete")
	}
	return runErr
}
