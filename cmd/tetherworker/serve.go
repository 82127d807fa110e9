package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tetherworker/internal/config"
	"tetherworker/internal/gateway"
	"tetherworker/internal/health"
	"tetherworker/internal/httpapi"
	"tetherworker/internal/logging"
	"tetherworker/internal/provider"
)

func runServeCmd(cmd *cobra.Command, sf *serveFlags) error {
	cfg, err := resolveConfig(cmd, sf)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, logger)
}

// newHandler wires health and gateway into the router and applies the HTTP settings from cfg.
func newHandler(cfg config.Config, logger zerolog.Logger) (http.Handler, *gateway.Gateway) {
	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
		[]string{"Content-Type", "X-Request-Id", "X-Log-Level"})
	httpapi.SetSwaggerEnabled(cfg.Swagger)

	// The provider client is built once and only read afterwards.
	var completer gateway.Completer
	client, err := provider.New(cfg.Provider())
	switch {
	case err == nil:
		completer = client
		logger.Info().Str("provider_model", client.Model()).Msg("provider client ready")
	case errors.Is(err, provider.ErrNoCredential):
		logger.Info().Msg("no provider credential, /infer will echo prompts")
	default:
		logger.Warn().Err(err).Msg("provider client unavailable, /infer will echo prompts")
	}
	gw := gateway.New(completer, provider.HasCredential, logger)

	rep := health.NewReporter(nil, health.WithInterval(cfg.HealthInterval()), health.WithLogger(logger))
	return httpapi.NewMux(rep, gw), gw
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	handler, _ := newHandler(cfg, logger)
	httpapi.SetBaseContext(ctx)

	if mem, err := (health.HostSampler{}).VirtualMemory(ctx); err == nil {
		logger.Info().Str("memory_total", humanize.IBytes(mem.Total)).Str("memory_available", humanize.IBytes(mem.Available)).Msg("host")
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("tetherworker listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	logger.Info().Msg("tetherworker stopped")
	return nil
}
