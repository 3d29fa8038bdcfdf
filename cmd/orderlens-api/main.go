// @title         Orderlens API
// @version       0.1.0
// @description   Turns KakaoTalk group chat exports into structured order tables

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderlens/internal/platform/config"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/metrics"
	phttp "orderlens/internal/platform/net/http"
	"orderlens/internal/platform/store"

	"orderlens/internal/services/api"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("API_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// both stores are optional; jobs fall back to memory and the audit table is skipped
	st, err := store.Open(ctx, store.FromConfig(root, "orderlens-api"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads API_PORT)
	srv := phttp.NewServer(root)

	mounted := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		Metrics:        metrics.NewRegistry(),
		EnableSwagger:  apiCfg.MayBool("ENABLE_SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("ENABLE_PROFILER", false),
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		if err != nil {
			l.Error().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	}

	grace := apiCfg.MayDuration("SHUTDOWN_GRACE", 30*time.Second)
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		l.Error().Err(err).Msg("http shutdown")
	}
	if err := mounted.Drain(sctx); err != nil {
		l.Warn().Err(err).Msg("analysis jobs still running at exit")
	}
}
