package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guesser/config"
	"guesser/routes"
	"guesser/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load config")
	}
	log := config.NewLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set")
	}

	store, err := services.NewConversationStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("conversation store ready")

	completer, err := services.NewCompleter(cfg.OpenAI)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sessions := services.NewSessionService(store, completer,
		services.WithTurnCap(cfg.Game.TurnCap),
		services.WithSampling(services.Sampling{
			Temperature: cfg.OpenAI.Temperature,
			TopP:        cfg.OpenAI.TopP,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		}),
		services.WithLogger(log),
		services.WithMetrics(services.NewMetrics(reg)),
	)

	router, err := routes.SetupRouter(routes.Deps{
		Config:        cfg,
		Log:           log,
		Conversations: sessions,
		Gatherer:      reg,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msgf("Server is running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
	log.Info().Msg("server stopped")
	return nil
}
