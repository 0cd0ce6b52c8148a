package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/avrebrov/roomcast/internal/adapters/http"
	lkgw "github.com/avrebrov/roomcast/internal/adapters/livekit"
	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.LiveKit.URL == "" {
		log.Fatal().Msg("livekit.url is required")
	}
	// Without credentials every mint would fail; refuse to start instead.
	if cfg.LiveKit.APIKey == "" || cfg.LiveKit.APISecret == "" {
		log.Fatal().Msg("livekit.api_key and livekit.api_secret are required")
	}

	gateway := lkgw.NewGateway(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret)

	coord := &app.Coordinator{
		Registry:               app.NewRegistry(),
		Gateway:                gateway,
		Issuer:                 app.NewIssuer(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.TokenTTL),
		ClientURL:              cfg.LiveKit.URL,
		DefaultMaxParticipants: cfg.DefaultMaxParticipants,
	}
	streams := &app.UpdateStreamer{
		Gateway:  gateway,
		Interval: cfg.UpdateInterval,
	}

	// Connectivity probe; a dead provider is worth knowing about at boot,
	// but the service still starts and retries per request.
	go func() {
		probeCtx, probeCancel := context.WithTimeout(ctx, 10*time.Second)
		defer probeCancel()
		rooms, err := gateway.ListRemoteRooms(probeCtx)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.LiveKit.URL).Msg("provider unreachable at startup")
			return
		}
		log.Info().Str("url", cfg.LiveKit.URL).Int("active_rooms", len(rooms)).Msg("connected to provider")
	}()

	r := router.SetupRouter(ctx, cfg, coord, streams)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("roomcast server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
