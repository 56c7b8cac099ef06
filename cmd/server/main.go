package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/api"
	"github.com/rfox/draftroom/internal/config"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository/postgres"
	"github.com/rfox/draftroom/internal/scheduler"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rfox/draftroom/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	repos := postgres.NewRepositories(db)
	tx := postgres.NewTransactor(db)

	// Event bus; NATS bridges instances when configured
	var bus *events.Bus
	if cfg.NATSURL != "" {
		upstream, err := events.NewNATSUpstream(cfg.NATSURL, "draftroom.events")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect event upstream")
		}
		bus = events.NewBusWithUpstream(upstream)
		log.Info().Str("url", cfg.NATSURL).Msg("Event bus bridged over NATS")
	} else {
		bus = events.NewBus()
	}

	clock := clockwork.NewRealClock()

	// Initialize services
	services := service.NewServices(repos, tx, bus, clock, cfg)

	// WebSocket hub
	hub := websocket.NewHub(services.League, services.Draft, services.Auth, bus, clock)
	go hub.Run()

	// Scheduler: scheduled starts, autodraft, timer auto-picks
	schedCtx, cancelSched := context.WithCancel(context.Background())
	sched := scheduler.New(repos, services.Draft, bus, clock, cfg.AutoPickGrace)
	go sched.Run(schedCtx)

	// Initialize router
	router := api.NewRouter(services, hub, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	cancelSched()
	hub.Stop()
	bus.Close()

	log.Info().Msg("Server stopped")
}
