package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rfox/draftroom/internal/api/handlers"
	"github.com/rfox/draftroom/internal/api/middleware"
	"github.com/rfox/draftroom/internal/config"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rfox/draftroom/internal/websocket"
	"github.com/rs/cors"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Draft-Token"},
		AllowCredentials: true,
	}).Handler)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	leagueHandler := handlers.NewLeagueHandler(services.League, services.Draft, services.Audit)
	draftHandler := handlers.NewDraftHandler(services.Draft)
	queueHandler := handlers.NewQueueHandler(services.Queue)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.AllowedOrigins)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Post("/leagues", leagueHandler.Create)
			r.Get("/users/me/leagues", leagueHandler.ListOwned)
		})

		// League-scoped routes: a JWT, a captain access token, or the
		// spectator token all resolve to an actor for the league in the URL.
		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(services.Auth))
			r.Use(middleware.LeagueActor(services.Auth, services.League))

			r.Get("/", leagueHandler.Get)
			r.Get("/snapshot", leagueHandler.Snapshot)
			r.Get("/audit", leagueHandler.Audit)
			r.Get("/queue", queueHandler.Get)

			// Mutations share the per-IP rate limit
			r.Group(func(r chi.Router) {
				r.Use(rateLimiter.Middleware)

				r.Post("/captains", leagueHandler.AddCaptain)
				r.Post("/players", leagueHandler.AddPlayer)
				r.Put("/captains/order", leagueHandler.ReorderCaptains)

				r.Post("/start", draftHandler.Start)
				r.Post("/pause", draftHandler.Pause)
				r.Post("/resume", draftHandler.Resume)
				r.Post("/restart", draftHandler.Restart)

				r.Post("/picks", draftHandler.SubmitPick)
				r.Post("/auto-pick", draftHandler.AutoPick)
				r.Post("/picks/undo", draftHandler.UndoLastPick)

				r.Post("/queue", queueHandler.Add)
				r.Delete("/queue/{playerID}", queueHandler.Remove)
				r.Put("/queue/order", queueHandler.Reorder)
				r.Put("/autopick", queueHandler.SetAutoPick)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
