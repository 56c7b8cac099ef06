package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/service"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	ActorKey  contextKey = "actor"
	LeagueKey contextKey = "league"
)

// Auth requires a valid manager JWT.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userIDFromRequest(authService, r)
			if !ok {
				http.Error(w, "Invalid or missing token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth parses a JWT when one is presented but passes requests without
// one straight through: league-scoped routes accept captain and spectator
// tokens instead of a JWT.
func OptionalAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := userIDFromRequest(authService, r)
			if !ok {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromRequest(authService *service.AuthService, r *http.Request) (uuid.UUID, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, false
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return uuid.Nil, false
	}

	userIDStr, ok := (*claims)["sub"].(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// LeagueActor loads the league from the {leagueID} URL parameter, resolves
// what the request's credentials mean for that league (manager, captain, or
// spectator), and stores both in the context. League tokens travel in the
// `token` query parameter or the X-Draft-Token header.
func LeagueActor(authService *service.AuthService, leagueService *service.LeagueService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			leagueID, err := uuid.Parse(chi.URLParam(r, "leagueID"))
			if err != nil {
				http.Error(w, "Invalid league ID", http.StatusBadRequest)
				return
			}

			league, err := leagueService.GetLeague(r.Context(), leagueID)
			if err != nil {
				if errors.Is(err, service.ErrLeagueNotFound) {
					http.Error(w, "League not found", http.StatusNotFound)
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			var userID *uuid.UUID
			if id, ok := GetUserID(r.Context()); ok {
				userID = &id
			}
			token := r.URL.Query().Get("token")
			if token == "" {
				token = r.Header.Get("X-Draft-Token")
			}

			actor, err := authService.ResolveActor(r.Context(), league, service.Credentials{
				UserID: userID,
				Token:  token,
			}, ClientIP(r))
			if err != nil {
				writeError(w, http.StatusForbidden, string(domain.CodeTokenMismatch), "Credentials do not grant access to this league")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			ctx = context.WithValue(ctx, LeagueKey, league)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(domain.Actor)
	return actor, ok
}

func GetLeague(ctx context.Context) (*domain.League, bool) {
	league, ok := ctx.Value(LeagueKey).(*domain.League)
	return league, ok
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
