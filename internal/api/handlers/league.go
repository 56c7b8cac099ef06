package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/api/middleware"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/service"
)

type LeagueHandler struct {
	leagueService *service.LeagueService
	draftService  *service.DraftService
	auditService  *service.AuditService
}

func NewLeagueHandler(leagueService *service.LeagueService, draftService *service.DraftService, auditService *service.AuditService) *LeagueHandler {
	return &LeagueHandler{
		leagueService: leagueService,
		draftService:  draftService,
		auditService:  auditService,
	}
}

type CreateLeagueRequest struct {
	Name             string     `json:"name"`
	DraftAlgorithm   string     `json:"draftAlgorithm"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	ScheduledStartAt *time.Time `json:"scheduledStartAt"`
}

type LeagueResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	DraftAlgorithm       string     `json:"draftAlgorithm"`
	TimeLimitSeconds     int        `json:"timeLimitSeconds"`
	Status               string     `json:"status"`
	CurrentPickIndex     int        `json:"currentPickIndex"`
	CurrentPickStartedAt *time.Time `json:"currentPickStartedAt"`
	ScheduledStartAt     *time.Time `json:"scheduledStartAt"`
	SpectatorToken       string     `json:"spectatorToken,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

type AddCaptainRequest struct {
	Name     string  `json:"name"`
	PlayerID *string `json:"playerId"`
}

type CaptainResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DraftPosition   int     `json:"draftPosition"`
	PlayerID        *string `json:"playerId"`
	AutoPickEnabled bool    `json:"autoPickEnabled"`
	AccessToken     string  `json:"accessToken,omitempty"`
}

type AddPlayerRequest struct {
	Name string `json:"name"`
}

type PlayerResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DraftedBy  *string `json:"draftedBy"`
	PickNumber *int    `json:"pickNumber"`
}

type ReorderRequest struct {
	Order []string `json:"order"`
}

func toLeagueResponse(league *domain.League, includeToken bool) LeagueResponse {
	resp := LeagueResponse{
		ID:                   league.ID.String(),
		Name:                 league.Name,
		DraftAlgorithm:       string(league.DraftAlgorithm),
		TimeLimitSeconds:     league.TimeLimitSeconds,
		Status:               string(league.Status),
		CurrentPickIndex:     league.CurrentPickIndex,
		CurrentPickStartedAt: league.CurrentPickStartedAt,
		ScheduledStartAt:     league.ScheduledStartAt,
		CreatedAt:            league.CreatedAt,
	}
	if includeToken {
		resp.SpectatorToken = league.SpectatorToken
	}
	return resp
}

func toCaptainResponse(captain *domain.Captain, includeToken bool) CaptainResponse {
	resp := CaptainResponse{
		ID:              captain.ID.String(),
		Name:            captain.Name,
		DraftPosition:   captain.DraftPosition,
		AutoPickEnabled: captain.AutoPickEnabled,
	}
	if captain.PlayerID != nil {
		id := captain.PlayerID.String()
		resp.PlayerID = &id
	}
	if includeToken {
		resp.AccessToken = captain.AccessToken
	}
	return resp
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), userID, service.CreateLeagueInput{
		Name:             req.Name,
		DraftAlgorithm:   domain.DraftAlgorithm(req.DraftAlgorithm),
		TimeLimitSeconds: req.TimeLimitSeconds,
		ScheduledStartAt: req.ScheduledStartAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidAlgorithm) {
			http.Error(w, "Unknown draft algorithm", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toLeagueResponse(league, true))
}

func (h *LeagueHandler) ListOwned(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	leagues, err := h.leagueService.ListOwned(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]LeagueResponse, len(leagues))
	for i, league := range leagues {
		resp[i] = toLeagueResponse(league, true)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	league, ok := middleware.GetLeague(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	actor, _ := middleware.GetActor(r.Context())

	writeJSON(w, http.StatusOK, toLeagueResponse(league, actor.Type == domain.ActorManager))
}

// Snapshot serves the same payload the websocket feed pushes as STATE_SYNC,
// for clients that poll instead.
func (h *LeagueHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	league, ok := middleware.GetLeague(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	snapshot, err := h.draftService.Snapshot(r.Context(), league.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (h *LeagueHandler) Audit(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())
	if actor.Type != domain.ActorManager {
		writeDraftError(w, domain.ErrTokenMismatch())
		return
	}

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.auditService.ListByLeague(r.Context(), league.ID, limit)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *LeagueHandler) AddCaptain(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req AddCaptainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	input := service.AddCaptainInput{Name: req.Name}
	if req.PlayerID != nil {
		playerID, err := uuid.Parse(*req.PlayerID)
		if err != nil {
			http.Error(w, "Invalid player ID", http.StatusBadRequest)
			return
		}
		input.PlayerID = &playerID
	}

	captain, err := h.leagueService.AddCaptain(r.Context(), league.ID, input, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerNotFound):
			http.Error(w, "Player not found in this league", http.StatusNotFound)
		case errors.Is(err, service.ErrPlayerAlreadyLinked):
			http.Error(w, "Player is already linked to a captain", http.StatusConflict)
		default:
			writeDraftError(w, err)
		}
		return
	}

	// The access token is only ever returned here; the manager hands it to
	// the captain out of band.
	writeJSON(w, http.StatusCreated, toCaptainResponse(captain, true))
}

func (h *LeagueHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	player, err := h.leagueService.AddPlayer(r.Context(), league.ID, req.Name, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlayerResponse{
		ID:   player.ID.String(),
		Name: player.Name,
	})
}

func (h *LeagueHandler) ReorderCaptains(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	orderedIDs := make([]uuid.UUID, len(req.Order))
	for i, s := range req.Order {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid captain ID in order", http.StatusBadRequest)
			return
		}
		orderedIDs[i] = id
	}

	captains, err := h.leagueService.ReorderCaptains(r.Context(), league.ID, orderedIDs, actor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrder) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeDraftError(w, err)
		return
	}

	resp := make([]CaptainResponse, len(captains))
	for i, captain := range captains {
		resp[i] = toCaptainResponse(captain, false)
	}
	writeJSON(w, http.StatusOK, resp)
}
