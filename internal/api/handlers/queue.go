package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/api/middleware"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/service"
)

// QueueHandler exposes a captain's private preference queue and the
// auto-pick toggle. Every route resolves the captain from the request's
// access token; managers and spectators have no queue.
type QueueHandler struct {
	queueService *service.QueueService
}

func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

type QueueAddRequest struct {
	PlayerID string `json:"playerId"`
}

type QueueEntryResponse struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName,omitempty"`
	Position   int    `json:"position"`
}

type AutoPickToggleRequest struct {
	Enabled bool `json:"enabled"`
}

func toQueueResponse(entries []*domain.QueueEntry) []QueueEntryResponse {
	resp := make([]QueueEntryResponse, len(entries))
	for i, entry := range entries {
		resp[i] = QueueEntryResponse{
			PlayerID: entry.PlayerID.String(),
			Position: entry.Position,
		}
		if entry.Player != nil {
			resp[i].PlayerName = entry.Player.Name
		}
	}
	return resp
}

func (h *QueueHandler) Get(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	entries, err := h.queueService.GetQueue(r.Context(), league.ID, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(entries))
}

func (h *QueueHandler) Add(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req QueueAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	entries, err := h.queueService.AddToQueue(r.Context(), league.ID, playerID, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerNotFound):
			http.Error(w, "Player not found in this league", http.StatusNotFound)
		case errors.Is(err, service.ErrPlayerNotQueueable):
			http.Error(w, "Player is not available to queue", http.StatusConflict)
		default:
			writeDraftError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(entries))
}

func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	entries, err := h.queueService.RemoveFromQueue(r.Context(), league.ID, playerID, actor)
	if err != nil {
		if errors.Is(err, service.ErrNotInQueue) {
			http.Error(w, "Player is not in your queue", http.StatusNotFound)
			return
		}
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(entries))
}

func (h *QueueHandler) Reorder(w http.ResponseWriter, r *http.Request) {
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
			http.Error(w, "Invalid player ID in order", http.StatusBadRequest)
			return
		}
		orderedIDs[i] = id
	}

	entries, err := h.queueService.ReorderQueue(r.Context(), league.ID, orderedIDs, actor)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrder) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQueueResponse(entries))
}

func (h *QueueHandler) SetAutoPick(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req AutoPickToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	captain, err := h.queueService.SetAutoPick(r.Context(), league.ID, req.Enabled, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCaptainResponse(captain, false))
}
