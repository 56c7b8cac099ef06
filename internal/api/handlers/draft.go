package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/api/middleware"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/service"
)

// DraftHandler exposes the state machine and the commit protocol. Every
// mutation goes through DraftService, which owns all rejection logic; the
// handler only shapes requests and responses.
type DraftHandler struct {
	draftService *service.DraftService
}

func NewDraftHandler(draftService *service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

type SubmitPickRequest struct {
	CaptainID         string `json:"captainId"`
	PlayerID          string `json:"playerId"`
	ExpectedPickIndex int    `json:"expectedPickIndex"`
}

type AutoPickRequest struct {
	ExpectedPickIndex int `json:"expectedPickIndex"`
}

func (h *DraftHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.draftService.StartDraft)
}

func (h *DraftHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.draftService.PauseDraft)
}

func (h *DraftHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.draftService.ResumeDraft)
}

func (h *DraftHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.draftService.RestartDraft)
}

func (h *DraftHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.League, error)) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	updated, err := op(r.Context(), league.ID, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLeagueResponse(updated, actor.Type == domain.ActorManager))
}

func (h *DraftHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req SubmitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	captainID, err := uuid.Parse(req.CaptainID)
	if err != nil {
		http.Error(w, "Invalid captain ID", http.StatusBadRequest)
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}
	if req.ExpectedPickIndex < 0 {
		http.Error(w, "expectedPickIndex must be non-negative", http.StatusBadRequest)
		return
	}

	committed, err := h.draftService.SubmitPick(r.Context(), league.ID, service.SubmitPickInput{
		CaptainID:         captainID,
		PlayerID:          playerID,
		ExpectedPickIndex: req.ExpectedPickIndex,
	}, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, committed)
}

func (h *DraftHandler) AutoPick(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	var req AutoPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ExpectedPickIndex < 0 {
		http.Error(w, "expectedPickIndex must be non-negative", http.StatusBadRequest)
		return
	}

	committed, err := h.draftService.AutoPick(r.Context(), league.ID, req.ExpectedPickIndex, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, committed)
}

func (h *DraftHandler) UndoLastPick(w http.ResponseWriter, r *http.Request) {
	league, _ := middleware.GetLeague(r.Context())
	actor, _ := middleware.GetActor(r.Context())

	removed, err := h.draftService.UndoLastPick(r.Context(), league.ID, actor)
	if err != nil {
		writeDraftError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, removed)
}
