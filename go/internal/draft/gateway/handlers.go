package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/engine"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// commandHandler exposes the draft command surface over JSON/HTTP.
type commandHandler struct {
	manager DraftManager
	cm      *ConnectionManager
}

func newCommandHandler(manager DraftManager, cm *ConnectionManager) *commandHandler {
	return &commandHandler{manager: manager, cm: cm}
}

type createDraftRequest struct {
	LeagueID         uuid.UUID   `json:"league_id"`
	ParticipantOrder []uuid.UUID `json:"participant_order"`
	MaxRounds        int         `json:"max_rounds"`
	TimePerPickSec   int         `json:"time_per_pick_sec"`
	OrderPolicy      string      `json:"order_policy"`
}

type submitPickRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	PickNumber    *int      `json:"pick_number,omitempty"`
}

type forcePickRequest struct {
	AdminID  uuid.UUID  `json:"admin_id"`
	PlayerID *uuid.UUID `json:"player_id,omitempty"`
}

type resetDraftRequest struct {
	AdminID uuid.UUID `json:"admin_id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *commandHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/drafts", h.handleCreate)
	mux.HandleFunc("POST /api/drafts/{league}/start", h.handleStart)
	mux.HandleFunc("POST /api/drafts/{league}/picks", h.handleSubmitPick)
	mux.HandleFunc("POST /api/drafts/{league}/pause", h.handlePause)
	mux.HandleFunc("POST /api/drafts/{league}/resume", h.handleResume)
	mux.HandleFunc("POST /api/drafts/{league}/force-pick", h.handleForcePick)
	mux.HandleFunc("POST /api/drafts/{league}/reset", h.handleReset)
	mux.HandleFunc("GET /api/drafts/{league}/state", h.handleSnapshot)
}

func (h *commandHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}

	session, err := h.manager.CreateDraft(r.Context(), req.LeagueID, req.ParticipantOrder, models.DraftSettings{
		MaxRounds:      req.MaxRounds,
		TimePerPickSec: req.TimePerPickSec,
		OrderPolicy:    models.OrderPolicy(req.OrderPolicy),
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *commandHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	if err := h.manager.StartDraft(r.Context(), leagueID); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *commandHandler) handleSubmitPick(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}

	pickNumber := -1
	if req.PickNumber != nil {
		pickNumber = *req.PickNumber
	}

	pick, err := h.manager.SubmitPick(r.Context(), leagueID, req.ParticipantID, req.PlayerID, pickNumber)
	if err != nil {
		h.notifyRejection(leagueID, req.ParticipantID, req.PlayerID, err)
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}

func (h *commandHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	if err := h.manager.PauseDraft(r.Context(), leagueID); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *commandHandler) handleResume(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	if err := h.manager.ResumeDraft(r.Context(), leagueID); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *commandHandler) handleForcePick(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	var req forcePickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}

	pick, err := h.manager.ForcePick(r.Context(), leagueID, req.AdminID, req.PlayerID)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}

func (h *commandHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	var req resetDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid JSON body"})
		return
	}
	if err := h.manager.ResetDraft(r.Context(), leagueID, req.AdminID); err != nil {
		writeCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *commandHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	leagueID, ok := leagueParam(w, r)
	if !ok {
		return
	}
	session, err := h.manager.Snapshot(r.Context(), leagueID)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// notifyRejection delivers a PickRejected event to the submitting user's
// connections only; the rest of the room never sees failed attempts.
func (h *commandHandler) notifyRejection(leagueID, participantID, playerID uuid.UUID, cause error) {
	var draftErr *engine.Error
	if !errors.As(cause, &draftErr) {
		return
	}
	ev, err := events.New(leagueID, events.EventTypePickRejected, events.PickRejectedPayload{
		ParticipantID: participantID.String(),
		PlayerID:      playerID.String(),
		Reason:        string(draftErr.Code),
		Message:       draftErr.Error(),
	}, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to build PickRejected event")
		return
	}
	h.cm.BroadcastToUser(leagueID, participantID.String(), ev)
}

func leagueParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	leagueID, err := uuid.Parse(r.PathValue("league"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: "invalid league ID"})
		return uuid.Nil, false
	}
	return leagueID, true
}

func writeCommandError(w http.ResponseWriter, err error) {
	var draftErr *engine.Error
	if !errors.As(err, &draftErr) {
		log.Error().Err(err).Msg("command failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch draftErr.Kind {
	case engine.KindValidation:
		status = http.StatusUnprocessableEntity
	case engine.KindState:
		if draftErr.Code == engine.CodeNotFound {
			status = http.StatusNotFound
		} else {
			status = http.StatusConflict
		}
	case engine.KindResource:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Code: string(draftErr.Code), Message: draftErr.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
