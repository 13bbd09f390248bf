package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftroom/go/internal/draft/engine"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// stubManager returns canned results per command.
type stubManager struct {
	session   *models.DraftSession
	pick      models.DraftPick
	createErr error
	startErr  error
	submitErr error
	forceErr  error
	pauseErr  error
	resumeErr error
	resetErr  error
	snapErr   error

	submittedPickNumber int
}

func (s *stubManager) CreateDraft(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID, settings models.DraftSettings) (*models.DraftSession, error) {
	return s.session, s.createErr
}

func (s *stubManager) StartDraft(ctx context.Context, leagueID uuid.UUID) error {
	return s.startErr
}

func (s *stubManager) SubmitPick(ctx context.Context, leagueID, participantID, playerID uuid.UUID, pickNumber int) (models.DraftPick, error) {
	s.submittedPickNumber = pickNumber
	return s.pick, s.submitErr
}

func (s *stubManager) ForcePick(ctx context.Context, leagueID, adminID uuid.UUID, playerID *uuid.UUID) (models.DraftPick, error) {
	return s.pick, s.forceErr
}

func (s *stubManager) PauseDraft(ctx context.Context, leagueID uuid.UUID) error  { return s.pauseErr }
func (s *stubManager) ResumeDraft(ctx context.Context, leagueID uuid.UUID) error { return s.resumeErr }

func (s *stubManager) ResetDraft(ctx context.Context, leagueID, adminID uuid.UUID) error {
	return s.resetErr
}

func (s *stubManager) Snapshot(ctx context.Context, leagueID uuid.UUID) (*models.DraftSession, error) {
	return s.session, s.snapErr
}

func newTestMux(stub *stubManager) *http.ServeMux {
	mux := http.NewServeMux()
	h := newCommandHandler(stub, NewConnectionManager(DefaultConnectionConfig()))
	h.RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateDraftEndpoint(t *testing.T) {
	leagueID := uuid.New()
	stub := &stubManager{session: &models.DraftSession{
		LeagueID: leagueID,
		Status:   models.DraftStatusCreated,
	}}
	mux := newTestMux(stub)

	rec := postJSON(t, mux, "/api/drafts", createDraftRequest{
		LeagueID:         leagueID,
		ParticipantOrder: []uuid.UUID{uuid.New(), uuid.New()},
		MaxRounds:        2,
		TimePerPickSec:   60,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var session models.DraftSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, leagueID, session.LeagueID)
}

func TestCreateDraftValidationMapsTo422(t *testing.T) {
	stub := &stubManager{createErr: engine.ErrInvalidParticipantOrder}
	mux := newTestMux(stub)

	rec := postJSON(t, mux, "/api/drafts", createDraftRequest{LeagueID: uuid.New()})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(engine.CodeInvalidParticipantOrder), decodeError(t, rec).Code)
}

func TestSubmitPickForwardsPickNumber(t *testing.T) {
	leagueID := uuid.New()
	stub := &stubManager{pick: models.DraftPick{PickNumber: 3, RecordedAt: time.Now()}}
	mux := newTestMux(stub)

	three := 3
	rec := postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/picks", leagueID), submitPickRequest{
		ParticipantID: uuid.New(),
		PlayerID:      uuid.New(),
		PickNumber:    &three,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, stub.submittedPickNumber)

	// omitted pick_number means "current"
	rec = postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/picks", leagueID), submitPickRequest{
		ParticipantID: uuid.New(),
		PlayerID:      uuid.New(),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, stub.submittedPickNumber)
}

func TestSubmitPickErrorMapping(t *testing.T) {
	leagueID := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   engine.Code
	}{
		{"out of turn", engine.ErrNotYourTurn, http.StatusUnprocessableEntity, engine.CodeNotYourTurn},
		{"player taken", engine.ErrPlayerUnavailable, http.StatusUnprocessableEntity, engine.CodePlayerUnavailable},
		{"duplicate", engine.ErrDuplicateSubmission, http.StatusUnprocessableEntity, engine.CodeDuplicateSubmission},
		{"not active", engine.ErrNotActive, http.StatusConflict, engine.CodeNotActive},
		{"no session", engine.ErrNotFound, http.StatusNotFound, engine.CodeNotFound},
		{"pool empty", engine.ErrPoolExhausted, http.StatusServiceUnavailable, engine.CodePoolExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubManager{submitErr: tt.err})
			rec := postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/picks", leagueID), submitPickRequest{
				ParticipantID: uuid.New(),
				PlayerID:      uuid.New(),
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, string(tt.wantCode), decodeError(t, rec).Code)
		})
	}
}

func TestLifecycleEndpoints(t *testing.T) {
	leagueID := uuid.New()
	stub := &stubManager{}
	mux := newTestMux(stub)

	for _, path := range []string{"start", "pause", "resume"} {
		rec := postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/%s", leagueID, path), struct{}{})
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}

	rec := postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/reset", leagueID), resetDraftRequest{AdminID: uuid.New()})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLifecycleTransitionConflicts(t *testing.T) {
	leagueID := uuid.New()
	stub := &stubManager{pauseErr: engine.ErrInvalidTransition, resumeErr: engine.ErrInvalidTransition}
	mux := newTestMux(stub)

	rec := postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/pause", leagueID), struct{}{})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = postJSON(t, mux, fmt.Sprintf("/api/drafts/%s/resume", leagueID), struct{}{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotEndpoint(t *testing.T) {
	leagueID := uuid.New()
	stub := &stubManager{session: &models.DraftSession{
		LeagueID:          leagueID,
		Status:            models.DraftStatusActive,
		CurrentPickNumber: 5,
	}}
	mux := newTestMux(stub)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/drafts/%s/state", leagueID), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var session models.DraftSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.Equal(t, 5, session.CurrentPickNumber)
	assert.Equal(t, models.DraftStatusActive, session.Status)
}

func TestSnapshotUnknownLeague(t *testing.T) {
	mux := newTestMux(&stubManager{snapErr: engine.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/drafts/%s/state", uuid.New()), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidLeagueID(t *testing.T) {
	mux := newTestMux(&stubManager{})

	rec := postJSON(t, mux, "/api/drafts/not-a-uuid/start", struct{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
