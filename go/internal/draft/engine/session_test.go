package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftroom/go/internal/models"
)

func newTestSession(t *testing.T, participants int, rounds int) *models.DraftSession {
	t.Helper()
	order := make([]uuid.UUID, participants)
	for i := range order {
		order[i] = uuid.New()
	}
	s, err := NewSession(uuid.New(), order, models.DraftSettings{
		MaxRounds:      rounds,
		TimePerPickSec: 90,
	}, time.Now())
	require.NoError(t, err)
	return s
}

func availableOf(players ...models.Player) map[uuid.UUID]models.Player {
	available := make(map[uuid.UUID]models.Player, len(players))
	for _, p := range players {
		available[p.ID] = p
	}
	return available
}

func TestNewSessionRejectsInvalidOrder(t *testing.T) {
	now := time.Now()

	_, err := NewSession(uuid.New(), []uuid.UUID{uuid.New()}, models.DraftSettings{MaxRounds: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidParticipantOrder)

	dup := uuid.New()
	_, err = NewSession(uuid.New(), []uuid.UUID{dup, uuid.New(), dup}, models.DraftSettings{MaxRounds: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidParticipantOrder)
}

func TestNewSessionDefaults(t *testing.T) {
	s := newTestSession(t, 4, 3)

	assert.Equal(t, models.DraftStatusCreated, s.Status)
	assert.Equal(t, 0, s.CurrentPickNumber)
	assert.Empty(t, s.Picks)
	assert.Equal(t, models.OrderPolicyRoundRobin, s.Settings.OrderPolicy)
	assert.Equal(t, 12, s.TotalPicks())
}

func TestValidatePickRejectsInactiveSession(t *testing.T) {
	s := newTestSession(t, 2, 1)
	player := models.Player{ID: uuid.New(), Name: "QB One", Position: "QB"}

	err := ValidatePick(s, s.ParticipantOrder[0], player.ID, -1, availableOf(player))
	assert.ErrorIs(t, err, ErrNotActive)

	s.Status = models.DraftStatusPaused
	err = ValidatePick(s, s.ParticipantOrder[0], player.ID, -1, availableOf(player))
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestValidatePickRejectsStalePickNumber(t *testing.T) {
	s := newTestSession(t, 2, 2)
	s.Status = models.DraftStatusActive
	s.CurrentPickNumber = 2
	player := models.Player{ID: uuid.New()}

	err := ValidatePick(s, s.ParticipantOrder[0], player.ID, 1, availableOf(player))
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	// negative means "whatever is current"
	err = ValidatePick(s, s.ParticipantOrder[0], player.ID, -1, availableOf(player))
	assert.NoError(t, err)
}

func TestValidatePickRejectsOutOfTurn(t *testing.T) {
	s := newTestSession(t, 3, 1)
	s.Status = models.DraftStatusActive
	player := models.Player{ID: uuid.New()}

	err := ValidatePick(s, s.ParticipantOrder[1], player.ID, -1, availableOf(player))
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestValidatePickRejectsUnavailablePlayer(t *testing.T) {
	s := newTestSession(t, 2, 2)
	s.Status = models.DraftStatusActive
	taken := models.Player{ID: uuid.New(), Name: "Taken"}
	open := models.Player{ID: uuid.New(), Name: "Open"}

	// not in the available set at all
	err := ValidatePick(s, s.ParticipantOrder[0], uuid.New(), -1, availableOf(open))
	assert.ErrorIs(t, err, ErrPlayerUnavailable)

	// already in session picks, even if the provider still reports it
	ApplyPick(s, s.ParticipantOrder[0], taken, false, time.Now())
	err = ValidatePick(s, s.ParticipantOrder[1], taken.ID, -1, availableOf(taken, open))
	assert.ErrorIs(t, err, ErrPlayerUnavailable)
}

func TestApplyPickAdvancesTurn(t *testing.T) {
	s := newTestSession(t, 2, 2)
	s.Status = models.DraftStatusActive
	now := time.Now()

	pick, completed := ApplyPick(s, s.ParticipantOrder[0], models.Player{ID: uuid.New()}, false, now)
	assert.False(t, completed)
	assert.Equal(t, 0, pick.PickNumber)
	assert.Equal(t, 1, pick.Round)
	assert.Equal(t, 1, s.CurrentPickNumber)
	assert.Equal(t, models.DraftStatusActive, s.Status)
	assert.False(t, pick.IsAutoPick)
}

func TestApplyPickCompletesDraft(t *testing.T) {
	s := newTestSession(t, 2, 1)
	s.Status = models.DraftStatusActive
	now := time.Now()

	_, completed := ApplyPick(s, s.ParticipantOrder[0], models.Player{ID: uuid.New()}, false, now)
	require.False(t, completed)

	pick, completed := ApplyPick(s, s.ParticipantOrder[1], models.Player{ID: uuid.New()}, true, now)
	assert.True(t, completed)
	assert.True(t, pick.IsAutoPick)
	assert.Equal(t, models.DraftStatusCompleted, s.Status)
	require.NotNil(t, s.CompletedAt)
	assert.Nil(t, s.TimerDeadline)
	assert.Len(t, s.Picks, s.TotalPicks())
}

func TestResetClearsState(t *testing.T) {
	s := newTestSession(t, 2, 1)
	s.Status = models.DraftStatusActive
	started := time.Now()
	s.StartedAt = &started
	ApplyPick(s, s.ParticipantOrder[0], models.Player{ID: uuid.New()}, false, started)
	ApplyPick(s, s.ParticipantOrder[1], models.Player{ID: uuid.New()}, false, started)
	require.Equal(t, models.DraftStatusCompleted, s.Status)

	Reset(s)

	assert.Equal(t, models.DraftStatusCreated, s.Status)
	assert.Equal(t, 0, s.CurrentPickNumber)
	assert.Empty(t, s.Picks)
	assert.Nil(t, s.StartedAt)
	assert.Nil(t, s.CompletedAt)
	assert.Nil(t, s.TimerDeadline)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestSession(t, 2, 2)
	s.Status = models.DraftStatusActive
	ApplyPick(s, s.ParticipantOrder[0], models.Player{ID: uuid.New(), Name: "Original"}, false, time.Now())

	snap := Snapshot(s)
	snap.Picks[0].Player.Name = "Mutated"
	snap.ParticipantOrder[0] = uuid.New()
	snap.CurrentPickNumber = 99

	assert.Equal(t, "Original", s.Picks[0].Player.Name)
	assert.NotEqual(t, snap.ParticipantOrder[0], s.ParticipantOrder[0])
	assert.Equal(t, 1, s.CurrentPickNumber)
}
