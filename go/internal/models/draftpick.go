package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick represents a single recorded pick. Immutable once appended.
type DraftPick struct {
	PickNumber    int       `json:"pick_number"`  // overall, 0-indexed, gap-free
	Round         int       `json:"round"`        // 1-indexed
	RoundPick     int       `json:"round_pick"`   // 0-indexed slot within the round
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	Player        Player    `json:"player"` // metadata snapshot at pick time
	IsAutoPick    bool      `json:"is_auto_pick"`
	RecordedAt    time.Time `json:"recorded_at"`
}
