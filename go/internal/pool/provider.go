package pool

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// PlayerPoolProvider returns the players in a league not yet assigned to
// any team. The engine consumes this as an external collaborator; it is
// the only pool source of truth besides the session's own pick history.
type PlayerPoolProvider interface {
	ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID) ([]models.Player, error)
}

// RosterNeedsProvider reports the position slots a participant has not yet
// filled. Used only by the needs-first auto-pick strategy.
type RosterNeedsProvider interface {
	NeededPositions(ctx context.Context, leagueID, participantID uuid.UUID) ([]string, error)
}
