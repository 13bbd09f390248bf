package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// Strategy selects a substitute player for a participant who failed to act
// before the timer expired, or who was force-picked by an administrator.
type Strategy interface {
	SelectPlayer(ctx context.Context, leagueID, participantID uuid.UUID, available []models.Player) (models.Player, error)
}

// NeedsProvider reports the roster positions a participant still has to fill.
// Derived externally; only consulted by the needs-first strategy.
type NeedsProvider interface {
	NeededPositions(ctx context.Context, leagueID, participantID uuid.UUID) ([]string, error)
}

// RandomStrategy picks uniformly at random from the remaining pool.
type RandomStrategy struct {
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *RandomStrategy) SelectPlayer(ctx context.Context, leagueID, participantID uuid.UUID, available []models.Player) (models.Player, error) {
	if len(available) == 0 {
		return models.Player{}, ErrPoolExhausted
	}
	return available[s.rng.Intn(len(available))], nil
}

// NeedsFirstStrategy prefers players that fill one of the participant's
// outstanding position slots and falls back to uniform random when no
// need-matching player remains. The preference is best-effort: a needs
// lookup failure degrades to random rather than failing the auto-pick.
type NeedsFirstStrategy struct {
	needs NeedsProvider
	rng   *rand.Rand
}

func NewNeedsFirstStrategy(needs NeedsProvider) *NeedsFirstStrategy {
	return &NeedsFirstStrategy{
		needs: needs,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *NeedsFirstStrategy) SelectPlayer(ctx context.Context, leagueID, participantID uuid.UUID, available []models.Player) (models.Player, error) {
	if len(available) == 0 {
		return models.Player{}, ErrPoolExhausted
	}

	needed, err := s.needs.NeededPositions(ctx, leagueID, participantID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("league_id", leagueID.String()).
			Str("participant_id", participantID.String()).
			Msg("roster needs lookup failed, falling back to random auto-pick")
		return available[s.rng.Intn(len(available))], nil
	}

	wanted := make(map[string]bool, len(needed))
	for _, pos := range needed {
		wanted[pos] = true
	}

	var matching []models.Player
	for _, p := range available {
		if wanted[p.Position] {
			matching = append(matching, p)
		}
	}
	if len(matching) > 0 {
		return matching[s.rng.Intn(len(matching))], nil
	}
	return available[s.rng.Intn(len(available))], nil
}
