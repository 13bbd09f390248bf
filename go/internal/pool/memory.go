package pool

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// MemoryProvider is a seedable in-memory pool and needs provider, used when
// no database is configured and throughout the tests.
type MemoryProvider struct {
	mu      sync.RWMutex
	players map[uuid.UUID][]models.Player
	needs   map[uuid.UUID]map[uuid.UUID][]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		players: make(map[uuid.UUID][]models.Player),
		needs:   make(map[uuid.UUID]map[uuid.UUID][]string),
	}
}

// SetPlayers replaces the league's available pool.
func (m *MemoryProvider) SetPlayers(leagueID uuid.UUID, players []models.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[leagueID] = append([]models.Player(nil), players...)
}

// SetNeeds replaces a participant's outstanding position slots.
func (m *MemoryProvider) SetNeeds(leagueID, participantID uuid.UUID, positions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.needs[leagueID] == nil {
		m.needs[leagueID] = make(map[uuid.UUID][]string)
	}
	m.needs[leagueID][participantID] = append([]string(nil), positions...)
}

func (m *MemoryProvider) ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID) ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Player(nil), m.players[leagueID]...), nil
}

func (m *MemoryProvider) NeededPositions(ctx context.Context, leagueID, participantID uuid.UUID) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.needs[leagueID][participantID]...), nil
}
