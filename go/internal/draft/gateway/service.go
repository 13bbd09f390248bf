package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/broadcast"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// DraftManager is the command surface the gateway exposes over HTTP. The
// engine behind it is transport-agnostic; this service is one pluggable
// transport in front of it.
type DraftManager interface {
	CreateDraft(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID, settings models.DraftSettings) (*models.DraftSession, error)
	StartDraft(ctx context.Context, leagueID uuid.UUID) error
	SubmitPick(ctx context.Context, leagueID, participantID, playerID uuid.UUID, pickNumber int) (models.DraftPick, error)
	ForcePick(ctx context.Context, leagueID, adminID uuid.UUID, playerID *uuid.UUID) (models.DraftPick, error)
	PauseDraft(ctx context.Context, leagueID uuid.UUID) error
	ResumeDraft(ctx context.Context, leagueID uuid.UUID) error
	ResetDraft(ctx context.Context, leagueID, adminID uuid.UUID) error
	Snapshot(ctx context.Context, leagueID uuid.UUID) (*models.DraftSession, error)
}

// Config holds gateway configuration.
type Config struct {
	ConnectionConfig ConnectionConfig
}

// Service bridges the in-process event bus to WebSocket rooms and exposes
// the REST command and snapshot API.
type Service struct {
	manager           DraftManager
	connectionManager *ConnectionManager
	bus               *broadcast.Bus
}

// NewService creates a gateway service.
func NewService(config Config, manager DraftManager, bus *broadcast.Bus) *Service {
	return &Service{
		manager:           manager,
		connectionManager: NewConnectionManager(config.ConnectionConfig),
		bus:               bus,
	}
}

// Start runs the connection manager and the event consumer until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	go s.connectionManager.Start(ctx)

	sub := s.bus.SubscribeAll()
	defer sub.Unsubscribe()

	log.Info().Msg("gateway event consumer started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("gateway event consumer shutting down")
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			s.routeEvent(ev)
		}
	}
}

// routeEvent fans a bus event out to the league's WebSocket room.
func (s *Service) routeEvent(ev events.Event) {
	leagueID, err := uuid.Parse(ev.LeagueID)
	if err != nil {
		log.Error().Err(err).Str("league_id", ev.LeagueID).Msg("event with invalid league ID")
		return
	}
	s.connectionManager.BroadcastToLeague(leagueID, ev)
}

// HandleWebSocket handles GET /ws/draft?league_id=...&user_id=...
func (s *Service) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(r.URL.Query().Get("league_id"))
	if err != nil {
		http.Error(w, "league_id is required", http.StatusBadRequest)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := s.connectionManager.UpgradeConnection(w, r, userID, leagueID); err != nil {
		// Upgrade already wrote the error response
		return
	}
}

// RegisterRoutes registers WebSocket and REST routes on the mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", s.HandleWebSocket)

	h := newCommandHandler(s.manager, s.connectionManager)
	h.RegisterRoutes(mux)
}

// GetStats returns connection statistics.
func (s *Service) GetStats() map[string]interface{} {
	return s.connectionManager.GetConnectionStats()
}
