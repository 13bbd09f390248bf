package pool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// PostgresProvider backs the pool and needs providers with the league
// database: players not on any roster, and roster slots not yet filled.
type PostgresProvider struct {
	db *pgxpool.Pool
}

func NewPostgresProvider(db *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID) ([]models.Player, error) {
	rows, err := p.db.Query(ctx, `
		SELECT p.id, p.name, p.position, p.team
		FROM players p
		WHERE p.league_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM roster_players rp
			WHERE rp.player_id = p.id AND rp.league_id = $1
		  )
		ORDER BY p.name`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("query available players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var pl models.Player
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.Position, &pl.Team); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

func (p *PostgresProvider) NeededPositions(ctx context.Context, leagueID, participantID uuid.UUID) ([]string, error) {
	rows, err := p.db.Query(ctx, `
		SELECT rs.position
		FROM roster_slots rs
		WHERE rs.league_id = $1
		  AND rs.participant_id = $2
		  AND rs.player_id IS NULL`, leagueID, participantID)
	if err != nil {
		return nil, fmt.Errorf("query roster needs: %w", err)
	}
	defer rows.Close()

	var positions []string
	for rows.Next() {
		var pos string
		if err := rows.Scan(&pos); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}

// ArchivePicks persists a completed draft's picks so rosters and dashboards
// can read them after the session is gone. Failures are the caller's to log;
// the draft itself never blocks on archival.
func (p *PostgresProvider) ArchivePicks(ctx context.Context, session *models.DraftSession) error {
	batch := &pgx.Batch{}
	for _, pick := range session.Picks {
		batch.Queue(`
			INSERT INTO draft_picks
				(league_id, pick_number, round, participant_id, player_id, is_auto_pick, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (league_id, pick_number) DO NOTHING`,
			session.LeagueID, pick.PickNumber, pick.Round,
			pick.ParticipantID, pick.PlayerID, pick.IsAutoPick, pick.RecordedAt)
	}

	br := p.db.SendBatch(ctx, batch)
	defer br.Close()
	for range session.Picks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("archive pick: %w", err)
		}
	}

	log.Info().
		Str("league_id", session.LeagueID.String()).
		Int("picks", len(session.Picks)).
		Msg("archived draft picks")
	return nil
}
