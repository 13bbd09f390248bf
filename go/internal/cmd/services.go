package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/broadcast"
	"github.com/mcdev12/draftroom/go/internal/draft/engine"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/manager"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/pool"
)

type Services struct {
	Manager   *manager.Manager
	Gateway   *gateway.Service
	Bus       *broadcast.Bus
	JetStream *broadcast.JetStreamPublisher
}

func setupServices(config *Config, db *pgxpool.Pool) (*Services, error) {
	// Pool provider → auto-pick strategy → broadcaster → manager → gateway

	var (
		playerPool manager.PlayerPool
		needs      engine.NeedsProvider
		archiver   manager.Archiver
	)
	if db != nil {
		pg := pool.NewPostgresProvider(db)
		playerPool = pg
		needs = pg
		archiver = pg
	} else {
		mem := pool.NewMemoryProvider()
		seedMemoryProvider(mem, config.Seed)
		playerPool = mem
		needs = mem
	}

	strategy := engine.NewNeedsFirstStrategy(needs)

	bus := broadcast.NewBus()
	broadcasters := []broadcast.Broadcaster{bus}

	var js *broadcast.JetStreamPublisher
	if config.NATS.Enabled {
		jsCfg := broadcast.DefaultJetStreamConfig()
		jsCfg.URL = config.NATS.URL
		if config.NATS.StreamName != "" {
			jsCfg.StreamName = config.NATS.StreamName
		}
		if config.NATS.SubjectPrefix != "" {
			jsCfg.SubjectPrefix = config.NATS.SubjectPrefix
		}

		var err error
		js, err = broadcast.NewJetStreamPublisher(jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		broadcasters = append(broadcasters, js)
		log.Info().Str("url", jsCfg.URL).Str("stream", jsCfg.StreamName).Msg("JetStream publisher enabled")
	}

	mgr := manager.NewManager(manager.Config{
		DefaultTimePerPick: config.timePerPick(),
		DefaultOrderPolicy: models.OrderPolicy(config.Draft.OrderPolicy),
	}, playerPool, strategy, broadcast.Fanout(broadcasters), clockwork.NewRealClock())
	if archiver != nil {
		mgr.SetArchiver(archiver)
	}

	gw := gateway.NewService(gateway.Config{
		ConnectionConfig: gateway.DefaultConnectionConfig(),
	}, mgr, bus)

	return &Services{
		Manager:   mgr,
		Gateway:   gw,
		Bus:       bus,
		JetStream: js,
	}, nil
}

func seedMemoryProvider(mem *pool.MemoryProvider, leagues []SeedLeague) {
	for _, league := range leagues {
		players := make([]models.Player, 0, len(league.Players))
		for _, p := range league.Players {
			players = append(players, models.Player{
				ID:       p.ID,
				Name:     p.Name,
				Position: p.Position,
				Team:     p.Team,
			})
		}
		mem.SetPlayers(league.LeagueID, players)
		for _, n := range league.Needs {
			mem.SetNeeds(league.LeagueID, n.ParticipantID, n.Positions)
		}
		log.Info().
			Str("league_id", league.LeagueID.String()).
			Int("players", len(players)).
			Msg("seeded in-memory player pool")
	}
}
