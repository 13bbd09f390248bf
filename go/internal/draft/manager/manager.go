package manager

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/broadcast"
	"github.com/mcdev12/draftroom/go/internal/draft/engine"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// PlayerPool is what the manager needs from the player pool provider.
type PlayerPool interface {
	ListAvailablePlayers(ctx context.Context, leagueID uuid.UUID) ([]models.Player, error)
}

// Archiver persists a completed draft's picks. Optional; archival failures
// never affect session state.
type Archiver interface {
	ArchivePicks(ctx context.Context, session *models.DraftSession) error
}

// Config holds manager-level defaults applied when a create request leaves
// a setting unset.
type Config struct {
	DefaultTimePerPick time.Duration
	DefaultOrderPolicy models.OrderPolicy
}

func DefaultConfig() Config {
	return Config{
		DefaultTimePerPick: 90 * time.Second,
		DefaultOrderPolicy: models.OrderPolicyRoundRobin,
	}
}

// Manager owns one draft session per league and mediates every external
// command. Sessions for different leagues share no mutable state and run
// fully in parallel; within one session, every command (including the
// timer's expiry callback) serializes on the session mutex, so the race
// between a manual pick and a same-instant timeout resolves to whichever
// reaches the lock first.
type Manager struct {
	cfg         Config
	pool        PlayerPool
	strategy    engine.Strategy
	broadcaster broadcast.Broadcaster
	archiver    Archiver
	clock       clockwork.Clock

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// session is the per-league unit of concurrency.
type session struct {
	leagueID uuid.UUID

	mu    sync.Mutex // single-writer serialization point
	state *models.DraftSession
	timer *engine.PickTimer
	reset bool // set by ResetDraft, cleared on the next start

	// Events drain to the broadcaster in commit order, off the command
	// path, so a slow transport never delays state mutation.
	evMu      sync.Mutex
	closed    bool
	eventCh   chan events.Event
	closeOnce sync.Once
}

// closeEvents retires the pump channel. Safe against concurrent publishes:
// a timer callback racing the close finds closed set and drops its events.
func (s *session) closeEvents() {
	s.closeOnce.Do(func() {
		s.evMu.Lock()
		s.closed = true
		close(s.eventCh)
		s.evMu.Unlock()
	})
}

const eventBuffer = 1024

func NewManager(cfg Config, pool PlayerPool, strategy engine.Strategy, broadcaster broadcast.Broadcaster, clock clockwork.Clock) *Manager {
	if cfg.DefaultTimePerPick <= 0 {
		cfg.DefaultTimePerPick = DefaultConfig().DefaultTimePerPick
	}
	if cfg.DefaultOrderPolicy == "" {
		cfg.DefaultOrderPolicy = models.OrderPolicyRoundRobin
	}
	return &Manager{
		cfg:         cfg,
		pool:        pool,
		strategy:    strategy,
		broadcaster: broadcaster,
		clock:       clock,
		sessions:    make(map[uuid.UUID]*session),
	}
}

// SetArchiver wires an optional pick archiver for completed drafts.
func (m *Manager) SetArchiver(a Archiver) {
	m.archiver = a
}

// CreateDraft creates the session for a league. The participant roster must
// be finalized: the order is fixed for the session's lifetime. A live
// session blocks the create; a session that was administratively reset and
// never restarted is torn down and replaced, so the order and settings can
// be changed between attempts.
func (m *Manager) CreateDraft(ctx context.Context, leagueID uuid.UUID, order []uuid.UUID, settings models.DraftSettings) (*models.DraftSession, error) {
	if settings.TimePerPickSec <= 0 {
		settings.TimePerPickSec = int(m.cfg.DefaultTimePerPick / time.Second)
	}
	if settings.OrderPolicy == "" {
		settings.OrderPolicy = m.cfg.DefaultOrderPolicy
	}

	state, err := engine.NewSession(leagueID, order, settings, m.clock.Now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if old, exists := m.sessions[leagueID]; exists {
		if !m.retireLocked(old) {
			m.mu.Unlock()
			return nil, engine.ErrAlreadyExists
		}
	}
	sess := &session{
		leagueID: leagueID,
		state:    state,
		eventCh:  make(chan events.Event, eventBuffer),
	}
	sess.timer = engine.NewPickTimer(m.clock,
		func(pickNumber int) { m.handleExpiry(leagueID, pickNumber) },
		func(pickNumber, secondsRemaining int) { m.emitTick(sess, pickNumber, secondsRemaining) },
	)
	m.sessions[leagueID] = sess
	m.mu.Unlock()

	go m.pump(sess)

	log.Info().
		Str("league_id", leagueID.String()).
		Int("participants", len(order)).
		Int("max_rounds", settings.MaxRounds).
		Str("order_policy", string(settings.OrderPolicy)).
		Msg("draft session created")

	return engine.Snapshot(state), nil
}

// StartDraft moves the session from CREATED to ACTIVE and puts the first
// participant on the clock.
func (m *Manager) StartDraft(ctx context.Context, leagueID uuid.UUID) error {
	sess, err := m.session(leagueID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.state.Status != models.DraftStatusCreated {
		sess.mu.Unlock()
		return engine.ErrInvalidTransition
	}
	now := m.clock.Now()
	sess.state.Status = models.DraftStatusActive
	sess.state.StartedAt = &now
	sess.reset = false

	sess.timer.Start(sess.state.CurrentPickNumber, m.timePerPick(sess.state))
	deadline := m.syncDeadline(sess)

	started := m.newEvent(sess, events.EventTypeDraftStarted, events.DraftStartedPayload{
		LeagueID:    leagueID.String(),
		StartedAt:   now,
		TotalRounds: sess.state.Settings.MaxRounds,
		TotalPicks:  sess.state.TotalPicks(),
		OrderPolicy: string(sess.state.Settings.OrderPolicy),
	})
	turn := m.turnChangedEvent(sess, deadline)
	sess.mu.Unlock()

	m.publish(sess, started, turn)

	log.Info().Str("league_id", leagueID.String()).Msg("draft started")
	return nil
}

// SubmitPick records a manual pick for the participant on the clock.
// pickNumber is the pick the caller believes is current; pass a negative
// value to mean "whatever is current". A stale pick number is rejected with
// DuplicateSubmission so a double-submit or a lost timeout race is discarded
// instead of landing on the wrong slot.
func (m *Manager) SubmitPick(ctx context.Context, leagueID, participantID, playerID uuid.UUID, pickNumber int) (models.DraftPick, error) {
	sess, err := m.session(leagueID)
	if err != nil {
		return models.DraftPick{}, err
	}

	sess.mu.Lock()
	available, err := m.availableSet(ctx, sess)
	if err != nil {
		sess.mu.Unlock()
		return models.DraftPick{}, err
	}
	if err := engine.ValidatePick(sess.state, participantID, playerID, pickNumber, available); err != nil {
		sess.mu.Unlock()
		return models.DraftPick{}, err
	}
	pick, evts := m.recordPick(sess, participantID, available[playerID], false)
	sess.mu.Unlock()

	m.publish(sess, evts...)
	return pick, nil
}

// ForcePick is the administrator override: records an auto-tagged pick for
// the current participant, selecting via the auto-pick strategy when no
// player is named.
func (m *Manager) ForcePick(ctx context.Context, leagueID, adminID uuid.UUID, playerID *uuid.UUID) (models.DraftPick, error) {
	sess, err := m.session(leagueID)
	if err != nil {
		return models.DraftPick{}, err
	}

	sess.mu.Lock()
	if sess.state.Status != models.DraftStatusActive {
		sess.mu.Unlock()
		return models.DraftPick{}, engine.ErrNotActive
	}
	current, _, _ := engine.CurrentTurn(sess.state)

	available, err := m.availableSet(ctx, sess)
	if err != nil {
		sess.mu.Unlock()
		return models.DraftPick{}, err
	}

	var player models.Player
	if playerID != nil {
		if err := engine.ValidatePick(sess.state, current, *playerID, -1, available); err != nil {
			sess.mu.Unlock()
			return models.DraftPick{}, err
		}
		player = available[*playerID]
	} else {
		player, err = m.strategy.SelectPlayer(ctx, leagueID, current, poolSlice(available))
		if err != nil {
			m.handlePoolExhaustedLocked(sess, err)
			sess.mu.Unlock()
			return models.DraftPick{}, err
		}
	}

	pick, evts := m.recordPick(sess, current, player, true)
	sess.mu.Unlock()

	m.publish(sess, evts...)

	log.Info().
		Str("league_id", leagueID.String()).
		Str("admin_id", adminID.String()).
		Int("pick_number", pick.PickNumber).
		Msg("admin force pick recorded")
	return pick, nil
}

// PauseDraft freezes the clock. Valid only while ACTIVE.
func (m *Manager) PauseDraft(ctx context.Context, leagueID uuid.UUID) error {
	return m.pause(leagueID, "manual pause")
}

// ResumeDraft re-arms the clock with the time remaining when the session
// was paused, not the elapsed wall time.
func (m *Manager) ResumeDraft(ctx context.Context, leagueID uuid.UUID) error {
	sess, err := m.session(leagueID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.state.Status != models.DraftStatusPaused {
		sess.mu.Unlock()
		return engine.ErrInvalidTransition
	}
	sess.state.Status = models.DraftStatusActive
	sess.timer.Resume()
	deadline := m.syncDeadline(sess)

	ev := m.newEvent(sess, events.EventTypeDraftResumed, events.DraftResumedPayload{
		ResumedAt: m.clock.Now(),
		Deadline:  deadline,
	})
	sess.mu.Unlock()

	m.publish(sess, ev)
	log.Info().Str("league_id", leagueID.String()).Msg("draft resumed")
	return nil
}

// ResetDraft returns the session to a fresh CREATED state from any status.
// The timer generation bump inside Stop guarantees a pending expiry cannot
// land after the reset.
func (m *Manager) ResetDraft(ctx context.Context, leagueID, adminID uuid.UUID) error {
	sess, err := m.session(leagueID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.timer.Stop()
	engine.Reset(sess.state)
	sess.reset = true
	ev := m.newEvent(sess, events.EventTypeDraftReset, events.DraftResetPayload{
		ResetAt: m.clock.Now(),
	})
	sess.mu.Unlock()

	m.publish(sess, ev)

	log.Info().
		Str("league_id", leagueID.String()).
		Str("admin_id", adminID.String()).
		Msg("draft reset")
	return nil
}

// Snapshot returns a deep copy of the session's full current state, for
// reconnecting clients to resync from instead of replayed events.
func (m *Manager) Snapshot(ctx context.Context, leagueID uuid.UUID) (*models.DraftSession, error) {
	sess, err := m.session(leagueID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return engine.Snapshot(sess.state), nil
}

// Shutdown stops all timers and event pumps. Session state is left as-is.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		sess.timer.Stop()
		sess.closeEvents()
	}
}

// retireLocked tears down a session so a fresh create can replace it.
// Returns false when the session is live (not in the reset state).
// Requires m.mu held.
func (m *Manager) retireLocked(sess *session) bool {
	sess.mu.Lock()
	if !sess.reset {
		sess.mu.Unlock()
		return false
	}
	sess.timer.Stop()
	sess.mu.Unlock()
	sess.closeEvents()
	delete(m.sessions, sess.leagueID)
	return true
}

// handleExpiry is the timer's expiry callback. It enters the same
// serialization point as external commands; a fire for a pick number that
// is no longer current lost the race to a manual pick (or a reset) and is
// discarded.
func (m *Manager) handleExpiry(leagueID uuid.UUID, pickNumber int) {
	ctx := context.Background()

	sess, err := m.session(leagueID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	if sess.state.Status != models.DraftStatusActive || pickNumber != sess.state.CurrentPickNumber {
		log.Debug().
			Str("league_id", leagueID.String()).
			Int("pick_number", pickNumber).
			Msg("discarding stale timer expiry")
		sess.mu.Unlock()
		return
	}

	current, _, _ := engine.CurrentTurn(sess.state)
	available, err := m.availableSet(ctx, sess)
	if err != nil {
		log.Error().Err(err).Str("league_id", leagueID.String()).Msg("pool lookup failed on timeout, re-arming timer")
		sess.timer.Reset(sess.state.CurrentPickNumber, m.timePerPick(sess.state))
		m.syncDeadline(sess)
		sess.mu.Unlock()
		return
	}

	player, err := m.strategy.SelectPlayer(ctx, leagueID, current, poolSlice(available))
	if err != nil {
		m.handlePoolExhaustedLocked(sess, err)
		sess.mu.Unlock()
		return
	}

	pick, evts := m.recordPick(sess, current, player, true)
	sess.mu.Unlock()

	m.publish(sess, evts...)

	log.Info().
		Str("league_id", leagueID.String()).
		Int("pick_number", pick.PickNumber).
		Str("player_id", pick.PlayerID.String()).
		Msg("auto-pick recorded on timeout")
}

// recordPick applies a validated pick, drives the timer, and builds the
// events to publish. Requires sess.mu held. State is committed before the
// caller fans anything out.
func (m *Manager) recordPick(sess *session, participantID uuid.UUID, player models.Player, isAutoPick bool) (models.DraftPick, []events.Event) {
	pick, completed := engine.ApplyPick(sess.state, participantID, player, isAutoPick, m.clock.Now())

	evts := []events.Event{
		m.newEvent(sess, events.EventTypePickRecorded, events.PickRecordedPayload{Pick: pick}),
	}

	if completed {
		sess.timer.Stop()
		var duration string
		if sess.state.StartedAt != nil {
			duration = sess.state.CompletedAt.Sub(*sess.state.StartedAt).String()
		}
		evts = append(evts, m.newEvent(sess, events.EventTypeDraftCompleted, events.DraftCompletedPayload{
			CompletedAt: *sess.state.CompletedAt,
			Duration:    duration,
			TotalPicks:  len(sess.state.Picks),
		}))
		m.archive(sess)
	} else {
		sess.timer.Reset(sess.state.CurrentPickNumber, m.timePerPick(sess.state))
		deadline := m.syncDeadline(sess)
		evts = append(evts, m.turnChangedEvent(sess, deadline))
	}

	return pick, evts
}

// handlePoolExhaustedLocked pauses the draft for administrative intervention
// instead of letting it stall on an empty pool. Requires sess.mu held.
func (m *Manager) handlePoolExhaustedLocked(sess *session, cause error) {
	log.Error().
		Err(cause).
		Str("league_id", sess.leagueID.String()).
		Msg("auto-pick selection failed, pausing draft")

	if sess.state.Status != models.DraftStatusActive {
		return
	}
	sess.state.Status = models.DraftStatusPaused
	sess.timer.Pause()
	sess.state.TimerDeadline = nil

	ev := m.newEvent(sess, events.EventTypeDraftPaused, events.DraftPausedPayload{
		PausedAt: m.clock.Now(),
		Reason:   "player pool exhausted",
	})
	// Safe to send here: the pump drains without taking sess.mu.
	m.publish(sess, ev)
}

func (m *Manager) pause(leagueID uuid.UUID, reason string) error {
	sess, err := m.session(leagueID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.state.Status != models.DraftStatusActive {
		sess.mu.Unlock()
		return engine.ErrInvalidTransition
	}
	sess.state.Status = models.DraftStatusPaused
	sess.timer.Pause()
	sess.state.TimerDeadline = nil

	ev := m.newEvent(sess, events.EventTypeDraftPaused, events.DraftPausedPayload{
		PausedAt: m.clock.Now(),
		Reason:   reason,
	})
	sess.mu.Unlock()

	m.publish(sess, ev)
	log.Info().Str("league_id", leagueID.String()).Str("reason", reason).Msg("draft paused")
	return nil
}

func (m *Manager) session(leagueID uuid.UUID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[leagueID]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return sess, nil
}

// availableSet fetches the pool provider's view of undrafted players.
// Requires sess.mu held; pool I/O is the one blocking call commands make,
// and it stays inside the serialization point on purpose.
func (m *Manager) availableSet(ctx context.Context, sess *session) (map[uuid.UUID]models.Player, error) {
	players, err := m.pool.ListAvailablePlayers(ctx, sess.leagueID)
	if err != nil {
		return nil, err
	}
	available := make(map[uuid.UUID]models.Player, len(players))
	for _, p := range players {
		available[p.ID] = p
	}
	// The provider may lag the session's own picks; they are authoritative.
	for i := range sess.state.Picks {
		delete(available, sess.state.Picks[i].PlayerID)
	}
	return available, nil
}

func poolSlice(available map[uuid.UUID]models.Player) []models.Player {
	players := make([]models.Player, 0, len(available))
	for _, p := range available {
		players = append(players, p)
	}
	return players
}

func (m *Manager) timePerPick(s *models.DraftSession) time.Duration {
	return time.Duration(s.Settings.TimePerPickSec) * time.Second
}

// syncDeadline copies the armed timer deadline into the session state.
// Requires sess.mu held.
func (m *Manager) syncDeadline(sess *session) time.Time {
	deadline, ok := sess.timer.Deadline()
	if ok {
		sess.state.TimerDeadline = &deadline
	} else {
		sess.state.TimerDeadline = nil
	}
	return deadline
}

func (m *Manager) turnChangedEvent(sess *session, deadline time.Time) events.Event {
	participant, round, _ := engine.CurrentTurn(sess.state)
	return m.newEvent(sess, events.EventTypeTurnChanged, events.TurnChangedPayload{
		ParticipantID: participant.String(),
		PickNumber:    sess.state.CurrentPickNumber,
		Round:         round,
		Deadline:      deadline,
	})
}

func (m *Manager) newEvent(sess *session, typ events.EventType, payload any) events.Event {
	ev, err := events.New(sess.leagueID, typ, payload, m.clock.Now())
	if err != nil {
		// Payloads are our own structs; marshal failure is a programming error.
		log.Error().Err(err).Str("event_type", string(typ)).Msg("failed to build event")
	}
	return ev
}

func (m *Manager) emitTick(sess *session, pickNumber, secondsRemaining int) {
	ev := m.newEvent(sess, events.EventTypeTimerTick, events.TimerTickPayload{
		PickNumber:       pickNumber,
		SecondsRemaining: secondsRemaining,
	})
	m.publish(sess, ev)
}

// publish hands events to the session pump without blocking the command
// path. The pump preserves commit order. Events for a retired session are
// dropped rather than sent on the closed channel.
func (m *Manager) publish(sess *session, evts ...events.Event) {
	sess.evMu.Lock()
	defer sess.evMu.Unlock()
	if sess.closed {
		return
	}
	for _, ev := range evts {
		select {
		case sess.eventCh <- ev:
		default:
			log.Warn().
				Str("league_id", sess.leagueID.String()).
				Str("event_type", string(ev.Type)).
				Msg("event buffer full, dropping event")
		}
	}
}

func (m *Manager) pump(sess *session) {
	for ev := range sess.eventCh {
		if err := m.broadcaster.Publish(context.Background(), ev); err != nil {
			log.Error().
				Err(err).
				Str("league_id", sess.leagueID.String()).
				Str("event_type", string(ev.Type)).
				Msg("broadcast failed")
		}
	}
}

// archive hands the completed session to the archiver off the command path.
// Requires sess.mu held when called; copies the snapshot first.
func (m *Manager) archive(sess *session) {
	if m.archiver == nil {
		return
	}
	snapshot := engine.Snapshot(sess.state)
	go func() {
		if err := m.archiver.ArchivePicks(context.Background(), snapshot); err != nil {
			log.Error().
				Err(err).
				Str("league_id", snapshot.LeagueID.String()).
				Msg("failed to archive completed draft")
		}
	}()
}
