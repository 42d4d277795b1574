package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"lastlap/internal/model"
)

var ErrSessionFull = errors.New("session full")

// Session is the aggregate state machine for one game code: player and
// spectator rosters, lobby/battle/finished phase, commander, countdown,
// scanned colors and GPS bounds.
//
// A single mutex guards all of it. Every inbound action, attach/detach
// and clock tick holds the lock for its full duration, so cross-field
// invariants never observe a half-applied mutation. Broadcasting inside
// the lock is safe because Conn.Send never blocks.
type Session struct {
	Code string

	mu            sync.Mutex
	state         model.SessionState
	commanderID   string
	players       map[string]*Player
	spectators    map[string]Conn
	scannedColors map[string]struct{}
	gpsBounds     *model.GPSBounds

	timeRemaining   int
	battleStartedAt time.Time

	createdAt    time.Time
	lastActivity time.Time

	// destroyAt is the deadline after which the registry sweep removes
	// this session; zero means no destruction is pending.
	destroyAt time.Time

	now func() time.Time
}

func NewSession(code string) *Session {
	now := time.Now
	return &Session{
		Code:          code,
		state:         model.StateLobby,
		players:       make(map[string]*Player),
		spectators:    make(map[string]Conn),
		scannedColors: make(map[string]struct{}),
		createdAt:     now(),
		lastActivity:  now(),
		now:           now,
	}
}

// AttachPlayer registers a new player connection. A player reconnecting
// under the same display name evicts the previous record
// (last-connection-wins); the commander role follows the name across
// the eviction.
func (s *Session) AttachPlayer(conn Conn, name, color string, room model.Room) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()

	var evictedCommander bool
	for id, p := range s.players {
		if p.Name == name {
			evictedCommander = s.commanderID == id
			delete(s.players, id)
			p.conn.Close()
			log.Printf("session %s: evicted existing player %s", s.Code, name)
			break
		}
	}

	if len(s.players) >= MaxPlayers {
		return "", ErrSessionFull
	}

	// Only palette tokens register as targetable colors; anything else
	// is treated as if the scanner produced nothing.
	if !model.ValidTeamColor(color) {
		color = ""
	}
	if color != "" {
		s.scannedColors[color] = struct{}{}
	}

	id := fmt.Sprintf("%s-%d", name, s.now().UnixMilli())
	p := newPlayer(id, name, color, room, conn, s.now())
	s.players[id] = p

	if evictedCommander || (s.commanderID == "" && room == model.RoomLobby) {
		s.commanderID = id
		log.Printf("session %s: %s assigned as commander", s.Code, name)
	}

	// Lobby joiners arriving mid-battle watch from the sidelines.
	if s.state == model.StateBattle && room == model.RoomLobby {
		p.Room = model.RoomBattle
		p.IsEliminated = true
		s.sendTo(conn, model.JoinAsSpectator{
			Type:      model.MsgJoinAsSpectator,
			GameState: s.arenaState(),
		})
	}

	log.Printf("session %s: %s joined as %s", s.Code, name, room)
	s.broadcastLobbyUpdate()
	return id, nil
}

// AttachSpectator registers a delivery-only handle and immediately
// pushes one snapshot so the spectator is not blank until the next
// tick.
func (s *Session) AttachSpectator(conn Conn) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	id := "spectator-" + uuid.NewString()
	s.spectators[id] = conn
	s.sendTo(conn, model.SpectatorUpdate{
		Type:      model.MsgSpectatorUpdate,
		GameState: s.spectatorState(),
	})
	return id
}

// DetachPlayer removes a player after a disconnect. Safe to call for an
// already-removed id.
func (s *Session) DetachPlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachPlayerLocked(id)
}

func (s *Session) detachPlayerLocked(id string) {
	p, ok := s.players[id]
	if !ok {
		return
	}
	contenders := len(s.players)

	s.touch()
	s.broadcastPlayers(model.PlayerLeft{Type: model.MsgPlayerLeft, Player: p.Name})
	delete(s.players, id)
	p.conn.Close()
	log.Printf("session %s: %s disconnected", s.Code, p.Name)

	if s.commanderID == id {
		s.commanderID = ElectCommander(s.players)
		if s.commanderID != "" {
			log.Printf("session %s: %s is new commander", s.Code, s.players[s.commanderID].Name)
		}
	}

	s.broadcastLobbyUpdate()

	// A disconnect can leave a single active combatant standing. The
	// departed player still counts as a contender, otherwise a
	// two-player battle would shrink to a roster of one and the
	// survivor check could never fire.
	if s.state == model.StateBattle {
		s.checkWinConditionsAgainst(contenders)
	}

	s.broadcastSpectators(model.SpectatorUpdate{
		Type:      model.MsgSpectatorUpdate,
		GameState: s.spectatorState(),
	})

	s.maybeScheduleCleanup()
}

// DetachSpectator drops a spectator handle. Safe for unknown ids.
func (s *Session) DetachSpectator(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.spectators[id]; !ok {
		return
	}
	delete(s.spectators, id)
	s.touch()
	s.maybeScheduleCleanup()
}

// HandleAction routes one decoded inbound message to its rule handler.
// Actions from unknown players are dropped.
func (s *Session) HandleAction(playerID string, act model.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return
	}
	s.touch()

	switch a := act.(type) {
	case model.StartBattleAction:
		s.handleStartBattle(p)
	case model.FireAction:
		s.handleFire(p, a)
	case model.PurchaseAction:
		s.handlePurchase(p, a)
	case model.ReloadAction:
		s.handleReload(p, a)
	case model.LeaveAction:
		s.detachPlayerLocked(playerID)
	case model.GPSUpdateAction:
		s.handleGPSUpdate(p, a)
	}
}

// handleStartBattle transitions Lobby -> Battle. Only the commander may
// start, and only once.
func (s *Session) handleStartBattle(p *Player) {
	if p.ID != s.commanderID || s.state != model.StateLobby {
		log.Printf("session %s: %s tried to start battle but is not commander or battle already started", s.Code, p.Name)
		return
	}

	s.state = model.StateBattle
	s.timeRemaining = int(BattleDuration / time.Second)
	s.battleStartedAt = s.now()

	for _, pl := range s.players {
		pl.Room = model.RoomBattle
		pl.resetLoadout()
	}

	log.Printf("session %s: battle started by %s with %d players", s.Code, p.Name, len(s.players))

	s.broadcastPlayers(model.BattleStart{
		Type:      model.MsgBattleStart,
		Players:   s.combatants(),
		Commander: p.Name,
	})
	s.broadcastSpectators(model.BattleStart{
		Type:    model.MsgBattleStart,
		Players: s.combatants(),
	})
}

// Tick advances the session by one clock step. It returns true once the
// session's destruction deadline has passed and the registry should
// drop it.
func (s *Session) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.StateBattle {
		elapsed := int(now.Sub(s.battleStartedAt) / time.Second)
		remaining := int(BattleDuration/time.Second) - elapsed
		if remaining < 0 {
			remaining = 0
		}
		s.timeRemaining = remaining

		for _, p := range s.players {
			for name, secs := range p.ActivePowerups {
				if secs-1 <= 0 {
					delete(p.ActivePowerups, name)
				} else {
					p.ActivePowerups[name] = secs - 1
				}
			}
		}

		s.broadcastArenaUpdate()

		if remaining == 0 {
			log.Printf("session %s: time up", s.Code)
			s.endGame(nil, WinTimeUp)
		}
	}

	if !s.destroyAt.IsZero() && !now.Before(s.destroyAt) &&
		(s.state == model.StateFinished || s.emptyLocked()) {
		s.closeAllLocked()
		return true
	}
	return false
}

// Info returns the REST-facing summary.
func (s *Session) Info() model.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SessionInfo{
		Code:           s.Code,
		PlayerCount:    len(s.players),
		SpectatorCount: len(s.spectators),
		GameState:      s.state,
		CreatedAt:      s.createdAt,
		LastActivity:   s.lastActivity,
	}
}

func (s *Session) touch() {
	s.lastActivity = s.now()
	// Reattachment cancels a pending empty-roster destruction; a
	// finished game is torn down regardless.
	if s.state != model.StateFinished {
		s.destroyAt = time.Time{}
	}
}

func (s *Session) emptyLocked() bool {
	return len(s.players) == 0 && len(s.spectators) == 0
}

func (s *Session) maybeScheduleCleanup() {
	if s.emptyLocked() && s.state != model.StateFinished && s.destroyAt.IsZero() {
		s.destroyAt = s.now().Add(CleanupDelay)
	}
}

func (s *Session) closeAllLocked() {
	for _, p := range s.players {
		p.conn.Close()
	}
	for _, c := range s.spectators {
		c.Close()
	}
}
