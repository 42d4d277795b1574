package game

import (
	"encoding/json"
	"sort"

	"lastlap/internal/model"
)

// sortedPlayers returns the roster in ascending id order so every
// snapshot, target search and election walks players deterministically.
func (s *Session) sortedPlayers() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Session) combatants() []model.Combatant {
	out := make([]model.Combatant, 0, len(s.players))
	for _, p := range s.sortedPlayers() {
		powerups := make(map[string]int, len(p.ActivePowerups))
		for name, secs := range p.ActivePowerups {
			powerups[name] = secs
		}
		out = append(out, model.Combatant{
			Tag:            p.Name,
			Color:          p.Color,
			Points:         p.Points,
			Lives:          p.Lives,
			Health:         p.Health,
			Ammo:           p.Ammo,
			Weapons:        append([]string(nil), p.Weapons...),
			Position:       p.Position,
			GPSAvailable:   p.GPSAvailable,
			GPSPosition:    p.GPSFix,
			Hits:           p.Hits,
			Misses:         p.Misses,
			Eliminations:   p.Eliminations,
			Deaths:         p.Deaths,
			IsEliminated:   p.IsEliminated,
			ActivePowerups: powerups,
		})
	}
	return out
}

func (s *Session) arenaState() model.ArenaState {
	return model.ArenaState{
		TimeRemaining: s.timeRemaining,
		Combatants:    s.combatants(),
		GPSBounds:     s.gpsBounds,
	}
}

func (s *Session) spectatorState() model.SpectatorState {
	return model.SpectatorState{
		TimeRemaining: s.timeRemaining,
		Combatants:    s.combatants(),
		BattleStarted: s.state == model.StateBattle,
		GPSBounds:     s.gpsBounds,
	}
}

func (s *Session) commanderName() string {
	if p, ok := s.players[s.commanderID]; ok {
		return p.Name
	}
	return ""
}

// broadcastLobbyUpdate pushes the light roster frame to every player
// whenever the lobby roster changes.
func (s *Session) broadcastLobbyUpdate() {
	roster := make([]model.LobbyPlayer, 0)
	for _, p := range s.sortedPlayers() {
		if p.Room == model.RoomLobby {
			roster = append(roster, model.LobbyPlayer{Tag: p.Name, Color: p.Color})
		}
	}
	s.broadcastPlayers(model.LobbyUpdate{
		Type:          model.MsgLobbyUpdate,
		Players:       roster,
		Commander:     s.commanderName(),
		BattleStarted: s.state == model.StateBattle,
	})
}

// broadcastArenaUpdate pushes the full combat snapshot to players and
// the spectator variant to spectators. Runs after every mutating action
// and once per clock tick during a battle.
func (s *Session) broadcastArenaUpdate() {
	s.broadcastPlayers(model.ArenaUpdate{
		Type:        model.MsgArenaUpdate,
		GameState:   s.arenaState(),
		PlayerStats: s.combatants(),
	})
	s.broadcastSpectators(model.SpectatorUpdate{
		Type:      model.MsgSpectatorUpdate,
		GameState: s.spectatorState(),
	})
}

func (s *Session) broadcastPlayers(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	for _, p := range s.players {
		_ = p.conn.Send(b)
	}
}

func (s *Session) broadcastSpectators(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	for _, c := range s.spectators {
		_ = c.Send(b)
	}
}

func (s *Session) sendTo(c Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Send(b)
}
