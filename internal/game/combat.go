package game

import (
	"log"
	"sort"

	"lastlap/internal/model"
)

// handleFire runs the shot pipeline: precondition gates (no mutation on
// failure), then ammo/cooldown stamping, then target resolution.
func (s *Session) handleFire(shooter *Player, act model.FireAction) {
	now := s.now()

	if shooter.IsEliminated {
		log.Printf("session %s: %s tried to shoot but is eliminated", s.Code, shooter.Name)
		return
	}
	if s.state != model.StateBattle {
		log.Printf("session %s: %s tried to shoot but game not active", s.Code, shooter.Name)
		return
	}
	if now.Sub(shooter.LastShot) < ShotCooldown {
		return
	}
	if shooter.Ammo <= 0 {
		return
	}

	shooter.Ammo--
	shooter.LastShot = now

	// A claimed color that no real connection ever registered is a
	// spoof; it can never hit, even if a client invents a matching one.
	if _, ok := s.scannedColors[act.TargetColor]; !ok {
		shooter.Misses++
		s.sendTo(shooter.conn, model.HitResult{
			Type:    model.MsgHitResult,
			Hit:     false,
			Message: "Invalid target color!",
		})
		return
	}

	target := s.findTarget(shooter, act.TargetColor)
	if target == nil {
		shooter.Misses++
		s.sendTo(shooter.conn, model.HitResult{
			Type:    model.MsgHitResult,
			Hit:     false,
			Message: "Miss! No valid target found.",
		})
		s.broadcastArenaUpdate()
		return
	}

	damage, ok := weaponDamage[act.Weapon]
	if !ok {
		damage = weaponDamage[StarterWeapon]
	}
	if shooter.hasPowerup("doubleDamage") {
		damage *= 2
	}

	shooter.Points += PointsPerHit
	shooter.Hits++

	target.Health -= damage
	if target.Health < 0 {
		target.Health = 0
	}

	s.sendTo(shooter.conn, model.HitConfirmed{
		Type:   model.MsgHitConfirmed,
		Damage: damage,
		Points: shooter.Points,
		Target: target.Name,
		Hit:    true,
	})
	s.sendTo(target.conn, model.PlayerHit{
		Type:            model.MsgPlayerHit,
		Damage:          damage,
		Shooter:         shooter.Name,
		HealthRemaining: target.Health,
		LivesRemaining:  target.Lives,
	})

	log.Printf("session %s: %s hit %s for %d damage", s.Code, shooter.Name, target.Name, damage)

	if target.Health == 0 {
		s.lifeLost(target, shooter)
	}

	s.checkWinConditions()
	s.broadcastArenaUpdate()
}

// findTarget resolves the unique other battle-room player wearing the
// claimed color. Iteration is in id order so resolution is
// deterministic.
func (s *Session) findTarget(shooter *Player, color string) *Player {
	for _, p := range s.sortedPlayers() {
		if p.ID != shooter.ID && p.Color == color && !p.IsEliminated && p.Room == model.RoomBattle {
			return p
		}
	}
	return nil
}

func (s *Session) lifeLost(target, shooter *Player) {
	target.Lives--
	target.Deaths++

	if target.Lives > 0 {
		target.Health = StartingHealth
		shooter.Points += LifeLossBonus
		s.broadcastPlayers(model.PlayerLifeLost{
			Type:           model.MsgPlayerLifeLost,
			Player:         target.Name,
			By:             shooter.Name,
			LivesRemaining: target.Lives,
		})
		return
	}

	target.IsEliminated = true
	shooter.Points += EliminationBonus
	shooter.Eliminations++
	s.broadcastPlayers(model.PlayerEliminated{
		Type:   model.MsgPlayerElim,
		Player: target.Name,
		By:     shooter.Name,
	})
	log.Printf("session %s: %s eliminated by %s", s.Code, target.Name, shooter.Name)
	s.checkWinConditions()
}

// checkWinConditions runs after every elimination while a battle is
// live.
func (s *Session) checkWinConditions() {
	s.checkWinConditionsAgainst(len(s.players))
}

// checkWinConditionsAgainst runs the survivor check against an explicit
// contender count. The disconnect path passes the pre-removal roster
// size so the departed player still counts as a contender: a battle
// the survivor did not fight alone must end, even though the roster
// has already shrunk to one.
func (s *Session) checkWinConditionsAgainst(contenders int) {
	if s.state != model.StateBattle {
		return
	}

	var active []*Player
	for _, p := range s.sortedPlayers() {
		if !p.IsEliminated && p.Room == model.RoomBattle {
			active = append(active, p)
		}
	}

	if len(active) == 1 && contenders > 1 {
		s.endGame(active[0], WinLastManStanding)
		return
	}
	if len(active) == 0 && contenders > 0 {
		s.endGame(nil, WinDraw)
	}
}

// endGame finishes the session. Idempotent: once Finished, further
// calls are no-ops, so a disconnect check and a timer check landing in
// the same tick produce a single gameEnd.
func (s *Session) endGame(winner *Player, winCondition string) {
	if s.state == model.StateFinished {
		return
	}
	s.state = model.StateFinished

	if winner == nil {
		winner = s.decideWinner()
	}

	results := s.combatants()
	sort.SliceStable(results, func(i, j int) bool { return results[i].Points > results[j].Points })

	// No further combat actions from anyone, winner included.
	for _, p := range s.players {
		p.IsEliminated = true
	}

	winnerName := "No winner"
	if winner != nil {
		winnerName = winner.Name
	}

	s.broadcastPlayers(model.GameEnd{
		Type:            model.MsgGameEnd,
		Results:         results,
		Winner:          winnerName,
		WinCondition:    winCondition,
		MoveToSpectator: true,
	})
	s.broadcastSpectators(model.GameEnd{
		Type:         model.MsgGameEnd,
		Results:      results,
		Winner:       winnerName,
		WinCondition: winCondition,
	})

	log.Printf("session %s: game ended, winner %s (%s)", s.Code, winnerName, winCondition)
	s.destroyAt = s.now().Add(CleanupDelay)
}

// decideWinner picks the highest-point survivor, falling back to the
// highest-point player overall when everyone is down. Candidates are
// walked in ascending id order and only strictly more points displace
// the leader, so a points tie resolves to the lowest id.
func (s *Session) decideWinner() *Player {
	var candidates []*Player
	for _, p := range s.sortedPlayers() {
		if !p.IsEliminated {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = s.sortedPlayers()
	}

	var winner *Player
	for _, p := range candidates {
		if winner == nil || p.Points > winner.Points {
			winner = p
		}
	}
	return winner
}
