package game

import (
	"math/rand"
	"time"

	"lastlap/internal/model"
)

// Player is one connected combatant's full session-scoped state. A
// fresh Player is created per connection; reconnecting under the same
// name evicts the old record.
type Player struct {
	ID       string
	Name     string
	Color    string
	Room     model.Room
	JoinedAt time.Time

	Points       int
	Lives        int
	Health       int
	Ammo         int
	Weapons      []string
	LastShot     time.Time
	Hits         int
	Misses       int
	Eliminations int
	Deaths       int
	IsEliminated bool

	// ActivePowerups maps powerup name to remaining seconds, decremented
	// once per clock tick.
	ActivePowerups map[string]int

	Position     *model.Position
	GPSFix       *model.GPSFix
	GPSAvailable bool

	conn Conn
}

func newPlayer(id, name, color string, room model.Room, conn Conn, joinedAt time.Time) *Player {
	p := &Player{
		ID:       id,
		Name:     name,
		Color:    color,
		Room:     room,
		JoinedAt: joinedAt,
		conn:     conn,
	}
	p.resetLoadout()
	return p
}

// resetLoadout puts the player back on starter stats. Used at join and
// again for everyone when a battle starts.
func (p *Player) resetLoadout() {
	p.Points = 0
	p.Lives = StartingLives
	p.Health = StartingHealth
	p.Ammo = StartingAmmo
	p.Weapons = []string{StarterWeapon}
	p.LastShot = time.Time{}
	p.Hits = 0
	p.Misses = 0
	p.Eliminations = 0
	p.Deaths = 0
	p.IsEliminated = false
	p.ActivePowerups = make(map[string]int)
	p.Position = randomPosition()
	p.GPSFix = nil
	p.GPSAvailable = false
}

func (p *Player) ownsWeapon(w string) bool {
	for _, owned := range p.Weapons {
		if owned == w {
			return true
		}
	}
	return false
}

func (p *Player) hasPowerup(name string) bool {
	_, ok := p.ActivePowerups[name]
	return ok
}

// randomPosition is the synthetic minimap spawn used until a GPS fix
// arrives.
func randomPosition() *model.Position {
	return &model.Position{
		X: float64(rand.Intn(100)),
		Y: float64(rand.Intn(100)),
	}
}
