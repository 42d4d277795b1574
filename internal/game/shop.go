package game

import (
	"log"

	"lastlap/internal/model"
)

// handlePurchase applies one shop transaction. Failures leave the
// player's points and loadout completely untouched and only notify the
// buyer.
func (s *Session) handlePurchase(p *Player, act model.PurchaseAction) {
	item, ok := shopCatalog[act.Item]
	if !ok {
		s.sendTo(p.conn, model.PurchaseFailed{Type: model.MsgPurchaseFailed, Reason: "Unknown item"})
		return
	}
	if item.Kind == itemLife && p.IsEliminated {
		// Elimination is final within a game; lives cannot be bought back.
		s.sendTo(p.conn, model.PurchaseFailed{Type: model.MsgPurchaseFailed, Reason: "Already eliminated"})
		return
	}
	if p.Points < item.Cost {
		s.sendTo(p.conn, model.PurchaseFailed{Type: model.MsgPurchaseFailed, Reason: "Insufficient points"})
		return
	}

	p.Points -= item.Cost

	switch item.Kind {
	case itemWeapon:
		if !p.ownsWeapon(act.Item) {
			p.Weapons = append(p.Weapons, act.Item)
		}
		p.Ammo = item.Ammo
	case itemHealth:
		p.Health += item.Amount
		if p.Health > MaxHealth {
			p.Health = MaxHealth
		}
	case itemPowerup:
		// Repurchase while active refreshes the duration.
		p.ActivePowerups[act.Item] = item.Duration
	case itemLife:
		p.Lives += item.Lives
	}

	log.Printf("session %s: %s bought %s for %d points", s.Code, p.Name, act.Item, item.Cost)

	s.sendTo(p.conn, model.PurchaseSuccess{
		Type:   model.MsgPurchaseSuccess,
		Item:   act.Item,
		Points: p.Points,
	})
	s.broadcastArenaUpdate()
}

// handleReload refills ammo to the capacity of the requested weapon.
// Unknown weapons fall back to the starter capacity.
func (s *Session) handleReload(p *Player, act model.ReloadAction) {
	capacity, ok := weaponCapacity[act.Weapon]
	if !ok {
		capacity = weaponCapacity[StarterWeapon]
	}
	p.Ammo = capacity

	s.sendTo(p.conn, model.ReloadComplete{
		Type:   model.MsgReloadComplete,
		Weapon: act.Weapon,
		Ammo:   capacity,
	})
	s.broadcastArenaUpdate()
}
