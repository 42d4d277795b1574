package game

import "time"

// Canonical battle-mode constants. The tables here are the single
// source of truth for combat math; tests assert against them.
const (
	BattleDuration = 300 * time.Second
	ShotCooldown   = 500 * time.Millisecond
	CleanupDelay   = 30 * time.Second

	MaxPlayers = 8

	StarterWeapon  = "pistol"
	StartingAmmo   = 5
	StartingLives  = 3
	StartingHealth = 100
	MaxHealth      = 100

	PointsPerHit     = 25
	LifeLossBonus    = 50
	EliminationBonus = 100

	// Floor on the GPS bounds span so that near-identical fixes never
	// divide by zero during minimap projection.
	gpsRangeFloor = 0.0001
)

// Win condition tokens carried on gameEnd frames.
const (
	WinLastManStanding = "last_man_standing"
	WinDraw            = "draw"
	WinTimeUp          = "time_up"
)

// weaponDamage is the per-shot base damage table.
var weaponDamage = map[string]int{
	"pistol":  25,
	"rifle":   35,
	"shotgun": 50,
}

// weaponCapacity is the fully-loaded ammo count per weapon, used by
// reload and by weapon purchases.
var weaponCapacity = map[string]int{
	"pistol":  5,
	"rifle":   10,
	"shotgun": 6,
}

type itemKind int

const (
	itemWeapon itemKind = iota
	itemHealth
	itemPowerup
	itemLife
)

type shopItem struct {
	Cost     int
	Kind     itemKind
	Ammo     int // itemWeapon: capacity granted on purchase
	Amount   int // itemHealth: health restored
	Duration int // itemPowerup: seconds active
	Lives    int // itemLife: lives granted
}

// shopCatalog is the fixed point-cost catalog. Timed powerups refresh
// their duration on repurchase.
var shopCatalog = map[string]shopItem{
	"rifle":        {Cost: 100, Kind: itemWeapon, Ammo: 10},
	"shotgun":      {Cost: 200, Kind: itemWeapon, Ammo: 6},
	"healthPack":   {Cost: 80, Kind: itemHealth, Amount: 100},
	"doubleDamage": {Cost: 150, Kind: itemPowerup, Duration: 30},
	"speedBoost":   {Cost: 100, Kind: itemPowerup, Duration: 45},
	"extraLife":    {Cost: 150, Kind: itemLife, Lives: 1},
}
