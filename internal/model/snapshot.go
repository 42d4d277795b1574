package model

// Outbound messages are flat JSON objects of the form {type, ...}.
// Each struct below is one wire frame; Type is always set to the
// matching Msg* constant by the sender.

const (
	MsgLobbyUpdate     = "lobbyUpdate"
	MsgBattleStart     = "battleStart"
	MsgArenaUpdate     = "arenaUpdate"
	MsgSpectatorUpdate = "spectatorUpdate"
	MsgJoinAsSpectator = "joinAsSpectator"
	MsgHitResult       = "hitResult"
	MsgHitConfirmed    = "hitConfirmed"
	MsgPlayerHit       = "playerHit"
	MsgPlayerLifeLost  = "playerLifeLost"
	MsgPlayerElim      = "playerEliminated"
	MsgPurchaseSuccess = "purchaseSuccess"
	MsgPurchaseFailed  = "purchaseFailed"
	MsgReloadComplete  = "reloadComplete"
	MsgGameEnd         = "gameEnd"
	MsgPlayerLeft      = "playerLeft"
)

// Combatant is a player as rendered in broadcast snapshots.
type Combatant struct {
	Tag            string         `json:"tag"`
	Color          string         `json:"color"`
	Points         int            `json:"points"`
	Lives          int            `json:"lives"`
	Health         int            `json:"health"`
	Ammo           int            `json:"ammo"`
	Weapons        []string       `json:"weapons"`
	Position       *Position      `json:"position"`
	GPSAvailable   bool           `json:"gpsAvailable"`
	GPSPosition    *GPSFix        `json:"gpsPosition"`
	Hits           int            `json:"hits"`
	Misses         int            `json:"misses"`
	Eliminations   int            `json:"eliminations"`
	Deaths         int            `json:"deaths"`
	IsEliminated   bool           `json:"isEliminated"`
	ActivePowerups map[string]int `json:"activePowerups"`
}

// LobbyPlayer is the lighter roster entry used by lobby updates.
type LobbyPlayer struct {
	Tag   string `json:"tag"`
	Color string `json:"color"`
}

// ArenaState is the player-facing game state aggregate.
type ArenaState struct {
	TimeRemaining int         `json:"timeRemaining"`
	Combatants    []Combatant `json:"combatants"`
	GPSBounds     *GPSBounds  `json:"gpsBounds,omitempty"`
}

// SpectatorState additionally tells spectators whether the battle is on.
type SpectatorState struct {
	TimeRemaining int         `json:"timeRemaining"`
	Combatants    []Combatant `json:"combatants"`
	BattleStarted bool        `json:"battleStarted"`
	GPSBounds     *GPSBounds  `json:"gpsBounds,omitempty"`
}

type LobbyUpdate struct {
	Type          string        `json:"type"`
	Players       []LobbyPlayer `json:"players"`
	Commander     string        `json:"commander"`
	BattleStarted bool          `json:"battleStarted"`
}

type BattleStart struct {
	Type      string      `json:"type"`
	Players   []Combatant `json:"players"`
	Commander string      `json:"commander,omitempty"`
}

type ArenaUpdate struct {
	Type        string      `json:"type"`
	GameState   ArenaState  `json:"gameState"`
	PlayerStats []Combatant `json:"playerStats"`
}

type SpectatorUpdate struct {
	Type      string         `json:"type"`
	GameState SpectatorState `json:"gameState"`
}

type JoinAsSpectator struct {
	Type      string     `json:"type"`
	GameState ArenaState `json:"gameState"`
}

// HitResult is the shooter-only miss feedback.
type HitResult struct {
	Type    string `json:"type"`
	Hit     bool   `json:"hit"`
	Message string `json:"message"`
}

type HitConfirmed struct {
	Type   string `json:"type"`
	Damage int    `json:"damage"`
	Points int    `json:"points"`
	Target string `json:"target"`
	Hit    bool   `json:"hit"`
}

type PlayerHit struct {
	Type            string `json:"type"`
	Damage          int    `json:"damage"`
	Shooter         string `json:"shooter"`
	HealthRemaining int    `json:"healthRemaining"`
	LivesRemaining  int    `json:"livesRemaining"`
}

type PlayerLifeLost struct {
	Type           string `json:"type"`
	Player         string `json:"player"`
	By             string `json:"by"`
	LivesRemaining int    `json:"livesRemaining"`
}

type PlayerEliminated struct {
	Type   string `json:"type"`
	Player string `json:"player"`
	By     string `json:"by"`
}

type PurchaseSuccess struct {
	Type   string `json:"type"`
	Item   string `json:"item"`
	Points int    `json:"points"`
}

type PurchaseFailed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type ReloadComplete struct {
	Type   string `json:"type"`
	Weapon string `json:"weapon"`
	Ammo   int    `json:"ammo"`
}

type GameEnd struct {
	Type            string      `json:"type"`
	Results         []Combatant `json:"results"`
	Winner          string      `json:"winner"`
	WinCondition    string      `json:"winCondition"`
	MoveToSpectator bool        `json:"moveToSpectator,omitempty"`
}

type PlayerLeft struct {
	Type   string `json:"type"`
	Player string `json:"player"`
}
