package model

import "time"

// Room is where a connected participant currently lives within a session.
type Room string

const (
	RoomLobby    Room = "lobby"
	RoomBattle   Room = "game"
	RoomSpectate Room = "spectate"
)

// SessionState is the lifecycle phase of one game session.
type SessionState string

const (
	StateLobby    SessionState = "lobby"
	StateBattle   SessionState = "battle"
	StateFinished SessionState = "finished"
)

// TeamColors is the fixed palette the color classifier can produce.
var TeamColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// ValidTeamColor reports whether c is one of the palette tokens.
func ValidTeamColor(c string) bool {
	for _, t := range TeamColors {
		if t == c {
			return true
		}
	}
	return false
}

// Position is a 0-100 minimap coordinate, north-up.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GPSFix is the raw geolocation last reported by a player.
type GPSFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
}

// GPSBounds tracks the min/max coordinates seen in a session, used to
// normalize fixes into minimap space.
type GPSBounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// SessionInfo is the read-only summary served over REST.
type SessionInfo struct {
	Code           string       `json:"code"`
	PlayerCount    int          `json:"playerCount"`
	SpectatorCount int          `json:"spectatorCount"`
	GameState      SessionState `json:"gameState"`
	CreatedAt      time.Time    `json:"createdAt"`
	LastActivity   time.Time    `json:"lastActivity"`
}
