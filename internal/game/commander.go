package game

import (
	"sort"

	"lastlap/internal/model"
)

// ElectCommander picks the next commander deterministically: the
// remaining lobby-room player with the lowest id, or the empty id when
// no lobby player is left.
func ElectCommander(players map[string]*Player) string {
	var ids []string
	for id, p := range players {
		if p.Room == model.RoomLobby {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return ids[0]
}
