package game

import "lastlap/internal/model"

// handleGPSUpdate stores a raw fix, widens the session bounds and
// reprojects the player's minimap position. Nil coordinates are the
// explicit "no GPS" signal: the fix and position are cleared and the
// player is simply omitted from GPS rendering.
func (s *Session) handleGPSUpdate(p *Player, act model.GPSUpdateAction) {
	if act.Latitude != nil && act.Longitude != nil {
		lat, lng := *act.Latitude, *act.Longitude
		var accuracy float64
		if act.Accuracy != nil {
			accuracy = *act.Accuracy
		}

		p.GPSFix = &model.GPSFix{
			Latitude:  lat,
			Longitude: lng,
			Accuracy:  accuracy,
			Timestamp: s.now().UnixMilli(),
		}
		p.GPSAvailable = true

		s.widenBounds(lat, lng)
		p.Position = s.projectMinimap(lat, lng)
	} else {
		p.GPSAvailable = false
		p.GPSFix = nil
		p.Position = nil
	}

	s.broadcastArenaUpdate()
}

func (s *Session) widenBounds(lat, lng float64) {
	if s.gpsBounds == nil {
		s.gpsBounds = &model.GPSBounds{MinLat: lat, MaxLat: lat, MinLng: lng, MaxLng: lng}
		return
	}
	b := s.gpsBounds
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
	if lng < b.MinLng {
		b.MinLng = lng
	}
	if lng > b.MaxLng {
		b.MaxLng = lng
	}
}

// projectMinimap normalizes a fix into 0-100 minimap space via min-max
// over the session bounds. The span is floored so identical fixes never
// divide by zero, and the vertical axis is inverted for a north-up
// screen.
func (s *Session) projectMinimap(lat, lng float64) *model.Position {
	b := s.gpsBounds

	latRange := b.MaxLat - b.MinLat
	if latRange < gpsRangeFloor {
		latRange = gpsRangeFloor
	}
	lngRange := b.MaxLng - b.MinLng
	if lngRange < gpsRangeFloor {
		lngRange = gpsRangeFloor
	}

	x := (lng - b.MinLng) / lngRange * 100
	y := 100 - (lat-b.MinLat)/latRange*100

	return &model.Position{X: clamp(x, 0, 100), Y: clamp(y, 0, 100)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
