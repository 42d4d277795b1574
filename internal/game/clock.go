package game

import (
	"log"
	"time"
)

// Clock is the single process-wide 1 Hz tick. Each step ages every
// battle's countdown and powerups, pushes the periodic broadcast, and
// sweeps sessions whose destruction deadline has passed. Sessions not
// in battle are a cheap no-op inside Session.Tick.
type Clock struct {
	registry *Registry
	interval time.Duration
	stop     chan struct{}
}

func NewClock(registry *Registry) *Clock {
	return &Clock{
		registry: registry,
		interval: time.Second,
		stop:     make(chan struct{}),
	}
}

// Run blocks until Stop. Call it in its own goroutine.
func (c *Clock) Run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.Step(now)
		}
	}
}

func (c *Clock) Stop() {
	close(c.stop)
}

// Step performs one tick at the given time. Exposed so tests drive the
// clock synchronously.
func (c *Clock) Step(now time.Time) {
	var expired []string
	c.registry.ForEach(func(s *Session) {
		if s.Tick(now) {
			expired = append(expired, s.Code)
		}
	})
	for _, code := range expired {
		log.Printf("cleaning up session: %s", code)
		c.registry.Delete(code)
	}
}
