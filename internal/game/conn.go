package game

// Conn is the delivery handle for one attached connection. Send must
// never block: a saturated or closed peer is skipped, not waited on.
type Conn interface {
	Send(b []byte) error
	Close()
}
