package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle).
// Implemented by the ws hub; events fan out to every client watching the
// session.
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
}
