package websocket

import "github.com/stemsi/edutrack-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventStatus Event = "status"
	EventPong   Event = "pong"
)

// StatusResponse carries an extraction job after each state change. The
// stream closes after the first terminal status.
type StatusResponse struct {
	Event Event               `json:"event"`
	Job   model.ExtractionJob `json:"job"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
