package server

import "github.com/mission-control/telemetry/internal/telemetry"

type MessageType string

const (
	MsgTelemetry MessageType = "telemetry"
)

// Message is the websocket envelope.
type Message struct {
	Type    MessageType         `json:"type"`
	Payload *telemetry.Snapshot `json:"payload"`
}
