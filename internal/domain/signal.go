package domain

import "time"

// ChannelTrending is the bus channel carrying trending snapshots.
const ChannelTrending = "trending"

// Envelope types published on the bus and forwarded to WebSocket clients.
const (
	EnvelopeTrending = "trending"
	EnvelopeStatus   = "status"
)

// Envelope is the JSON frame exchanged on the signal bus.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// TrendingSnapshot is one recomputation of the trending list.
type TrendingSnapshot struct {
	Markets     []Market  `json:"markets"`
	GeneratedAt time.Time `json:"generated_at"`
}
