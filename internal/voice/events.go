package voice

// EventType identifies session event variants published to UI consumers.
type EventType string

const (
	EventState EventType = "state"
	EventLevel EventType = "level"
	EventTurn  EventType = "turn"
)

// Event is one UI-facing session update: a state/status change, a level
// meter sample, or a new transcript turn.
type Event struct {
	Type   EventType `json:"type"`
	State  State     `json:"state,omitempty"`
	Status string    `json:"status,omitempty"`
	Level  float64   `json:"level"`
	Turn   *Turn     `json:"turn,omitempty"`
}
