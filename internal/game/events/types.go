package events

import "time"

// Event is anything published on the bus
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
}

// BaseEvent carries the fields shared by every game event
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

// EventMetadata places an event in the turn sequence
type EventMetadata struct {
	Side string `json:"side,omitempty"`
	Turn int    `json:"turn,omitempty"`
}

// EventHandler handles events of one type
type EventHandler func(Event)

// Subscriber receives the events it is interested in
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher is the publishing half of the bus, all the state machine needs
type Publisher interface {
	Publish(Event)
}
