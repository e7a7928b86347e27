package event

import "time"

// Agent is a read-only descriptor of the upstream producer of an event.
// It is a snapshot with a fixed attribute set, never a live reference
// into the producing system.
type Agent struct {
	Type string `json:"type"` // "webhook", "scraper", etc.
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Fields returns the agent attributes as a template-addressable mapping.
func (a Agent) Fields() map[string]interface{} {
	return map[string]interface{}{
		"type": a.Type,
		"name": a.Name,
		"id":   a.ID,
	}
}

// Event is the canonical input model for all incoming events.
type Event struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	ReceivedAt time.Time              `json:"-"`
	Agent      Agent                  `json:"agent"`
	Payload    map[string]interface{} `json:"payload"` // arbitrary event data
}

// Output is a formatted event handed to the sink. It has no identity of
// its own; the sink assigns one if it needs to.
type Output map[string]interface{}
