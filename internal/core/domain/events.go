package domain

// EventKind tags a realtime event pushed to connected viewers.
type EventKind string

const (
	// EventNewClip announces a freshly persisted clip. Payload is the full
	// clip record as stored.
	EventNewClip EventKind = "NEW_VIDEO"
)

// Event is an immutable tagged message broadcast to all channels. Events
// are transient: transmitted, never stored.
type Event struct {
	Kind    EventKind `json:"type"`
	Payload *Clip     `json:"payload"`
}

// NewClipEvent builds the announcement for a persisted clip.
func NewClipEvent(clip *Clip) Event {
	return Event{Kind: EventNewClip, Payload: clip}
}
