package domain

import "time"

// ViewWindow is the rolling span within which repeat views from the same
// client do not count again. Measured backward from the request time, not
// aligned to calendar boundaries.
const ViewWindow = 24 * time.Hour

// ViewRecord marks that a (clip, client) view was accepted. Append-only;
// records are never mutated and never deleted by the counting path.
type ViewRecord struct {
	ClipID     ClipID    `json:"clip_id"`
	ClientID   ClientID  `json:"client_id"`
	ObservedAt time.Time `json:"observed_at"`
}

// ViewDecision is the transient outcome of evaluating a view request
// against recent records. It is never persisted.
type ViewDecision struct {
	Accepted bool `json:"accepted"`
}
