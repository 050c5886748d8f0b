package core

import "time"

// Relationship tracks one agent's delegation history toward another agent.
// Entries are created lazily on first delegation of an ordered pair and
// updated in place afterwards; they are never deleted.
type Relationship struct {
	Interactions    int
	Successes       int
	TrustScore      float64
	AvgResponseTime time.Duration
}

// RecordInteraction folds one delegation round trip into the relationship.
// The response-time running average only advances on success, since a
// timeout's elapsed time measures the deadline rather than the peer.
func (r *Relationship) RecordInteraction(success bool, elapsed time.Duration) {
	r.Interactions++
	if success {
		r.Successes++
		r.AvgResponseTime += (elapsed - r.AvgResponseTime) / time.Duration(r.Successes)
	}
	r.TrustScore = float64(r.Successes) / float64(r.Interactions)
}
