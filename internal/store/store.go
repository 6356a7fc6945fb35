package store

import (
	"slices"
	"time"
)

// ServerSummary is the storage representation of one server card.
//
// ServerSummary is optimized for JSON serialization (used by the REST API,
// SSE and WebSocket). It is decoupled from the public serverboard.Summary
// type to avoid an import cycle.
type ServerSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Title           string `json:"title"`
	Online          bool   `json:"online"`
	StatusLabel     string `json:"status_label"`
	PlayersNow      int    `json:"players_now"`
	PlayersMax      int    `json:"players_max"`
	PlayersText     string `json:"players_text"`
	VersionText     string `json:"version_text"`
	PackVersion     string `json:"pack_version,omitempty"`
	PackVersionText string `json:"pack_version_text,omitempty"`
	MOTD            string `json:"motd,omitempty"`
	CoverURL        string `json:"cover_url"`
	IconURL         string `json:"icon_url"`
	DynmapURL       string `json:"dynmap_url,omitempty"`
	Tooltip         string `json:"tooltip"`
}

// Snapshot is a complete published set.
type Snapshot struct {
	// CycleID identifies the refresh cycle that produced the snapshot.
	// Empty before the first publish.
	CycleID string `json:"cycle_id"`

	// PublishedAt is when the snapshot was published. Zero before the
	// first publish.
	PublishedAt time.Time `json:"published_at"`

	// Servers are in manifest order.
	Servers []ServerSummary `json:"servers"`
}

// SameContent reports whether two snapshots carry identical server cards,
// ignoring cycle id and publish time.
func (s Snapshot) SameContent(other Snapshot) bool {
	return slices.Equal(s.Servers, other.Servers)
}

// Clone returns a copy of the snapshot that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	s.Servers = slices.Clone(s.Servers)
	if s.Servers == nil {
		s.Servers = []ServerSummary{}
	}
	return s
}

// Store defines the interface for publishing and subscribing to snapshots.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Publish replaces the current snapshot and notifies all subscribers.
	Publish(snap Snapshot)

	// Current returns the most recently published snapshot.
	// The returned value is a copy; modifications do not affect the store.
	Current() Snapshot

	// Subscribe returns a channel that receives published snapshots.
	// The returned channel has a buffer; slow consumers may miss snapshots.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
