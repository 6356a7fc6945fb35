package serverboard

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrManifest wraps failures to fetch or decode the server manifest.
	ErrManifest = errors.New("manifest fetch failed")

	// ErrStatus wraps failures to fetch live status for a server.
	ErrStatus = errors.New("status fetch failed")
)

// LiveStatus is the point-in-time state of one server as reported by a
// [StatusProvider].
//
// LiveStatus is fetched fresh every cycle and discarded after the summary is
// built. Optional fields are empty strings when the provider has no value.
type LiveStatus struct {
	// Online reports whether the server answered.
	Online bool `json:"online"`

	// PlayersNow is the number of players currently connected.
	PlayersNow int `json:"players_now"`

	// PlayersMax is the configured player limit.
	PlayersMax int `json:"players_max"`

	// Software is the server software / version name (e.g. "Paper 1.20.4").
	Software string `json:"software"`

	// MOTD is the message of the day with formatting codes intact.
	MOTD string `json:"motd,omitempty"`

	// Favicon is a data URI of the server icon.
	Favicon string `json:"favicon,omitempty"`
}

// StatusProvider looks up live status for a server.
//
// Implementations must be safe for concurrent use. An error means the
// lookup itself failed (network, malformed response); a reachable API that
// reports the server as down returns a LiveStatus with Online false.
//
// Built-in providers: [MCSrvStatProvider] (canonical), [MCAPIProvider]
// (historical) and [PingProvider] (direct Server List Ping).
type StatusProvider interface {
	// Name identifies the provider in logs.
	Name() string

	// Status fetches live status for the descriptor's query target.
	Status(ctx context.Context, d ServerDescriptor) (LiveStatus, error)
}

// CycleResult is the outcome of one refresh cycle.
//
// Exactly one of Summaries or Err is meaningful: a successful cycle carries
// the summaries it published, a failed cycle carries the reason and no
// summaries (nothing was published).
type CycleResult struct {
	// ID uniquely identifies the cycle in logs and history.
	ID string

	// StartedAt is when the cycle began.
	StartedAt time.Time

	// Duration is the total time taken by the cycle.
	Duration time.Duration

	// Summaries are the published summaries, in manifest order.
	Summaries []Summary

	// Err is the reason the cycle was aborted; nil on success.
	// Wraps [ErrManifest] or [ErrStatus].
	Err error
}

// OK reports whether the cycle completed and published.
func (r CycleResult) OK() bool {
	return r.Err == nil
}

// Snapshot is the published set of summaries from the most recently
// completed cycle.
type Snapshot struct {
	// CycleID is the [CycleResult.ID] that produced this snapshot.
	// Empty before the first successful cycle.
	CycleID string `json:"cycle_id"`

	// PublishedAt is when the snapshot replaced its predecessor.
	PublishedAt time.Time `json:"published_at"`

	// Summaries are in manifest order.
	Summaries []Summary `json:"servers"`
}
