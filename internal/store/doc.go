// Package store holds the published snapshot and fans it out to live
// dashboard clients.
//
// This package is internal to serverboard. It keeps exactly one snapshot,
// the output of the most recent successful refresh cycle, and implements a
// publish-subscribe pattern for the SSE and WebSocket streams.
//
// The main components are:
//
//   - [Store]: Interface defining publish and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Snapshot]: Storage representation of a published set
//   - [ServerSummary]: Storage representation of one server card
//
// Publish swaps the whole snapshot at once; readers never observe a mix of
// two cycles. Subscribers receive snapshots via channels with non-blocking
// sends (slow subscribers will miss snapshots rather than block a cycle).
//
// Users of the serverboard library should not need to interact with this
// package directly. Storage is managed internally by the Board.
package store
