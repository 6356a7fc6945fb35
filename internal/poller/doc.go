// Package poller drives refresh cycles for the serverboard.
//
// This package is internal to serverboard. It knows nothing about manifests
// or status APIs; it only decides when a cycle runs and how per-server work
// inside a cycle is fanned out.
//
// The main components are:
//
//   - [Scheduler]: runs a cycle immediately, then on every tick, optionally
//     skipping ticks while a cycle is still in flight
//   - [Map]: ordered, bounded fan-out that aborts on the first error
//
// Users of the serverboard library should not need to interact with this
// package directly. Configuration is done through the main serverboard package.
package poller
