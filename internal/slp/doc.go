// Package slp implements the client side of the Minecraft Server List Ping:
// a handshake packet followed by a status request, answered with a JSON
// status document.
//
// Packets are framed and encoded with go-mc's net and packet packages.
package slp
