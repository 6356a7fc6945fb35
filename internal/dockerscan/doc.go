// Package dockerscan lists Minecraft server containers from the local Docker
// engine so they can be used as a server manifest.
//
// The [Scanner] talks to the engine through the Docker SDK and converts the
// SDK's container summaries into the package's own [Container] type; the
// filtering helpers work on that type so they can be tested without a daemon.
package dockerscan
