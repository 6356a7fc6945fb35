package serverboard

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// defaultMinecraftPort is used when a query target carries no port.
const defaultMinecraftPort = 25565

// ServerDescriptor is one configured server from the manifest.
//
// Descriptors are decoded fresh from the manifest on every refresh cycle and
// are never mutated by the board. QueryTarget is the address handed to the
// [StatusProvider]: either "host:port" or a bare host.
type ServerDescriptor struct {
	// ID identifies the server and selects its static assets
	// (/Resources/servers/<id>/cover.png).
	ID string `json:"id" yaml:"id"`

	// Name is the display name shown on the card.
	Name string `json:"name" yaml:"name"`

	// Enabled controls whether the server is polled and published.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// HasPackVer marks modded servers whose MOTD carries a modpack version.
	HasPackVer bool `json:"hasPackVer" yaml:"hasPackVer"`

	// DynmapURL is the optional live map link. Empty when the server has none.
	DynmapURL string `json:"dynmapUrl,omitempty" yaml:"dynmapUrl,omitempty"`

	// QueryTarget is the address used to look up live status.
	QueryTarget string `json:"queryTarget" yaml:"queryTarget"`
}

// manifestEntry is the wire form of a descriptor. It accepts the legacy
// manifest layout where only a port was given and the host was implied.
type manifestEntry struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Enabled     *bool   `json:"enabled" yaml:"enabled"`
	HasPackVer  bool    `json:"hasPackVer" yaml:"hasPackVer"`
	DynmapURL   *string `json:"dynmapUrl" yaml:"dynmapUrl"`
	QueryTarget string  `json:"queryTarget" yaml:"queryTarget"`
	Address     string  `json:"address" yaml:"address"`
	Port        int     `json:"port" yaml:"port"`
}

// manifestDocument is the top-level manifest shape: {"servers": [...]}.
type manifestDocument struct {
	Servers []manifestEntry `json:"servers" yaml:"servers"`
}

// toDescriptor resolves an entry into a [ServerDescriptor].
//
// A missing "enabled" key means enabled. The query target is taken from
// queryTarget, then address, then <defaultHost>:<port>.
func (e manifestEntry) toDescriptor(defaultHost string) (ServerDescriptor, error) {
	if e.ID == "" {
		return ServerDescriptor{}, errors.New("id is required")
	}

	target := e.QueryTarget
	if target == "" {
		target = e.Address
	}
	if target == "" && e.Port > 0 {
		if defaultHost == "" {
			return ServerDescriptor{}, fmt.Errorf("server %q: port given without a default host", e.ID)
		}
		target = net.JoinHostPort(defaultHost, strconv.Itoa(e.Port))
	}
	if target == "" {
		return ServerDescriptor{}, fmt.Errorf("server %q: no query target", e.ID)
	}

	name := e.Name
	if name == "" {
		name = e.ID
	}

	enabled := true
	if e.Enabled != nil {
		enabled = *e.Enabled
	}

	var dynmap string
	if e.DynmapURL != nil {
		dynmap = *e.DynmapURL
	}

	return ServerDescriptor{
		ID:          e.ID,
		Name:        name,
		Enabled:     enabled,
		HasPackVer:  e.HasPackVer,
		DynmapURL:   dynmap,
		QueryTarget: target,
	}, nil
}

// resolveDescriptors converts a decoded manifest into descriptors, keeping
// manifest order and rejecting duplicate ids.
func resolveDescriptors(doc manifestDocument, defaultHost string) ([]ServerDescriptor, error) {
	descriptors := make([]ServerDescriptor, 0, len(doc.Servers))
	seen := make(map[string]struct{}, len(doc.Servers))

	for i, entry := range doc.Servers {
		d, err := entry.toDescriptor(defaultHost)
		if err != nil {
			return nil, fmt.Errorf("servers[%d]: %w", i, err)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("servers[%d]: duplicate server id %q", i, d.ID)
		}
		seen[d.ID] = struct{}{}
		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}

// splitTarget splits a query target into host and port, defaulting the port
// to 25565 when the target is a bare host.
func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// bare host (no port); anything else is malformed
		if _, _, err2 := net.SplitHostPort(target + ":0"); err2 != nil {
			return "", 0, fmt.Errorf("invalid query target %q: %w", target, err)
		}
		return target, defaultMinecraftPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in query target %q", target)
	}
	return host, port, nil
}
