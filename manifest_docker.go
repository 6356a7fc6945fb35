package serverboard

import (
	"context"
	"net"
	"strconv"

	"github.com/jpalmerr/serverboard/internal/dockerscan"
)

// containerLister is satisfied by *dockerscan.Scanner.
type containerLister interface {
	List(ctx context.Context) ([]dockerscan.Container, error)
}

// DockerManifest builds the manifest from Minecraft server containers on the
// local Docker engine.
//
// Containers whose image contains "itzg/minecraft-server" are listed unless
// they carry the "net.forgeserv.hide" label. Each container becomes one
// descriptor:
//
//   - ID: the container name
//   - Name: the "net.forgeserv.name" label, or the container name
//   - Enabled: the container is running and publishes port 25565/tcp
//   - QueryTarget: <query host>:<published port>
//   - DynmapURL: the "net.forgeserv.dynmap" label
//   - HasPackVer: the "net.forgeserv.packver" label equals "true"
type DockerManifest struct {
	lister    containerLister
	queryHost string
	image     string
	closer    func() error
}

// NewDockerManifest connects to the Docker engine from the environment.
// queryHost is the host status lookups should use for published ports,
// typically "localhost". image overrides the image match when non-empty.
func NewDockerManifest(queryHost, image string) (*DockerManifest, error) {
	scanner, err := dockerscan.NewScanner()
	if err != nil {
		return nil, err
	}
	if queryHost == "" {
		queryHost = "localhost"
	}
	return &DockerManifest{
		lister:    scanner,
		queryHost: queryHost,
		image:     image,
		closer:    scanner.Close,
	}, nil
}

// Descriptors implements [ManifestSource].
func (m *DockerManifest) Descriptors(ctx context.Context) ([]ServerDescriptor, error) {
	containers, err := m.lister.List(ctx)
	if err != nil {
		return nil, err
	}
	return descriptorsFromContainers(dockerscan.Filter(containers, m.image), m.queryHost), nil
}

// Close releases the Docker client.
func (m *DockerManifest) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}

func descriptorsFromContainers(containers []dockerscan.Container, queryHost string) []ServerDescriptor {
	descriptors := make([]ServerDescriptor, 0, len(containers))
	for _, c := range containers {
		d := ServerDescriptor{
			ID:         c.Name,
			Name:       c.Name,
			DynmapURL:  c.Labels[dockerscan.DynmapLabel],
			HasPackVer: c.Labels[dockerscan.PackVersionLabel] == "true",
		}
		if name := c.Labels[dockerscan.NameLabel]; name != "" {
			d.Name = name
		}

		port, published := c.PublicPort(dockerscan.GamePort)
		if published {
			d.QueryTarget = net.JoinHostPort(queryHost, strconv.Itoa(int(port)))
		}
		d.Enabled = c.Running() && published

		descriptors = append(descriptors, d)
	}
	return descriptors
}
