package dockerscan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

const (
	// DefaultImage is matched as a substring of the container image.
	DefaultImage = "itzg/minecraft-server"

	// HideLabel excludes a container from the manifest when present.
	HideLabel = "net.forgeserv.hide"

	// NameLabel overrides the display name.
	NameLabel = "net.forgeserv.name"

	// DynmapLabel carries the dynmap URL.
	DynmapLabel = "net.forgeserv.dynmap"

	// PackVersionLabel marks modded servers ("true").
	PackVersionLabel = "net.forgeserv.packver"

	// GamePort is the Minecraft port inside the container.
	GamePort = 25565
)

// Port is a published container port.
type Port struct {
	IP          string
	PrivatePort uint16
	PublicPort  uint16
	Type        string
}

// Container is the subset of container state the manifest needs.
type Container struct {
	ID     string
	Name   string
	Image  string
	State  string
	Labels map[string]string
	Ports  []Port
}

// Running reports whether the container is running.
func (c Container) Running() bool {
	return c.State == "running"
}

// PublicPort returns the host port bound to the given private TCP port.
func (c Container) PublicPort(private uint16) (uint16, bool) {
	for _, p := range c.Ports {
		if p.PrivatePort == private && p.PublicPort != 0 && (p.Type == "" || p.Type == "tcp") {
			return p.PublicPort, true
		}
	}
	return 0, false
}

// Scanner lists containers through the Docker engine API.
type Scanner struct {
	cli *client.Client
}

// NewScanner connects to the engine configured by the environment
// (DOCKER_HOST and friends), negotiating the API version.
func NewScanner() (*Scanner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Scanner{cli: cli}, nil
}

// List returns all containers, running or not.
func (s *Scanner) List(ctx context.Context) ([]Container, error) {
	summaries, err := s.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	containers := make([]Container, 0, len(summaries))
	for _, sum := range summaries {
		c := Container{
			ID:     sum.ID,
			Image:  sum.Image,
			State:  string(sum.State),
			Labels: sum.Labels,
		}
		if len(sum.Names) > 0 {
			c.Name = strings.TrimPrefix(sum.Names[0], "/")
		}
		for _, p := range sum.Ports {
			c.Ports = append(c.Ports, Port{
				IP:          p.IP,
				PrivatePort: p.PrivatePort,
				PublicPort:  p.PublicPort,
				Type:        p.Type,
			})
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// Close releases the engine client.
func (s *Scanner) Close() error {
	return s.cli.Close()
}

// Filter keeps containers whose image contains image and that do not carry
// the hide label, sorted by name for a stable manifest order.
func Filter(containers []Container, image string) []Container {
	if image == "" {
		image = DefaultImage
	}

	var kept []Container
	for _, c := range containers {
		if !strings.Contains(c.Image, image) {
			continue
		}
		if _, hidden := c.Labels[HideLabel]; hidden {
			continue
		}
		kept = append(kept, c)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	return kept
}
