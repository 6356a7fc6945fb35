package dockerscan

import "testing"

func TestFilter(t *testing.T) {
	containers := []Container{
		{Name: "survival", Image: "itzg/minecraft-server:java21", State: "running"},
		{Name: "db", Image: "postgres:16", State: "running"},
		{Name: "hidden", Image: "itzg/minecraft-server", Labels: map[string]string{HideLabel: "1"}},
		{Name: "creative", Image: "docker.io/itzg/minecraft-server:latest", State: "exited"},
	}

	got := Filter(containers, "")

	if len(got) != 2 {
		t.Fatalf("Filter() kept %d containers, want 2: %+v", len(got), got)
	}
	if got[0].Name != "creative" || got[1].Name != "survival" {
		t.Errorf("Filter() order = [%s %s], want [creative survival]", got[0].Name, got[1].Name)
	}
}

func TestFilter_CustomImage(t *testing.T) {
	containers := []Container{
		{Name: "a", Image: "itzg/minecraft-server"},
		{Name: "b", Image: "itzg/minecraft-bedrock-server"},
	}

	got := Filter(containers, "minecraft-bedrock")
	if len(got) != 1 || got[0].Name != "b" {
		t.Errorf("Filter() = %+v, want only b", got)
	}
}

func TestContainer_PublicPort(t *testing.T) {
	c := Container{Ports: []Port{
		{PrivatePort: 8123, PublicPort: 8123, Type: "tcp"},
		{PrivatePort: 25565, PublicPort: 0, Type: "tcp"},
		{PrivatePort: 25565, PublicPort: 25570, Type: "udp"},
		{PrivatePort: 25565, PublicPort: 25566, Type: "tcp"},
	}}

	port, ok := c.PublicPort(GamePort)
	if !ok || port != 25566 {
		t.Errorf("PublicPort() = %d, %v, want 25566, true", port, ok)
	}

	if _, ok := (Container{}).PublicPort(GamePort); ok {
		t.Error("PublicPort() on container without ports should be false")
	}
}

func TestContainer_Running(t *testing.T) {
	if !(Container{State: "running"}).Running() {
		t.Error("running container reported not running")
	}
	if (Container{State: "exited"}).Running() {
		t.Error("exited container reported running")
	}
}
