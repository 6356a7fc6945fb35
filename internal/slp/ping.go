package slp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/Tnze/go-mc/chat"
	mcnet "github.com/Tnze/go-mc/net"
	"github.com/Tnze/go-mc/net/packet"
)

const (
	// protocolVersion -1 asks the server to report its own version.
	protocolVersion = -1

	packetHandshake = 0x00
	packetStatus    = 0x00
	nextStateStatus = 1
)

// ErrUnreachable wraps dial failures: the server is down or not listening.
var ErrUnreachable = errors.New("server unreachable")

type (
	// Response is the status document returned by a server.
	Response struct {
		Version     Version         `json:"version"`
		Players     Players         `json:"players"`
		Description json.RawMessage `json:"description"`
		Favicon     string          `json:"favicon"`
	}

	// Version names the server software and protocol.
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	}

	// Players holds the player counts and an optional sample.
	Players struct {
		Max    int      `json:"max"`
		Online int      `json:"online"`
		Sample []Sample `json:"sample"`
	}

	// Sample is one listed player.
	Sample struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
)

// DescriptionText flattens the description, which servers send as a plain
// string, a chat component with nested "extra" parts (objects or strings),
// or an array of components. An undecodable description yields "".
func (r Response) DescriptionText() string {
	raw := bytes.TrimSpace(r.Description)
	if len(raw) == 0 {
		return ""
	}

	if raw[0] == '[' {
		var parts []chat.Message
		if err := json.Unmarshal(raw, &parts); err != nil {
			return ""
		}
		var b strings.Builder
		for _, m := range parts {
			b.WriteString(m.ClearString())
		}
		return b.String()
	}

	var m chat.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	return m.ClearString()
}

// Ping performs a Server List Ping against addr ("host:port").
//
// Dial failures wrap [ErrUnreachable]. Any failure after the connection is
// established (bad framing, non-JSON status) is returned as-is. The context
// bounds the whole exchange.
func Ping(ctx context.Context, addr string) (Response, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Response{}, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Response{}, fmt.Errorf("invalid port in %q: %w", addr, err)
	}

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = raw.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}
	// unblock reads if the context is cancelled mid-exchange
	stop := context.AfterFunc(ctx, func() { _ = raw.Close() })
	defer stop()

	conn := mcnet.WrapConn(raw)

	if err := conn.WritePacket(packet.Marshal(
		packetHandshake,
		packet.VarInt(protocolVersion),
		packet.String(host),
		packet.UnsignedShort(port),
		packet.VarInt(nextStateStatus),
	)); err != nil {
		return Response{}, fmt.Errorf("failed to send handshake: %w", err)
	}

	if err := conn.WritePacket(packet.Marshal(packetStatus)); err != nil {
		return Response{}, fmt.Errorf("failed to send status request: %w", err)
	}

	p, err := conn.ReadPacket()
	if err != nil {
		return Response{}, fmt.Errorf("failed to read status response: %w", err)
	}
	if p.ID != packetStatus {
		return Response{}, fmt.Errorf("unexpected packet id 0x%02x", p.ID)
	}

	var body packet.String
	if err := p.Scan(&body); err != nil {
		return Response{}, fmt.Errorf("failed to decode status packet: %w", err)
	}

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return Response{}, fmt.Errorf("invalid status JSON: %w", err)
	}
	return resp, nil
}
