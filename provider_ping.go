package serverboard

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/jpalmerr/serverboard/internal/slp"
)

// PingProvider queries servers directly with the Minecraft Server List Ping
// instead of going through a third-party API.
//
// A server that cannot be dialed is reported offline. Failures after the
// connection is established are errors.
type PingProvider struct {
	timeout time.Duration
	ping    func(ctx context.Context, addr string) (slp.Response, error)
}

// NewPingProvider creates a [PingProvider]. Only [WithRequestTimeout] applies.
func NewPingProvider(opts ...ProviderOption) (*PingProvider, error) {
	cfg, err := applyProviderOptions("", opts)
	if err != nil {
		return nil, err
	}
	return &PingProvider{timeout: cfg.timeout, ping: slp.Ping}, nil
}

// Name implements [StatusProvider].
func (p *PingProvider) Name() string {
	return "ping"
}

// Status implements [StatusProvider].
func (p *PingProvider) Status(ctx context.Context, d ServerDescriptor) (LiveStatus, error) {
	host, port, err := splitTarget(d.QueryTarget)
	if err != nil {
		return LiveStatus{}, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.ping(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
	if errors.Is(err, slp.ErrUnreachable) {
		return LiveStatus{Online: false}, nil
	}
	if err != nil {
		return LiveStatus{}, err
	}

	return LiveStatus{
		Online:     true,
		PlayersNow: resp.Players.Online,
		PlayersMax: resp.Players.Max,
		Software:   resp.Version.Name,
		MOTD:       resp.DescriptionText(),
		Favicon:    resp.Favicon,
	}, nil
}
