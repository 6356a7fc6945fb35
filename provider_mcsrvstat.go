package serverboard

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// DefaultMCSrvStatURL is the public mcsrvstat.us API.
const DefaultMCSrvStatURL = "https://api.mcsrvstat.us"

// MCSrvStatProvider looks up status through the mcsrvstat.us v2 API:
//
//	GET <base>/2/<address>
//
// This is the default provider.
type MCSrvStatProvider struct {
	httpProvider
}

// mcsrvstatResponse holds the fields of the v2 response that are used.
type mcsrvstatResponse struct {
	Online  *bool `json:"online"`
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
	} `json:"players"`
	Software string `json:"software"`
	Version  string `json:"version"`
	MOTD     struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
	Icon string `json:"icon"`
}

// NewMCSrvStatProvider creates an [MCSrvStatProvider].
//
// Example:
//
//	p, err := serverboard.NewMCSrvStatProvider(
//	    serverboard.WithRequestTimeout(10 * time.Second),
//	)
func NewMCSrvStatProvider(opts ...ProviderOption) (*MCSrvStatProvider, error) {
	base, err := newHTTPProvider(DefaultMCSrvStatURL, opts)
	if err != nil {
		return nil, err
	}
	return &MCSrvStatProvider{httpProvider: base}, nil
}

// Name implements [StatusProvider].
func (p *MCSrvStatProvider) Name() string {
	return "mcsrvstat"
}

// Status implements [StatusProvider].
func (p *MCSrvStatProvider) Status(ctx context.Context, d ServerDescriptor) (LiveStatus, error) {
	endpoint := p.cfg.baseURL + "/2/" + url.PathEscape(d.QueryTarget)

	var resp mcsrvstatResponse
	if err := p.client.GetJSON(ctx, endpoint, p.cfg.timeout, &resp); err != nil {
		return LiveStatus{}, err
	}
	if resp.Online == nil {
		return LiveStatus{}, errors.New("malformed response: missing \"online\"")
	}

	software := resp.Software
	if software == "" {
		software = resp.Version
	}

	return LiveStatus{
		Online:     *resp.Online,
		PlayersNow: resp.Players.Online,
		PlayersMax: resp.Players.Max,
		Software:   software,
		MOTD:       strings.Join(resp.MOTD.Clean, "\n"),
		Favicon:    resp.Icon,
	}, nil
}
