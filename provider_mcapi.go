package serverboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// DefaultMCAPIURL is the public mcapi.us API.
const DefaultMCAPIURL = "https://mcapi.us"

// MCAPIProvider looks up status through the mcapi.us API:
//
//	GET <base>/server/status?ip=<host>&port=<port>
//
// Kept for manifests written against the older dashboard.
type MCAPIProvider struct {
	httpProvider
}

type mcapiResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Online  bool   `json:"online"`
	MOTD    string `json:"motd"`
	Favicon string `json:"favicon"`
	Players struct {
		Max int `json:"max"`
		Now int `json:"now"`
	} `json:"players"`
	Server struct {
		Name string `json:"name"`
	} `json:"server"`
}

// NewMCAPIProvider creates an [MCAPIProvider].
func NewMCAPIProvider(opts ...ProviderOption) (*MCAPIProvider, error) {
	base, err := newHTTPProvider(DefaultMCAPIURL, opts)
	if err != nil {
		return nil, err
	}
	return &MCAPIProvider{httpProvider: base}, nil
}

// Name implements [StatusProvider].
func (p *MCAPIProvider) Name() string {
	return "mcapi"
}

// Status implements [StatusProvider].
func (p *MCAPIProvider) Status(ctx context.Context, d ServerDescriptor) (LiveStatus, error) {
	host, port, err := splitTarget(d.QueryTarget)
	if err != nil {
		return LiveStatus{}, err
	}

	q := url.Values{}
	q.Set("ip", host)
	q.Set("port", strconv.Itoa(port))
	endpoint := p.cfg.baseURL + "/server/status?" + q.Encode()

	var resp mcapiResponse
	if err := p.client.GetJSON(ctx, endpoint, p.cfg.timeout, &resp); err != nil {
		return LiveStatus{}, err
	}
	if resp.Status != "success" {
		if resp.Error != "" {
			return LiveStatus{}, fmt.Errorf("mcapi returned status %q: %s", resp.Status, resp.Error)
		}
		return LiveStatus{}, fmt.Errorf("mcapi returned status %q", resp.Status)
	}

	return LiveStatus{
		Online:     resp.Online,
		PlayersNow: resp.Players.Now,
		PlayersMax: resp.Players.Max,
		Software:   resp.Server.Name,
		MOTD:       resp.MOTD,
		Favicon:    resp.Favicon,
	}, nil
}
