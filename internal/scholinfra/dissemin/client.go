// Package dissemin implements publication lookup against the dissem.in API.
package dissemin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const (
	// DefaultAPIURL is the DOI lookup template.
	DefaultAPIURL = "https://dissem.in/api/%s"

	sourceName = "dissemin"
)

// Config contains configuration options for the dissemin client.
type Config struct {
	// APIURL is the lookup URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string
}

// Client implements scholinfra.PublicationLookuper for dissemin.
type Client struct {
	scholinfra.Base
}

// Compile-time check that Client implements scholinfra.PublicationLookuper.
var _ scholinfra.PublicationLookuper = (*Client)(nil)

// New creates a new dissemin client.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Client{
		Base: scholinfra.NewBase(domain.ProviderDissemin, sourceName, cfg.APIURL, "", opts),
	}
}

// Capabilities lists the lookups dissemin supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityPublicationLookup}
}

// PublicationLookup returns dissemin's JSON description of a DOI verbatim.
func (c *Client) PublicationLookup(ctx context.Context, identifier string) (*scholinfra.Result, error) {
	rec, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpPublicationLookup, identifier,
		func(ctx context.Context, _ zerolog.Logger) (*domain.Record, error) {
			return c.FetchRecord(ctx, c.APIURL(identifier))
		})
	if err != nil {
		return nil, err
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}
