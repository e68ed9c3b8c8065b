// Package semanticscholar implements publication lookup against the
// Semantic Scholar paper API.
package semanticscholar

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const (
	// DefaultAPIURL is the paper lookup template; the identifier (DOI,
	// arXiv ID, or Semantic Scholar ID) fills the placeholder as given.
	DefaultAPIURL = "http://api.semanticscholar.org/v1/paper/%s"

	sourceName = "Semantic Scholar"
)

// Config contains configuration options for the Semantic Scholar client.
type Config struct {
	// APIURL is the lookup URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string
}

// Client implements scholinfra.PublicationLookuper for Semantic Scholar.
type Client struct {
	scholinfra.Base
}

// Compile-time check that Client implements scholinfra.PublicationLookuper.
var _ scholinfra.PublicationLookuper = (*Client)(nil)

// New creates a new Semantic Scholar client.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Client{
		Base: scholinfra.NewBase(domain.ProviderSemanticScholar, sourceName, cfg.APIURL, "", opts),
	}
}

// Capabilities lists the lookups Semantic Scholar supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityPublicationLookup}
}

// PublicationLookup fetches the paper record for identifier and returns the
// JSON body verbatim.
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
