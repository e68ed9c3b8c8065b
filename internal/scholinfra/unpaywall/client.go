// Package unpaywall implements publication lookup against the Unpaywall API.
// Unpaywall requires a contact email on every request.
package unpaywall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const (
	// DefaultAPIURL is the DOI lookup template; the DOI and contact email
	// fill the placeholders in that order.
	DefaultAPIURL = "https://api.unpaywall.org/v2/%s?email=%s"

	sourceName = "Unpaywall"
)

// Config contains configuration options for the Unpaywall client.
type Config struct {
	// APIURL is the lookup URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string

	// Email is the contact address Unpaywall requires.
	Credentials scholinfra.Credentials
}

// Client implements scholinfra.PublicationLookuper for Unpaywall.
type Client struct {
	scholinfra.Base
	creds scholinfra.Credentials
}

// Compile-time check that Client implements scholinfra.PublicationLookuper.
var _ scholinfra.PublicationLookuper = (*Client)(nil)

// New creates a new Unpaywall client. A missing email is reported when a
// lookup is attempted, not here.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Credentials == nil {
		cfg.Credentials = &config.Config{}
	}
	return &Client{
		Base:  scholinfra.NewBase(domain.ProviderUnpaywall, sourceName, cfg.APIURL, "", opts),
		creds: cfg.Credentials,
	}
}

// Capabilities lists the lookups Unpaywall supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityPublicationLookup}
}

// PublicationLookup fetches the Unpaywall record for a DOI and returns the
// JSON body verbatim.
func (c *Client) PublicationLookup(ctx context.Context, identifier string) (*scholinfra.Result, error) {
	rec, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpPublicationLookup, identifier,
		func(ctx context.Context, _ zerolog.Logger) (*domain.Record, error) {
			email, err := c.creds.Require(config.KeyEmail)
			if err != nil {
				return nil, err
			}
			return c.FetchRecord(ctx, c.APIURL(identifier, scholinfra.QuotePlus(email)))
		})
	if err != nil {
		return nil, err
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}
