// Package repec implements the two-step RePEc lookup: a title is resolved
// to a RePEc handle through the IDEAS search CGI, then the handle is
// resolved to metadata through the RePEc API.
package repec

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
	"github.com/helixir/scholinfra-service/internal/soup"
)

const (
	// DefaultAPIURL is the metadata template; the access token and the
	// handle fill the placeholders in that order.
	DefaultAPIURL = "https://api.repec.org/call.cgi?code=%s&getref=%s"

	// DefaultCGIURL is the IDEAS search template used for handle discovery.
	DefaultCGIURL = "https://ideas.repec.org/cgi-bin/htsearch?q=%s"

	// referencesField holds the entries of an array-shaped metadata body.
	referencesField = "references"

	sourceName = "RePEc"
)

// Config contains configuration options for the RePEc client.
type Config struct {
	// APIURL is the metadata URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string

	// CGIURL is the handle discovery URL template.
	// Defaults to DefaultCGIURL if empty.
	CGIURL string

	// Credentials supplies the RePEc API access code.
	Credentials scholinfra.Credentials
}

// Client implements scholinfra.HandleResolver for RePEc.
type Client struct {
	scholinfra.Base
	creds scholinfra.Credentials
}

// Compile-time check that Client implements scholinfra.HandleResolver.
var _ scholinfra.HandleResolver = (*Client)(nil)

// New creates a new RePEc client. A missing token is reported when
// metadata is requested.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.CGIURL == "" {
		cfg.CGIURL = DefaultCGIURL
	}
	if cfg.Credentials == nil {
		cfg.Credentials = &config.Config{}
	}
	return &Client{
		Base:  scholinfra.NewBase(domain.ProviderRePEc, sourceName, cfg.APIURL, cfg.CGIURL, opts),
		creds: cfg.Credentials,
	}
}

// Capabilities lists the lookups RePEc supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityHandleLookup}
}

// SearchURL builds the discovery URL for title. Parentheses and colons are
// removed before form encoding since the IDEAS search treats them as syntax.
func (c *Client) SearchURL(title string) string {
	cleaned := strings.NewReplacer("(", "", ")", "", ":", "").Replace(title)
	return c.CGIURL(scholinfra.QuotePlus(cleaned))
}

// GetHandle searches IDEAS for title and returns the handle of the first
// hit. The hit's title is not compared with the query. When the page has
// no result list, or the list is empty, the handle is empty and the
// duration is zero.
func (c *Client) GetHandle(ctx context.Context, title string) (*scholinfra.HandleResult, error) {
	handle, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpGetHandle, title,
		func(ctx context.Context, log zerolog.Logger) (string, error) {
			body, err := c.HTTP().GetText(ctx, c.Name(), c.SearchURL(title))
			if err != nil {
				return "", err
			}

			doc, err := c.ParseDocument(body, log)
			if err != nil {
				return "", err
			}

			return c.firstHandle(doc, log)
		})
	if err != nil {
		return nil, err
	}

	if handle == "" {
		c.RecordNoMatch(scholinfra.OpGetHandle)
		return &scholinfra.HandleResult{}, nil
	}
	return &scholinfra.HandleResult{Handle: handle, Duration: elapsed}, nil
}

func (c *Client) firstHandle(doc *soup.Node, log zerolog.Logger) (string, error) {
	list := doc.FindWith("ol", map[string]string{"class": "list-group"})
	entries := list.Descendants()
	if len(entries) == 0 {
		return "", nil
	}

	entry := entries[0]
	if e := log.Debug(); e.Enabled() {
		e.Str("entry", entry.Pretty()).Msg("first search hit")
	}

	italic := entry.Find("i")
	if italic == nil {
		return "", domain.NewParseError(c.Name(), "first search hit carries no handle", nil)
	}
	return strings.TrimSpace(italic.Text()), nil
}

// GetMeta fetches RePEc metadata for handle. A JSON object body is returned
// verbatim; a JSON array body is returned under the "references" field.
func (c *Client) GetMeta(ctx context.Context, handle string) (*scholinfra.Result, error) {
	rec, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpGetMeta, handle,
		func(ctx context.Context, _ zerolog.Logger) (*domain.Record, error) {
			token, err := c.creds.Require(config.KeyRePEcToken)
			if err != nil {
				return nil, err
			}

			body, err := c.HTTP().GetText(ctx, c.Name(), c.APIURL(scholinfra.QuotePlus(token), scholinfra.QuotePlus(handle)))
			if err != nil {
				return nil, err
			}
			return c.decodeMeta(body)
		})
	if err != nil {
		return nil, err
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}

func (c *Client) decodeMeta(body string) (*domain.Record, error) {
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return c.DecodeRecord(body)
	}

	var entries []any
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, domain.NewParseError(c.Name(), "decoding JSON response", err)
	}
	rec := domain.NewRecord()
	rec.Set(referencesField, entries)
	return rec, nil
}

// Lookup resolves title to a handle and the handle to metadata. When no
// handle is found the result is empty and GetMeta is not called.
func (c *Client) Lookup(ctx context.Context, title string) (*scholinfra.LookupResult, error) {
	h, err := c.GetHandle(ctx, title)
	if err != nil {
		return nil, err
	}
	if !h.Found() {
		return &scholinfra.LookupResult{}, nil
	}

	meta, err := c.GetMeta(ctx, h.Handle)
	if err != nil {
		return nil, err
	}

	return &scholinfra.LookupResult{
		Handle:   h.Handle,
		Record:   meta.Record,
		Duration: h.Duration + meta.Duration,
	}, nil
}
