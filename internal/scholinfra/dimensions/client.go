// Package dimensions implements title and full-text search against the
// Dimensions Analytics DSL API.
//
// Every query authenticates first: the configured email and password are
// exchanged at auth.json for a token, which is sent as "Authorization: JWT
// <token>" with the DSL query posted to dsl.json.
package dimensions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const (
	// DefaultAPIURL is the base of the Dimensions API; auth.json and
	// dsl.json are resolved against it.
	DefaultAPIURL = "https://app.dimensions.ai/api/"

	titleQueryTemplate    = `search publications in title_only for "\"%s\"" return publications[all]`
	fullTextQueryTemplate = `search publications in full_data for "\"%s\"" return publications[doi+title+journal]`

	sourceName = "Dimensions"
)

// Config contains configuration options for the Dimensions client.
type Config struct {
	// APIURL is the API base URL.
	// Defaults to DefaultAPIURL if empty.
	APIURL string

	// Credentials supplies the account email (the username) and password.
	Credentials scholinfra.Credentials
}

// Client implements scholinfra.TitleSearcher and scholinfra.FullTextSearcher
// for Dimensions.
type Client struct {
	scholinfra.Base
	creds scholinfra.Credentials
}

// Compile-time checks that Client implements its capability interfaces.
var (
	_ scholinfra.TitleSearcher    = (*Client)(nil)
	_ scholinfra.FullTextSearcher = (*Client)(nil)
)

// New creates a new Dimensions client. Missing credentials are reported
// when a query is attempted.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if !strings.HasSuffix(cfg.APIURL, "/") {
		cfg.APIURL += "/"
	}
	if cfg.Credentials == nil {
		cfg.Credentials = &config.Config{}
	}
	return &Client{
		Base:  scholinfra.NewBase(domain.ProviderDimensions, sourceName, cfg.APIURL+"%s", "", opts),
		creds: cfg.Credentials,
	}
}

// Capabilities lists the lookups Dimensions supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{
		scholinfra.CapabilityTitleSearch,
		scholinfra.CapabilityFullTextSearch,
	}
}

// TitleSearch runs a title-only DSL query and returns the first publication
// whose title matches. With no match the record is empty.
func (c *Client) TitleSearch(ctx context.Context, title string) (*scholinfra.Result, error) {
	query := fmt.Sprintf(titleQueryTemplate, escapeQuotes(title))

	rec, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpTitleSearch, title,
		func(ctx context.Context, log zerolog.Logger) (*domain.Record, error) {
			pubs, err := c.runQuery(ctx, query)
			if err != nil {
				return nil, err
			}

			for _, pub := range pubs {
				if scholinfra.TitlesMatch(title, pub.String("title")) {
					log.Debug().Interface("publication", pub).Msg("matched publication")
					return pub, nil
				}
			}
			return domain.NewRecord(), nil
		})
	if err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		c.RecordNoMatch(scholinfra.OpTitleSearch)
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}

// FullTextSearch runs a full-data DSL query and returns every publication,
// each limited to doi, title, and journal.
func (c *Client) FullTextSearch(ctx context.Context, term string) (*scholinfra.SearchResult, error) {
	query := fmt.Sprintf(fullTextQueryTemplate, escapeQuotes(term))

	pubs, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpFullTextSearch, term,
		func(ctx context.Context, _ zerolog.Logger) ([]*domain.Record, error) {
			return c.runQuery(ctx, query)
		})
	if err != nil {
		return nil, err
	}

	if len(pubs) == 0 {
		c.RecordNoMatch(scholinfra.OpFullTextSearch)
	}
	return &scholinfra.SearchResult{Records: pubs, Duration: elapsed}, nil
}

// runQuery authenticates and posts one DSL query.
func (c *Client) runQuery(ctx context.Context, query string) ([]*domain.Record, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "JWT "+token)
	body, err := c.HTTP().PostText(ctx, c.Name(), c.APIURL("dsl.json"), "text/plain; charset=utf-8", query, header)
	if err != nil {
		return nil, err
	}

	var resp dslResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, domain.NewParseError(c.Name(), "decoding DSL response", err)
	}
	if resp.Errors != nil {
		return nil, domain.NewParseError(c.Name(), resp.Errors.message(), nil)
	}

	pubs := make([]*domain.Record, 0, len(resp.Publications))
	for _, raw := range resp.Publications {
		rec, err := c.DecodeRecord(string(raw))
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, rec)
	}
	return pubs, nil
}

// authenticate exchanges the account credentials for a session token.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	email, err := c.creds.Require(config.KeyEmail)
	if err != nil {
		return "", err
	}
	password, err := c.creds.Require(config.KeyDimensionsPassword)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(authRequest{Username: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("encoding auth request: %w", err)
	}

	body, err := c.HTTP().PostText(ctx, c.Name(), c.APIURL("auth.json"), "application/json", string(payload), nil)
	if err != nil {
		return "", err
	}

	var resp authResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", domain.NewParseError(c.Name(), "decoding auth response", err)
	}
	if resp.Token == "" {
		return "", domain.NewParseError(c.Name(), "auth response carried no token", nil)
	}
	return resp.Token, nil
}

// escapeQuotes escapes double quotes for embedding in a DSL phrase.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
