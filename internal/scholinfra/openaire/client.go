// Package openaire implements title search against the OpenAIRE search API.
package openaire

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
	"github.com/helixir/scholinfra-service/internal/soup"
)

const (
	// DefaultAPIURL is the OpenAIRE publication search template.
	DefaultAPIURL = "http://api.openaire.eu/search/publications?title=%s"

	// openAccessClass is the bestaccessright classid of open access results.
	openAccessClass = "OPEN"

	sourceName = "OpenAIRE"
)

// Config contains configuration options for the OpenAIRE client.
type Config struct {
	// APIURL is the search URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string
}

// Client implements scholinfra.TitleSearcher for OpenAIRE.
type Client struct {
	scholinfra.Base
}

// Compile-time check that Client implements scholinfra.TitleSearcher.
var _ scholinfra.TitleSearcher = (*Client)(nil)

// New creates a new OpenAIRE client.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Client{
		Base: scholinfra.NewBase(domain.ProviderOpenAIRE, sourceName, cfg.APIURL, "", opts),
	}
}

// Capabilities lists the lookups OpenAIRE supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityTitleSearch}
}

// TitleSearch queries OpenAIRE and extracts url, authors, and open-access
// status from the first result whose title matches.
func (c *Client) TitleSearch(ctx context.Context, title string) (*scholinfra.Result, error) {
	rec, elapsed, err := scholinfra.Observe(ctx, &c.Base, scholinfra.OpTitleSearch, title,
		func(ctx context.Context, log zerolog.Logger) (*domain.Record, error) {
			body, err := c.HTTP().GetText(ctx, c.Name(), c.APIURL(scholinfra.Quote(title)))
			if err != nil {
				return nil, err
			}

			doc, err := c.ParseDocument(body, log)
			if err != nil {
				return nil, err
			}

			return extractFirstMatch(doc, title), nil
		})
	if err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		c.RecordNoMatch(scholinfra.OpTitleSearch)
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}

func extractFirstMatch(doc *soup.Node, title string) *domain.Record {
	meta := domain.NewRecord()

	for _, result := range doc.FindAll("oaf:result", nil) {
		resultTitle, ok := result.FindText("title")
		if !ok || !scholinfra.TitlesMatch(title, resultTitle) {
			continue
		}

		authors := []string{}
		for _, creator := range result.FindAll("creator", nil) {
			authors = append(authors, strings.TrimSpace(creator.Text()))
		}

		meta.Set("url", scholinfra.NodeValue(result, "url"))
		meta.Set("authors", authors)
		meta.Set("open", len(result.FindAll("bestaccessright", map[string]string{"classid": openAccessClass})) > 0)
		break
	}

	return meta
}
