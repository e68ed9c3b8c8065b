// Package europepmc implements title search against the EuropePMC REST API.
package europepmc

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
	"github.com/helixir/scholinfra-service/internal/soup"
)

const (
	// DefaultAPIURL is the EuropePMC search template; the quoted title fills
	// the placeholder.
	DefaultAPIURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/search?query=%s"

	// pdfURLTemplate builds the rendered-PDF link from a PMC identifier.
	pdfURLTemplate = "http://europepmc.org/articles/%s?pdf=render"

	// sourceName is the human-readable name for this provider.
	sourceName = "EuropePMC"
)

// Config contains configuration options for the EuropePMC client.
type Config struct {
	// APIURL is the search URL template.
	// Defaults to DefaultAPIURL if empty.
	APIURL string
}

// Client implements scholinfra.TitleSearcher for EuropePMC.
type Client struct {
	scholinfra.Base
}

// Compile-time check that Client implements scholinfra.TitleSearcher.
var _ scholinfra.TitleSearcher = (*Client)(nil)

// New creates a new EuropePMC client.
func New(cfg Config, opts scholinfra.Options) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Client{
		Base: scholinfra.NewBase(domain.ProviderEuropePMC, sourceName, cfg.APIURL, "", opts),
	}
}

// Capabilities lists the lookups EuropePMC supports.
func (c *Client) Capabilities() []scholinfra.Capability {
	return []scholinfra.Capability{scholinfra.CapabilityTitleSearch}
}

// TitleSearch queries EuropePMC and extracts doi, pmcid, journal, authors,
// and, when a PDF is available, its rendered URL. Every matching result is
// applied in document order, so the last match wins.
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

			return extractMatches(doc, title, log), nil
		})
	if err != nil {
		return nil, err
	}

	if rec.IsEmpty() {
		c.RecordNoMatch(scholinfra.OpTitleSearch)
	}
	return &scholinfra.Result{Record: rec, Duration: elapsed}, nil
}

func extractMatches(doc *soup.Node, title string, log zerolog.Logger) *domain.Record {
	meta := domain.NewRecord()

	for _, result := range doc.FindAll("result", nil) {
		if e := log.Debug(); e.Enabled() {
			e.Str("candidate", result.Pretty()).Msg("search result")
		}

		resultTitle, ok := result.FindText("title")
		if !ok || !scholinfra.TitlesMatch(title, resultTitle) {
			continue
		}

		pmcid := scholinfra.NodeValue(result, "pmcid")
		meta.Set("doi", scholinfra.NodeValue(result, "doi"))
		meta.Set("pmcid", pmcid)
		meta.Set("journal", scholinfra.NodeValue(result, "journaltitle"))
		meta.Set("authors", splitAuthors(scholinfra.NodeValue(result, "authorstring")))

		// The PDF link is keyed by PMCID; without one there is no link.
		if id, _ := pmcid.(string); id != "" && scholinfra.NodeText(result, "haspdf") == "Y" {
			meta.Set("pdf", fmt.Sprintf(pdfURLTemplate, id))
		}
	}

	return meta
}

// splitAuthors turns EuropePMC's comma-joined author string into a list.
func splitAuthors(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return strings.Split(s, ", ")
}
