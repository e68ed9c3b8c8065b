// Package scholinfra provides the shared contract and plumbing for
// scholarly-infrastructure provider clients.
//
// This package defines the capability interfaces every provider client
// implements, the per-call result wrappers that carry wall-clock timing, the
// title normalizer used to validate search candidates, and the rate-limited
// HTTP transport. Each provider (EuropePMC, OpenAIRE, Semantic Scholar,
// Unpaywall, dissemin, Dimensions, RePEc) lives in its own subpackage.
//
// Example usage:
//
//	client := europepmc.New(europepmc.Config{}, scholinfra.Options{Logger: logger})
//	result, err := client.TitleSearch(ctx, "Attention Is All You Need")
//	if err == nil && result.Found() {
//		fmt.Println(result.Record.String("doi"), result.ElapsedMillis())
//	}
package scholinfra

import (
	"context"
	"slices"
	"time"

	"github.com/helixir/scholinfra-service/internal/domain"
)

// Capability names one kind of lookup a provider supports.
type Capability string

const (
	CapabilityTitleSearch       Capability = "title_search"
	CapabilityPublicationLookup Capability = "publication_lookup"
	CapabilityFullTextSearch    Capability = "full_text_search"
	CapabilityHandleLookup      Capability = "handle_lookup"
)

// Operation names one instrumented provider call. It is the "operation"
// label on metrics and log entries.
type Operation string

const (
	OpTitleSearch       Operation = "title_search"
	OpPublicationLookup Operation = "publication_lookup"
	OpFullTextSearch    Operation = "full_text_search"
	OpGetHandle         Operation = "get_handle"
	OpGetMeta           Operation = "get_meta"
)

// Provider is implemented by every provider client.
type Provider interface {
	// Name returns the human-readable provider name, e.g. "EuropePMC".
	Name() string

	// ProviderName returns the registry key for the provider.
	ProviderName() domain.ProviderName

	// Capabilities lists the lookups this provider supports.
	Capabilities() []Capability
}

// TitleSearcher finds the record whose title matches a query title.
type TitleSearcher interface {
	Provider

	// TitleSearch queries the provider by title. Candidates whose titles do
	// not match the query under TitlesMatch are discarded; when none match,
	// the result holds an empty record and the error is nil.
	TitleSearch(ctx context.Context, title string) (*Result, error)
}

// PublicationLookuper fetches metadata by identifier, typically a DOI.
type PublicationLookuper interface {
	Provider

	// PublicationLookup returns the provider's JSON body verbatim as a record.
	PublicationLookup(ctx context.Context, identifier string) (*Result, error)
}

// FullTextSearcher runs an unfiltered full-text search.
type FullTextSearcher interface {
	Provider

	// FullTextSearch returns every record the provider reports for term.
	FullTextSearch(ctx context.Context, term string) (*SearchResult, error)
}

// Credentials supplies account secrets by configuration key.
// *config.Config implements it.
type Credentials interface {
	// Require returns the value under key or a *domain.ConfigurationError
	// when it is unset.
	Require(key string) (string, error)
}

// HandleResolver resolves a title to a provider handle, then the handle to
// metadata.
type HandleResolver interface {
	Provider

	// GetHandle discovers the handle of the first hit for title. An empty
	// handle with zero duration means no hit.
	GetHandle(ctx context.Context, title string) (*HandleResult, error)

	// GetMeta fetches metadata for a handle.
	GetMeta(ctx context.Context, handle string) (*Result, error)

	// Lookup chains GetHandle and GetMeta. GetMeta is never invoked when no
	// handle was found.
	Lookup(ctx context.Context, title string) (*LookupResult, error)
}

// HasCapability reports whether p declares c.
func HasCapability(p Provider, c Capability) bool {
	return slices.Contains(p.Capabilities(), c)
}

// Result is the outcome of a single-record call.
type Result struct {
	// Record holds the normalized fields. It is empty, never nil, when a
	// title search found no match.
	Record *domain.Record

	// Duration is the wall-clock time of the call, network plus parsing.
	Duration time.Duration
}

// Found reports whether the call produced any fields.
func (r *Result) Found() bool {
	return r != nil && !r.Record.IsEmpty()
}

// ElapsedMillis returns the call duration in milliseconds.
func (r *Result) ElapsedMillis() float64 {
	if r == nil {
		return 0
	}
	return millis(r.Duration)
}

// SearchResult is the outcome of a multi-record call.
type SearchResult struct {
	Records  []*domain.Record
	Duration time.Duration
}

// ElapsedMillis returns the call duration in milliseconds.
func (r *SearchResult) ElapsedMillis() float64 {
	if r == nil {
		return 0
	}
	return millis(r.Duration)
}

// HandleResult is the outcome of a handle discovery.
type HandleResult struct {
	Handle   string
	Duration time.Duration
}

// Found reports whether a handle was discovered.
func (r *HandleResult) Found() bool {
	return r != nil && r.Handle != ""
}

// ElapsedMillis returns the call duration in milliseconds.
func (r *HandleResult) ElapsedMillis() float64 {
	if r == nil {
		return 0
	}
	return millis(r.Duration)
}

// LookupResult is the outcome of a chained handle and metadata lookup.
// Duration is the sum of both calls.
type LookupResult struct {
	Handle   string
	Record   *domain.Record
	Duration time.Duration
}

// Found reports whether metadata was retrieved.
func (r *LookupResult) Found() bool {
	return r != nil && r.Handle != "" && r.Record != nil
}

// ElapsedMillis returns the combined duration in milliseconds.
func (r *LookupResult) ElapsedMillis() float64 {
	if r == nil {
		return 0
	}
	return millis(r.Duration)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
