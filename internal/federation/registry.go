// Package federation assembles the provider clients into a single registry.
//
// A Registry is built once per process from the loaded configuration. It
// owns one client per provider, all sharing one rate-limited transport, a
// logger, and an optional metrics sink. The registry is immutable after
// construction and safe for concurrent use.
package federation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
	"github.com/helixir/scholinfra-service/internal/scholinfra/dimensions"
	"github.com/helixir/scholinfra-service/internal/scholinfra/dissemin"
	"github.com/helixir/scholinfra-service/internal/scholinfra/europepmc"
	"github.com/helixir/scholinfra-service/internal/scholinfra/openaire"
	"github.com/helixir/scholinfra-service/internal/scholinfra/repec"
	"github.com/helixir/scholinfra-service/internal/scholinfra/semanticscholar"
	"github.com/helixir/scholinfra-service/internal/scholinfra/unpaywall"
)

// Providers read credentials straight from the loaded configuration.
var _ scholinfra.Credentials = (*config.Config)(nil)

// Option customizes registry construction.
type Option func(*options)

type options struct {
	httpClient *scholinfra.HTTPClient
	metrics    *observability.Metrics
}

// WithHTTPClient replaces the transport built from the [http] settings.
func WithHTTPClient(c *scholinfra.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithMetrics enables per-call metrics on every client.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Registry holds one client per provider.
type Registry struct {
	EuropePMC       *europepmc.Client
	OpenAIRE        *openaire.Client
	SemanticScholar *semanticscholar.Client
	Unpaywall       *unpaywall.Client
	Dissemin        *dissemin.Client
	Dimensions      *dimensions.Client
	RePEc           *repec.Client

	byName map[domain.ProviderName]scholinfra.Provider
}

// New creates every provider client from cfg. Missing credentials do not
// fail construction; the provider that needs one reports it when called.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		httpCfg := scholinfra.HTTPClientConfig{
			Timeout:   cfg.HTTP.Timeout,
			RateLimit: cfg.HTTP.RateLimit,
			BurstSize: cfg.HTTP.Burst,
			UserAgent: cfg.HTTP.UserAgent,
		}
		if o.metrics != nil {
			httpCfg.OnThrottle = o.metrics.RecordProviderThrottled
		}
		o.httpClient = scholinfra.NewHTTPClient(httpCfg)
	}

	shared := scholinfra.Options{
		HTTPClient: o.httpClient,
		Logger:     logger,
		Metrics:    o.metrics,
	}

	r := &Registry{
		EuropePMC:       europepmc.New(europepmc.Config{}, shared),
		OpenAIRE:        openaire.New(openaire.Config{}, shared),
		SemanticScholar: semanticscholar.New(semanticscholar.Config{}, shared),
		Unpaywall:       unpaywall.New(unpaywall.Config{Credentials: cfg}, shared),
		Dissemin:        dissemin.New(dissemin.Config{}, shared),
		Dimensions:      dimensions.New(dimensions.Config{Credentials: cfg}, shared),
		RePEc:           repec.New(repec.Config{Credentials: cfg}, shared),
	}

	r.byName = make(map[domain.ProviderName]scholinfra.Provider, len(domain.AllProviders()))
	for _, p := range []scholinfra.Provider{
		r.EuropePMC, r.OpenAIRE, r.SemanticScholar, r.Unpaywall,
		r.Dissemin, r.Dimensions, r.RePEc,
	} {
		r.byName[p.ProviderName()] = p
	}

	logger.Debug().
		Str("component", "federation").
		Int("providers", len(r.byName)).
		Msg("provider registry initialized")

	return r
}

// Providers returns every client in registration order.
func (r *Registry) Providers() []scholinfra.Provider {
	out := make([]scholinfra.Provider, 0, len(r.byName))
	for _, name := range domain.AllProviders() {
		out = append(out, r.byName[name])
	}
	return out
}

// Get resolves a case-insensitive provider name.
func (r *Registry) Get(name string) (scholinfra.Provider, error) {
	pn, err := domain.ParseProviderName(name)
	if err != nil {
		return nil, err
	}
	p, ok := r.byName[pn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

// TitleSearcher returns the named provider if it supports title search.
func (r *Registry) TitleSearcher(name string) (scholinfra.TitleSearcher, error) {
	return lookup[scholinfra.TitleSearcher](r, name, scholinfra.CapabilityTitleSearch)
}

// PublicationLookuper returns the named provider if it supports lookup by identifier.
func (r *Registry) PublicationLookuper(name string) (scholinfra.PublicationLookuper, error) {
	return lookup[scholinfra.PublicationLookuper](r, name, scholinfra.CapabilityPublicationLookup)
}

// FullTextSearcher returns the named provider if it supports full-text search.
func (r *Registry) FullTextSearcher(name string) (scholinfra.FullTextSearcher, error) {
	return lookup[scholinfra.FullTextSearcher](r, name, scholinfra.CapabilityFullTextSearch)
}

// HandleResolver returns the named provider if it resolves handles.
func (r *Registry) HandleResolver(name string) (scholinfra.HandleResolver, error) {
	return lookup[scholinfra.HandleResolver](r, name, scholinfra.CapabilityHandleLookup)
}

func lookup[T scholinfra.Provider](r *Registry, name string, c scholinfra.Capability) (T, error) {
	var zero T
	p, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := p.(T)
	if !ok || !scholinfra.HasCapability(p, c) {
		return zero, fmt.Errorf("%w: %s does not support %s", domain.ErrCapabilityUnsupported, p.Name(), c)
	}
	return typed, nil
}
