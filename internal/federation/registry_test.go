package federation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholinfra-service/internal/config"
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

// rewriteTransport sends every request to target and remembers the host
// each request was originally addressed to.
type rewriteTransport struct {
	target *url.URL

	mu    sync.Mutex
	hosts []string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.hosts = append(rt.hosts, req.URL.Host)
	rt.mu.Unlock()

	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newStubbedRegistry(t *testing.T, cfg *config.Config, handler http.HandlerFunc, opts ...Option) (*Registry, *rewriteTransport) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	rt := &rewriteTransport{target: target}

	opts = append([]Option{WithHTTPClient(scholinfra.NewHTTPClient(scholinfra.HTTPClientConfig{
		RateLimit: 100,
		Transport: rt,
	}))}, opts...)
	return New(cfg, zerolog.Nop(), opts...), rt
}

func TestNew(t *testing.T) {
	reg := New(&config.Config{}, zerolog.Nop())

	require.NotNil(t, reg.EuropePMC)
	require.NotNil(t, reg.OpenAIRE)
	require.NotNil(t, reg.SemanticScholar)
	require.NotNil(t, reg.Unpaywall)
	require.NotNil(t, reg.Dissemin)
	require.NotNil(t, reg.Dimensions)
	require.NotNil(t, reg.RePEc)

	providers := reg.Providers()
	require.Len(t, providers, len(domain.AllProviders()))
	for i, name := range domain.AllProviders() {
		assert.Equal(t, name, providers[i].ProviderName())
	}
}

func TestRegistry_Get(t *testing.T) {
	reg := New(&config.Config{}, zerolog.Nop())

	p, err := reg.Get("EuropePMC")
	require.NoError(t, err)
	assert.Equal(t, "EuropePMC", p.Name())

	p, err = reg.Get("semantic")
	require.NoError(t, err)
	assert.Equal(t, "Semantic Scholar", p.Name())

	p, err = reg.Get("crossref")
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, domain.ErrUnknownProvider))
}

func TestRegistry_CapabilityAccessors(t *testing.T) {
	reg := New(&config.Config{}, zerolog.Nop())

	tests := []struct {
		name     string
		provider string
		get      func(string) error
		wantErr  error
	}{
		{"europepmc title search", "europepmc", func(n string) error { _, err := reg.TitleSearcher(n); return err }, nil},
		{"openaire title search", "openaire", func(n string) error { _, err := reg.TitleSearcher(n); return err }, nil},
		{"dimensions title search", "dimensions", func(n string) error { _, err := reg.TitleSearcher(n); return err }, nil},
		{"semantic lookup", "semantic", func(n string) error { _, err := reg.PublicationLookuper(n); return err }, nil},
		{"unpaywall lookup", "unpaywall", func(n string) error { _, err := reg.PublicationLookuper(n); return err }, nil},
		{"dissemin lookup", "dissemin", func(n string) error { _, err := reg.PublicationLookuper(n); return err }, nil},
		{"dimensions full text", "dimensions", func(n string) error { _, err := reg.FullTextSearcher(n); return err }, nil},
		{"repec handles", "repec", func(n string) error { _, err := reg.HandleResolver(n); return err }, nil},

		{"europepmc has no lookup", "europepmc", func(n string) error { _, err := reg.PublicationLookuper(n); return err }, domain.ErrCapabilityUnsupported},
		{"semantic has no title search", "semantic", func(n string) error { _, err := reg.TitleSearcher(n); return err }, domain.ErrCapabilityUnsupported},
		{"openaire has no full text", "openaire", func(n string) error { _, err := reg.FullTextSearcher(n); return err }, domain.ErrCapabilityUnsupported},
		{"dimensions has no handles", "dimensions", func(n string) error { _, err := reg.HandleResolver(n); return err }, domain.ErrCapabilityUnsupported},
		{"unknown provider", "nowhere", func(n string) error { _, err := reg.TitleSearcher(n); return err }, domain.ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get(tt.provider)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRegistry_CredentialsReachClients(t *testing.T) {
	cfg := &config.Config{Credentials: config.CredentialsConfig{Email: "me@example.org"}}

	var gotQuery url.Values
	reg, rt := newStubbedRegistry(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"doi": "10.1/x", "is_oa": true}`))
	})

	lookuper, err := reg.PublicationLookuper("unpaywall")
	require.NoError(t, err)

	result, err := lookuper.PublicationLookup(context.Background(), "10.1/x")
	require.NoError(t, err)

	assert.Equal(t, "me@example.org", gotQuery.Get("email"))
	assert.Equal(t, true, mustGet(t, result.Record, "is_oa"))
	assert.Equal(t, []string{"api.unpaywall.org"}, rt.hosts)
}

func TestRegistry_MissingCredentialsFailAtCallTime(t *testing.T) {
	reg, rt := newStubbedRegistry(t, &config.Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	resolver, err := reg.HandleResolver("repec")
	require.NoError(t, err)

	_, err = resolver.GetMeta(context.Background(), "RePEc:x")
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, config.KeyRePEcToken, cfgErr.Key)
	assert.Empty(t, rt.hosts)
}

func TestRegistry_SharedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsWithRegistry("test", reg)

	registry, _ := newStubbedRegistry(t, &config.Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "x"}`))
	}, WithMetrics(metrics))

	_, err := registry.SemanticScholar.PublicationLookup(context.Background(), "10.1/x")
	require.NoError(t, err)
	_, err = registry.Dissemin.PublicationLookup(context.Background(), "10.1/x")
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProviderCallsTotal.WithLabelValues("Semantic Scholar", "publication_lookup")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProviderCallsTotal.WithLabelValues("dissemin", "publication_lookup")))
}

func mustGet(t *testing.T, rec *domain.Record, key string) any {
	t.Helper()
	v, ok := rec.Get(key)
	require.True(t, ok, "missing %q", key)
	return v
}
