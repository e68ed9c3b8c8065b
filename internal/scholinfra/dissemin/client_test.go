package dissemin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const paperResponse = `{
  "status": "ok",
  "paper": {
    "classification": "OA",
    "title": "Refining the Conceptualization of an Important Future Trend",
    "pdf_url": "http://example.org/paper.pdf",
    "records": [{"doi": "10.1016/j.paid.2009.02.013", "identifier": "oai:crossref.org:10.1016/j.paid.2009.02.013"}]
  }
}`

func TestNew(t *testing.T) {
	client := New(Config{}, scholinfra.Options{Logger: zerolog.Nop()})

	assert.Equal(t, "dissemin", client.Name())
	assert.Equal(t, domain.ProviderDissemin, client.ProviderName())
	assert.Equal(t, "https://dissem.in/api/10.1/x", client.APIURL("10.1/x"))
}

func TestClient_PublicationLookup(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(paperResponse))
	}))
	defer server.Close()

	metrics := observability.NewMetricsWithRegistry("test", prometheus.NewRegistry())
	client := New(Config{APIURL: server.URL + "/api/%s"}, scholinfra.Options{
		HTTPClient: scholinfra.NewHTTPClient(scholinfra.HTTPClientConfig{RateLimit: 100}),
		Logger:     zerolog.Nop(),
		Metrics:    metrics,
	})

	result, err := client.PublicationLookup(context.Background(), "10.1016/j.paid.2009.02.013")
	require.NoError(t, err)

	assert.Equal(t, "/api/10.1016/j.paid.2009.02.013", gotPath)
	assert.Equal(t, "ok", result.Record.String("status"))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(paperResponse), &expected))
	assert.Equal(t, expected, result.Record.Map())

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ProviderCallsTotal.WithLabelValues("dissemin", "publication_lookup")))
}
