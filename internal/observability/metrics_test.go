package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: NewMetrics registers with the default registry, so tests that use it
// need unique namespaces to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_scholapi_new")

	assert.NotNil(t, m.ProviderCallsTotal)
	assert.NotNil(t, m.ProviderCallsFailed)
	assert.NotNil(t, m.ProviderCallDuration)
	assert.NotNil(t, m.ProviderNoMatch)
	assert.NotNil(t, m.ProviderRateLimited)
	assert.NotNil(t, m.ProviderThrottled)
	assert.NotNil(t, m.GatewayRequestsTotal)
	assert.NotNil(t, m.GatewayRequestDuration)
}

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry("scholapi", reg)

	m.RecordProviderCall("EuropePMC", "title_search", 0.1)

	count, err := testutil.GatherAndCount(reg, "scholapi_provider_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The same namespace can be registered again on a fresh registry.
	assert.NotPanics(t, func() {
		NewMetricsWithRegistry("scholapi", prometheus.NewRegistry())
	})
}

func TestRecordProviderCall(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordProviderCall("OpenAIRE", "title_search", 0.25)
	m.RecordProviderCall("OpenAIRE", "title_search", 0.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues("OpenAIRE", "title_search")))

	histCount, err := getHistogramSampleCount(m.ProviderCallDuration.WithLabelValues("OpenAIRE", "title_search").(prometheus.Histogram))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), histCount)
}

func TestRecordProviderCallFailed(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordProviderCallFailed("Unpaywall", "publication_lookup", "transport")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderCallsFailed.WithLabelValues("Unpaywall", "publication_lookup", "transport")))
}

func TestRecordProviderNoMatch(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordProviderNoMatch("RePEc", "get_handle")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderNoMatch.WithLabelValues("RePEc", "get_handle")))
}

func TestRecordProviderRateLimited(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordProviderRateLimited("Semantic Scholar")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderRateLimited.WithLabelValues("Semantic Scholar")))
}

func TestRecordProviderThrottled(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordProviderThrottled("dissemin")
	m.RecordProviderThrottled("dissemin")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ProviderThrottled.WithLabelValues("dissemin")))
}

func TestRecordGatewayRequest(t *testing.T) {
	m := NewMetricsWithRegistry("test", prometheus.NewRegistry())

	m.RecordGatewayRequest("/api/v1/providers", "GET", 200, 0.01)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GatewayRequestsTotal.WithLabelValues("/api/v1/providers", "GET", "200")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordProviderCall("x", "y", 1)
		m.RecordProviderCallFailed("x", "y", "z")
		m.RecordProviderNoMatch("x", "y")
		m.RecordProviderRateLimited("x")
		m.RecordProviderThrottled("x")
		m.RecordGatewayRequest("/", "GET", 200, 1)
	})
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
