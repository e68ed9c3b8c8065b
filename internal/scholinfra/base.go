package scholinfra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/soup"
)

// Options carries the collaborators shared by every provider client.
type Options struct {
	// HTTPClient is the shared transport. Nil creates one with defaults.
	HTTPClient *HTTPClient

	// Logger receives call diagnostics. Pass zerolog.Nop() to silence it.
	Logger zerolog.Logger

	// Metrics records call counts and durations. Nil disables metrics.
	Metrics *observability.Metrics
}

// Base holds the state common to all provider clients: identity, URL
// templates, transport, and instrumentation. Provider clients embed it.
type Base struct {
	provider domain.ProviderName
	name     string
	apiURL   string
	cgiURL   string
	http     *HTTPClient
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewBase builds the shared client state. cgiURL may be empty for providers
// that have a single endpoint.
func NewBase(provider domain.ProviderName, name, apiURL, cgiURL string, opts Options) Base {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(HTTPClientConfig{})
	}
	return Base{
		provider: provider,
		name:     name,
		apiURL:   apiURL,
		cgiURL:   cgiURL,
		http:     httpClient,
		logger:   opts.Logger.With().Str("component", "scholinfra").Logger(),
		metrics:  opts.Metrics,
	}
}

// Name returns the human-readable provider name.
func (b *Base) Name() string { return b.name }

// ProviderName returns the registry key of the provider.
func (b *Base) ProviderName() domain.ProviderName { return b.provider }

// HTTP returns the shared transport.
func (b *Base) HTTP() *HTTPClient { return b.http }

// Logger returns the client's base logger. Call-scoped fields are added by
// Observe.
func (b *Base) Logger() zerolog.Logger { return b.logger }

// APIURL fills the API template with args in order.
func (b *Base) APIURL(args ...any) string {
	return fmt.Sprintf(b.apiURL, args...)
}

// CGIURL fills the discovery template with args in order.
func (b *Base) CGIURL(args ...any) string {
	return fmt.Sprintf(b.cgiURL, args...)
}

// RecordNoMatch counts a call that completed without a matching record.
func (b *Base) RecordNoMatch(op Operation) {
	b.metrics.RecordProviderNoMatch(b.name, string(op))
}

// DecodeRecord parses a JSON object body, reporting failures as parse errors.
func (b *Base) DecodeRecord(body string) (*domain.Record, error) {
	rec, err := domain.DecodeRecord([]byte(body))
	if err != nil {
		return nil, domain.NewParseError(b.name, "decoding JSON response", err)
	}
	return rec, nil
}

// FetchRecord GETs url and decodes the JSON object body verbatim.
func (b *Base) FetchRecord(ctx context.Context, url string) (*domain.Record, error) {
	body, err := b.http.GetText(ctx, b.name, url)
	if err != nil {
		return nil, err
	}
	return b.DecodeRecord(body)
}

// ParseDocument builds a tag tree from an XML or HTML body. At debug level
// the tree is dumped to log.
func (b *Base) ParseDocument(body string, log zerolog.Logger) (*soup.Node, error) {
	doc, err := soup.ParseString(body)
	if err != nil {
		return nil, domain.NewParseError(b.name, "parsing document", err)
	}
	if e := log.Debug(); e.Enabled() {
		e.Str("document", doc.Pretty()).Msg("parsed document")
	}
	return doc, nil
}

// Observe runs one provider call and instruments it. fn receives a logger
// scoped to the call. On success the value is returned with its wall-clock
// duration and a call metric is recorded. On failure the error is logged,
// counted by type, and returned wrapped in a *domain.ProviderError; the
// value and duration are zero.
func Observe[T any](ctx context.Context, b *Base, op Operation, query string, fn func(ctx context.Context, log zerolog.Logger) (T, error)) (T, time.Duration, error) {
	log := observability.LoggerFromContext(ctx, b.logger)
	log = observability.WithProviderContext(log, b.name, string(op)).With().
		Str("query", query).
		Logger()

	start := time.Now()
	value, err := fn(ctx, log)
	elapsed := time.Since(start)

	if err != nil {
		var zero T
		errType := ErrorType(err)
		if errType == "rate_limited" {
			b.metrics.RecordProviderRateLimited(b.name)
		}
		b.metrics.RecordProviderCallFailed(b.name, string(op), errType)
		log.Error().
			Err(err).
			Str("error_type", errType).
			Float64("elapsed_ms", millis(elapsed)).
			Msg("provider call failed")
		return zero, 0, domain.NewProviderError(b.name, string(op), query, err)
	}

	b.metrics.RecordProviderCall(b.name, string(op), elapsed.Seconds())
	log.Debug().
		Float64("elapsed_ms", millis(elapsed)).
		Msg("provider call completed")

	return value, elapsed, nil
}

// ErrorType classifies err for the error_type metric label.
func ErrorType(err error) string {
	var (
		cfgErr       *domain.ConfigurationError
		parseErr     *domain.ParseError
		transportErr *domain.TransportError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &transportErr):
		switch {
		case transportErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limited"
		case transportErr.StatusCode > 0:
			return "http_status"
		default:
			return "transport"
		}
	default:
		return "unknown"
	}
}

// NodeValue returns the text of the first descendant named tag, or nil when
// the element is absent. A present but empty element yields "".
func NodeValue(n *soup.Node, tag string) any {
	found := n.Find(tag)
	if found == nil {
		return nil
	}
	return found.Text()
}

// NodeText is NodeValue for callers that only need a string; absent
// elements yield "".
func NodeText(n *soup.Node, tag string) string {
	v, _ := NodeValue(n, tag).(string)
	return strings.TrimSpace(v)
}
