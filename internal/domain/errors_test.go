package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required")

	assert.Equal(t, "validation error: title: is required", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("repec_token")

	assert.Equal(t, "missing configuration key: repec_token", err.Error())
	assert.True(t, errors.Is(err, ErrMissingConfiguration))

	var cfgErr *ConfigurationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &cfgErr))
	assert.Equal(t, "repec_token", cfgErr.Key)
}

func TestTransportError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := NewTransportError("EuropePMC", "http://x", 503, "service unavailable", nil)

		assert.Equal(t, "EuropePMC transport error (status 503): service unavailable", err.Error())
		assert.True(t, errors.Is(err, ErrTransport))
		assert.Nil(t, err.Unwrap())
	})

	t.Run("without response", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewTransportError("OpenAIRE", "http://x", 0, "request failed", cause)

		assert.Equal(t, "OpenAIRE transport error: request failed: connection refused", err.Error())
		assert.True(t, errors.Is(err, ErrTransport))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("status with cause", func(t *testing.T) {
		err := NewTransportError("RePEc", "http://x?code=secret", 502, "reading response body", errors.New("unexpected EOF"))

		assert.Equal(t, "RePEc transport error (status 502): reading response body: unexpected EOF", err.Error())
		assert.NotContains(t, err.Error(), "secret")
	})
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewParseError("Unpaywall", "decoding response", cause)

	assert.Equal(t, "Unpaywall parse error: decoding response: unexpected end of JSON input", err.Error())
	assert.True(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrTransport))

	bare := NewParseError("RePEc", "no handle in list entry", nil)
	assert.Equal(t, "RePEc parse error: no handle in list entry", bare.Error())
}

func TestProviderError(t *testing.T) {
	inner := NewTransportError("dissemin", "http://x", 500, "boom", nil)
	err := NewProviderError("dissemin", "publication_lookup", "10.1/x", inner)

	assert.Equal(t, `dissemin publication_lookup("10.1/x"): dissemin transport error (status 500): boom`, err.Error())
	assert.True(t, errors.Is(err, ErrTransport))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.StatusCode)
}

func TestParseProviderName(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderName
	}{
		{"europepmc", ProviderEuropePMC},
		{"OpenAIRE", ProviderOpenAIRE},
		{" semantic ", ProviderSemanticScholar},
		{"unpaywall", ProviderUnpaywall},
		{"dissemin", ProviderDissemin},
		{"Dimensions", ProviderDimensions},
		{"repec", ProviderRePEc},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseProviderName("crossref")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestAllProviders(t *testing.T) {
	providers := AllProviders()
	assert.Len(t, providers, 7)
	assert.Equal(t, ProviderEuropePMC, providers[0])
	assert.Equal(t, ProviderRePEc, providers[6])
}
