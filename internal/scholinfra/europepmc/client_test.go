package europepmc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

const attentionResponse = `<?xml version="1.0" encoding="UTF-8"?>
<responseWrapper>
  <version>6.9</version>
  <hitCount>2</hitCount>
  <resultList>
    <result>
      <id>1</id>
      <title>Attention Is Not All You Need.</title>
      <doi>10.9/other</doi>
    </result>
    <result>
      <id>2</id>
      <title>Attention Is All You Need.</title>
      <doi>10.1/x</doi>
      <pmcid>PMC1</pmcid>
      <authorString>A, B, C</authorString>
      <hasPDF>Y</hasPDF>
    </result>
  </resultList>
</responseWrapper>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{APIURL: server.URL + "/search?query=%s"}, scholinfra.Options{
		HTTPClient: scholinfra.NewHTTPClient(scholinfra.HTTPClientConfig{RateLimit: 100}),
		Logger:     zerolog.Nop(),
	})
	return client, server
}

func TestNew(t *testing.T) {
	t.Run("creates client with default values", func(t *testing.T) {
		client := New(Config{}, scholinfra.Options{Logger: zerolog.Nop()})

		require.NotNil(t, client)
		assert.Equal(t, "EuropePMC", client.Name())
		assert.Equal(t, domain.ProviderEuropePMC, client.ProviderName())
		assert.Equal(t, "https://www.ebi.ac.uk/europepmc/webservices/rest/search?query=x", client.APIURL("x"))
		assert.Equal(t, []scholinfra.Capability{scholinfra.CapabilityTitleSearch}, client.Capabilities())
	})
}

func TestClient_TitleSearch(t *testing.T) {
	t.Run("extracts fields from the matching result", func(t *testing.T) {
		var gotQuery string
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(attentionResponse))
		})

		result, err := client.TitleSearch(context.Background(), "Attention Is All You Need")
		require.NoError(t, err)
		require.True(t, result.Found())

		assert.Equal(t, "query=Attention%20Is%20All%20You%20Need", gotQuery)
		assert.Equal(t, []string{"doi", "pmcid", "journal", "authors", "pdf"}, result.Record.Keys())
		assert.Equal(t, "10.1/x", result.Record.String("doi"))
		assert.Equal(t, "PMC1", result.Record.String("pmcid"))

		journal, ok := result.Record.Get("journal")
		assert.True(t, ok)
		assert.Nil(t, journal)

		authors, _ := result.Record.Get("authors")
		assert.Equal(t, []string{"A", "B", "C"}, authors)
		assert.Equal(t, "http://europepmc.org/articles/PMC1?pdf=render", result.Record.String("pdf"))
		assert.GreaterOrEqual(t, result.Duration.Nanoseconds(), int64(0))
	})

	t.Run("later matches overwrite earlier ones", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<responseWrapper><resultList>
<result><title>Same Title</title><doi>10.1/first</doi><journalTitle>J1</journalTitle></result>
<result><title>same title.</title><doi>10.1/second</doi></result>
</resultList></responseWrapper>`))
		})

		result, err := client.TitleSearch(context.Background(), "Same Title")
		require.NoError(t, err)

		assert.Equal(t, "10.1/second", result.Record.String("doi"))
		journal, _ := result.Record.Get("journal")
		assert.Nil(t, journal)
		_, hasPDF := result.Record.Get("pdf")
		assert.False(t, hasPDF)
	})

	t.Run("CDATA and inline markup in titles still match", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<responseWrapper><resultList>
<result><title><![CDATA[Attention Is All You Need.]]></title><doi>10.1/x</doi><journalTitle></journalTitle></result>
<result><title>Deep <i>in vivo</i> imaging</title><doi>10.1/y</doi></result>
</resultList></responseWrapper>`))
		})

		result, err := client.TitleSearch(context.Background(), "Attention Is All You Need")
		require.NoError(t, err)
		require.True(t, result.Found())
		assert.Equal(t, "10.1/x", result.Record.String("doi"))

		journal, ok := result.Record.Get("journal")
		assert.True(t, ok)
		assert.Equal(t, "", journal)

		result, err = client.TitleSearch(context.Background(), "Deep in vivo imaging")
		require.NoError(t, err)
		assert.Equal(t, "10.1/y", result.Record.String("doi"))
	})

	t.Run("PDF flag without PMCID adds no link", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<responseWrapper><resultList>
<result><title>Orphan PDF</title><doi>10.1/z</doi><hasPDF>Y</hasPDF></result>
</resultList></responseWrapper>`))
		})

		result, err := client.TitleSearch(context.Background(), "Orphan PDF")
		require.NoError(t, err)
		require.True(t, result.Found())

		pmcid, ok := result.Record.Get("pmcid")
		assert.True(t, ok)
		assert.Nil(t, pmcid)
		_, hasPDF := result.Record.Get("pdf")
		assert.False(t, hasPDF)
	})

	t.Run("no matching title yields empty record", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<responseWrapper><resultList>
<result><title>Something Else</title><doi>10.1/y</doi></result>
</resultList></responseWrapper>`))
		})

		result, err := client.TitleSearch(context.Background(), "Attention Is All You Need")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Record.IsEmpty())
		assert.False(t, result.Found())
	})

	t.Run("empty result list yields empty record", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<responseWrapper><hitCount>0</hitCount><resultList/></responseWrapper>`))
		})

		result, err := client.TitleSearch(context.Background(), "Nothing")
		require.NoError(t, err)
		assert.True(t, result.Record.IsEmpty())
	})

	t.Run("server error is returned without a result", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		result, err := client.TitleSearch(context.Background(), "Attention Is All You Need")
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrTransport))

		var pe *domain.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "EuropePMC", pe.Provider)
		assert.Equal(t, "title_search", pe.Operation)
	})
}
