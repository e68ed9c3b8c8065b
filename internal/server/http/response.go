package httpserver

import (
	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

// Response types for JSON serialization.

type providerResponse struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

type listProvidersResponse struct {
	Providers  []providerResponse `json:"providers"`
	TotalCount int                `json:"total_count"`
}

type recordResponse struct {
	Provider  string         `json:"provider"`
	Found     bool           `json:"found"`
	Record    *domain.Record `json:"record"`
	ElapsedMS float64        `json:"elapsed_ms"`
}

type recordsResponse struct {
	Provider   string           `json:"provider"`
	Records    []*domain.Record `json:"records"`
	TotalCount int              `json:"total_count"`
	ElapsedMS  float64          `json:"elapsed_ms"`
}

type handleResponse struct {
	Provider  string  `json:"provider"`
	Found     bool    `json:"found"`
	Handle    string  `json:"handle"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

type lookupResponse struct {
	Provider  string         `json:"provider"`
	Found     bool           `json:"found"`
	Handle    string         `json:"handle"`
	Record    *domain.Record `json:"record"`
	ElapsedMS float64        `json:"elapsed_ms"`
}

// Converter functions

func providerToResponse(p scholinfra.Provider) providerResponse {
	caps := p.Capabilities()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	return providerResponse{
		Key:          p.ProviderName().String(),
		Name:         p.Name(),
		Capabilities: names,
	}
}

func resultToResponse(provider string, res *scholinfra.Result) recordResponse {
	rec := res.Record
	if rec == nil {
		rec = domain.NewRecord()
	}
	return recordResponse{
		Provider:  provider,
		Found:     res.Found(),
		Record:    rec,
		ElapsedMS: res.ElapsedMillis(),
	}
}

func searchResultToResponse(provider string, res *scholinfra.SearchResult) recordsResponse {
	records := res.Records
	if records == nil {
		records = []*domain.Record{}
	}
	return recordsResponse{
		Provider:   provider,
		Records:    records,
		TotalCount: len(records),
		ElapsedMS:  res.ElapsedMillis(),
	}
}

func handleResultToResponse(provider string, res *scholinfra.HandleResult) handleResponse {
	return handleResponse{
		Provider:  provider,
		Found:     res.Found(),
		Handle:    res.Handle,
		ElapsedMS: res.ElapsedMillis(),
	}
}

func lookupResultToResponse(provider string, res *scholinfra.LookupResult) lookupResponse {
	return lookupResponse{
		Provider:  provider,
		Found:     res.Found(),
		Handle:    res.Handle,
		Record:    res.Record,
		ElapsedMS: res.ElapsedMillis(),
	}
}
