package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/helixir/scholinfra-service/internal/domain"
	"github.com/helixir/scholinfra-service/internal/observability"
	"github.com/helixir/scholinfra-service/internal/scholinfra"
)

type titleParams struct {
	Title string `query:"title" validate:"required,max=2000"`
}

type identifierParams struct {
	ID string `query:"id" validate:"required,max=512"`
}

type termParams struct {
	Query string `query:"q" validate:"required,max=2000"`
}

type handleParams struct {
	Handle string `query:"handle" validate:"required,max=512"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

// validateParams checks p and reports the first failing parameter as a
// *domain.ValidationError.
func validateParams(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "is required")
	case "max":
		return domain.NewValidationError(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return domain.NewValidationError(fe.Field(), "is invalid")
	}
}

func queryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// listProviders handles GET /providers.
func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.registry.Providers()
	resp := listProvidersResponse{
		Providers:  make([]providerResponse, 0, len(providers)),
		TotalCount: len(providers),
	}
	for _, p := range providers {
		resp.Providers = append(resp.Providers, providerToResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// titleSearch handles GET /providers/{provider}/title-search?title=.
func (s *Server) titleSearch(w http.ResponseWriter, r *http.Request) {
	params := titleParams{Title: queryParam(r, "title")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	searcher, err := s.registry.TitleSearcher(chi.URLParam(r, "provider"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := searcher.TitleSearch(r.Context(), params.Title)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(searcher.Name(), result))
}

// publicationLookup handles GET /providers/{provider}/lookup?id=.
func (s *Server) publicationLookup(w http.ResponseWriter, r *http.Request) {
	params := identifierParams{ID: queryParam(r, "id")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	lookuper, err := s.registry.PublicationLookuper(chi.URLParam(r, "provider"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := lookuper.PublicationLookup(r.Context(), params.ID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(lookuper.Name(), result))
}

// fullTextSearch handles GET /providers/{provider}/full-text?q=.
func (s *Server) fullTextSearch(w http.ResponseWriter, r *http.Request) {
	params := termParams{Query: queryParam(r, "q")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	searcher, err := s.registry.FullTextSearcher(chi.URLParam(r, "provider"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := searcher.FullTextSearch(r.Context(), params.Query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResultToResponse(searcher.Name(), result))
}

// repecHandle handles GET /repec/handle?title=.
func (s *Server) repecHandle(w http.ResponseWriter, r *http.Request) {
	params := titleParams{Title: queryParam(r, "title")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resolver, err := s.registry.HandleResolver(domain.ProviderRePEc.String())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := resolver.GetHandle(r.Context(), params.Title)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, handleResultToResponse(resolver.Name(), result))
}

// repecMeta handles GET /repec/meta?handle=.
func (s *Server) repecMeta(w http.ResponseWriter, r *http.Request) {
	params := handleParams{Handle: queryParam(r, "handle")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resolver, err := s.registry.HandleResolver(domain.ProviderRePEc.String())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := resolver.GetMeta(r.Context(), params.Handle)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(resolver.Name(), result))
}

// repecLookup handles GET /repec/lookup?title=.
func (s *Server) repecLookup(w http.ResponseWriter, r *http.Request) {
	params := titleParams{Title: queryParam(r, "title")}
	if err := validateParams(params); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resolver, err := s.registry.HandleResolver(domain.ProviderRePEc.String())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := resolver.Lookup(r.Context(), params.Title)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lookupResultToResponse(resolver.Name(), result))
}

// writeDomainError maps domain errors to HTTP status codes and writes the error response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)

	log := observability.LoggerFromContext(r.Context(), s.logger)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request failed")

	writeError(w, status, message)
}

// statusForError returns the response status and client-facing message for err.
func statusForError(err error) (int, string) {
	var (
		verr         *domain.ValidationError
		cfgErr       *domain.ConfigurationError
		transportErr *domain.TransportError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.As(err, &cfgErr):
		// Missing server-side credential.
		return http.StatusServiceUnavailable, cfgErr.Error()
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrCapabilityUnsupported):
		return http.StatusNotImplemented, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.As(err, &transportErr):
		if transportErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, "not found at provider"
		}
		return http.StatusBadGateway, fmt.Sprintf("%s: %s", scholinfra.ErrorType(err), transportErr.Error())
	case errors.Is(err, domain.ErrParse):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
