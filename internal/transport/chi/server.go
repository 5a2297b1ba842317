// Package chi exposes the discovery engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/request"
	"github.com/dannythehat/eerie-escapes/internal/repository/respcache"
	analyticsuc "github.com/dannythehat/eerie-escapes/internal/usecase/analytics"
	discoveryuc "github.com/dannythehat/eerie-escapes/internal/usecase/discovery"
	healthuc "github.com/dannythehat/eerie-escapes/internal/usecase/health"
	holidayuc "github.com/dannythehat/eerie-escapes/internal/usecase/holiday"
	suggestuc "github.com/dannythehat/eerie-escapes/internal/usecase/suggest"
)

// PopularWindowDays is the fixed trailing window for popular-search rollups.
const PopularWindowDays = 30

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the discovery use cases into chi routes.
type Server struct {
	discovery     *discoveryuc.Service
	suggest       *suggestuc.Service
	analytics     *analyticsuc.Service
	holidays      *holidayuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	suggestLimit  int
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	discovery *discoveryuc.Service,
	suggest *suggestuc.Service,
	analytics *analyticsuc.Service,
	holidays *holidayuc.Service,
	health *healthuc.Service,
	suggestLimit int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		discovery:    discovery,
		suggest:      suggest,
		analytics:    analytics,
		holidays:     holidays,
		health:       health,
		logger:       logger,
		suggestLimit: suggestLimit,
	}
	s.errorHandlers = []errorHandler{
		fieldErrorHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "upstream_unavailable"),
	}
	return s
}

// Routes mounts the public and admin surface onto the router.
// cached builds the response-cache middleware for a TTL tier, limited
// is the rate-limit middleware, adminAuth guards the mutation boundary.
// Listing and search results churn with every mutation and counter
// bump, so they cache short; item detail and suggestions medium; the
// popular-terms rollup moves slowest and caches long.
func (s *Server) Routes(
	r chi.Router,
	cached func(ttl time.Duration) func(http.Handler) http.Handler,
	limited, adminAuth func(http.Handler) http.Handler,
) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Group(func(r chi.Router) {
				r.Use(cached(respcache.TTLShort))
				r.Get("/holidays", s.ListHolidays)
				r.Get("/holidays/search", s.SearchHolidays)
			})
			r.Group(func(r chi.Router) {
				r.Use(cached(respcache.TTLMedium))
				r.Get("/holidays/search/suggestions", s.SearchSuggestions)
				r.Get("/holidays/{idOrSlug}", s.GetHoliday)
			})
			r.Group(func(r chi.Router) {
				r.Use(cached(respcache.TTLLong))
				r.Get("/holidays/search/popular", s.PopularSearches)
			})
		})
		r.Route("/admin/holidays", func(r chi.Router) {
			r.Use(adminAuth)
			r.Put("/{id}", s.UpsertHoliday)
			r.Post("/", s.CreateHoliday)
			r.Delete("/{id}", s.ArchiveHoliday)
		})
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ListHolidays handles GET /api/v1/holidays.
func (s *Server) ListHolidays(w http.ResponseWriter, r *http.Request) {
	req, err := discoveryRequest(r, false)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.discovery.List(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Data:       page.Items,
		Pagination: page.Pagination,
		Filters:    page.Filters,
	})
}

// SearchHolidays handles GET /api/v1/holidays/search. The q parameter
// is required: an unscoped full-catalog "search" is a distinct
// operation from listing.
func (s *Server) SearchHolidays(w http.ResponseWriter, r *http.Request) {
	req, err := discoveryRequest(r, true)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.discovery.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Data:       page.Items,
		Pagination: page.Pagination,
		Filters:    page.Filters,
	})
}

// SearchSuggestions handles GET /api/v1/holidays/search/suggestions.
func (s *Server) SearchSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := intParam(r, "limit", s.suggestLimit)

	suggestions, err := s.suggest.Suggest(r.Context(), q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: suggestions})
}

// PopularSearches handles GET /api/v1/holidays/search/popular.
func (s *Server) PopularSearches(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 10)

	terms, err := s.analytics.PopularTerms(r.Context(), PopularWindowDays, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: terms})
}

// GetHoliday handles GET /api/v1/holidays/{idOrSlug}.
func (s *Server) GetHoliday(w http.ResponseWriter, r *http.Request) {
	item, err := s.discovery.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: item})
}

// CreateHoliday handles POST /api/v1/admin/holidays.
func (s *Server) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	s.upsert(w, r, "")
}

// UpsertHoliday handles PUT /api/v1/admin/holidays/{id}.
func (s *Server) UpsertHoliday(w http.ResponseWriter, r *http.Request) {
	s.upsert(w, r, chi.URLParam(r, "id"))
}

func (s *Server) upsert(w http.ResponseWriter, r *http.Request, id string) {
	var body upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title is required")
		return
	}

	item, err := body.toItem(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	saved, err := s.holidays.Upsert(r.Context(), item)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, dataResponse{Success: true, Data: saved})
}

// ArchiveHoliday handles DELETE /api/v1/admin/holidays/{id} (soft delete).
func (s *Server) ArchiveHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.holidays.Archive(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: map[string]string{"id": id, "status": "ARCHIVED"}})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- request parsing ---

// discoveryRequest builds a validated request from query parameters.
func discoveryRequest(r *http.Request, requireQuery bool) (request.Request, error) {
	q := r.URL.Query()

	raw := filter.Raw{
		Country:     q.Get("country"),
		City:        q.Get("city"),
		Region:      q.Get("region"),
		Theme:       q.Get("theme"),
		Difficulty:  q.Get("difficulty"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		MinPrice:    q.Get("minPrice"),
		MaxPrice:    q.Get("maxPrice"),
		MinDuration: q.Get("minDuration"),
		MaxDuration: q.Get("maxDuration"),
		MinRating:   q.Get("minRating"),
		Status:      q.Get("status"),
	}

	return request.New(
		q.Get("q"),
		raw,
		q.Get("sortBy"),
		q.Get("sortOrder"),
		intParam(r, "page", 1),
		intParam(r, "limit", 0),
		ClientID(r),
		requireQuery,
	)
}

// intParam parses an integer query parameter, falling back to def on
// absence or garbage. Bad page/limit values clamp, never 500.
func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// --- responses ---

type listResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination interface{} `json:"pagination"`
	Filters    interface{} `json:"filters"`
}

type dataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Success: false, Code: code, Message: message})
}

// --- domain error mapping ---

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// fieldErrorHandler surfaces field-level validation messages.
func fieldErrorHandler(w http.ResponseWriter, err error) bool {
	var fe *domain.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid_request", "field "+fe.Field+" "+fe.Msg)
	return true
}

// safeDomainMessage strips wrapped internals, returning only the
// sentinel text so store errors never leak to clients.
func safeDomainMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidRequest,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrUpstreamUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

// --- admin DTO ---

type upsertRequest struct {
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"shortDescription"`
	Theme            string   `json:"theme"`
	Difficulty       string   `json:"difficulty"`
	Status           string   `json:"status"`
	Country          string   `json:"country"`
	City             string   `json:"city"`
	Region           string   `json:"region"`
	BasePrice        float64  `json:"basePrice"`
	Currency         string   `json:"currency"`
	DiscountPrice    *float64 `json:"discountPrice"`
	DurationDays     int      `json:"durationDays"`
	DurationNights   int      `json:"durationNights"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	IsYearRound      bool     `json:"isYearRound"`
	Keywords         []string `json:"keywords"`
}

func (b upsertRequest) toItem(id string) (catalog.Item, error) {
	item := catalog.Item{
		ID:               id,
		Title:            b.Title,
		Subtitle:         b.Subtitle,
		Description:      b.Description,
		ShortDescription: b.ShortDescription,
		Country:          b.Country,
		City:             b.City,
		Region:           b.Region,
		BasePrice:        b.BasePrice,
		Currency:         b.Currency,
		DiscountPrice:    b.DiscountPrice,
		DurationDays:     b.DurationDays,
		DurationNights:   b.DurationNights,
		IsYearRound:      b.IsYearRound,
		Keywords:         b.Keywords,
	}
	if b.Currency == "" {
		item.Currency = "USD"
	}

	if b.Theme != "" {
		t, ok := catalog.ParseTheme(b.Theme)
		if !ok {
			return catalog.Item{}, domain.NewFieldError("theme", "is not a valid theme")
		}
		item.Theme = t
	}
	if b.Difficulty != "" {
		d, ok := catalog.ParseDifficulty(b.Difficulty)
		if !ok {
			return catalog.Item{}, domain.NewFieldError("difficulty", "is not a valid difficulty")
		}
		item.Difficulty = d
	}
	if b.Status != "" {
		st, ok := catalog.ParseStatus(b.Status)
		if !ok {
			return catalog.Item{}, domain.NewFieldError("status", "is not a valid status")
		}
		item.Status = st
	}

	var err error
	if item.StartDate, err = parseOptionalTime("startDate", b.StartDate); err != nil {
		return catalog.Item{}, err
	}
	if item.EndDate, err = parseOptionalTime("endDate", b.EndDate); err != nil {
		return catalog.Item{}, err
	}
	return item, nil
}

func parseOptionalTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, domain.NewFieldError(field, "must be a date (YYYY-MM-DD)")
}
