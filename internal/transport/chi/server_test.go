package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/page"
	"github.com/dannythehat/eerie-escapes/internal/repository/respcache"
	"github.com/dannythehat/eerie-escapes/internal/usecase/suggest"
)

type listEnvelope struct {
	Success    bool           `json:"success"`
	Data       []catalog.Item `json:"data"`
	Pagination page.Meta      `json:"pagination"`
}

func doJSON(t *testing.T, env *testEnv, method, target, body string) (*httptest.ResponseRecorder, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr, rr.Body.Bytes()
}

func TestListHolidays(t *testing.T) {
	env := newTestEnv(
		publishedFixture("h1", "Haunted Prague", nil),
		publishedFixture("h2", "Witch Trials Tour", func(i *catalog.Item) { i.Status = catalog.StatusDraft }),
	)

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rr.Code, body)
	}

	var resp listEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success must be true")
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "h1" {
		t.Errorf("data = %+v, want only the published item", resp.Data)
	}
	if resp.Pagination.Total != 1 || resp.Pagination.Page != 1 {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestListHolidays_FilterAndPagination(t *testing.T) {
	env := newTestEnv(
		publishedFixture("h1", "Haunted Prague", func(i *catalog.Item) { i.BasePrice = 100 }),
		publishedFixture("h2", "Catacomb Crawl", func(i *catalog.Item) { i.BasePrice = 900 }),
	)

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays?maxPrice=500&sortBy=price&sortOrder=asc", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	var resp listEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "h1" {
		t.Errorf("filtered data = %+v", resp.Data)
	}
}

func TestListHolidays_MalformedFilterIs400(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays?minPrice=cheap", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400; body = %s", rr.Code, body)
	}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "invalid_request" || !strings.Contains(resp.Message, "minPrice") {
		t.Errorf("error = %+v, want a field-level message", resp)
	}
}

func TestListHolidays_GarbagePageClampedNot500(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	rr, _ := doJSON(t, env, "GET", "/api/v1/holidays?page=banana&limit=-4", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("garbage paging must clamp, got %d", rr.Code)
	}
}

func TestSearchHolidays_RequiresQuery(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/search", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rr.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Message, "q") {
		t.Errorf("message = %q, must name the missing parameter", resp.Message)
	}
}

func TestSearchHolidays_MatchesAndRecords(t *testing.T) {
	env := newTestEnv(
		publishedFixture("h1", "Haunted Prague", nil),
		publishedFixture("h2", "Sunny Beach", nil),
	)

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/search?q=haunted", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	var resp listEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "h1" {
		t.Errorf("data = %+v", resp.Data)
	}

	env.analytics.Drain()
	terms, err := env.analytics.PopularTerms(context.Background(), 30, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 1 || terms[0].Term != "haunted" {
		t.Errorf("recorded terms = %+v", terms)
	}
}

func TestSearchSuggestions(t *testing.T) {
	env := newTestEnv(
		publishedFixture("h1", "Haunted Prague", func(i *catalog.Item) { i.BookingCount = 5 }),
		publishedFixture("h2", "Haunted Tower", func(i *catalog.Item) { i.BookingCount = 50 }),
	)

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/search/suggestions?q=haunt", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	var resp struct {
		Success bool                 `json:"success"`
		Data    []suggest.Suggestion `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) < 2 || resp.Data[0].Text != "Haunted Tower" {
		t.Errorf("suggestions = %+v, want most-booked first", resp.Data)
	}
}

func TestSearchSuggestions_ShortQueryEmptyList(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/search/suggestions?q=h", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	if !strings.Contains(string(body), `"data":[]`) {
		t.Errorf("body = %s, want an empty array", body)
	}
}

func TestPopularSearches(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	// Two searches, drain, then read popular terms.
	doJSON(t, env, "GET", "/api/v1/holidays/search?q=haunted", "")
	doJSON(t, env, "GET", "/api/v1/holidays/search?q=haunted", "")
	env.analytics.Drain()

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/search/popular", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	if !strings.Contains(string(body), `"term":"haunted"`) {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(string(body), `"searchCount":2`) {
		t.Errorf("body = %s, want rollup count 2", body)
	}
}

func TestGetHoliday_BySlugAndByID(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	for _, ref := range []string{"h1", "haunted-prague"} {
		rr, body := doJSON(t, env, "GET", "/api/v1/holidays/"+ref, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: code = %d", ref, rr.Code)
		}
		if !strings.Contains(string(body), `"id":"h1"`) {
			t.Errorf("GET %s: body = %s", ref, body)
		}
	}
}

func TestGetHoliday_NotFound(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "GET", "/api/v1/holidays/ghost-town", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rr.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "not_found" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestGetHoliday_DraftIs404(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", func(i *catalog.Item) {
		i.Status = catalog.StatusDraft
	}))

	rr, _ := doJSON(t, env, "GET", "/api/v1/holidays/h1", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("draft item must be 404, got %d", rr.Code)
	}
}

func TestCreateHoliday(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "POST", "/api/v1/admin/holidays",
		`{"title":"Catacomb Crawl","theme":"DARK_HISTORY","status":"PUBLISHED","basePrice":450}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rr.Code, body)
	}
	if !strings.Contains(string(body), `"slug":"catacomb-crawl"`) {
		t.Errorf("body = %s, want derived slug", body)
	}
	if env.inv.calls != 1 {
		t.Errorf("invalidations = %d, want 1", env.inv.calls)
	}
}

func TestCreateHoliday_MissingTitle(t *testing.T) {
	env := newTestEnv()

	rr, _ := doJSON(t, env, "POST", "/api/v1/admin/holidays", `{"basePrice":10}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rr.Code)
	}
}

func TestCreateHoliday_BadEnum(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "POST", "/api/v1/admin/holidays", `{"title":"X","theme":"BEACH"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, body = %s", rr.Code, body)
	}
}

func TestUpsertHoliday(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	rr, body := doJSON(t, env, "PUT", "/api/v1/admin/holidays/h1",
		`{"title":"Haunted Prague Deluxe"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rr.Code, body)
	}
	if env.catalog.items["h1"].Title != "Haunted Prague Deluxe" {
		t.Errorf("stored title = %q", env.catalog.items["h1"].Title)
	}
}

func TestArchiveHoliday(t *testing.T) {
	env := newTestEnv(publishedFixture("h1", "Haunted Prague", nil))

	rr, _ := doJSON(t, env, "DELETE", "/api/v1/admin/holidays/h1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	if env.catalog.items["h1"].Status != catalog.StatusArchived {
		t.Errorf("status = %q, want ARCHIVED", env.catalog.items["h1"].Status)
	}
	if env.inv.calls != 1 {
		t.Errorf("invalidations = %d", env.inv.calls)
	}
}

func TestArchiveHoliday_Missing(t *testing.T) {
	env := newTestEnv()

	rr, _ := doJSON(t, env, "DELETE", "/api/v1/admin/holidays/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rr.Code)
	}
}

func TestRoutes_CacheTierPerEndpoint(t *testing.T) {
	ttls := map[string]time.Duration{}
	cached := func(ttl time.Duration) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ttls[r.URL.Path] = ttl
				next.ServeHTTP(w, r)
			})
		}
	}
	env := newTestEnvCached(cached, publishedFixture("h1", "Haunted Tower", nil))

	want := map[string]time.Duration{
		"/api/v1/holidays":                    respcache.TTLShort,
		"/api/v1/holidays/search":             respcache.TTLShort,
		"/api/v1/holidays/search/suggestions": respcache.TTLMedium,
		"/api/v1/holidays/haunted-tower":      respcache.TTLMedium,
		"/api/v1/holidays/search/popular":     respcache.TTLLong,
	}
	for path := range want {
		doJSON(t, env, "GET", path+"?q=haunted", "")
	}
	for path, tier := range want {
		if ttls[path] != tier {
			t.Errorf("%s cached for %v, want %v", path, ttls[path], tier)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv()

	rr, body := doJSON(t, env, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("code = %d", rr.Code)
	}
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
}
