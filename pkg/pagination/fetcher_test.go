package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/macrostat/worldbank-client/internal/testutil"
	"github.com/macrostat/worldbank-client/pkg/chunk"
	"github.com/macrostat/worldbank-client/pkg/client"
	"github.com/macrostat/worldbank-client/pkg/envelope"
)

func newTestFetcher(t *testing.T, mock *testutil.MockAPI) *Fetcher {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.Endpoint = mock.URL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return NewFetcher(c)
}

func makeRecords(n int) []map[string]any {
	records := make([]map[string]any, n)
	for i := range records {
		records[i] = map[string]any{"id": fmt.Sprintf("REC%04d", i)}
	}
	return records
}

// A total of 2500 with per_page 1000 must issue exactly 3 page requests and
// yield exactly 2500 records in page and intra-page order.
func TestFetch_PagesThroughAllRecords(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondPaged("/en/country", makeRecords(2500))

	f := newTestFetcher(t, mock)

	var got []string
	for rec, err := range f.Fetch(context.Background(), "country", nil, Options{}) {
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		got = append(got, rec["id"].(string))
	}

	if len(got) != 2500 {
		t.Fatalf("expected 2500 records, got %d", len(got))
	}
	for i, id := range got {
		if want := fmt.Sprintf("REC%04d", i); id != want {
			t.Fatalf("record %d out of order: got %s, want %s", i, id, want)
		}
	}

	if mock.RequestCount != 3 {
		t.Errorf("expected 3 page requests, got %d", mock.RequestCount)
	}
	for i, uri := range mock.Requests() {
		if !strings.Contains(uri, fmt.Sprintf("page=%d", i+1)) {
			t.Errorf("request %d missing page=%d: %s", i, i+1, uri)
		}
		if !strings.Contains(uri, "format=json") {
			t.Errorf("request %d missing format=json: %s", i, uri)
		}
	}
}

// Abandoning iteration after the first record must not fetch further pages.
func TestFetch_LazyPageBoundaries(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondPaged("/en/country", makeRecords(2500))

	f := newTestFetcher(t, mock)

	for rec, err := range f.Fetch(context.Background(), "country", nil, Options{}) {
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		_ = rec
		break
	}

	if mock.RequestCount != 1 {
		t.Errorf("expected 1 request after early abandon, got %d", mock.RequestCount)
	}
}

func TestFetch_ErrorEndsSequence(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondJSON("/en/broken", 503, `unused`)

	f := newTestFetcher(t, mock)

	var lastErr error
	count := 0
	for rec, err := range f.Fetch(context.Background(), "broken", nil, Options{}) {
		if err != nil {
			lastErr = err
			continue
		}
		_ = rec
		count++
	}

	if count != 0 {
		t.Errorf("expected no records, got %d", count)
	}
	if !client.IsClass(lastErr, client.ErrorClassTransport) {
		t.Errorf("expected transport error, got %v", lastErr)
	}
	if mock.RequestCount != 1 {
		t.Errorf("expected no retries, got %d requests", mock.RequestCount)
	}
}

func TestGetOne(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondPaged("/en/country/BRA", makeRecords(1))

	f := newTestFetcher(t, mock)

	rec, err := f.GetOne(context.Background(), "country/BRA", nil, Options{})
	if err != nil {
		t.Fatalf("GetOne failed: %v", err)
	}
	if rec == nil || rec["id"] != "REC0000" {
		t.Errorf("unexpected record: %v", rec)
	}

	uris := mock.Requests()
	if len(uris) != 1 || !strings.Contains(uris[0], "per_page=1") || !strings.Contains(uris[0], "page=1") {
		t.Errorf("GetOne must force page=1 and per_page=1: %v", uris)
	}
}

func TestGetOne_EmptyPayload(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondPaged("/en/country/XYZ", nil)

	f := newTestFetcher(t, mock)

	rec, err := f.GetOne(context.Background(), "country/XYZ", nil, Options{})
	if err != nil {
		t.Fatalf("GetOne failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for empty payload, got %v", rec)
	}
}

func TestFetchMany_ConcatenatesChunksInOrder(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	// A ceiling low enough to force the series list into several chunks.
	cfg := client.DefaultConfig()
	cfg.Endpoint = mock.URL()
	cfg.MaxURLLen = 40
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	f := NewFetcher(c)

	series := make([]string, 8)
	for i := range series {
		series[i] = fmt.Sprintf("IND.%04d", i)
	}

	// Each chunked request serves one record per series id in its path.
	mock.Handle("/en/data/", func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(strings.TrimPrefix(r.URL.Path, "/en/data/"), ";")
		records := make([]any, len(ids))
		for i, id := range ids {
			records[i] = map[string]any{"id": id}
		}
		body := []any{
			map[string]any{"page": 1, "pages": 1, "per_page": 1000, "total": len(ids)},
			records,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	bindings := map[string]string{"series": strings.Join(series, ";")}
	var got []string
	for rec, ferr := range f.FetchMany(context.Background(), "data/{series}", []string{"series"}, bindings, nil, Options{}) {
		if ferr != nil {
			t.Fatalf("FetchMany failed: %v", ferr)
		}
		got = append(got, rec["id"].(string))
	}

	if len(got) != len(series) {
		t.Fatalf("expected %d records, got %d", len(series), len(got))
	}
	for i := range series {
		if got[i] != series[i] {
			t.Fatalf("record %d out of order: got %s, want %s", i, got[i], series[i])
		}
	}
	if mock.RequestCount < 2 {
		t.Errorf("expected the series list to be chunked into several requests, got %d", mock.RequestCount)
	}
}

func TestFetchMany_URLTooLong(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	cfg := client.DefaultConfig()
	cfg.Endpoint = mock.URL()
	cfg.MaxURLLen = 10
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	f := NewFetcher(c)

	bindings := map[string]string{"series": strings.Repeat("S", 40)}
	var lastErr error
	for _, ferr := range f.FetchMany(context.Background(), "data/{series}", []string{"series"}, bindings, nil, Options{}) {
		lastErr = ferr
	}

	if !errors.Is(lastErr, chunk.ErrURLTooLong) {
		t.Fatalf("expected ErrURLTooLong, got %v", lastErr)
	}
	if !strings.Contains(lastErr.Error(), "parameters exceed the API's maximum limit") {
		t.Errorf("expected user-facing message, got %q", lastErr.Error())
	}
	if !strings.Contains(lastErr.Error(), "data/{series}") {
		t.Errorf("error must name the offending template, got %q", lastErr.Error())
	}
	if mock.RequestCount != 0 {
		t.Errorf("no requests expected on chunking failure, got %d", mock.RequestCount)
	}
}

func TestFetch_LangAndPerPageOverrides(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.RespondPaged("/es/country", makeRecords(2))

	f := newTestFetcher(t, mock)

	var got []envelope.Record
	for rec, err := range f.Fetch(context.Background(), "country", url.Values{}, Options{Lang: "es", PerPage: 2}) {
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	uris := mock.Requests()
	if len(uris) != 1 || !strings.HasPrefix(uris[0], "/es/country") || !strings.Contains(uris[0], "per_page=2") {
		t.Errorf("overrides not applied: %v", uris)
	}
}
