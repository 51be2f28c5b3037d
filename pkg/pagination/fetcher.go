package pagination

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/macrostat/worldbank-client/pkg/chunk"
	"github.com/macrostat/worldbank-client/pkg/client"
	"github.com/macrostat/worldbank-client/pkg/envelope"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for paging operations.
var (
	wbPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wb_pages_fetched_total",
		Help: "Total pages fetched across all queries",
	})

	wbRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wb_records_total",
		Help: "Total records yielded across all queries",
	})
)

// Options adjust a single fetch without touching the client configuration.
type Options struct {
	// Lang overrides the configured language code when non-empty.
	Lang string

	// PerPage overrides the configured page size when > 0.
	PerPage int

	// Concepts requests concept-level records from metadata endpoints
	// instead of the first concept's variable list.
	Concepts bool
}

// Fetcher drives the executor across all pages of a query.
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a paginating fetcher on top of an API client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: log.With().Str("component", "wb-fetcher").Logger(),
	}
}

// Client returns the underlying executor.
func (f *Fetcher) Client() *client.Client {
	return f.client
}

// Fetch iterates over an API query with automatic paging. path is the
// partial URL (minus base endpoint, language, and query string). The
// returned sequence is lazy and not restartable; the first error ends it.
func (f *Fetcher) Fetch(ctx context.Context, path string, params url.Values, opts Options) iter.Seq2[envelope.Record, error] {
	return func(yield func(envelope.Record, error) bool) {
		perPage := opts.PerPage
		if perPage <= 0 {
			perPage = f.client.Config().PerPage
		}

		total := -1
		read := 0
		page := 1

		for total < 0 || read < total {
			q := cloneValues(params)
			q.Set("page", strconv.Itoa(page))
			q.Set("per_page", strconv.Itoa(perPage))
			q.Set("format", "json")

			u := f.client.BuildURL(opts.Lang, path, q)
			header, env, err := f.client.Execute(ctx, u)
			if err != nil {
				yield(nil, err)
				return
			}

			if total < 0 {
				total = header.Total
				f.logger.Debug().
					Str("path", path).
					Int("total", total).
					Msg("Starting paged fetch")
			}

			records, err := env.Records(opts.Concepts)
			if err != nil {
				yield(nil, &client.APIError{
					URL:     u,
					Class:   client.ErrorClassShape,
					Message: err.Error(),
					Err:     err,
				})
				return
			}

			wbPagesFetchedTotal.Inc()
			for _, rec := range records {
				wbRecordsTotal.Inc()
				if !yield(rec, nil) {
					return
				}
			}

			// A header reporting a zero page size would never advance
			// the read count; treat it as end of stream.
			if header.PerPage <= 0 {
				return
			}
			read += header.PerPage
			page++
		}
	}
}

// GetOne returns the first record of a query, or nil if the payload is
// empty. It forces page=1 and per_page=1 so the server does no extra work.
func (f *Fetcher) GetOne(ctx context.Context, path string, params url.Values, opts Options) (envelope.Record, error) {
	q := cloneValues(params)
	q.Set("page", "1")
	q.Set("per_page", "1")
	q.Set("format", "json")

	u := f.client.BuildURL(opts.Lang, path, q)
	_, env, err := f.client.Execute(ctx, u)
	if err != nil {
		return nil, err
	}

	records, err := env.Records(opts.Concepts)
	if err != nil {
		return nil, &client.APIError{
			URL:     u,
			Class:   client.ErrorClassShape,
			Message: err.Error(),
			Err:     err,
		}
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FetchMany expands a URL template whose token bindings may exceed the
// server's length limit into one or more concrete queries and concatenates
// their paginated results into one stream. vars lists the bindings eligible
// for chunking in priority order; their values must be semicolon-delimited
// strings. Chunk order is preserved and chunks are never interleaved.
func (f *Fetcher) FetchMany(ctx context.Context, template string, vars []string, bindings map[string]string, params url.Values, opts Options) iter.Seq2[envelope.Record, error] {
	return func(yield func(envelope.Record, error) bool) {
		maxLen := f.client.Config().MaxURLLen
		for u, err := range chunk.URLs(template, vars, bindings, maxLen) {
			if err != nil {
				if errors.Is(err, chunk.ErrURLTooLong) {
					err = fmt.Errorf("%s: parameters exceed the API's maximum limit: %w", template, err)
				}
				yield(nil, err)
				return
			}
			for rec, ferr := range f.Fetch(ctx, u, params, opts) {
				if !yield(rec, ferr) {
					return
				}
				if ferr != nil {
					return
				}
			}
		}
	}
}

func cloneValues(params url.Values) url.Values {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return q
}
