// Package wbapi provides a convenience layer over the request engine:
// dimension listings, data and metadata queries, and query parameter
// preparation including most-recent-value resolution.
package wbapi

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/macrostat/worldbank-client/pkg/cache"
	"github.com/macrostat/worldbank-client/pkg/envelope"
	"github.com/macrostat/worldbank-client/pkg/metadata"
	"github.com/macrostat/worldbank-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Service wraps a paginating fetcher with dimension-specific helpers.
type Service struct {
	fetcher *pagination.Fetcher
	mrv     cache.Store
	logger  zerolog.Logger
}

// New creates a convenience service. Pass a nil store to use an in-process
// most-recent-value cache.
func New(fetcher *pagination.Fetcher, mrv cache.Store) *Service {
	if mrv == nil {
		mrv = cache.NewMemoryStore()
	}
	return &Service{
		fetcher: fetcher,
		mrv:     mrv,
		logger:  log.With().Str("component", "wb-service").Logger(),
	}
}

// Fetcher returns the underlying paginating fetcher for direct queries.
func (s *Service) Fetcher() *pagination.Fetcher {
	return s.fetcher
}

func (s *Service) database() int {
	return s.fetcher.Client().Config().Database
}

// Sources lists the available databases.
func (s *Service) Sources(ctx context.Context) iter.Seq2[envelope.Record, error] {
	return s.fetcher.Fetch(ctx, "sources", nil, pagination.Options{})
}

// Features lists the elements of one dimension concept of the configured
// database (e.g. "series", "country", "time"). Pass ids to restrict the
// listing; no ids means all.
func (s *Service) Features(ctx context.Context, concept string, ids ...string) iter.Seq2[envelope.Record, error] {
	bindings := map[string]string{
		"source":  strconv.Itoa(s.database()),
		"concept": concept,
		"id":      joinOrAll(ids),
	}
	return s.fetcher.FetchMany(ctx, "sources/{source}/{concept}/{id}", []string{"id"}, bindings, nil, pagination.Options{})
}

// Series lists indicators of the configured database.
func (s *Service) Series(ctx context.Context, ids ...string) iter.Seq2[envelope.Record, error] {
	return s.Features(ctx, "series", ids...)
}

// Economies lists economies (countries and aggregates) of the configured
// database.
func (s *Service) Economies(ctx context.Context, ids ...string) iter.Seq2[envelope.Record, error] {
	return s.Features(ctx, "country", ids...)
}

// Data fetches data points for the given series, economies, and time
// periods, chunking the series and economy lists when the assembled URL
// would exceed the API's length limit.
func (s *Service) Data(ctx context.Context, series, economies, times []string) iter.Seq2[envelope.Record, error] {
	bindings := map[string]string{
		"source":  strconv.Itoa(s.database()),
		"series":  joinOrAll(series),
		"economy": joinOrAll(economies),
		"time":    joinOrAll(times),
	}
	template := "sources/{source}/series/{series}/country/{economy}/time/{time}"
	return s.fetcher.FetchMany(ctx, template, []string{"series", "economy"}, bindings, nil, pagination.Options{})
}

// Metadata returns complete metadata entities for the given series and
// economies. concepts optionally restricts the output (nil means all).
func (s *Service) Metadata(ctx context.Context, series, economies, concepts []string) iter.Seq2[metadata.Entity, error] {
	bindings := map[string]string{
		"source":  strconv.Itoa(s.database()),
		"series":  joinOrAll(series),
		"economy": joinOrAll(economies),
	}
	template := "sources/{source}/series/{series}/country/{economy}/metadata"
	src := s.fetcher.FetchMany(ctx, template, []string{"series", "economy"}, bindings, nil, pagination.Options{Concepts: true})
	return metadata.Assemble(src, concepts)
}

// Search scans the configured database's metadata for matching text and
// returns the matching fields as metadata entities.
func (s *Service) Search(ctx context.Context, q string, concepts []string) iter.Seq2[metadata.Entity, error] {
	bindings := map[string]string{
		"source": strconv.Itoa(s.database()),
		"q":      url.PathEscape(q),
	}
	src := s.fetcher.FetchMany(ctx, "sources/{source}/search/{q}", []string{"source"}, bindings, nil, pagination.Options{Concepts: true})
	return metadata.Assemble(src, concepts)
}

// QueryParam joins record identifiers into a semicolon-separated API-ready
// parameter string. The single identifier "mrv" resolves to the most recent
// value of the given concept, cached per (database, concept) in the store.
func (s *Service) QueryParam(ctx context.Context, concept string, ids ...string) (string, error) {
	if len(ids) == 1 && ids[0] == "mrv" && concept != "" {
		return s.mostRecent(ctx, concept)
	}
	return strings.Join(ids, ";"), nil
}

// InvalidateMostRecent drops the cached resolution for a concept. Callers
// must invalidate on configuration change (e.g. switching databases is
// already keyed, but a refreshed database needs an explicit drop).
func (s *Service) InvalidateMostRecent(ctx context.Context, concept string) error {
	return s.mrv.Invalidate(ctx, cache.Key{Database: s.database(), Concept: concept})
}

// mostRecent resolves the latest feature id of a concept, read-check-populate
// against the store. Store errors degrade to a fresh resolution.
func (s *Service) mostRecent(ctx context.Context, concept string) (string, error) {
	key := cache.Key{Database: s.database(), Concept: concept}

	value, ok, err := s.mrv.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("concept", concept).Msg("MRV cache get failed")
	} else if ok {
		return value, nil
	}

	var latest string
	for row, err := range s.Features(ctx, concept) {
		if err != nil {
			return "", fmt.Errorf("resolve most recent %s: %w", concept, err)
		}
		if id, isStr := row["id"].(string); isStr {
			latest = id
		}
	}
	if latest == "" {
		return "", fmt.Errorf("resolve most recent %s: concept has no features", concept)
	}

	if err := s.mrv.Set(ctx, key, latest); err != nil {
		s.logger.Warn().Err(err).Str("concept", concept).Msg("MRV cache set failed")
	}
	return latest, nil
}

func joinOrAll(ids []string) string {
	if len(ids) == 0 {
		return "all"
	}
	return strings.Join(ids, ";")
}
