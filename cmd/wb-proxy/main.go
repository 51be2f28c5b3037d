// Command wb-proxy exposes the World Bank API through a local HTTP server
// that flattens paginated queries into single JSON responses and publishes
// Prometheus metrics for the underlying request engine.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/macrostat/worldbank-client/pkg/client"
	"github.com/macrostat/worldbank-client/pkg/envelope"
	"github.com/macrostat/worldbank-client/pkg/logging"
	"github.com/macrostat/worldbank-client/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	cfg := client.DefaultConfig()
	if endpoint := getEnv("WB_ENDPOINT", ""); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if lang := getEnv("WB_LANG", ""); lang != "" {
		cfg.Lang = lang
	}
	if proxy := getEnv("WB_PROXY", ""); proxy != "" {
		cfg.Proxy = proxy
	}
	port := getEnv("PORT", "8080")

	apiClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}
	fetcher := pagination.NewFetcher(apiClient)

	http.HandleFunc("/health", healthHandler)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/wb/", queryHandler(fetcher))

	addr := ":" + port
	logger.Info().Str("addr", addr).Str("endpoint", cfg.Endpoint).Msg("Starting proxy server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// queryHandler fetches every page of the requested path and responds with
// one flat JSON array of records.
func queryHandler(fetcher *pagination.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/wb/")
		if path == "" {
			http.Error(w, "missing API path", http.StatusBadRequest)
			return
		}

		params := r.URL.Query()
		// Paging is the proxy's job.
		params.Del("page")
		params.Del("per_page")
		params.Del("format")

		records := make([]envelope.Record, 0, 64)
		for rec, err := range fetcher.Fetch(r.Context(), path, params, pagination.Options{}) {
			if err != nil {
				status := http.StatusBadGateway
				if client.IsClass(err, client.ErrorClassServer) {
					status = http.StatusBadRequest
				}
				http.Error(w, err.Error(), status)
				return
			}
			records = append(records, rec)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
