// Command wbq queries the World Bank API from the command line, printing
// records as JSON lines. It handles paging and URL chunking transparently.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/macrostat/worldbank-client/pkg/cache"
	"github.com/macrostat/worldbank-client/pkg/client"
	"github.com/macrostat/worldbank-client/pkg/logging"
	"github.com/macrostat/worldbank-client/pkg/pagination"
	"github.com/macrostat/worldbank-client/pkg/wbapi"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagEndpoint string
	flagLang     string
	flagDatabase int
	flagPerPage  int
	flagProxy    string
	flagRedis    string
	flagVerbose  bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wbq",
		Short:         "Query the World Bank data API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelWarn
			if flagVerbose {
				level = logging.LevelDebug
			}
			logging.Setup(logging.Config{Level: level, Pretty: true, Output: os.Stderr})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "path to config yaml")
	pf.StringVar(&flagEndpoint, "endpoint", "", "API base URL")
	pf.StringVar(&flagLang, "lang", "", "preferred language code")
	pf.IntVar(&flagDatabase, "db", 0, "database id")
	pf.IntVar(&flagPerPage, "per-page", 0, "page size")
	pf.StringVar(&flagProxy, "proxy", "", "proxy URL")
	pf.StringVar(&flagRedis, "redis", "", "redis address for the most-recent-value cache")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newFetchCmd(),
		newGetCmd(),
		newSourcesCmd(),
		newSeriesCmd(),
		newEconomiesCmd(),
		newDataCmd(),
		newMetadataCmd(),
		newSearchCmd(),
	)

	return root
}

// buildService assembles the client stack from config file and flags.
// Flags take priority over the file; the file over defaults.
func buildService() (*wbapi.Service, error) {
	cfg := client.DefaultConfig()
	redisAddr := ""

	if flagConfig != "" {
		fc, err := loadFileConfig(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if fc.Endpoint != "" {
			cfg.Endpoint = fc.Endpoint
		}
		if fc.Lang != "" {
			cfg.Lang = fc.Lang
		}
		if fc.PerPage > 0 {
			cfg.PerPage = fc.PerPage
		}
		if fc.Database > 0 {
			cfg.Database = fc.Database
		}
		if fc.MaxURLLen > 0 {
			cfg.MaxURLLen = fc.MaxURLLen
		}
		if fc.Proxy != "" {
			cfg.Proxy = fc.Proxy
		}
		if fc.UserAgent != "" {
			cfg.UserAgent = fc.UserAgent
		}
		redisAddr = fc.RedisAddr
	}

	if flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	if flagLang != "" {
		cfg.Lang = flagLang
	}
	if flagDatabase > 0 {
		cfg.Database = flagDatabase
	}
	if flagPerPage > 0 {
		cfg.PerPage = flagPerPage
	}
	if flagProxy != "" {
		cfg.Proxy = flagProxy
	}
	if flagRedis != "" {
		redisAddr = flagRedis
	}

	apiClient, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	var store cache.Store
	if redisAddr != "" {
		store = cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: redisAddr}), 24*time.Hour)
	}

	return wbapi.New(pagination.NewFetcher(apiClient), store), nil
}
