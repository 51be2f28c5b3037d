package main

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"os"
	"strings"

	"github.com/macrostat/worldbank-client/pkg/envelope"
	"github.com/macrostat/worldbank-client/pkg/metadata"
	"github.com/macrostat/worldbank-client/pkg/pagination"
	"github.com/spf13/cobra"
)

// printRecords drains a record sequence to stdout as JSON lines.
func printRecords(seq iter.Seq2[envelope.Record, error]) error {
	enc := json.NewEncoder(os.Stdout)
	for rec, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func printEntities(seq iter.Seq2[metadata.Entity, error]) error {
	enc := json.NewEncoder(os.Stdout)
	for entity, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(entity); err != nil {
			return err
		}
	}
	return nil
}

// parseParams turns repeated key=value flags into query parameters.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

func newFetchCmd() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "fetch <path>",
		Short: "Fetch every record of an arbitrary API path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}
			return printRecords(service.Fetcher().Fetch(cmd.Context(), args[0], params, pagination.Options{}))
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func newGetCmd() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch the first record of an API path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}
			rec, err := service.Fetcher().GetOne(cmd.Context(), args[0], params, pagination.Options{})
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no record at %s", args[0])
			}
			return json.NewEncoder(os.Stdout).Encode(rec)
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List available databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			return printRecords(service.Sources(cmd.Context()))
		},
	}
}

func newSeriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "series [id...]",
		Short: "List indicators of the selected database",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			return printRecords(service.Series(cmd.Context(), args...))
		},
	}
}

func newEconomiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "economies [id...]",
		Short: "List economies of the selected database",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			return printRecords(service.Economies(cmd.Context(), args...))
		},
	}
}

func newDataCmd() *cobra.Command {
	var seriesFlags, economyFlags, timeFlags []string

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch data points for series, economies, and time periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			times := timeFlags
			if len(times) == 1 && times[0] == "mrv" {
				resolved, err := service.QueryParam(cmd.Context(), "time", "mrv")
				if err != nil {
					return err
				}
				times = []string{resolved}
			}
			return printRecords(service.Data(cmd.Context(), seriesFlags, economyFlags, times))
		},
	}

	cmd.Flags().StringSliceVarP(&seriesFlags, "series", "s", nil, "series ids (empty means all)")
	cmd.Flags().StringSliceVarP(&economyFlags, "economy", "e", nil, "economy ids (empty means all)")
	cmd.Flags().StringSliceVarP(&timeFlags, "time", "t", nil, "time periods, or the single value mrv")
	return cmd
}

func newMetadataCmd() *cobra.Command {
	var seriesFlags, economyFlags, conceptFlags []string

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Fetch metadata entities for series and economies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			return printEntities(service.Metadata(cmd.Context(), seriesFlags, economyFlags, conceptFlags))
		},
	}

	cmd.Flags().StringSliceVarP(&seriesFlags, "series", "s", nil, "series ids (empty means all)")
	cmd.Flags().StringSliceVarP(&economyFlags, "economy", "e", nil, "economy ids (empty means all)")
	cmd.Flags().StringSliceVar(&conceptFlags, "concept", nil, "restrict output to these concepts")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var conceptFlags []string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the selected database's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := buildService()
			if err != nil {
				return err
			}
			return printEntities(service.Search(cmd.Context(), args[0], conceptFlags))
		},
	}

	cmd.Flags().StringSliceVar(&conceptFlags, "concept", nil, "restrict matches to these concepts")
	return cmd
}
