package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/geostore/pkg/codec"
	"github.com/ssargent/geostore/pkg/config"
	"github.com/ssargent/geostore/pkg/index"
	"github.com/ssargent/geostore/pkg/store"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <key>...",
	Short: "Look up records by key",
	Long: `Look up one or more records by key through the primary key index.

Example:
  geostore lookup 56301
  geostore lookup 56301 10001 --format json
  geostore lookup 56301 --sorted`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sorted, _ := cmd.Flags().GetBool("sorted")
		format, _ := cmd.Flags().GetString("format")
		return runLookup(cmd.OutOrStdout(), container.GetConfig(), args, sorted, format)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Bool("sorted", false, "Resolve keys through the pebble-backed sorted index")
	lookupCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
}

type lookupFunc func(key string) (*codec.Record, error)

func runLookup(out io.Writer, cfg *config.Config, keys []string, sorted bool, format string) error {
	policy, err := cfg.LookupDecodePolicy()
	if err != nil {
		return err
	}
	lookupConfig := index.LookupConfig{
		IndexPath:       cfg.IndexPath(),
		StorePath:       cfg.StorePath(),
		DropUndecodable: policy == store.DropRecord,
	}

	lookup := func(key string) (*codec.Record, error) {
		return index.Lookup(lookupConfig, key)
	}
	if sorted {
		lookupConfig.IndexPath = cfg.SortedIndexPath()
		idx, err := index.OpenSortedIndex(lookupConfig)
		if err != nil {
			return fmt.Errorf("open sorted index: %w", err)
		}
		defer idx.Close()
		lookup = idx.Lookup
	}

	return printLookups(out, keys, lookup, format)
}

func printLookups(out io.Writer, keys []string, lookup lookupFunc, format string) error {
	var found []*codec.Record
	var missing []string

	for _, key := range keys {
		record, err := lookup(key)
		if errors.Is(err, index.ErrNotFound) {
			missing = append(missing, key)
			continue
		}
		if err != nil {
			return fmt.Errorf("lookup %s: %w", key, err)
		}
		found = append(found, record)
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"records": found,
			"missing": missing,
		})
	}

	if len(found) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tPLACE\tREGION\tSUBREGION\tLATITUDE\tLONGITUDE")
		for _, r := range found {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Key, r.PlaceLabel, r.Region, r.Subregion,
				codec.FormatCoordinate(r.Latitude), codec.FormatCoordinate(r.Longitude))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	for _, key := range missing {
		fmt.Fprintf(out, "Key %s not found.\n", key)
	}
	return nil
}
