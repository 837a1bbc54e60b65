package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/ssargent/geostore/pkg/config"
	"github.com/ssargent/geostore/pkg/index"
	"github.com/ssargent/geostore/pkg/ingest"
	"github.com/ssargent/geostore/pkg/store"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <csv>",
	Short: "Convert a CSV export into a store file",
	Long: `Convert a postal code CSV export into a length-framed store file and
build its primary key index.

Rows with malformed coordinates or unusable keys are skipped with a warning.

Example:
  geostore build us_postal_codes.csv
  geostore build us_postal_codes.csv --no-index`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noIndex, _ := cmd.Flags().GetBool("no-index")
		return runBuild(cmd.OutOrStdout(), container.GetConfig(), container.GetLogger(), args[0], !noIndex)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("no-index", false, "Only write the store file")
}

func runBuild(out io.Writer, cfg *config.Config, logger *slog.Logger, csvPath string, withIndex bool) error {
	loaded, err := ingest.LoadCSV(csvPath, ingest.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("load csv: %w", err)
	}

	written, err := store.WriteStore(store.StoreWriterConfig{
		FilePath: cfg.StorePath(),
		TypeTag:  cfg.TypeTag,
		Logger:   logger,
	}, loaded.Records)
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}

	fmt.Fprintf(out, "Read %d rows from %s (%d dropped)\n", loaded.RowsRead, csvPath, loaded.Dropped)
	fmt.Fprintf(out, "Wrote %d records to %s (%d bytes)\n", written.Header.RecordCount, written.Path, written.Size)

	if !withIndex {
		return nil
	}
	return runIndex(out, cfg, logger, false)
}

func runIndex(out io.Writer, cfg *config.Config, logger *slog.Logger, sorted bool) error {
	built, err := index.Build(index.BuildConfig{
		StorePath: cfg.StorePath(),
		IndexPath: cfg.IndexPath(),
		TypeTag:   cfg.TypeTag,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	fmt.Fprintf(out, "Indexed %d records in %s (build %s)\n", built.Entries, built.Path, built.BuildID)

	if !sorted {
		return nil
	}

	builtSorted, err := index.BuildSorted(index.BuildConfig{
		StorePath: cfg.StorePath(),
		TypeTag:   cfg.TypeTag,
		Logger:    logger,
	}, cfg.SortedIndexPath())
	if err != nil {
		return fmt.Errorf("build sorted index: %w", err)
	}
	fmt.Fprintf(out, "Indexed %d records in %s (build %s)\n", builtSorted.Entries, builtSorted.Path, builtSorted.BuildID)
	return nil
}
