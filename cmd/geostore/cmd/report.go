package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/geostore/pkg/config"
	"github.com/ssargent/geostore/pkg/report"
	"github.com/ssargent/geostore/pkg/store"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report the boundary records of every region",
	Long: `Read every record from the store file and print, for each region, the
easternmost, westernmost, northernmost and southernmost record.

Example:
  geostore report
  geostore report --out sorted_state_boundaries.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		return runReport(cmd.OutOrStdout(), container.GetConfig(), container.GetLogger(), outPath, format)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("out", "o", "", "Also write the report to this file")
	reportCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
}

func runReport(out io.Writer, cfg *config.Config, logger *slog.Logger, outPath, format string) error {
	policy, err := cfg.BulkDecodePolicy()
	if err != nil {
		return err
	}

	result, err := store.ReadAll(store.StoreReaderConfig{
		FilePath:        cfg.StorePath(),
		TypeTag:         cfg.TypeTag,
		OnDecodeFailure: policy,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}

	write := report.WriteTable
	if format == "json" {
		write = report.WriteJSON
	}

	boundaries := report.Boundaries(result.Records)
	if err := write(out, boundaries); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}

	file, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := write(file, boundaries); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Report written to: %s\n", outPath)
	return nil
}
