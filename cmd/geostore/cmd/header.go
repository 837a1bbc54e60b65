package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/geostore/pkg/config"
	"github.com/ssargent/geostore/pkg/store"
)

// headerCmd represents the header command
var headerCmd = &cobra.Command{
	Use:   "header",
	Short: "Print the store file header",
	Long: `Print the header of the store file and the layout of its records.

Example:
  geostore header
  geostore header --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return runHeader(cmd.OutOrStdout(), container.GetConfig(), format)
	},
}

func init() {
	rootCmd.AddCommand(headerCmd)
	headerCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
}

func runHeader(out io.Writer, cfg *config.Config, format string) error {
	header, err := store.ReadHeader(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			store.Header
			IndexFile string        `json:"index_file"`
			Fields    []store.Field `json:"fields"`
		}{header, cfg.IndexPath(), store.RecordLayout})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range header.Describe() {
		fmt.Fprintf(w, "%s:\t%s\n", f.Name, f.Value)
	}
	fmt.Fprintf(w, "Primary Key Index File:\t%s\n", cfg.IndexPath())
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Field Information:")
	for i, f := range store.RecordLayout {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, f.Name, f.Value)
	}
	return nil
}
