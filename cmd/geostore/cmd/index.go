package cmd

import (
	"github.com/spf13/cobra"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the primary key index from the store file",
	Long: `Rebuild the primary key index by scanning the store file. The previous
index is replaced only once the new one is complete.

Example:
  geostore index
  geostore index --sorted`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sorted, _ := cmd.Flags().GetBool("sorted")
		return runIndex(cmd.OutOrStdout(), container.GetConfig(), container.GetLogger(), sorted)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("sorted", false, "Also build the pebble-backed sorted index")
}
