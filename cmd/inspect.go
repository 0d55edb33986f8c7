package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/cardkit/internal/presentation"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print every bunch and the library of a fixture",
	Long: `Load a fixture and print the registry: its scopes, every registered bunch
with its scope and items, the library, and any errors recorded while loading.

Examples:
  # Print as JSON (default)
  cardkit inspect table.yaml

  # Print as YAML
  cardkit inspect table.yaml --format yaml

  # Parse specific fields with jq
  cardkit inspect table.yaml | jq '.bunches[] | {key, scope}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		formatter, err := newFormatter(cmd, inspectFormat)
		if err != nil {
			return err
		}
		return formatter.FormatTable(presentation.FromManager(table.Manager))
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "", "Output format: json or yaml (default from config)")
	rootCmd.AddCommand(inspectCmd)
}
