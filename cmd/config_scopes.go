package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/cardkit/internal/config"
)

var configScopesCmd = &cobra.Command{
	Use:   "config:scopes [add|remove NAME]",
	Short: "List or edit the default scopes",
	Long: `Without arguments, print the configured scopes. With add or remove, edit
the scopes list of the config file in use (or .cardkit/config.yaml), keeping
comments elsewhere in the file.

Examples:
  cardkit config:scopes
  cardkit config:scopes add team1
  cardkit config:scopes remove team1`,
	Args: func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 0:
			return nil
		case len(args) == 2 && (args[0] == "add" || args[0] == "remove"):
			return nil
		}
		return fmt.Errorf("expected no arguments, or add|remove NAME")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(cfg.Scopes, "\n"))
			return nil
		}
		path := viper.ConfigFileUsed()
		if path == "" {
			path = defaultConfigPath
		}
		op, name := args[0], args[1]
		var err error
		if op == "add" {
			err = config.AddScope(path, cfg.Scopes, name)
		} else {
			err = config.RemoveScope(path, cfg.Scopes, name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configScopesCmd)
}
