// Root command for the admin CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/rest"
)

// Global flag values.
var (
	flagServer string
	flagToken  string
	flagJSON   bool
)

// remote is the connection every subcommand operates through.
// Set by PersistentPreRunE.
var remote dynamiccontent.Remote

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Admin is a CLI for managing schema-driven content",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		remote, err = rest.New(rest.Config{
			BaseURL: cfg.GetString(cfgKeyServer),
			Token:   cfg.GetString(cfgKeyToken),
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "content server base URL (default: http://localhost:3000)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token for mutating operations")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
