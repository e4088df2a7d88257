// Health command for the admin CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the content server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := remote.Health(cmd.Context()); err != nil {
			return fmt.Errorf("server is unhealthy: %w", err)
		}
		fmt.Println("ok")
		return nil
	},
}
