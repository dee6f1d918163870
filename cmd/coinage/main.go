// Command coinage runs the closed-economy simulation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "coinage",
		Short: "Coinage - closed-economy ledger and market simulation",
		Long: `coinage simulates a small closed economy: persons, businesses, a
government, and a loan provider trading through a shared market.

Every coin moves through an overflow-checked ledger; prices emerge from
a volatility-bounded supply/demand rule.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("coinage version %s\n", version)
		},
	}
}
