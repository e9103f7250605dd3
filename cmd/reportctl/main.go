package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Generate student growth reports from the command line",
	Long: `Generate printable growth reports for one or more students without
running the HTTP service.

Examples:
  reportctl export --key $API_KEY --codes AB12,CD34 --out ./reports
  reportctl export --key $API_KEY --codes AB12 --out ./reports --config my.yaml --html`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
