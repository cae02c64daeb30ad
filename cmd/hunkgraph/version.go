package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agusespa/hunkgraph/internal/symbols"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and supported languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := symbols.NewParserRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "hunkgraph version %s (%s)\n", version, runtime.Version())
		fmt.Fprintf(out, "languages: %v\n", registry.SupportedLanguages())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
