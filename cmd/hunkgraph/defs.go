package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusespa/hunkgraph/internal/render"
)

var defsCmd = &cobra.Command{
	Use:   "defs <name>",
	Short: "Find where a symbol is declared in the working tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" {
			return errDefsInput
		}
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if s.format == render.FormatDOT {
			return fmt.Errorf("defs: %w: %s", errUnsupportedView, s.format)
		}

		sess, err := newSession(cmd.Context(), s, ".")
		if err != nil {
			return err
		}
		defer sess.Close()

		defs, err := sess.pipeline.FindDefinitions(cmd.Context(), sess.client, args[0])
		if err != nil {
			return err
		}
		if s.format == render.FormatJSON {
			return render.WriteJSON(cmd.OutOrStdout(), defs)
		}
		return render.WriteDefinitionsText(cmd.OutOrStdout(), defs)
	},
}

func init() {
	rootCmd.AddCommand(defsCmd)
}
