package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docuscore/docuscore/internal/rubric"
)

var rubricsCmd = &cobra.Command{
	Use:   "rubrics",
	Short: "Inspect the built-in rubrics",
}

var rubricsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in rubric presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, r := range rubric.Presets() {
			fmt.Printf("%-24s %s  %d criteria, %g points\n", r.Name, r.FileType, len(r.Criteria), r.TotalMaxPoints)
		}
		return nil
	},
}

var rubricsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a preset rubric as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rubric.Preset(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	},
}

func init() {
	rubricsCmd.AddCommand(rubricsListCmd)
	rubricsCmd.AddCommand(rubricsShowCmd)
	rootCmd.AddCommand(rubricsCmd)
}
