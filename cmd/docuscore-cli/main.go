package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "docuscore",
	Short:        "Grade Office documents against rubrics",
	Long:         `Extracts features from pptx/docx submissions and scores them against built-in or custom rubrics, without a running gateway.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
