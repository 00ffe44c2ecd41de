package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docuscore/docuscore/internal/engine"
	"github.com/docuscore/docuscore/internal/rubric"
)

var (
	gradeRubric   string
	gradeOnly     []string
	gradeJSON     bool
	gradeFileType string
)

var gradeCmd = &cobra.Command{
	Use:   "grade [file...]",
	Short: "Grade one or more document files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGrade,
}

func init() {
	gradeCmd.Flags().StringVarP(&gradeRubric, "rubric", "r", "", "Preset name or path to a rubric JSON file (default chosen from file extension)")
	gradeCmd.Flags().StringSliceVar(&gradeOnly, "only", nil, "Grade only these criterion ids")
	gradeCmd.Flags().BoolVar(&gradeJSON, "json", false, "Print full results as JSON")
	gradeCmd.Flags().StringVar(&gradeFileType, "file-type", "", "Override detected file type (pptx or docx)")
	rootCmd.AddCommand(gradeCmd)
}

func runGrade(cmd *cobra.Command, args []string) error {
	eng := engine.New()
	ctx := context.Background()

	var all []*engine.GradeResult
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rub, err := resolveRubric(gradeRubric, path)
		if err != nil {
			return err
		}
		fileType := rub.FileType
		if gradeFileType != "" {
			fileType = rubric.FileType(gradeFileType)
		}
		res, err := eng.GradeBytes(ctx, data, filepath.Base(path), fileType, rub, gradeOnly)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, res)
	}

	if gradeJSON {
		return json.NewEncoder(os.Stdout).Encode(all)
	}
	for _, res := range all {
		printResult(res)
	}
	return nil
}

// resolveRubric loads a preset by name, a JSON file by path, or picks the
// default preset for the file extension.
func resolveRubric(spec, path string) (rubric.Rubric, error) {
	if spec == "" {
		if strings.EqualFold(filepath.Ext(path), ".docx") {
			return rubric.Preset("document-default")
		}
		return rubric.Preset("presentation-default")
	}
	if rub, err := rubric.Preset(spec); err == nil {
		return rub, nil
	}
	data, err := os.ReadFile(spec)
	if err != nil {
		return rubric.Rubric{}, fmt.Errorf("rubric %q is neither a preset nor a readable file: %w", spec, err)
	}
	var rub rubric.Rubric
	if err := json.Unmarshal(data, &rub); err != nil {
		return rubric.Rubric{}, fmt.Errorf("parse rubric %s: %w", spec, err)
	}
	if err := rub.Validate(); err != nil {
		return rubric.Rubric{}, err
	}
	return rub, nil
}

func printResult(res *engine.GradeResult) {
	fmt.Printf("%s  [%s]\n", res.Filename, res.RubricName)
	if res.Degraded {
		fmt.Println("  (file could not be fully parsed; scores are estimates)")
	}
	ids := make([]string, 0, len(res.ByCriteria))
	for id := range res.ByCriteria {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cr := res.ByCriteria[id]
		fmt.Printf("  %-16s %5.2f / %-5.2f %-10s %s\n", id, cr.Points, cr.MaxPoints, cr.Level, cr.Reason)
	}
	fmt.Printf("  total: %g / %g (%g%%)\n\n", res.TotalPoints, res.MaxPossiblePoints, res.Percentage)
}
