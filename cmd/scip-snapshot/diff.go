package main

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/jward/treeline/internal/syntax"
)

var diffCmd = &cobra.Command{
	Use:   "diff <file> <snapshot>",
	Short: "Compare a file's snapshot against a saved one",
	Long:  "Regenerates the snapshot for a source file and compares it to a previously saved snapshot. Prints a unified diff and exits non-zero when they differ.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&flagLanguage, "language", "", "language override (default: detect from extension)")
	diffCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "load rule scripts from disk path instead of embedded")
}

func runDiff(cmd *cobra.Command, args []string) error {
	file, snapshotPath := args[0], args[1]

	got, err := snapshotOf(file)
	if err != nil {
		return err
	}
	want, err := os.ReadFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("reading snapshot %s: %w", snapshotPath, err)
	}

	if got == string(want) {
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(got),
		FromFile: snapshotPath,
		ToFile:   file,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("computing diff: %w", err)
	}
	fmt.Print(diff)
	errorHandled = true
	return fmt.Errorf("snapshot differs from %s", snapshotPath)
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and their extensions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows []CLILanguage
		for _, lang := range syntax.Languages() {
			rows = append(rows, CLILanguage{
				Language:   lang,
				Extensions: syntax.ExtensionsForLanguage(lang),
			})
		}
		return outputResult(CLIResult{Command: "languages", Results: rows})
	},
}
