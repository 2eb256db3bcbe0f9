package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/treeline"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var (
	flagLanguage string
	flagRulesDir string
)

var rootCmd = &cobra.Command{
	Use:           "scip-snapshot [file]",
	Short:         "Tree-sitter syntax indexing with SCIP-style snapshots",
	Long:          "scip-snapshot parses source files with tree-sitter and emits their occurrences and symbols, either as a human-readable snapshot of a single file or as a queryable SQLite index.",
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	RunE: runSnapshot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .treeline/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.Flags().StringVar(&flagLanguage, "language", "", "language override (default: detect from extension)")
	rootCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "load rule scripts from disk path instead of embedded")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(languagesCmd)
}

// runSnapshot handles the bare `scip-snapshot FILE` invocation: index one
// file, print the snapshot to stdout, touch no database.
func runSnapshot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		errorHandled = true
		return fmt.Errorf("requires a file argument or a subcommand")
	}
	out, err := snapshotOf(args[0])
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// snapshotOf renders a file's snapshot with the root command's flags applied.
func snapshotOf(path string) (string, error) {
	var opts []treeline.SnapshotOption
	if flagLanguage != "" {
		opts = append(opts, treeline.WithSnapshotLanguage(flagLanguage))
	}
	if flagRulesDir != "" {
		opts = append(opts, treeline.WithSnapshotRulesDir(flagRulesDir))
	}
	return treeline.SnapshotFile(context.Background(), path, opts...)
}

var (
	flagForce     bool
	flagSerial    bool
	flagLanguages string
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a directory into a SQLite database",
	Long:  "Parses source files with tree-sitter, runs rule scripts, and writes symbols and occurrences to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel indexing pipeline")
	indexCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,python)")
	indexCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "load rule scripts from disk path instead of embedded")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dbDir, err)
	}

	// Handle --force: delete the DB file entirely.
	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	engine, err := openEngine(dbPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	if !flagForce && engine.RulesChanged() {
		fmt.Fprintln(os.Stderr, "Warning: rule scripts changed since last index; rerun with --force for a clean rebuild")
	}

	if err := engine.IndexDirectory(context.Background(), targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s\n", targetDir, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index a directory and keep the database current",
	Long:  "Indexes the directory, then watches it for changes: edited and new files are re-indexed, deleted files are removed. Runs until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,python)")
	watchCmd.Flags().StringVar(&flagRulesDir, "rules-dir", "", "load rule scripts from disk path instead of embedded")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}

	engine, err := openEngine(dbPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if err := engine.IndexDirectory(ctx, targetDir); err != nil {
		return fmt.Errorf("initial indexing: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s\n", targetDir)
	if err := engine.Watch(ctx, targetDir); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// openEngine builds an Engine from the shared index/watch flags.
func openEngine(dbPath string) (*treeline.Engine, error) {
	var opts []treeline.Option
	if flagLanguages != "" {
		langs := strings.Split(flagLanguages, ",")
		for i := range langs {
			langs[i] = strings.TrimSpace(langs[i])
		}
		opts = append(opts, treeline.WithLanguages(langs...))
	}
	if flagRulesDir != "" {
		opts = append(opts, treeline.WithRulesDir(flagRulesDir))
	}
	if flagSerial {
		opts = append(opts, treeline.WithParallel(false))
	}

	engine, err := treeline.New(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return engine, nil
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".treeline", "index.db")
}
