package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/treeline"
)

var flagKind string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query an indexed database",
	Long:  "Run queries against an indexed codebase. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.AddCommand(symbolsCmd)
	queryCmd.AddCommand(occurrencesCmd)
	queryCmd.AddCommand(definitionsCmd)
	queryCmd.AddCommand(documentsCmd)
	queryCmd.AddCommand(statsCmd)

	symbolsCmd.Flags().StringVar(&flagKind, "kind", "", "filter by kind instead of name (namespace|type|function|method|variable|parameter)")
}

// openQueryEngine opens the Engine at the resolved DB path, failing fast
// when no index exists yet.
func openQueryEngine() (*treeline.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'scip-snapshot index' first)", dbPath)
	}
	return treeline.New(dbPath)
}

// documentPaths maps document IDs to paths for display.
func documentPaths(e *treeline.Engine) (map[int64]string, error) {
	docs, err := e.Query().Documents()
	if err != nil {
		return nil, err
	}
	paths := make(map[int64]string, len(docs))
	for _, d := range docs {
		paths[d.ID] = d.Path
	}
	return paths, nil
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols [name]",
	Short: "Find symbols by display name or kind",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && flagKind == "" {
			return fmt.Errorf("requires a name argument or --kind")
		}

		engine, err := openQueryEngine()
		if err != nil {
			return outputError("symbols", err)
		}
		defer engine.Close()

		var syms []*treeline.Symbol
		if flagKind != "" {
			syms, err = engine.Query().SymbolsByKind(flagKind)
		} else {
			syms, err = engine.Query().SymbolsByName(args[0])
		}
		if err != nil {
			return outputError("symbols", err)
		}

		paths, err := documentPaths(engine)
		if err != nil {
			return outputError("symbols", err)
		}

		var rows []CLISymbol
		for _, s := range syms {
			rows = append(rows, CLISymbol{
				ID:              s.ID,
				Symbol:          s.Symbol,
				Name:            s.DisplayName,
				Kind:            s.Kind,
				EnclosingSymbol: s.EnclosingSymbol,
				File:            paths[s.DocumentID],
				Documentation:   s.Documentation,
			})
		}
		return outputResult(CLIResult{Command: "symbols", Results: rows})
	},
}

var occurrencesCmd = &cobra.Command{
	Use:   "occurrences <symbol>",
	Short: "List every occurrence of a symbol string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openQueryEngine()
		if err != nil {
			return outputError("occurrences", err)
		}
		defer engine.Close()

		occs, err := engine.Query().OccurrencesOf(args[0])
		if err != nil {
			return outputError("occurrences", err)
		}
		paths, err := documentPaths(engine)
		if err != nil {
			return outputError("occurrences", err)
		}

		var rows []CLIOccurrence
		for _, occ := range occs {
			rows = append(rows, CLIOccurrence{
				Symbol:     occ.Symbol,
				Roles:      occ.Roles,
				SyntaxKind: occ.SyntaxKind,
				File:       paths[occ.DocumentID],
				StartLine:  occ.StartLine,
				StartCol:   occ.StartCol,
				EndLine:    occ.EndLine,
				EndCol:     occ.EndCol,
			})
		}
		return outputResult(CLIResult{Command: "occurrences", Results: rows})
	},
}

var definitionsCmd = &cobra.Command{
	Use:   "definitions <file>",
	Short: "List definition occurrences in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openQueryEngine()
		if err != nil {
			return outputError("definitions", err)
		}
		defer engine.Close()

		locs, err := engine.Query().DefinitionsInFile(args[0])
		if err != nil {
			return outputError("definitions", err)
		}

		var rows []CLIOccurrence
		for _, loc := range locs {
			rows = append(rows, CLIOccurrence{
				File:      loc.Path,
				StartLine: loc.StartLine,
				StartCol:  loc.StartCol,
				EndLine:   loc.EndLine,
				EndCol:    loc.EndCol,
			})
		}
		return outputResult(CLIResult{Command: "definitions", Results: rows})
	},
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List indexed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openQueryEngine()
		if err != nil {
			return outputError("documents", err)
		}
		defer engine.Close()

		docs, err := engine.Query().Documents()
		if err != nil {
			return outputError("documents", err)
		}

		var rows []CLIDocument
		for _, d := range docs {
			rows = append(rows, CLIDocument{
				ID:        d.ID,
				Path:      d.Path,
				Language:  d.Language,
				LineCount: d.LineCount,
			})
		}
		return outputResult(CLIResult{Command: "documents", Results: rows})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Per-language index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openQueryEngine()
		if err != nil {
			return outputError("stats", err)
		}
		defer engine.Close()

		stats, err := engine.Query().Stats()
		if err != nil {
			return outputError("stats", err)
		}

		var rows []CLILanguageStat
		for _, st := range stats {
			rows = append(rows, CLILanguageStat{
				Language:        st.Language,
				DocumentCount:   st.DocumentCount,
				SymbolCount:     st.SymbolCount,
				OccurrenceCount: st.OccurrenceCount,
			})
		}
		return outputResult(CLIResult{Command: "stats", Results: rows})
	},
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as
// a CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{Command: command, Error: err.Error()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
