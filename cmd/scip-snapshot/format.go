package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatSymbolsText formats CLISymbol results as aligned columns.
func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tFILE\tSYMBOL")
	for _, s := range syms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Kind, s.File, s.Symbol)
	}
	tw.Flush()
}

// formatOccurrencesText formats CLIOccurrence results as "file:line:col" lines.
func formatOccurrencesText(w io.Writer, occs []CLIOccurrence) {
	for _, occ := range occs {
		fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n",
			occ.File, occ.StartLine, occ.StartCol, occ.SyntaxKind, occ.Symbol)
	}
}

// formatDocumentsText formats CLIDocument results as aligned columns.
func formatDocumentsText(w io.Writer, docs []CLIDocument) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATH\tLANGUAGE\tLINES")
	for _, d := range docs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", d.ID, d.Path, d.Language, d.LineCount)
	}
	tw.Flush()
}

// formatStatsText formats CLILanguageStat results as aligned columns.
func formatStatsText(w io.Writer, stats []CLILanguageStat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tDOCUMENTS\tSYMBOLS\tOCCURRENCES")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n",
			st.Language, st.DocumentCount, st.SymbolCount, st.OccurrenceCount)
	}
	tw.Flush()
}

// formatLanguagesText formats CLILanguage results as aligned columns.
func formatLanguagesText(w io.Writer, langs []CLILanguage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tEXTENSIONS")
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\n", l.Language, strings.Join(l.Extensions, " "))
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLISymbol:
		formatSymbolsText(w, v)
	case []CLIOccurrence:
		formatOccurrencesText(w, v)
	case []CLIDocument:
		formatDocumentsText(w, v)
	case []CLILanguageStat:
		formatStatsText(w, v)
	case []CLILanguage:
		formatLanguagesText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
