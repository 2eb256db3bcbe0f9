package scip

import (
	"sort"
	"strings"
)

// FormatSnapshot renders a document in the SCIP snapshot format: every
// non-empty source line indented by two columns, followed by one comment
// line per occurrence starting on it. The two-column indent keeps the leading "//"
// of annotation lines aligned with column zero of the source.
//
//	  func Add(a int, b int) int {
//	//     ^^^ definition scip-treeline . . . main/Add().
//
// Occurrences spanning multiple lines are annotated on their first line.
func FormatSnapshot(doc *Document, source []byte) string {
	occs := make([]*Occurrence, len(doc.Occurrences))
	copy(occs, doc.Occurrences)
	sort.SliceStable(occs, func(i, j int) bool {
		return CompareRange(occs[i].Range, occs[j].Range) < 0
	})

	byLine := make(map[int32][]*Occurrence)
	for _, occ := range occs {
		line, _, _, _ := RangeBounds(occ.Range)
		byLine[line] = append(byLine[line], occ)
	}

	lines := strings.Split(string(source), "\n")
	// A trailing newline yields one empty trailing element; don't render it.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var b strings.Builder
	for i, line := range lines {
		// Empty lines stay empty rather than carrying trailing indent.
		if line != "" {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteByte('\n')
		for _, occ := range byLine[int32(i)] {
			writeAnnotation(&b, occ)
		}
	}
	return b.String()
}

func writeAnnotation(b *strings.Builder, occ *Occurrence) {
	startLine, startCol, endLine, endCol := RangeBounds(occ.Range)
	width := endCol - startCol
	if endLine != startLine || width < 1 {
		width = 1
	}
	b.WriteString("//")
	for i := int32(0); i < startCol; i++ {
		b.WriteByte(' ')
	}
	for i := int32(0); i < width; i++ {
		b.WriteByte('^')
	}
	b.WriteByte(' ')
	b.WriteString(roleName(occ.Roles))
	b.WriteByte(' ')
	b.WriteString(occ.Symbol)
	b.WriteByte('\n')
}

func roleName(roles int32) string {
	if roles&RoleDefinition != 0 {
		return "definition"
	}
	return "reference"
}
