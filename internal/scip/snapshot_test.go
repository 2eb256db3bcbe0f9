package scip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSnapshot_Basic(t *testing.T) {
	t.Parallel()

	source := []byte("x = 1\ny = x\n")
	doc := &Document{
		Occurrences: []*Occurrence{
			{Range: []int32{0, 0, 1}, Symbol: "local 0", Roles: RoleDefinition},
			{Range: []int32{1, 4, 5}, Symbol: "local 0", Roles: RoleReadAccess},
		},
	}

	want := "" +
		"  x = 1\n" +
		"//^ definition local 0\n" +
		"  y = x\n" +
		"//    ^ reference local 0\n"
	assert.Equal(t, want, FormatSnapshot(doc, source))
}

func TestFormatSnapshot_SortsOccurrences(t *testing.T) {
	t.Parallel()

	// Occurrences arrive out of order; the snapshot must be in range order.
	source := []byte("a b\n")
	doc := &Document{
		Occurrences: []*Occurrence{
			{Range: []int32{0, 2, 3}, Symbol: "local 1", Roles: RoleDefinition},
			{Range: []int32{0, 0, 1}, Symbol: "local 0", Roles: RoleDefinition},
		},
	}

	want := "" +
		"  a b\n" +
		"//^ definition local 0\n" +
		"//  ^ definition local 1\n"
	assert.Equal(t, want, FormatSnapshot(doc, source))
}

func TestFormatSnapshot_MultilineOccurrenceClampedToFirstLine(t *testing.T) {
	t.Parallel()

	source := []byte("first\nsecond\n")
	doc := &Document{
		Occurrences: []*Occurrence{
			{Range: []int32{0, 0, 1, 6}, Symbol: "local 0", Roles: RoleDefinition},
		},
	}

	want := "" +
		"  first\n" +
		"//^ definition local 0\n" +
		"  second\n"
	assert.Equal(t, want, FormatSnapshot(doc, source))
}

func TestFormatSnapshot_NoTrailingNewline(t *testing.T) {
	t.Parallel()

	source := []byte("x = 1")
	doc := &Document{
		Occurrences: []*Occurrence{
			{Range: []int32{0, 0, 1}, Symbol: "local 0", Roles: RoleDefinition},
		},
	}

	want := "" +
		"  x = 1\n" +
		"//^ definition local 0\n"
	assert.Equal(t, want, FormatSnapshot(doc, source))
}

func TestFormatSnapshot_EmptyLinesStayEmpty(t *testing.T) {
	t.Parallel()

	source := []byte("a\n\nb\n")
	doc := &Document{}
	assert.Equal(t, "  a\n\n  b\n", FormatSnapshot(doc, source))
}
