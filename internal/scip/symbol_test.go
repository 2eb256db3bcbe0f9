package scip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSymbol(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "local 0", LocalSymbol(0))
	assert.Equal(t, "local 42", LocalSymbol(42))
	assert.True(t, IsLocal("local 0"))
	assert.False(t, IsLocal("scip-treeline . . . main/"))
}

func TestGlobalSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		descs []Descriptor
		want  string
	}{
		{
			name:  "namespace",
			descs: []Descriptor{{Name: "main", Suffix: DescriptorNamespace}},
			want:  "scip-treeline . . . main/",
		},
		{
			name: "function in package",
			descs: []Descriptor{
				{Name: "main", Suffix: DescriptorNamespace},
				{Name: "Add", Suffix: DescriptorMethod},
			},
			want: "scip-treeline . . . main/Add().",
		},
		{
			name: "method on type",
			descs: []Descriptor{
				{Name: "geo", Suffix: DescriptorNamespace},
				{Name: "Point", Suffix: DescriptorType},
				{Name: "Norm", Suffix: DescriptorMethod},
			},
			want: "scip-treeline . . . geo/Point#Norm().",
		},
		{
			name: "term",
			descs: []Descriptor{
				{Name: "config", Suffix: DescriptorNamespace},
				{Name: "Debug", Suffix: DescriptorTerm},
			},
			want: "scip-treeline . . . config/Debug.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GlobalSymbol(tt.descs))
		})
	}
}

func TestFormatSymbol_EmptyFieldsBecomeSentinel(t *testing.T) {
	t.Parallel()
	got := FormatSymbol("scip-treeline", "", "", "", []Descriptor{{Name: "x", Suffix: DescriptorTerm}})
	assert.Equal(t, "scip-treeline . . . x.", got)
}

func TestDescriptorEscaping(t *testing.T) {
	t.Parallel()

	// Names that are not simple identifiers are wrapped in backticks.
	assert.Equal(t, "scip-treeline . . . `my-module`/",
		GlobalSymbol([]Descriptor{{Name: "my-module", Suffix: DescriptorNamespace}}))

	// Leading digits force escaping.
	assert.Equal(t, "scip-treeline . . . `1module`/",
		GlobalSymbol([]Descriptor{{Name: "1module", Suffix: DescriptorNamespace}}))

	// Backticks inside the name are doubled.
	assert.Equal(t, "scip-treeline . . . `a``b`.",
		GlobalSymbol([]Descriptor{{Name: "a`b", Suffix: DescriptorTerm}}))
}

func TestParseSymbol_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := [][]Descriptor{
		{{Name: "main", Suffix: DescriptorNamespace}},
		{
			{Name: "main", Suffix: DescriptorNamespace},
			{Name: "Add", Suffix: DescriptorMethod},
		},
		{
			{Name: "geo", Suffix: DescriptorNamespace},
			{Name: "Point", Suffix: DescriptorType},
			{Name: "Norm", Suffix: DescriptorMethod},
		},
		{
			{Name: "my-module", Suffix: DescriptorNamespace},
			{Name: "a`b", Suffix: DescriptorTerm},
		},
	}
	for _, descs := range cases {
		formatted := GlobalSymbol(descs)
		sym, err := ParseSymbol(formatted)
		require.NoError(t, err, "parsing %q", formatted)
		assert.Equal(t, "scip-treeline", sym.Scheme)
		assert.Equal(t, ".", sym.Manager)
		assert.Equal(t, ".", sym.PackageName)
		assert.Equal(t, ".", sym.Version)
		assert.Equal(t, descs, sym.Descriptors)
	}
}

func TestParseSymbol_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseSymbol("local 3")
	assert.Error(t, err)

	_, err = ParseSymbol("too few fields")
	assert.Error(t, err)

	_, err = ParseSymbol("scip-treeline . . . ")
	assert.Error(t, err)

	// A name with no suffix character.
	_, err = ParseSymbol("scip-treeline . . . main/dangling")
	assert.Error(t, err)

	// Unterminated escape.
	_, err = ParseSymbol("scip-treeline . . . `broken")
	assert.Error(t, err)
}
