package scip

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme is the symbol scheme emitted by this indexer.
const Scheme = "scip-treeline"

// DescriptorSuffix determines how a descriptor is rendered in a symbol.
type DescriptorSuffix int

const (
	DescriptorNamespace DescriptorSuffix = iota // name/
	DescriptorType                              // name#
	DescriptorMethod                            // name().
	DescriptorTerm                              // name.
)

// Descriptor is one component of a global symbol's qualification chain.
type Descriptor struct {
	Name   string
	Suffix DescriptorSuffix
}

// Symbol is a parsed SCIP symbol. Package fields use "." when unknown,
// which is all this single-file indexer ever produces.
type Symbol struct {
	Scheme      string
	Manager     string
	PackageName string
	Version     string
	Descriptors []Descriptor
}

// LocalSymbol returns the symbol string for the n-th file-local binding.
func LocalSymbol(n int) string {
	return "local " + strconv.Itoa(n)
}

// IsLocal reports whether sym is a file-local symbol.
func IsLocal(sym string) bool {
	return strings.HasPrefix(sym, "local ")
}

// FormatSymbol renders a global symbol in SCIP symbol grammar:
// "<scheme> <manager> <package> <version> <descriptors>".
func FormatSymbol(scheme, manager, pkgName, version string, descs []Descriptor) string {
	var b strings.Builder
	b.WriteString(packageField(scheme))
	b.WriteByte(' ')
	b.WriteString(packageField(manager))
	b.WriteByte(' ')
	b.WriteString(packageField(pkgName))
	b.WriteByte(' ')
	b.WriteString(packageField(version))
	b.WriteByte(' ')
	for _, d := range descs {
		b.WriteString(d.String())
	}
	return b.String()
}

// GlobalSymbol renders a symbol with this indexer's scheme and the unknown
// package sentinel fields.
func GlobalSymbol(descs []Descriptor) string {
	return FormatSymbol(Scheme, ".", ".", ".", descs)
}

func (d Descriptor) String() string {
	name := escapeName(d.Name)
	switch d.Suffix {
	case DescriptorNamespace:
		return name + "/"
	case DescriptorType:
		return name + "#"
	case DescriptorMethod:
		return name + "()."
	default:
		return name + "."
	}
}

// packageField substitutes the "." sentinel for empty package fields.
func packageField(s string) string {
	if s == "" {
		return "."
	}
	return s
}

// escapeName backtick-escapes descriptor names that are not simple
// identifiers. Backticks inside the name are doubled.
func escapeName(name string) string {
	if isSimpleIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isSimpleIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ParseSymbol parses a symbol string produced by FormatSymbol. Local
// symbols are rejected; callers should test IsLocal first.
func ParseSymbol(sym string) (*Symbol, error) {
	if IsLocal(sym) {
		return nil, fmt.Errorf("scip: %q is a local symbol", sym)
	}
	fields := strings.SplitN(sym, " ", 5)
	if len(fields) != 5 {
		return nil, fmt.Errorf("scip: symbol %q: want 5 space-separated fields, got %d", sym, len(fields))
	}
	descs, err := parseDescriptors(fields[4])
	if err != nil {
		return nil, fmt.Errorf("scip: symbol %q: %w", sym, err)
	}
	return &Symbol{
		Scheme:      fields[0],
		Manager:     fields[1],
		PackageName: fields[2],
		Version:     fields[3],
		Descriptors: descs,
	}, nil
}

func parseDescriptors(s string) ([]Descriptor, error) {
	var descs []Descriptor
	i := 0
	for i < len(s) {
		name, next, err := parseName(s, i)
		if err != nil {
			return nil, err
		}
		i = next
		if i >= len(s) {
			return nil, fmt.Errorf("descriptor %q missing suffix", name)
		}
		switch s[i] {
		case '/':
			descs = append(descs, Descriptor{Name: name, Suffix: DescriptorNamespace})
			i++
		case '#':
			descs = append(descs, Descriptor{Name: name, Suffix: DescriptorType})
			i++
		case '(':
			if !strings.HasPrefix(s[i:], "().") {
				return nil, fmt.Errorf("descriptor %q: malformed method suffix", name)
			}
			descs = append(descs, Descriptor{Name: name, Suffix: DescriptorMethod})
			i += 3
		case '.':
			descs = append(descs, Descriptor{Name: name, Suffix: DescriptorTerm})
			i++
		default:
			return nil, fmt.Errorf("descriptor %q: unexpected suffix %q", name, s[i])
		}
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("empty descriptor list")
	}
	return descs, nil
}

// parseName reads a descriptor name starting at i, handling backtick
// escaping. Returns the name and the index just past it.
func parseName(s string, i int) (string, int, error) {
	if s[i] == '`' {
		var b strings.Builder
		j := i + 1
		for j < len(s) {
			if s[j] == '`' {
				if j+1 < len(s) && s[j+1] == '`' {
					b.WriteByte('`')
					j += 2
					continue
				}
				return b.String(), j + 1, nil
			}
			b.WriteByte(s[j])
			j++
		}
		return "", 0, fmt.Errorf("unterminated escaped name at offset %d", i)
	}
	j := i
	for j < len(s) && !strings.ContainsRune("/#()..`", rune(s[j])) {
		j++
	}
	if j == i {
		return "", 0, fmt.Errorf("empty descriptor name at offset %d", i)
	}
	return s[i:j], j, nil
}
