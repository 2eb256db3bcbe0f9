// Package syntax implements the tree-sitter indexing pass: it parses a
// source file with the grammar for its language, executes the language's
// definition, local and reference queries, and produces a scip.Document
// of occurrences and symbols.
package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/treeline/internal/scip"
)

// definition is a global definition captured by the defs query.
type definition struct {
	name   *sitter.Node // identifier node
	node   *sitter.Node // full declaration node
	kind   scip.SymbolKind
	symbol string // assigned after the container chain is known
}

// localBinding is a file-local binding captured by the locals query.
type localBinding struct {
	name  *sitter.Node
	scope *sitter.Node // innermost enclosing declaration, or the root
	id    int
}

// capture is one named capture from a query execution.
type capture struct {
	name string
	node *sitter.Node
}

// IndexDocument parses source with the grammar for lang and builds the
// SCIP document for it. path is used for the document path and, for
// languages without a package clause, the module descriptor.
func IndexDocument(ctx context.Context, path string, source []byte, lang string) (*scip.Document, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("syntax: unsupported language %q", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %s: %w", path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	doc := &scip.Document{RelativePath: path, Language: lang}

	spec, ok := querySpecs[lang]
	if !ok {
		return doc, nil // grammar without queries: empty document
	}

	defs, err := collectDefinitions(spec.defs, grammar, root, source, lang, path)
	if err != nil {
		return nil, fmt.Errorf("syntax: %s: %w", path, err)
	}

	occupied := make(map[[4]int32]bool)
	defsByName := make(map[string]*definition)

	for _, def := range defs {
		r := nodeRange(def.name)
		if occupied[rangeKey(r)] {
			continue
		}
		occupied[rangeKey(r)] = true

		displayName := def.name.Content(source)
		if _, seen := defsByName[displayName]; !seen {
			defsByName[displayName] = def
		}
		doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
			Range:      r,
			Symbol:     def.symbol,
			Roles:      scip.RoleDefinition,
			SyntaxKind: syntaxKindFor(def.kind),
		})
		doc.Symbols = append(doc.Symbols, &scip.SymbolInformation{
			Symbol:          def.symbol,
			DisplayName:     displayName,
			Kind:            def.kind,
			EnclosingSymbol: enclosingSymbol(def, defs),
		})
	}

	locals, err := collectLocals(spec.locals, grammar, root, source, defs, occupied)
	if err != nil {
		return nil, fmt.Errorf("syntax: %s: %w", path, err)
	}
	for _, lb := range locals {
		r := nodeRange(lb.name)
		occupied[rangeKey(r)] = true
		doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
			Range:      r,
			Symbol:     scip.LocalSymbol(lb.id),
			Roles:      scip.RoleDefinition,
			SyntaxKind: scip.SyntaxIdentifierLocal,
		})
	}

	if spec.refs != "" {
		caps, err := runQuery(spec.refs, grammar, root, source)
		if err != nil {
			return nil, fmt.Errorf("syntax: %s: %w", path, err)
		}
		for _, c := range caps {
			r := nodeRange(c.node)
			if occupied[rangeKey(r)] {
				continue
			}
			name := c.node.Content(source)

			if lb := resolveLocal(locals, name, c.node, source); lb != nil {
				occupied[rangeKey(r)] = true
				doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
					Range:      r,
					Symbol:     scip.LocalSymbol(lb.id),
					Roles:      scip.RoleReadAccess,
					SyntaxKind: scip.SyntaxIdentifierLocal,
				})
				continue
			}
			if def, ok := defsByName[name]; ok {
				occupied[rangeKey(r)] = true
				doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
					Range:      r,
					Symbol:     def.symbol,
					Roles:      scip.RoleReadAccess,
					SyntaxKind: syntaxKindFor(def.kind),
				})
			}
			// Unresolved names are silent: a single-file index has nothing
			// to bind them to.
		}
	}

	sort.SliceStable(doc.Occurrences, func(i, j int) bool {
		return scip.CompareRange(doc.Occurrences[i].Range, doc.Occurrences[j].Range) < 0
	})
	return doc, nil
}

// collectDefinitions runs the defs query and assigns each definition its
// global symbol from the package context and container chain.
func collectDefinitions(pattern string, grammar *sitter.Language, root *sitter.Node, source []byte, lang, path string) ([]*definition, error) {
	matches, err := runQueryMatches(pattern, grammar, root, source)
	if err != nil {
		return nil, err
	}

	var defs []*definition
	for _, m := range matches {
		var def definition
		for _, c := range m {
			if c.name == "name" {
				def.name = c.node
				continue
			}
			if kind := kindForCapture(c.name); kind != "" {
				def.node = c.node
				def.kind = scip.SymbolKind(kind)
			}
		}
		if def.name == nil || def.node == nil {
			continue
		}
		defs = append(defs, &def)
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].node.StartByte() < defs[j].node.StartByte()
	})

	rootDescs := moduleDescriptors(defs, source, lang, path)
	for _, def := range defs {
		def.symbol = scip.GlobalSymbol(symbolDescriptors(def, defs, rootDescs, source, lang))
	}
	return defs, nil
}

// moduleDescriptors returns the descriptor chain every global symbol in
// this document is rooted at. Go documents use the package clause; other
// languages use the file stem as the module name.
func moduleDescriptors(defs []*definition, source []byte, lang, path string) []scip.Descriptor {
	if lang == "go" {
		for _, def := range defs {
			if def.kind == scip.KindNamespace {
				return []scip.Descriptor{{Name: def.name.Content(source), Suffix: scip.DescriptorNamespace}}
			}
		}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []scip.Descriptor{{Name: stem, Suffix: scip.DescriptorNamespace}}
}

// symbolDescriptors builds the full descriptor chain for a definition:
// module root, containing definitions outermost-first, then the
// definition itself.
func symbolDescriptors(def *definition, defs []*definition, rootDescs []scip.Descriptor, source []byte, lang string) []scip.Descriptor {
	if def.kind == scip.KindNamespace && lang == "go" {
		return rootDescs
	}

	descs := append([]scip.Descriptor(nil), rootDescs...)
	for _, container := range containersOf(def, defs) {
		if container.kind == scip.KindNamespace && lang == "go" {
			continue // already the root
		}
		descs = append(descs, scip.Descriptor{
			Name:   container.name.Content(source),
			Suffix: descriptorSuffixFor(container.kind),
		})
	}
	if lang == "go" && def.kind == scip.KindMethod {
		if recv := goReceiverType(def.node, source); recv != "" {
			descs = append(descs, scip.Descriptor{Name: recv, Suffix: scip.DescriptorType})
		}
	}
	return append(descs, scip.Descriptor{
		Name:   def.name.Content(source),
		Suffix: descriptorSuffixFor(def.kind),
	})
}

// containersOf returns the definitions strictly containing def, ordered
// outermost first.
func containersOf(def *definition, defs []*definition) []*definition {
	var containers []*definition
	for _, other := range defs {
		if other == def {
			continue
		}
		if other.node.StartByte() <= def.node.StartByte() && other.node.EndByte() >= def.node.EndByte() &&
			(other.node.StartByte() < def.node.StartByte() || other.node.EndByte() > def.node.EndByte()) {
			containers = append(containers, other)
		}
	}
	sort.SliceStable(containers, func(i, j int) bool {
		si := containers[i].node.EndByte() - containers[i].node.StartByte()
		sj := containers[j].node.EndByte() - containers[j].node.StartByte()
		return si > sj
	})
	return containers
}

// enclosingSymbol returns the symbol of the innermost container, or "".
func enclosingSymbol(def *definition, defs []*definition) string {
	containers := containersOf(def, defs)
	if len(containers) == 0 {
		return ""
	}
	return containers[len(containers)-1].symbol
}

// goReceiverType extracts the receiver's type name from a Go method
// declaration, unwrapping a pointer receiver.
func goReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		typ := child.ChildByFieldName("type")
		if typ == nil {
			return ""
		}
		if typ.Type() == "pointer_type" {
			for j := 0; j < int(typ.ChildCount()); j++ {
				if inner := typ.Child(j); inner.Type() == "type_identifier" {
					return inner.Content(source)
				}
			}
			return ""
		}
		return typ.Content(source)
	}
	return ""
}

// collectLocals runs the locals query and assigns local IDs in source
// order. Bindings whose range is already claimed by a global definition
// are dropped, as is the Go blank identifier.
func collectLocals(pattern string, grammar *sitter.Language, root *sitter.Node, source []byte, defs []*definition, occupied map[[4]int32]bool) ([]*localBinding, error) {
	if pattern == "" {
		return nil, nil
	}
	caps, err := runQuery(pattern, grammar, root, source)
	if err != nil {
		return nil, err
	}

	var locals []*localBinding
	for _, c := range caps {
		if occupied[rangeKey(nodeRange(c.node))] {
			continue
		}
		if c.node.Content(source) == "_" {
			continue
		}
		locals = append(locals, &localBinding{
			name:  c.node,
			scope: scopeOf(c.node, defs, root),
		})
	}
	sort.SliceStable(locals, func(i, j int) bool {
		return locals[i].name.StartByte() < locals[j].name.StartByte()
	})
	for i, lb := range locals {
		lb.id = i
	}
	return locals, nil
}

// scopeOf returns the innermost function or method declaration containing
// the node, falling back to the document root.
func scopeOf(node *sitter.Node, defs []*definition, root *sitter.Node) *sitter.Node {
	var best *sitter.Node
	for _, def := range defs {
		if def.kind != scip.KindFunction && def.kind != scip.KindMethod {
			continue
		}
		if def.node.StartByte() <= node.StartByte() && def.node.EndByte() >= node.EndByte() {
			if best == nil || def.node.StartByte() >= best.StartByte() {
				best = def.node
			}
		}
	}
	if best == nil {
		return root
	}
	return best
}

// resolveLocal finds the innermost binding with the given name whose scope
// contains the node and whose definition precedes it.
func resolveLocal(locals []*localBinding, name string, node *sitter.Node, source []byte) *localBinding {
	var best *localBinding
	for _, lb := range locals {
		if lb.name.Content(source) != name {
			continue
		}
		if lb.name.StartByte() > node.StartByte() {
			continue
		}
		if lb.scope.StartByte() > node.StartByte() || lb.scope.EndByte() < node.EndByte() {
			continue
		}
		if best == nil || lb.scope.StartByte() >= best.scope.StartByte() {
			best = lb
		}
	}
	return best
}

func syntaxKindFor(kind scip.SymbolKind) scip.SyntaxKind {
	switch kind {
	case scip.KindFunction, scip.KindMethod:
		return scip.SyntaxIdentifierFunction
	case scip.KindType:
		return scip.SyntaxIdentifierType
	case scip.KindNamespace:
		return scip.SyntaxIdentifierModule
	default:
		return scip.SyntaxIdentifier
	}
}

func descriptorSuffixFor(kind scip.SymbolKind) scip.DescriptorSuffix {
	switch kind {
	case scip.KindNamespace:
		return scip.DescriptorNamespace
	case scip.KindType:
		return scip.DescriptorType
	case scip.KindFunction, scip.KindMethod:
		return scip.DescriptorMethod
	default:
		return scip.DescriptorTerm
	}
}

func nodeRange(n *sitter.Node) []int32 {
	start, end := n.StartPoint(), n.EndPoint()
	return scip.NewRange(int32(start.Row), int32(start.Column), int32(end.Row), int32(end.Column))
}

func rangeKey(r []int32) [4]int32 {
	sl, sc, el, ec := scip.RangeBounds(r)
	return [4]int32{sl, sc, el, ec}
}

// runQuery executes a query and returns its captures flattened.
func runQuery(pattern string, grammar *sitter.Language, root *sitter.Node, source []byte) ([]capture, error) {
	matches, err := runQueryMatches(pattern, grammar, root, source)
	if err != nil {
		return nil, err
	}
	var caps []capture
	for _, m := range matches {
		caps = append(caps, m...)
	}
	return caps, nil
}

// runQueryMatches executes a query and returns captures grouped by match.
func runQueryMatches(pattern string, grammar *sitter.Language, root *sitter.Node, source []byte) ([][]capture, error) {
	q, err := sitter.NewQuery([]byte(pattern), grammar)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	var matches [][]capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		var caps []capture
		for _, c := range match.Captures {
			caps = append(caps, capture{name: q.CaptureNameForId(c.Index), node: c.Node})
		}
		if len(caps) > 0 {
			matches = append(matches, caps)
		}
	}
	return matches, nil
}
