package rules

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/treeline/internal/scip"
)

// docHandle wraps the document a rule script operates on. All host
// functions close over one handle, so index arguments always refer to the
// current state of the occurrence list (drop_occurrence shifts later
// indices down by one).
type docHandle struct {
	doc *scip.Document
}

func (h *docHandle) occurrenceAt(fn string, args []object.Object) (*scip.Occurrence, int, object.Object) {
	if len(args) < 1 {
		return nil, 0, object.NewArgsError(fn, 1, len(args))
	}
	idx, ok := args[0].(*object.Int)
	if !ok {
		return nil, 0, object.Errorf("%s: index must be an int, got %s", fn, args[0].Type())
	}
	i := int(idx.Value())
	if i < 0 || i >= len(h.doc.Occurrences) {
		return nil, 0, object.Errorf("%s: index %d out of range (%d occurrences)", fn, i, len(h.doc.Occurrences))
	}
	return h.doc.Occurrences[i], i, nil
}

// buildGlobals constructs the full set of globals exposed to rule scripts.
func buildGlobals(h *docHandle) map[string]any {
	return map[string]any{
		"doc_path":         makeDocPathFn(h),
		"doc_language":     makeDocLanguageFn(h),
		"occurrence_count": makeOccurrenceCountFn(h),
		"occurrence":       makeOccurrenceFn(h),
		"drop_occurrence":  makeDropOccurrenceFn(h),
		"set_syntax_kind":  makeSetSyntaxKindFn(h),
		"set_role":         makeSetRoleFn(h),
		"add_role":         makeAddRoleFn(h),
		"symbol_display":   makeSymbolDisplayFn(h),
		"log":              mustProxy(&logObject{prefix: "rules"}),
	}
}

func makeDocPathFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("doc_path", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("doc_path", 0, len(args))
		}
		return object.NewString(h.doc.RelativePath)
	})
}

func makeDocLanguageFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("doc_language", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("doc_language", 0, len(args))
		}
		return object.NewString(h.doc.Language)
	})
}

func makeOccurrenceCountFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("occurrence_count", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("occurrence_count", 0, len(args))
		}
		return object.NewInt(int64(len(h.doc.Occurrences)))
	})
}

// makeOccurrenceFn creates "occurrence".
//
// occurrence(i) → map with symbol, roles, syntax_kind and range fields.
func makeOccurrenceFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("occurrence", func(ctx context.Context, args ...object.Object) object.Object {
		occ, _, errObj := h.occurrenceAt("occurrence", args)
		if errObj != nil {
			return errObj
		}
		startLine, startCol, endLine, endCol := scip.RangeBounds(occ.Range)
		return object.NewMap(map[string]object.Object{
			"symbol":      object.NewString(occ.Symbol),
			"roles":       object.NewInt(int64(occ.Roles)),
			"syntax_kind": object.NewString(string(occ.SyntaxKind)),
			"start_line":  object.NewInt(int64(startLine)),
			"start_col":   object.NewInt(int64(startCol)),
			"end_line":    object.NewInt(int64(endLine)),
			"end_col":     object.NewInt(int64(endCol)),
		})
	})
}

func makeDropOccurrenceFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("drop_occurrence", func(ctx context.Context, args ...object.Object) object.Object {
		_, i, errObj := h.occurrenceAt("drop_occurrence", args)
		if errObj != nil {
			return errObj
		}
		h.doc.Occurrences = append(h.doc.Occurrences[:i], h.doc.Occurrences[i+1:]...)
		return object.Nil
	})
}

func makeSetSyntaxKindFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("set_syntax_kind", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("set_syntax_kind", 2, len(args))
		}
		occ, _, errObj := h.occurrenceAt("set_syntax_kind", args[:1])
		if errObj != nil {
			return errObj
		}
		kind, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("set_syntax_kind: kind must be a string, got %s", args[1].Type())
		}
		occ.SyntaxKind = scip.SyntaxKind(kind.Value())
		return object.Nil
	})
}

func makeSetRoleFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("set_role", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("set_role", 2, len(args))
		}
		occ, _, errObj := h.occurrenceAt("set_role", args[:1])
		if errObj != nil {
			return errObj
		}
		roles, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("set_role: roles must be an int, got %s", args[1].Type())
		}
		occ.Roles = int32(roles.Value())
		return object.Nil
	})
}

// makeAddRoleFn creates "add_role" — ORs a role bit into an occurrence.
// Exists so scripts don't need bitwise operators for the common case.
func makeAddRoleFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("add_role", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("add_role", 2, len(args))
		}
		occ, _, errObj := h.occurrenceAt("add_role", args[:1])
		if errObj != nil {
			return errObj
		}
		role, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("add_role: role must be an int, got %s", args[1].Type())
		}
		occ.Roles |= int32(role.Value())
		return object.Nil
	})
}

// makeSymbolDisplayFn creates "symbol_display" — looks up the display name
// for a symbol in the document's symbol table. Returns "" for locals and
// unknown symbols.
func makeSymbolDisplayFn(h *docHandle) *object.Builtin {
	return object.NewBuiltin("symbol_display", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("symbol_display", 1, len(args))
		}
		sym, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("symbol_display: symbol must be a string, got %s", args[0].Type())
		}
		if si := h.doc.SymbolInfo(sym.Value()); si != nil {
			return object.NewString(si.DisplayName)
		}
		return object.NewString("")
	})
}

// logObject provides log.info/warn/error methods for rule scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("rules: proxy error: %v", err))
	}
	return p
}
