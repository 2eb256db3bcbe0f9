package syntax

// querySpec holds the tree-sitter query sources for one language.
//
// defs captures global definitions: each pattern pairs a @name capture
// (the identifier node) with a @def.<kind> capture on the declaration
// node, where <kind> names the symbol kind.
//
// locals captures file-local bindings (@local.def): parameters and local
// variables that resolve to "local N" symbols.
//
// refs captures candidate reference identifiers (@ref). A candidate only
// becomes an occurrence when it resolves to a local binding in scope or a
// same-document global definition.
type querySpec struct {
	defs   string
	locals string
	refs   string
}

var querySpecs = map[string]querySpec{
	"go": {
		defs: `
			(package_clause (package_identifier) @name) @def.namespace
			(function_declaration name: (identifier) @name) @def.function
			(method_declaration name: (field_identifier) @name) @def.method
			(type_declaration (type_spec name: (type_identifier) @name)) @def.type
		`,
		locals: `
			(parameter_declaration name: (identifier) @local.def)
			(short_var_declaration left: (expression_list (identifier) @local.def))
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"python": {
		defs: `
			(function_definition name: (identifier) @name) @def.function
			(class_definition name: (identifier) @name) @def.type
		`,
		locals: `
			(parameters (identifier) @local.def)
			(parameters (default_parameter name: (identifier) @local.def))
			(parameters (typed_parameter (identifier) @local.def))
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"javascript": {
		defs: `
			(function_declaration name: (identifier) @name) @def.function
			(class_declaration name: (identifier) @name) @def.type
			(method_definition name: (property_identifier) @name) @def.method
			(variable_declarator name: (identifier) @name) @def.variable
		`,
		locals: `
			(formal_parameters (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"typescript": {
		defs: `
			(function_declaration name: (identifier) @name) @def.function
			(class_declaration name: (type_identifier) @name) @def.type
			(method_definition name: (property_identifier) @name) @def.method
			(interface_declaration name: (type_identifier) @name) @def.type
			(type_alias_declaration name: (type_identifier) @name) @def.type
		`,
		locals: `
			(required_parameter pattern: (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"rust": {
		defs: `
			(function_item name: (identifier) @name) @def.function
			(struct_item name: (type_identifier) @name) @def.type
			(enum_item name: (type_identifier) @name) @def.type
			(trait_item name: (type_identifier) @name) @def.type
		`,
		locals: `
			(parameter pattern: (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"java": {
		defs: `
			(class_declaration name: (identifier) @name) @def.type
			(interface_declaration name: (identifier) @name) @def.type
			(method_declaration name: (identifier) @name) @def.method
		`,
		locals: `
			(formal_parameter name: (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"c": {
		defs: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name)) @def.function
			(struct_specifier name: (type_identifier) @name) @def.type
		`,
		locals: `
			(parameter_declaration declarator: (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"cpp": {
		defs: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name)) @def.function
			(struct_specifier name: (type_identifier) @name) @def.type
			(class_specifier name: (type_identifier) @name) @def.type
		`,
		locals: `
			(parameter_declaration declarator: (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
	"php": {
		defs: `
			(function_definition name: (name) @name) @def.function
			(class_declaration name: (name) @name) @def.type
			(method_declaration name: (name) @name) @def.method
		`,
		locals: `
			(simple_parameter name: (variable_name) @local.def)
		`,
		refs: `
			(variable_name) @ref
		`,
	},
	"ruby": {
		defs: `
			(method name: (identifier) @name) @def.method
			(class name: (constant) @name) @def.type
			(module name: (constant) @name) @def.namespace
		`,
		locals: `
			(method_parameters (identifier) @local.def)
		`,
		refs: `
			(identifier) @ref
		`,
	},
}

// kindForCapture maps a @def.<kind> capture name to a symbol kind string.
// Returns "" for captures without the def. prefix.
func kindForCapture(capture string) string {
	const prefix = "def."
	if len(capture) > len(prefix) && capture[:len(prefix)] == prefix {
		return capture[len(prefix):]
	}
	return ""
}
