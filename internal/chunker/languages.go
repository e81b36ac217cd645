package chunker

import (
	"path/filepath"
	"strings"
)

// extensionToLanguage is the fixed mapping from lowercase file
// extension to language tag. Extensions not present here use their
// extension stem as a pass-through tag and always run through
// text-mode chunking, since no AST allow-list or parser is ever
// registered for an unrecognized tag.
var extensionToLanguage = map[string]string{
	".py":       "python",
	".cs":       "c_sharp",
	".rs":       "rust",
	".ts":       "typescript",
	".tsx":      "tsx",
	".js":       "javascript",
	".jsx":      "javascript",
	".md":       "markdown",
	".mdx":      "markdown",
	".json":     "json",
	".toml":     "toml",
	".yaml":     "yaml",
	".yml":      "yaml",
	".gdscript": "gdscript",
}

// DetectLanguage maps a filename to a language tag by its extension.
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return strings.TrimPrefix(ext, ".")
}

// astNodeAllowList designates, per language, which AST node types
// under the root count as semantic units. Languages with no entry
// here never attempt AST mode — either no tree-sitter grammar is
// wired for them (markdown, json, gdscript: the bindings this module
// depends on do not ship those grammars) or the language has no
// "function/class"-shaped structure worth segmenting on (toml, yaml:
// they are flat key-value documents). All five fall back to
// text-mode chunking unconditionally (newGrammar returns nil for them).
var astNodeAllowList = map[string]map[string]bool{
	"python": set(
		"function_definition", "class_definition", "decorated_definition",
		"import_statement", "import_from_statement",
	),
	"c_sharp": set(
		"class_declaration", "interface_declaration", "struct_declaration",
		"enum_declaration", "method_declaration", "constructor_declaration",
		"namespace_declaration", "using_directive",
	),
	"rust": set(
		"function_item", "impl_item", "struct_item", "enum_item",
		"trait_item", "mod_item", "use_declaration", "const_item",
		"static_item", "type_item",
	),
	"typescript": set(
		"function_declaration", "class_declaration", "interface_declaration",
		"type_alias_declaration", "enum_declaration", "import_statement",
		"export_statement", "lexical_declaration",
	),
	"tsx": set(
		"function_declaration", "class_declaration", "interface_declaration",
		"type_alias_declaration", "enum_declaration", "import_statement",
		"export_statement", "lexical_declaration",
	),
	"javascript": set(
		"function_declaration", "class_declaration", "import_statement",
		"export_statement", "lexical_declaration", "variable_declaration",
	),
}

// topLevelPreservedTypes are node types kept at the root regardless
// of the per-language allow-list, to preserve module docstrings and
// file-level headers.
var topLevelPreservedTypes = set("comment", "expression_statement")

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
