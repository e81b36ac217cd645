package chunker

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// parserCache caches a sitter.Language per language tag, with a
// negative cache for tags that have no grammar wired, to avoid
// repeated lookups. This is process-wide state shared by every
// Chunker per the single-lazy-init-then-read-only contract in the
// concurrency model.
type parserCache struct {
	mu          sync.Mutex
	languages   map[string]*sitter.Language
	unavailable map[string]bool
}

var globalParserCache = &parserCache{
	languages:   make(map[string]*sitter.Language),
	unavailable: make(map[string]bool),
}

// languageFor returns the tree-sitter grammar for tag, and whether
// one is available at all.
func (c *parserCache) languageFor(tag string) (*sitter.Language, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang, ok := c.languages[tag]; ok {
		return lang, true
	}
	if c.unavailable[tag] {
		return nil, false
	}

	lang := newGrammar(tag)
	if lang == nil {
		c.unavailable[tag] = true
		return nil, false
	}
	c.languages[tag] = lang
	return lang, true
}

// newGrammar constructs the tree-sitter grammar for the tags this
// module wires. Every tag not listed here returns nil: the language
// either has no grammar in the bindings this module depends on, or
// is a flat format with no AST allow-list worth walking (see
// astNodeAllowList's doc comment).
func newGrammar(tag string) *sitter.Language {
	switch tag {
	case "python":
		return python.GetLanguage()
	case "c_sharp":
		return csharp.GetLanguage()
	case "rust":
		return rust.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "tsx":
		return tsx.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// parseSource parses content with the grammar registered for
// language and returns its root node and the parsed tree (which the
// caller must Close). Returns ok=false when no grammar is available
// for language.
func parseSource(content []byte, language string) (*sitter.Tree, *sitter.Node, bool, error) {
	lang, ok := globalParserCache.languageFor(language)
	if !ok {
		return nil, nil, false, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, nil, true, fmt.Errorf("parsing %s source: %w", language, err)
	}
	return tree, tree.RootNode(), true, nil
}
