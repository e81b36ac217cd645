package chunker

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// chunkAST attempts AST-mode chunking. attempted is false when no
// grammar is registered for language at all, in which case the
// caller must fall back to text mode without treating it as an
// error.
func (c *Chunker) chunkAST(content, language string, cfg Config) (chunks []Chunk, attempted bool, err error) {
	source := []byte(content)
	tree, root, available, err := parseSource(source, language)
	if err != nil {
		return nil, true, fmt.Errorf("chunking %s: %w", language, err)
	}
	if !available {
		return nil, false, nil
	}
	defer tree.Close()

	nodes := collectCandidateNodes(root, language)
	if len(nodes) == 0 {
		return nil, true, nil
	}

	return groupNodes(nodes, source, language, cfg.ChunkSize), true, nil
}

// collectCandidateNodes walks only the root's direct children,
// collecting every child whose type is in the language's AST
// allow-list plus any top-level comment or expression statement. If
// the language has no allow-list entry at all, every root child is
// collected.
func collectCandidateNodes(root *sitter.Node, language string) []*sitter.Node {
	allowList := astNodeAllowList[language]

	var nodes []*sitter.Node
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		child := root.Child(i)
		if len(allowList) == 0 {
			nodes = append(nodes, child)
			continue
		}
		nodeType := child.Type()
		if allowList[nodeType] || topLevelPreservedTypes[nodeType] {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

// groupNodes greedily batches consecutive collected nodes into
// chunks under a character budget: appending the next node must not
// push the running buffer past chunkSize unless the buffer is still
// empty, in which case a single oversized node becomes its own
// chunk. Node texts within a chunk are joined with a single newline.
// Whitespace-only chunks are skipped; chunk indices are assigned
// sequentially over the chunks that are actually emitted.
func groupNodes(nodes []*sitter.Node, source []byte, language string, chunkSize int) []Chunk {
	var chunks []Chunk
	var buffer []*sitter.Node
	bufLen := 0
	index := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		texts := make([]string, len(buffer))
		for i, n := range buffer {
			texts[i] = string(source[n.StartByte():n.EndByte()])
		}
		text := strings.Join(texts, "\n")
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				Location: fmt.Sprintf("%d:%d", index, buffer[0].StartByte()),
				Language: language,
				Text:     text,
			})
			index++
		}
		buffer = buffer[:0]
		bufLen = 0
	}

	for _, n := range nodes {
		nodeLen := int(n.EndByte() - n.StartByte())
		separator := 0
		if len(buffer) > 0 {
			separator = 1
		}
		if len(buffer) > 0 && bufLen+separator+nodeLen > chunkSize {
			flush()
		}
		if len(buffer) > 0 {
			bufLen += 1 + nodeLen
		} else {
			bufLen = nodeLen
		}
		buffer = append(buffer, n)
	}
	flush()

	return chunks
}
