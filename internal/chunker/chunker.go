// Package chunker splits source file content into semantic chunks:
// AST-aware segmentation when a tree-sitter grammar is available for
// the file's language, falling back to a newline-aware sliding
// window otherwise.
package chunker

// Chunk is a single segment of a file selected for embedding.
type Chunk struct {
	// Location is "{chunk_index}:{start_byte}", unique within a file.
	Location string
	// Language is the tag assigned to the owning file.
	Language string
	// Text is the chunk's content.
	Text string
}

// Config controls chunk sizing. Sizes are in characters (bytes, since
// chunking operates on UTF-8 content treated as a byte sequence for
// offset purposes).
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig mirrors the CLI's documented defaults.
func DefaultConfig() Config {
	return Config{ChunkSize: 1000, ChunkOverlap: 300}
}

// Chunker splits file content into chunks. It is safe for concurrent
// use: the only mutable state it touches is the package-level parser
// cache, which guards itself.
type Chunker struct{}

// New returns a ready-to-use Chunker.
func New() *Chunker {
	return &Chunker{}
}

// Chunk splits content (the file's text) into chunks, given the
// language tag assigned to the file by DetectLanguage. AST mode is
// attempted first when a grammar is registered for language; it
// falls back to text mode when no grammar is available, when no
// candidate nodes are collected, or when AST mode yields no
// non-empty chunks.
func (c *Chunker) Chunk(content, language string, cfg Config) ([]Chunk, error) {
	astChunks, attempted, err := c.chunkAST(content, language, cfg)
	if err != nil {
		return nil, err
	}
	if attempted && len(astChunks) > 0 {
		return astChunks, nil
	}
	return c.chunkText(content, language, cfg), nil
}
