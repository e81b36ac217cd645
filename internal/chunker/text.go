package chunker

import (
	"bytes"
	"fmt"
	"strings"
)

// chunkText is the sliding-window fallback chunker, used whenever
// AST mode is unavailable or unproductive for a file.
func (c *Chunker) chunkText(content, language string, cfg Config) []Chunk {
	source := []byte(content)

	if len(source) <= cfg.ChunkSize {
		return []Chunk{{Location: "0:0", Language: language, Text: content}}
	}

	var chunks []Chunk
	start := 0
	idx := 0

	for start < len(source) {
		end := start + cfg.ChunkSize
		if end > len(source) {
			end = len(source)
		}
		if end < len(source) {
			if nl := bytes.LastIndexByte(source[start:end], '\n'); nl > 0 {
				end = start + nl + 1
			}
		}

		text := string(source[start:end])
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				Location: fmt.Sprintf("%d:%d", idx, start),
				Language: language,
				Text:     text,
			})
			idx++
		}

		var next int
		if end < len(source) {
			next = end - cfg.ChunkOverlap
		} else {
			next = end
		}
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}
