// Package walker enumerates candidate files under a root directory,
// pruning excluded directories and honoring a caller-supplied
// extension allow-list (CodeExtensions for the code flow,
// DocumentExtensions for the document flow).
package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// excludedDirs are directory names pruned wherever they occur,
// except for "_artifacts" which is only excluded directly under a
// "build" directory (see isExcludedDir).
var excludedDirs = map[string]bool{
	"bin":           true,
	"obj":           true,
	"node_modules":  true,
	"target":        true,
	"__pycache__":   true,
	".git":          true,
	".godot":        true,
	"addons":        true,
}

// CodeExtensions is the fixed, case-insensitive extension allow-list
// for source-code indexing (spec §4.4).
var CodeExtensions = map[string]bool{
	".cs": true, ".py": true, ".rs": true, ".ts": true, ".js": true,
	".tsx": true, ".jsx": true, ".md": true, ".mdx": true, ".toml": true,
	".json": true, ".yaml": true, ".yml": true, ".gdscript": true,
	".tscn": true, ".cfg": true, ".csproj": true, ".sln": true,
}

// DocumentExtensions is the fixed extension allow-list for the
// rich-document index flow (spec §4.6(i)).
var DocumentExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".pptx": true, ".xlsx": true, ".html": true,
}

// isExcludedDir reports whether the directory named name, whose
// parent directory is named parent, must be pruned. "build/_artifacts"
// is the one compound entry in the excluded set: _artifacts is only
// excluded when its parent is literally "build".
func isExcludedDir(name, parent string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if excludedDirs[name] {
		return true
	}
	if name == "_artifacts" && parent == "build" {
		return true
	}
	return false
}

// isAllowedFile reports whether name has an extension present in
// extensions, matched case-insensitively.
func isAllowedFile(name string, extensions map[string]bool) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return extensions[ext]
}

// Walk enumerates files under root whose lowercase extension is in
// extensions, in deterministic (sorted) order, yielding paths relative
// to root with '/' as the separator on every platform. Directories
// matching the excluded set, or beginning with '.', are pruned
// entirely and never yield files.
func Walk(root string, extensions map[string]bool) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			parent := filepath.Base(filepath.Dir(path))
			if isExcludedDir(name, parent) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !isAllowedFile(name, extensions) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
