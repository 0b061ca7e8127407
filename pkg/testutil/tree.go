package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// FileTree represents a directory structure for testing. Values are file
// contents (string or []byte) or nested FileTrees. Keys may contain slashes,
// missing parents are created.
type FileTree map[string]interface{}

// WriteTree creates tree under root
func WriteTree(t *testing.T, root string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(root, filepath.FromSlash(name))

		switch v := content.(type) {
		case string:
			writeFile(t, fullPath, []byte(v))
		case []byte:
			writeFile(t, fullPath, v)
		case FileTree:
			if err := os.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			WriteTree(t, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// TemplateDir writes tree into a fresh temporary directory and returns it
func TemplateDir(t *testing.T, tree FileTree) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, tree)
	return root
}

// ListFiles returns the regular files under root as sorted slash paths
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	sort.Strings(files)
	return files
}
