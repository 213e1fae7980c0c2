package archive

import "strings"

// NewWriter creates a filesystem-backed writer when a root directory is
// configured, otherwise in-memory.
func NewWriter(rootDir string) (Writer, error) {
	if strings.TrimSpace(rootDir) == "" {
		return NewInMemoryWriter(), nil
	}
	return NewFSWriter(rootDir)
}
