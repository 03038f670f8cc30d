package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// writeFileAtomic writes data to filename so that readers see either the
// old or the new content, never a partial file.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", filename, err)
	}
	if err := renameio.WriteFile(filename, data, perm); err != nil {
		return fmt.Errorf("failed to write %s atomically: %w", filename, err)
	}
	return nil
}
