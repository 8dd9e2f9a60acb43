// Package security validates operator-supplied file paths before they are read.
package security

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize bounds catalog and seed files.
const MaxFileSize = 1 << 20

// forbiddenChars are shell metacharacters never found in a legitimate config path.
const forbiddenChars = ";&|$`<>!\n\r"

// CleanPath rejects forbidden characters and returns the absolute, symlink
// resolved form of path. A path that does not exist yet is returned cleaned.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("file path contains forbidden character %q: %s", path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if os.IsNotExist(err) {
		return abs, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ReadFile reads a regular file of at most MaxFileSize bytes. Missing files
// report an error matching os.ErrNotExist.
func ReadFile(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is validated above
	f, err := os.Open(clean)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxFileSize)
	}
	return io.ReadAll(io.LimitReader(f, MaxFileSize))
}
