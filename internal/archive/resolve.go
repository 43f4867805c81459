package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when an archive identifier does not name an
// existing directory under the storage root.
var ErrNotFound = errors.New("archive: not found")

// Resolve maps an archive identifier to a directory under root.
//
// The identifier must be a single local path element. Anything else,
// including "..", never resolves, so a request cannot reach outside root.
func Resolve(root, id string) (string, error) {
	if id == "" || id == "." || !filepath.IsLocal(id) || filepath.Base(id) != id {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	dir := filepath.Join(root, id)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", ErrNotFound, id)
	}

	return dir, nil
}
