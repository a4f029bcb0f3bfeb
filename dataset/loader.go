package dataset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-facedetect/images"
)

// ListImages returns the paths of every supported image file directly inside
// dir, sorted by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []string: Sorted image paths.
// - error: Error if the directory cannot be read.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := images.FormatFromPath(entry.Name()); ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
