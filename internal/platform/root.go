package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectDir is the directory marking a project-local cache.
const ProjectDir = ".grove"

// FindRoot looks upwards from startDir for a directory containing ProjectDir
// and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasDir(dir, ProjectDir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

// DefaultCacheDSN returns the cache location used when none is configured: the
// nearest project .grove directory, or the per-user cache directory.
func DefaultCacheDSN(startDir string) string {
	if root, err := FindRoot(startDir); err == nil {
		return filepath.Join(root, ProjectDir)
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "grove")
	}
	return ProjectDir
}

func hasDir(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.IsDir()
}
