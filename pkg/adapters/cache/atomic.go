package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "grove-tmp-"
)

// WriteError reports the step at which a cache key write failed. When
// Committed is false the key still holds its previous value.
type WriteError struct {
	Key       string
	Step      string // create, write, sync, rename or sync-dir
	Committed bool
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache key %s: %s failed: %v", e.Key, e.Step, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// commitKey replaces the file for key with data. The value goes to a synced
// temp file beside name, is renamed over it, and the directory is synced so
// the new value survives a crash right after Put returns.
func commitKey(key, name string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(name)
	fail := func(step string, committed bool, err error) error {
		return &WriteError{Key: key, Step: step, Committed: committed, Err: err}
	}

	// Same directory so the rename never crosses a filesystem.
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fail("create", false, err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fail("write", false, err)
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return fail("write", false, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fail("sync", false, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fail("sync", false, err)
	}

	if err := os.Rename(tmpFile.Name(), name); err != nil {
		return fail("rename", false, err)
	}

	if err := syncDir(dir); err != nil {
		return fail("sync-dir", true, err)
	}
	return nil
}

// syncDir flushes directory entries. Windows cannot open directories for sync.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
