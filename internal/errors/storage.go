// ABOUTME: Errors for the on-disk request log location
// ABOUTME: Returned when the database directory cannot be prepared before opening SQLite

package errors

import "fmt"

// StorageDirError names the base directory variable the path was resolved
// from, so the message points at what to fix.
type StorageDirError struct {
	BaseDir string
	Dir     string
	Err     error
}

func NewStorageDirError(baseDir, dir string, err error) *StorageDirError {
	return &StorageDirError{BaseDir: baseDir, Dir: dir, Err: err}
}

func (e *StorageDirError) Error() string {
	return fmt.Sprintf("request log directory %s (under %s) unavailable: %v", e.Dir, e.BaseDir, e.Err)
}

func (e *StorageDirError) Unwrap() error { return e.Err }

func (e *StorageDirError) Type() string { return "storage_dir_error" }
