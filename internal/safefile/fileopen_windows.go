//go:build windows

package safefile

import "os"

// openFileNoFollow opens a file. O_NOFOLLOW is not available on Windows;
// creating symlinks there requires elevated privileges.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens a file for reading.
func openFileNoFollowRead(path string) (*os.File, error) {
	return os.Open(path)
}
