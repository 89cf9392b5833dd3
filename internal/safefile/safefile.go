// Package safefile creates files without following symlinks and builds
// safe file names from user-provided titles.
package safefile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateExclusive creates a new file at path, failing if anything exists there.
func CreateExclusive(path string, perm os.FileMode) (*os.File, error) {
	return openFileNoFollow(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
}

// OpenRead opens path for reading, refusing a symlink as the final component.
func OpenRead(path string) (*os.File, error) {
	return openFileNoFollowRead(path)
}

// EnsureDir creates dir (and parents) with owner-only permissions and
// rejects it if it is a symlink.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	info, err := os.Lstat(dir)
	if err != nil {
		return fmt.Errorf("stat directory: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("directory %s is a symlink", dir)
	}
	return nil
}

// WriteAtomic writes the contents of src to dst through a temp file in the
// same directory, then renames it into place. dst must not be a symlink.
func WriteAtomic(dst string, write func(f *os.File) error) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generate temp file name: %w", err)
	}
	tempPath := dst + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := CreateExclusive(tempPath, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(dst); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("destination %s is a symlink", dst)
	}
	if err := os.Rename(tempPath, dst); err != nil {
		return fmt.Errorf("finalize file: %w", err)
	}

	success = true
	return nil
}

// SanitizeFilename makes s safe to use as a single file name component.
// Path separators and reserved characters become dashes, control
// characters are dropped, and an empty result becomes fallback.
func SanitizeFilename(s, fallback string) string {
	s = strings.ReplaceAll(s, "..", "-")

	var result strings.Builder
	for _, r := range s {
		switch {
		case r < 32 || r == 127:
			// drop control characters
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result.WriteRune('-')
		default:
			result.WriteRune(r)
		}
	}
	s = strings.TrimSpace(result.String())

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-. ")

	if runes := []rune(s); len(runes) > 100 {
		s = string(runes[:100])
	}
	if s == "" || filepath.Base(s) != s {
		return fallback
	}
	return s
}
