package transfer

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultAllowedExtensions are the file types accepted for upload.
var DefaultAllowedExtensions = []string{".txt", ".pdf", ".jpg", ".png"}

// validateUpload checks that path is a non-empty regular file with an
// allowed extension. Checks run in that order and stop at the first failure.
// It returns the file size on success.
func validateUpload(path string, allowed []string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, &ValidationError{Path: path, Err: ErrFileNotFound}
	}

	if info.Size() == 0 {
		return 0, &ValidationError{Path: path, Err: ErrEmptyFile}
	}

	ext := filepath.Ext(path)
	if !slices.Contains(allowed, strings.ToLower(ext)) {
		return 0, &ValidationError{Path: path, Err: ErrExtensionNotAllowed, Ext: ext}
	}

	return info.Size(), nil
}
