package httphandler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Allowed upload extensions, matching the hosting platform's accepted
// container and image formats.
var (
	videoExtensions     = map[string]bool{".mp4": true, ".mov": true, ".avi": true}
	thumbnailExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
)

// validateFileHeader checks the upload's extension and size before any
// content is spooled to disk.
func validateFileHeader(header *multipart.FileHeader, allowed map[string]bool, maxBytes int64) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowed[ext] {
		return fmt.Errorf("invalid file type %q for %q; allowed: %s", ext, header.Filename, extensionList(allowed))
	}
	if header.Size > maxBytes {
		return fmt.Errorf("file %q is %d bytes, exceeding the %d byte limit", header.Filename, header.Size, maxBytes)
	}
	return nil
}

func extensionList(allowed map[string]bool) string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// spoolToTemp copies the upload into a temporary file and returns its path.
// The caller removes the file once the upload attempt finishes.
func spoolToTemp(src multipart.File, pattern string) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}

func removeTemp(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil {
		logger.Warn("removing temp file failed", "path", path, "error", err)
	}
}
