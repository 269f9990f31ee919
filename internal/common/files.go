package common

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists reports whether path names an existing regular file
func (fm *FileManager) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ReadFile reads path, refusing files larger than maxSize when maxSize > 0
func (fm *FileManager) ReadFile(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, WrapError(ErrNotFound, fmt.Sprintf("file not found: %s", path))
		}
		return nil, WrapError(err, fmt.Sprintf("failed to get file info for: %s", path))
	}
	if info.IsDir() {
		return nil, NewValidationError("path", path, "is a directory")
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, NewValidationError("path", path, fmt.Sprintf("file size %d exceeds limit %d", info.Size(), maxSize))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to open file: %s", path))
	}
	defer func() {
		if err := file.Close(); err != nil {
			fm.logger.Error().Err(err).Str("path", path).Msg("Failed to close file.")
		}
	}()

	var reader io.Reader = file
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to read file content: %s", path))
	}
	return content, nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}
	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}
	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// WriteFile writes data through a temporary sibling and renames it into place,
// creating parent directories as needed.
func (fm *FileManager) WriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fm.EnsureDirectory(dir, 0755); err != nil {
		return WrapError(err, "failed to create parent directories for: "+path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return WrapError(err, "failed to create temporary file for: "+path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return WrapError(err, "failed to write file: "+path)
	}
	if err := tmp.Close(); err != nil {
		return WrapError(err, "failed to close file: "+path)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return WrapError(err, "failed to set permissions on: "+path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return WrapError(err, "failed to move file into place: "+path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written")
	return nil
}
