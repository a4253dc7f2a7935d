package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilename is returned for names that cannot be stored as a flat key
var ErrInvalidFilename = errors.New("invalid filename")

// StagingPrefix marks uploads still being written by the directory backend.
// Names carrying it are reserved.
const StagingPrefix = ".upload-"

// File is a named blob held by the file store
type File struct {
	// The unique name of the file
	Name string `json:"filename"`

	// The raw file content
	Content []byte `json:"-"`
}

// FileInfo describes a stored file without carrying its content
type FileInfo struct {
	Name string `json:"filename"`

	// Content length in bytes
	Size int64 `json:"size"`

	// sha256 digest of the content, e.g. "sha256:ab12..."
	Digest string `json:"digest"`

	// Detected MIME type of the content
	ContentType string `json:"content_type"`
}

// ValidateFilename checks that name is a plain base name.
// Names are used as flat keys by every backend, including the directory
// backend, so separators and dot entries are rejected.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidFilename)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, name)
	}
	if strings.HasPrefix(name, StagingPrefix) {
		return fmt.Errorf("%w: %q uses the reserved prefix %q", ErrInvalidFilename, name, StagingPrefix)
	}
	return nil
}

// GenerateRedisKey creates the key holding the file content in Redis
func (f *File) GenerateRedisKey() string {
	// Format: fileserver:file:{filename}
	return FileRedisKey(f.Name)
}

// FileRedisKey returns the content key for filename
func FileRedisKey(filename string) string {
	return fmt.Sprintf("fileserver:file:%s", filename)
}
