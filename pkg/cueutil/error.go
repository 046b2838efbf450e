// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize is the largest CUE document accepted (5 MiB).
const DefaultMaxFileSize int64 = 5 << 20

// ErrFileTooLarge is returned when a document exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

type (
	// FileError lists the problems CUE reported for one file.
	FileError struct {
		// Path is the file the problems belong to.
		Path string
		// Problems holds one "<json-path>: <message>" line per CUE error.
		Problems []string
		// Cause is the original error.
		Cause error
	}

	// FileTooLargeError is returned when a document exceeds the size limit.
	FileTooLargeError struct {
		Path    string
		Size    int64
		MaxSize int64
	}
)

// Error implements the error interface.
func (e *FileError) Error() string {
	switch len(e.Problems) {
	case 0:
		return fmt.Sprintf("%s: %v", e.Path, e.Cause)
	case 1:
		return fmt.Sprintf("%s: %s", e.Path, e.Problems[0])
	default:
		return fmt.Sprintf("%s: validation failed:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
	}
}

// Unwrap returns the original error.
func (e *FileError) Unwrap() error { return e.Cause }

// Error implements the error interface.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.Path, e.Size, e.MaxSize)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError converts err into a *FileError whose problems carry JSON-path
// prefixes, e.g. "exports[0]: conflicting values". A nil err yields nil.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	fe := &FileError{Path: filePath, Cause: err}
	for _, e := range cueerrors.Errors(err) {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}
		if pathStr != "" {
			msg = pathStr + ": " + msg
		}
		fe.Problems = append(fe.Problems, msg)
	}
	return fe
}

// formatPath renders a CUE error path in JSON-path notation, turning
// numeric elements into indices: ["exports", "0"] becomes "exports[0]".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns a *FileTooLargeError when data exceeds maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return &FileTooLargeError{Path: filename, Size: int64(len(data)), MaxSize: maxSize}
	}
	return nil
}
