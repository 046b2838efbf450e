// SPDX-License-Identifier: MPL-2.0

// Package modname implements dotted, hierarchical unit names ("a.b.c").
//
// A Name is an ordered sequence of non-empty segments joined with '.'.
// The rendered length of a name is bounded; oversized names are rejected
// rather than truncated.
package modname

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Separator joins the segments of a dotted name.
	Separator = "."

	// DefaultMaxLength is the longest rendered name accepted by default.
	DefaultMaxLength = 1024
)

var (
	// ErrEmptySegment is returned when a name contains an empty segment
	// (leading, trailing, or consecutive dots).
	ErrEmptySegment = errors.New("empty name segment")

	// ErrTooLong is returned when a rendered name exceeds the length bound.
	ErrTooLong = errors.New("name too long")

	// ErrPathSeparator is returned when a segment contains a file path
	// separator and so cannot name a single directory entry.
	ErrPathSeparator = errors.New("name segment contains a path separator")

	// ErrBeyondRoot is returned when a relative anchor strips more segments
	// than the context name has.
	ErrBeyondRoot = errors.New("relative name beyond top-level")
)

type (
	// Name is a dotted unit name. The zero value denotes the root namespace.
	Name string

	// InvalidNameError describes why a Name was rejected.
	// It wraps one of ErrEmptySegment, ErrTooLong, ErrPathSeparator or
	// ErrBeyondRoot.
	InvalidNameError struct {
		Value  Name
		Reason error
	}
)

// String returns the dotted form of the name.
func (n Name) String() string { return string(n) }

// IsRoot reports whether n is the root namespace.
func (n Name) IsRoot() bool { return n == "" }

// Segments splits n into its segments. The root name has no segments.
func (n Name) Segments() []string {
	if n.IsRoot() {
		return nil
	}
	return strings.Split(string(n), Separator)
}

// Len returns the number of segments in n.
func (n Name) Len() int {
	if n.IsRoot() {
		return 0
	}
	return strings.Count(string(n), Separator) + 1
}

// Leaf returns the last segment of n.
func (n Name) Leaf() string {
	if i := strings.LastIndex(string(n), Separator); i >= 0 {
		return string(n[i+1:])
	}
	return string(n)
}

// Parent returns n without its last segment, or the root name when n has a
// single segment.
func (n Name) Parent() Name {
	if i := strings.LastIndex(string(n), Separator); i >= 0 {
		return n[:i]
	}
	return ""
}

// Child returns the name of segment seg directly under n.
func (n Name) Child(seg string) Name {
	if n.IsRoot() {
		return Name(seg)
	}
	return Name(string(n) + Separator + seg)
}

// Strip removes count trailing segments from n.
func (n Name) Strip(count int) (Name, error) {
	if count < 0 || count > n.Len() {
		return "", &InvalidNameError{Value: n, Reason: ErrBeyondRoot}
	}
	out := n
	for range count {
		out = out.Parent()
	}
	return out, nil
}

// Validate checks that every segment of n is non-empty and that n is no
// longer than maxLen. The root name is valid.
func (n Name) Validate(maxLen int) error {
	if len(n) > maxLen {
		return &InvalidNameError{Value: n, Reason: ErrTooLong}
	}
	if n.IsRoot() {
		return nil
	}
	for _, seg := range n.Segments() {
		if seg == "" {
			return &InvalidNameError{Value: n, Reason: ErrEmptySegment}
		}
	}
	return nil
}

// ValidatePathSegments checks that no segment of n contains '/' or '\',
// so that each segment maps to exactly one file or directory name.
func (n Name) ValidatePathSegments() error {
	if strings.ContainsAny(string(n), `/\`) {
		return &InvalidNameError{Value: n, Reason: ErrPathSeparator}
	}
	return nil
}

// Error implements the error interface for InvalidNameError.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: %v", string(e.Value), e.Reason)
}

// Unwrap returns the rejection reason for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return e.Reason }

// Anchor computes the base name for an explicit relative lookup of depth
// level issued from the unit named ctx.
//
// Level 0 anchors at the root. For level > 0 the context's package is ctx
// itself when isPackage is set, otherwise ctx's parent; level-1 further
// segments are stripped from it. The anchor of a positive level is never the
// root.
func Anchor(ctx Name, isPackage bool, level int) (Name, error) {
	if level <= 0 {
		return "", nil
	}
	pkg := ctx
	if !isPackage {
		pkg = ctx.Parent()
	}
	if level-1 >= pkg.Len() {
		return "", &InvalidNameError{Value: ctx, Reason: ErrBeyondRoot}
	}
	return pkg.Strip(level - 1)
}
