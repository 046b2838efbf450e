// SPDX-License-Identifier: MPL-2.0

package importer

import (
	"errors"
	"fmt"

	"github.com/invowk/dotimport/pkg/modname"
)

var (
	// ErrInvalidName is returned for an empty segment or an oversized name.
	ErrInvalidName = errors.New("invalid unit name")

	// ErrNotFound is returned when a segment or from-list name cannot be resolved.
	ErrNotFound = errors.New("no unit named")

	// ErrInconsistentState is returned when a reload target does not match its cache entry.
	ErrInconsistentState = errors.New("unit not in cache")

	// ErrParentNotLoaded is returned when reloading a dotted name whose parent is not cached.
	ErrParentNotLoaded = errors.New("parent unit not loaded")

	// ErrLoaderFailure is returned when the Loader itself fails.
	ErrLoaderFailure = errors.New("loader failed")

	// ErrAttachFailed is returned when a loaded submodule cannot be stored
	// as an attribute of its parent.
	ErrAttachFailed = errors.New("cannot attach unit to parent")

	// ErrNoLoader is returned when no Loader has been set.
	ErrNoLoader = errors.New("no loader set")

	// ErrCircularLoad is returned when a unit is requested again while its
	// own load is still in progress.
	ErrCircularLoad = errors.New("circular load")
)

type (
	// InvalidNameError reports a rejected name. It wraps ErrInvalidName and
	// the modname reason (modname.ErrEmptySegment, modname.ErrTooLong, ...).
	InvalidNameError struct {
		Name   string
		Reason error
	}

	// NotFoundError reports a name that could not be resolved.
	NotFoundError struct {
		// Name is the full candidate name that was tried.
		Name modname.Name
		// Segment is the unresolved segment.
		Segment string
	}

	// InconsistentStateError reports a reload target that is not the
	// current cache value for its declared name.
	InconsistentStateError struct {
		Name modname.Name
	}

	// ParentNotLoadedError reports a reload whose parent is not cached.
	ParentNotLoadedError struct {
		Name   modname.Name
		Parent modname.Name
	}

	// LoaderError wraps an error returned by the Loader. Both ErrLoaderFailure
	// and the loader's own error are reachable through errors.Is/As.
	LoaderError struct {
		Name modname.Name
		Err  error
	}

	// AttachError reports a parent that refused the attribute for a loaded
	// submodule. The submodule is not cached.
	AttachError struct {
		Parent modname.Name
		Name   modname.Name
		Err    error
	}

	// CircularLoadError reports a reentrant load of a unit still being loaded.
	CircularLoadError struct {
		Name modname.Name
	}
)

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid unit name %q: %v", e.Name, e.Reason)
}

func (e *InvalidNameError) Unwrap() []error { return []error{ErrInvalidName, e.Reason} }

func (e *NotFoundError) Error() string {
	if string(e.Name) == e.Segment {
		return fmt.Sprintf("no unit named %s", e.Segment)
	}
	return fmt.Sprintf("no unit named %s (tried %s)", e.Segment, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *InconsistentStateError) Error() string {
	if e.Name.IsRoot() {
		return "reload: unit has no declared name"
	}
	return fmt.Sprintf("reload: unit %s not in cache", e.Name)
}

func (e *InconsistentStateError) Unwrap() error { return ErrInconsistentState }

func (e *ParentNotLoadedError) Error() string {
	return fmt.Sprintf("reload: parent %s of %s not in cache", e.Parent, e.Name)
}

func (e *ParentNotLoadedError) Unwrap() error { return ErrParentNotLoaded }

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Name, e.Err)
}

func (e *LoaderError) Unwrap() []error { return []error{ErrLoaderFailure, e.Err} }

func (e *AttachError) Error() string {
	return fmt.Sprintf("attaching %s to %s: %v", e.Name, e.Parent, e.Err)
}

func (e *AttachError) Unwrap() []error { return []error{ErrAttachFailed, e.Err} }

func (e *CircularLoadError) Error() string {
	return fmt.Sprintf("circular load of %s", e.Name)
}

func (e *CircularLoadError) Unwrap() error { return ErrCircularLoad }

// invalidName converts a modname validation error into an InvalidNameError.
func invalidName(name string, err error) error {
	var nameErr *modname.InvalidNameError
	if errors.As(err, &nameErr) {
		return &InvalidNameError{Name: name, Reason: nameErr.Reason}
	}
	return &InvalidNameError{Name: name, Reason: err}
}
