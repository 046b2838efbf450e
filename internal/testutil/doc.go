// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: an in-memory, recording
// unit loader and filesystem helpers that fail the test on error.
package testutil
