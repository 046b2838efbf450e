// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable, user-facing errors: what failed, on
// which resource, and how to fix it. Hints maps resolver error kinds to
// remediation suggestions.
package issue
