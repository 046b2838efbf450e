// SPDX-License-Identifier: MPL-2.0

// Package importer resolves dotted unit names ("a.b.c") to loaded units,
// caching every result for the lifetime of a Resolver.
//
// Loading a concrete unit is delegated to a single, swappable Loader. The
// resolver walks the requested name segment by segment, consults its Store,
// calls the Loader on a miss, and attaches each resolved unit to its parent
// under the segment's bare name.
//
// Two resolution modes exist:
//
//   - Explicit (Request.Level >= 0): the walk is anchored at the root or at a
//     relative ancestor of the requesting unit and only qualified names are
//     tried.
//   - Legacy (Request.Level < 0): the first segment is tried qualified under
//     the requesting unit's package, then unqualified at the root. A
//     successful unqualified fallback records the qualified name as Missing
//     and the rest of the walk continues under the unqualified unit.
//
// Without a from-list Resolve returns the head unit ("import a.b.c" yields
// a); with one it returns the tail unit after making sure every requested
// name is attached to it.
//
// # Concurrency
//
// A Resolver performs no internal synchronization. Callers must serialize
// all calls to Resolve, Reload, and SetLoader. Only the Loader call itself
// may block; no timeout is applied at this layer beyond what the supplied
// context carries into the Loader.
package importer
