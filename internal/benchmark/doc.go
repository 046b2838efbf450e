// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the resolver hot paths, used to
// generate PGO profiles:
//   - unit file decoding (CUE, YAML, TOML)
//   - cold and cached resolution through the filesystem loader
//   - from-list wildcard expansion
//
// To generate a profile, run:
//
//	go test -run=^$ -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
