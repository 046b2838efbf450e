// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for dotimport.
//
// The root command wires configuration, logging and the filesystem unit
// loader into an importer.Resolver; subcommands resolve names, render the
// resolver cache as a graph, reload units as their files change, and show
// the effective configuration.
package cmd
