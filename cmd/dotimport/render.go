// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/modname"
)

// sourceLookup reports the file a unit was loaded from.
type sourceLookup func(modname.Name) (string, bool)

func renderField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label), value)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return strings.Join(items, ", ")
}

// renderUnit prints a unit's name, kind, source, attributes and exports.
func renderUnit(w io.Writer, h importer.Handle, source sourceLookup) {
	name, _ := h.FullName()
	renderField(w, "Unit", KeyStyle.Render(name))

	kind := "leaf"
	if paths, ok := h.SearchPaths(); ok {
		kind = "package"
		renderField(w, "Paths", joinOrNone(paths))
	}
	renderField(w, "Kind", kind)

	if src, ok := source(modname.Name(name)); ok {
		renderField(w, "Source", src)
	}
	if u, ok := h.(*importer.Unit); ok {
		renderField(w, "Attributes", joinOrNone(u.AttrNames()))
	}
	if exports, ok := h.Exports(); ok {
		renderField(w, "Exports", joinOrNone(exports))
	}
}

// renderCache prints one line per cache record.
func renderCache(w io.Writer, records []importer.Record) {
	fmt.Fprintln(w, TitleStyle.Render("Cache"))
	for _, rec := range records {
		state := rec.State.String()
		switch rec.State {
		case importer.Found:
			state = SuccessStyle.Render(fmt.Sprintf("%-8s", state))
		default:
			state = WarningStyle.Render(fmt.Sprintf("%-8s", state))
		}
		fmt.Fprintf(w, "  %s %s\n", state, rec.Name)
	}
}
