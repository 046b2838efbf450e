// SPDX-License-Identifier: MPL-2.0

package unitfs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormat_IsValid(t *testing.T) {
	t.Parallel()

	for _, f := range DefaultFormats() {
		if ok, errs := f.IsValid(); !ok {
			t.Errorf("Format(%q).IsValid() = %v", f, errs)
		}
	}

	ok, errs := Format("json").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidFormat) {
		t.Fatalf("IsValid() = %v, %v, want ErrInvalidFormat", ok, errs)
	}
	var fe *InvalidFormatError
	if !errors.As(errs[0], &fe) || fe.Value != "json" {
		t.Errorf("InvalidFormatError = %+v", fe)
	}
}

func TestSplitExports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fields  map[string]any
		want    []string
		wantOK  bool
		wantErr bool
	}{
		{"absent", map[string]any{"a": 1}, nil, false, false},
		{"strings", map[string]any{"exports": []any{"x", "y"}}, []string{"x", "y"}, true, false},
		{"empty list", map[string]any{"exports": []any{}}, []string{}, true, false},
		{"non-string item", map[string]any{"exports": []any{"x", 2}}, nil, false, true},
		{"not a list", map[string]any{"exports": "x"}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := splitExports(tt.fields, "u.cue")
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitExports() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("exports mismatch (-want +got):\n%s", diff)
			}
			if _, still := tt.fields[ExportsField]; still && !tt.wantErr {
				t.Error("exports field not removed from the attribute map")
			}
		})
	}
}

func TestFormat_Decode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		data   string
	}{
		{FormatCUE, `name: "n"`},
		{FormatYAML, "name: n\n"},
		{FormatTOML, "name = \"n\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			got, err := tt.format.decode([]byte(tt.data), "u"+tt.format.Ext())
			if err != nil {
				t.Fatalf("decode() error: %v", err)
			}
			if got["name"] != "n" {
				t.Errorf("name = %v", got["name"])
			}
		})
	}
}
