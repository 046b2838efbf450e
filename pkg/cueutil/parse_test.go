// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:   string
	count?: int & >=0
}
`

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: 2`), "#Doc", WithFilename("doc.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	if res.Value.Name != "x" || res.Value.Count != 2 {
		t.Errorf("decoded %+v", *res.Value)
	}

	_, err = ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: -1`), "#Doc", WithFilename("doc.cue"))
	if err == nil || !strings.Contains(err.Error(), "doc.cue") {
		t.Errorf("ParseAndDecode() error = %v, want a doc.cue validation error", err)
	}

	_, err = ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x"`), "#Doc", WithMaxFileSize(2))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ParseAndDecode() error = %v, want ErrFileTooLarge", err)
	}
}

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	m, err := DecodeMap([]byte("greeting: \"hi\"\nexports: [\"a\", \"b\"]\n"), WithFilename("unit.cue"))
	if err != nil {
		t.Fatalf("DecodeMap() error: %v", err)
	}
	if m["greeting"] != "hi" {
		t.Errorf("greeting = %v", m["greeting"])
	}
	exports, ok := m["exports"].([]any)
	if !ok || len(exports) != 2 {
		t.Errorf("exports = %#v", m["exports"])
	}

	if _, err := DecodeMap([]byte("x: int\n"), WithFilename("unit.cue")); err == nil {
		t.Error("DecodeMap() accepted a non-concrete value")
	}
	if _, err := DecodeMap([]byte("[1, 2]\n"), WithFilename("unit.cue")); err == nil {
		t.Error("DecodeMap() accepted a non-struct document")
	}
}
