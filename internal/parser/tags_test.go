package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestParseTags verifies keys with and without values of every kind.
func TestParseTags(t *testing.T) {
	c := NewCursor(`{belt, band: "red", tempo: 3, "rest time": 90, grip: wide}`)
	got := parseTags(c)
	want := []Tag{
		{Key: "belt"},
		{Key: "band", Value: "red"},
		{Key: "tempo", Value: 3.0},
		{Key: "rest time", Value: 90.0},
		{Key: "grip", Value: "wide"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if !c.AtEnd() {
		t.Errorf("cursor at %+v, want end of input", c.Pos())
	}
}

// TestParseTagsEmpty verifies that {} is an empty, non-nil list.
func TestParseTagsEmpty(t *testing.T) {
	c := NewCursor("{ }")
	got := parseTags(c)
	if got == nil || len(got) != 0 {
		t.Errorf("tags = %#v, want empty non-nil", got)
	}
	if diags := c.Diagnostics(); len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
}

// TestParseTagsRecovery verifies that accumulated pairs survive errors.
func TestParseTagsRecovery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Tag
		diag Diagnostic
	}{
		{
			name: "missing closing brace",
			in:   "{belt, band: red",
			want: []Tag{{Key: "belt"}, {Key: "band", Value: "red"}},
			diag: Diagnostic{Message: "expected } but got end of input", Line: 1, Column: 17, Length: 1},
		},
		{
			name: "missing value",
			in:   "{a: , b}",
			want: []Tag{{Key: "b"}},
			diag: Diagnostic{Message: "expected number, string or identifier but got ,", Line: 1, Column: 5, Length: 1},
		},
		{
			name: "missing separator",
			in:   "{a b, c}",
			want: []Tag{{Key: "a"}, {Key: "c"}},
			diag: Diagnostic{Message: "expected , or } but got b", Line: 1, Column: 4, Length: 1},
		},
		{
			name: "bad key",
			in:   "{3: x}",
			want: []Tag{},
			diag: Diagnostic{Message: "expected identifier or string but got 3", Line: 1, Column: 2, Length: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.in)
			got := parseTags(c)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
			diags := c.Diagnostics()
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want exactly one", diags)
			}
			if diags[0] != tt.diag {
				t.Errorf("diagnostic = %+v, want %+v", diags[0], tt.diag)
			}
		})
	}
}
