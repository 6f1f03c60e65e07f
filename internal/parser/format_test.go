package parser

import "testing"

// TestFormatDiagnostic verifies the caret rendering of a set line error.
func TestFormatDiagnostic(t *testing.T) {
	src := "295xEight,8"
	_, diags := ParseSetLine(src)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want one", diags)
	}
	got := FormatDiagnostic(diags[0], src)
	want := "ERROR: expected a number but got \"Eight\"\n\n1| 295xEight,8\n       ^^^^^\n"
	if got != want {
		t.Errorf("FormatDiagnostic =\n%s\nwant\n%s", got, want)
	}
}

// TestFormatDiagnosticLaterLine verifies the prefix width grows with the
// line number and that out-of-range lines render empty.
func TestFormatDiagnosticLaterLine(t *testing.T) {
	src := "# Bench\r\n" + "1\n2\n3\n4\n5\n6\n7\n8\n" + "100qq\n"
	d := Diagnostic{Message: "bad unit", Line: 10, Column: 4, Length: 2}
	want := "ERROR: bad unit\n\n10| 100qq\n       ^^\n"
	if got := FormatDiagnostic(d, src); got != want {
		t.Errorf("FormatDiagnostic =\n%q\nwant\n%q", got, want)
	}

	d = Diagnostic{Message: "gone", Line: 99, Column: 1, Length: 1}
	want = "ERROR: gone\n\n99| \n    ^\n"
	if got := FormatDiagnostic(d, src); got != want {
		t.Errorf("FormatDiagnostic =\n%q\nwant\n%q", got, want)
	}
}

// TestFormatDiagnostics verifies several diagnostics are joined by a blank
// line.
func TestFormatDiagnostics(t *testing.T) {
	src := "a\nb"
	diags := []Diagnostic{
		{Message: "one", Line: 1, Column: 1, Length: 1},
		{Message: "two", Line: 2, Column: 1, Length: 1},
	}
	want := "ERROR: one\n\n1| a\n   ^\n\nERROR: two\n\n2| b\n   ^\n"
	if got := FormatDiagnostics(diags, src); got != want {
		t.Errorf("FormatDiagnostics =\n%q\nwant\n%q", got, want)
	}
}
