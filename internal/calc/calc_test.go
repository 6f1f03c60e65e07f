package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/claude/gymlog/internal/parser"
)

// TestE1RM verifies both formulas, RPE adjustment and the single rep case.
func TestE1RM(t *testing.T) {
	tests := []struct {
		set     string
		formula Formula
		want    float64
	}{
		{"100x5", Brzycki, 112.5},
		{"100x5", Epley, 116.67},
		{"100x5@8", Brzycki, 120},
		{"100x3,5,4", Brzycki, 112.5},
		{"200x1", Brzycki, 200},
		{"200x1", Epley, 200},
		{"100kg x5", Brzycki, 112.5},
	}
	for _, tt := range tests {
		got, err := E1RM(tt.set, tt.formula)
		if err != nil {
			t.Errorf("E1RM(%q, %s) error: %v", tt.set, tt.formula, err)
			continue
		}
		if got != tt.want {
			t.Errorf("E1RM(%q, %s) = %v, want %v", tt.set, tt.formula, got, tt.want)
		}
	}
}

// TestE1RMErrors verifies that incomplete or malformed sets are rejected.
func TestE1RMErrors(t *testing.T) {
	for _, set := range []string{"100", "x5", "bw x5"} {
		if _, err := E1RM(set, Brzycki); !errors.Is(err, ErrMissingWeightReps) {
			t.Errorf("E1RM(%q) error = %v, want ErrMissingWeightReps", set, err)
		}
	}

	for _, set := range []string{"100x37", "100x40", "100x30@3"} {
		if _, err := E1RM(set, Brzycki); !errors.Is(err, ErrTooManyReps) {
			t.Errorf("E1RM(%q) error = %v, want ErrTooManyReps", set, err)
		}
	}
	if got, err := E1RM("100x40", Epley); err != nil || got != 233.33 {
		t.Errorf("E1RM(100x40, epley) = %v, %v, want 233.33", got, err)
	}

	_, err := E1RM("100qq x5", Brzycki)
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("E1RM(100qq x5) error = %v, want *parser.ParseError", err)
	}
	if len(perr.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want one", perr.Diagnostics)
	}
}

// TestConvertRPE covers the three target shapes.
func TestConvertRPE(t *testing.T) {
	tests := []struct {
		from, to string
		want     Conversion
	}{
		{"100x5@8", "x8", Conversion{Field: "weight", Value: 96.67, Text: "96.67"}},
		{"100x5@8", "90@9", Conversion{Field: "reps", Value: 9, Text: "x9"}},
		{"100x5@8", "90", Conversion{Field: "reps", Value: 10, Text: "x10"}},
		{"100x5@8", "90x6", Conversion{Field: "rpe", Value: 6, Text: "@6"}},
		{"100x5@8", "95x5", Conversion{Field: "rpe", Value: 6.5, Text: "@6.5"}},
		{"100x5@8", "110x4", Conversion{Field: "rpe", Value: 10, Text: "@10"}},
		{"100x5@8", "110x5", Conversion{Field: "rpe", Value: 11, Text: ">@10"}},
	}
	for _, tt := range tests {
		got, err := ConvertRPE(tt.from, tt.to, Brzycki)
		if err != nil {
			t.Errorf("ConvertRPE(%q, %q) error: %v", tt.from, tt.to, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ConvertRPE(%q, %q) = %+v, want %+v", tt.from, tt.to, got, tt.want)
		}
	}
}

// TestConvertRPEErrors verifies the reference set must be complete and the
// target must leave something to compute.
func TestConvertRPEErrors(t *testing.T) {
	if _, err := ConvertRPE("100", "x5", Brzycki); !errors.Is(err, ErrMissingWeightReps) {
		t.Errorf("incomplete reference error = %v", err)
	}
	if _, err := ConvertRPE("100x5", "90x6@8", Brzycki); !errors.Is(err, ErrOverdetermined) {
		t.Errorf("full target error = %v", err)
	}
}

// TestFormulaInverses verifies Weight and Reps invert Max for both formulas.
func TestFormulaInverses(t *testing.T) {
	for _, f := range []Formula{Brzycki, Epley} {
		for reps := 2.0; reps <= 12; reps++ {
			oneRM := f.Max(100, reps)
			if w := f.Weight(oneRM, reps); math.Abs(w-100) > 1e-9 {
				t.Errorf("%s: Weight(Max(100, %v)) = %v, want 100", f, reps, w)
			}
			if r := f.Reps(oneRM, 100); math.Abs(r-reps) > 1e-9 {
				t.Errorf("%s: Reps(Max(100, %v)) = %v, want %v", f, reps, r, reps)
			}
		}
	}
}

// TestParseFormula verifies names are case-insensitive with a default.
func TestParseFormula(t *testing.T) {
	for in, want := range map[string]Formula{"": Brzycki, "Epley": Epley, " BRZYCKI ": Brzycki} {
		got, err := ParseFormula(in)
		if err != nil || got != want {
			t.Errorf("ParseFormula(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormula("lombardi"); err == nil {
		t.Error("ParseFormula(lombardi) succeeded")
	}
}

// TestConvertRPETooManyReps verifies Brzycki rejects rep counts at or past
// its asymptote on either side of a conversion.
func TestConvertRPETooManyReps(t *testing.T) {
	if _, err := ConvertRPE("100x37", "x5", Brzycki); !errors.Is(err, ErrTooManyReps) {
		t.Errorf("reference 100x37 error = %v, want ErrTooManyReps", err)
	}
	if _, err := ConvertRPE("100x5", "x40", Brzycki); !errors.Is(err, ErrTooManyReps) {
		t.Errorf("target x40 error = %v, want ErrTooManyReps", err)
	}
}
