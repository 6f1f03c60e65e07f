// Package calc estimates one-rep maxes and converts between rep, weight and
// RPE targets using the Brzycki or Epley formulas.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/gymlog/internal/parser"
)

// Formula is a one-rep max estimation formula.
type Formula string

const (
	Brzycki Formula = "brzycki"
	Epley   Formula = "epley"
)

var (
	ErrMissingWeightReps = errors.New("weight and reps are required")
	ErrOverdetermined    = errors.New("cannot convert to a set with weight, reps and rpe all given")
	ErrTooManyReps       = errors.New("too many reps to estimate a one-rep max")
)

// ParseFormula accepts a formula name in any case. The empty string selects
// Brzycki.
func ParseFormula(s string) (Formula, error) {
	switch f := Formula(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Brzycki, nil
	case Brzycki, Epley:
		return f, nil
	}
	return "", fmt.Errorf("unknown e1rm formula %q (want brzycki or epley)", s)
}

// Max estimates the one-rep max for weight lifted for reps.
func (f Formula) Max(weight, reps float64) float64 {
	if reps == 1 {
		return weight
	}
	if f == Epley {
		return weight * (1 + reps/30)
	}
	return weight * 36 / (37 - reps)
}

// checkReps rejects rep counts the formula cannot handle. Brzycki is only
// defined below 37 reps.
func (f Formula) checkReps(reps float64) error {
	if f != Epley && reps >= 37 {
		return fmt.Errorf("%v reps with %s: %w", reps, f, ErrTooManyReps)
	}
	return nil
}

// oneRepMax is Max with the rep count and the result checked.
func (f Formula) oneRepMax(weight, reps float64) (float64, error) {
	if err := f.checkReps(reps); err != nil {
		return 0, err
	}
	m := f.Max(weight, reps)
	if math.IsInf(m, 0) || math.IsNaN(m) || m <= 0 {
		return 0, fmt.Errorf("%v reps with %s: %w", reps, f, ErrTooManyReps)
	}
	return m, nil
}

// Weight is the load that can be lifted for reps given a one-rep max.
func (f Formula) Weight(max, reps float64) float64 {
	if f == Epley {
		return max / (1 + reps/30)
	}
	return max * (37 - reps) / 36
}

// Reps is the number of reps possible at weight given a one-rep max.
func (f Formula) Reps(max, weight float64) float64 {
	if f == Epley {
		if weight == 0 {
			return 0
		}
		return 30 * (max/weight - 1)
	}
	if max == 0 {
		return 0
	}
	return 37 - 36*weight/max
}

// SetData is the part of a set the calculator works with. Reps is the
// highest rep count on the line, plus the reps left in reserve implied by
// the RPE, so "100x5@8" counts as 7 reps to failure.
type SetData struct {
	Weight float64
	Reps   float64
	RPE    *float64
}

// ReadSet parses a set expression like "100x5@8".
func ReadSet(expr string) (SetData, error) {
	set, diags := parser.ParseSetLine(expr)
	if len(diags) > 0 {
		return SetData{}, fmt.Errorf("invalid set %q (use workout file syntax, e.g. 100x5@8): %w",
			expr, &parser.ParseError{Diagnostics: diags})
	}

	var d SetData
	if set.Weight != nil && !set.Weight.Bodyweight {
		d.Weight = set.Weight.Value
	}
	d.RPE = set.RPE
	if len(set.Reps) > 0 {
		top := set.Reps[0]
		for _, r := range set.Reps[1:] {
			top = max(top, r)
		}
		rpe := 10.0
		if set.RPE != nil {
			rpe = *set.RPE
		}
		if top > 0 {
			d.Reps = float64(top) + (10 - rpe)
		}
	}
	return d, nil
}

// E1RM estimates the one-rep max of a set expression, rounded to 2 decimals.
func E1RM(expr string, f Formula) (float64, error) {
	d, err := ReadSet(expr)
	if err != nil {
		return 0, err
	}
	if d.Weight == 0 || d.Reps == 0 {
		return 0, ErrMissingWeightReps
	}
	m, err := f.oneRepMax(d.Weight, d.Reps)
	if err != nil {
		return 0, err
	}
	return Round2(m), nil
}

// Conversion is the missing value of a target set.
type Conversion struct {
	// Field is "reps", "weight" or "rpe".
	Field string  `json:"field"`
	Value float64 `json:"value"`
	// Text is the value in workout file syntax: "x8", "102.5", "@8.5" or ">@10".
	Text string `json:"text"`
}

// ConvertRPE takes a reference set with weight and reps and a target set
// with one value left out, and fills in the missing value:
//
//	ConvertRPE("100x5@8", "x8", Brzycki)   // weight for 8 reps at RPE 10
//	ConvertRPE("100x5@8", "90@9", Brzycki) // reps at 90 for RPE 9
//	ConvertRPE("100x5@8", "90x6", Brzycki) // RPE of 90x6
func ConvertRPE(from, to string, f Formula) (Conversion, error) {
	ref, err := ReadSet(from)
	if err != nil {
		return Conversion{}, err
	}
	if ref.Weight == 0 || ref.Reps == 0 {
		return Conversion{}, fmt.Errorf("reference set: %w", ErrMissingWeightReps)
	}
	target, err := ReadSet(to)
	if err != nil {
		return Conversion{}, err
	}
	oneRM, err := f.oneRepMax(ref.Weight, ref.Reps)
	if err != nil {
		return Conversion{}, fmt.Errorf("reference set: %w", err)
	}

	switch {
	case target.Reps == 0:
		reserve := 0.0
		if target.RPE != nil {
			reserve = 10 - *target.RPE
		}
		reps := max(0, math.Floor(f.Reps(oneRM, target.Weight)-reserve))
		return Conversion{Field: "reps", Value: reps, Text: "x" + formatFloat(reps)}, nil
	case target.Weight == 0:
		if err := f.checkReps(target.Reps); err != nil {
			return Conversion{}, err
		}
		w := max(0, Round2(f.Weight(oneRM, target.Reps)))
		return Conversion{Field: "weight", Value: w, Text: formatFloat(w)}, nil
	case target.RPE == nil:
		spare := f.Reps(oneRM, target.Weight) - target.Reps
		rpe := 10 - math.Floor(2*spare)/2
		if rpe > 10 {
			return Conversion{Field: "rpe", Value: rpe, Text: ">@10"}, nil
		}
		return Conversion{Field: "rpe", Value: rpe, Text: "@" + formatFloat(rpe)}, nil
	}
	return Conversion{}, ErrOverdetermined
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
