// Package metrics computes software-complexity metrics from the raw
// structural surveys produced by the visitor. Every function here is pure
// and deterministic: identical input always yields identical output.
package metrics

import (
	"fmt"
	"math"

	"gauge/internal/core/errors"
	"gauge/internal/engine/visitor"
)

// Sample is the computed metric set for one function unit.
type Sample struct {
	Cyclomatic int               `json:"cyclomatic"`
	Cognitive  int               `json:"cognitive"`
	Halstead   Halstead          `json:"halstead"`
	ABC        ABC               `json:"abc"`
	Exits      int               `json:"exit_points"`
	Parameters int               `json:"parameters"`
	Lines      visitor.LineTally `json:"lines"`
}

// ABC is the assignment/branch/conditional vector and its magnitude.
type ABC struct {
	Assignments  int     `json:"assignments"`
	Branches     int     `json:"branches"`
	Conditionals int     `json:"conditionals"`
	Magnitude    float64 `json:"magnitude"`
}

// Compute derives the full metric sample for one function unit. Negative raw
// counts indicate a corrupted unit and yield a CodeMetric error; they cannot
// be produced by this module's own visitor.
func Compute(unit *visitor.FunctionUnit) (Sample, error) {
	if unit == nil {
		return Sample{}, errors.New(errors.CodeMetric, "metric computation on nil function unit")
	}
	for name, n := range map[string]int{
		"assignments": unit.Assignments,
		"calls":       unit.Calls,
		"conditions":  unit.Conditions,
		"exits":       unit.Exits,
		"parameters":  unit.Parameters,
	} {
		if n < 0 {
			return Sample{}, errors.New(errors.CodeMetric,
				fmt.Sprintf("negative %s count %d in function %q", name, n, unit.Name))
		}
	}

	return Sample{
		Cyclomatic: Cyclomatic(unit.Decisions),
		Cognitive:  Cognitive(unit.Decisions),
		Halstead:   HalsteadFromTallies(unit.Operators, unit.Operands),
		ABC:        ABCVector(unit.Assignments, unit.Calls, unit.Conditions),
		Exits:      unit.Exits,
		Parameters: unit.Parameters,
		Lines:      unit.Lines,
	}, nil
}

// Cyclomatic is 1 plus the count of decision points: branches, else-if
// continuations, case arms, ternaries and each logical operator occurrence.
// Switch heads and bare else blocks add paths through their arms, not
// themselves. A branch-free body scores 1.
func Cyclomatic(decisions []visitor.Decision) int {
	score := 1
	for _, d := range decisions {
		switch d.Class {
		case visitor.ClassBranch, visitor.ClassElseIf, visitor.ClassCase, visitor.ClassBoolean:
			score++
		}
	}
	return score
}

// Cognitive follows the published cognitive-complexity model: flow-breaking
// constructs cost one plus their nesting level, else/else-if continuations
// cost a flat one, case arms ride on their switch head, and same-operator
// boolean chains cost once per chain.
func Cognitive(decisions []visitor.Decision) int {
	score := 0
	for _, d := range decisions {
		switch d.Class {
		case visitor.ClassBranch, visitor.ClassSwitch:
			score += 1 + d.Nesting
		case visitor.ClassElseIf, visitor.ClassElse:
			score++
		case visitor.ClassBoolean:
			if !d.ChainContinues {
				score++
			}
		}
	}
	return score
}

// ABCVector assembles the assignment/branch/conditional vector; branch here
// is the call count per the classic ABC definition.
func ABCVector(assignments, calls, conditionals int) ABC {
	return ABC{
		Assignments:  assignments,
		Branches:     calls,
		Conditionals: conditionals,
		Magnitude: math.Sqrt(float64(assignments*assignments) +
			float64(calls*calls) + float64(conditionals*conditionals)),
	}
}

// FileMaintainability derives the file-level maintainability index from the
// per-function samples, falling back to whole-file volume and logical lines
// when no functions were recognized.
func FileMaintainability(samples []Sample, fileHalstead Halstead, fileLines visitor.LineTally) float64 {
	if len(samples) == 0 {
		return Maintainability(fileHalstead.Volume, 0, float64(fileLines.Logical))
	}

	var volume, cyclomatic, logical float64
	for _, s := range samples {
		volume += s.Halstead.Volume
		cyclomatic += float64(s.Cyclomatic)
		logical += float64(s.Lines.Logical)
	}
	n := float64(len(samples))
	return Maintainability(volume/n, cyclomatic/n, logical/n)
}
