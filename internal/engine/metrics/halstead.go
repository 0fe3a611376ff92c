package metrics

import "math"

// Halstead carries the component counts and derived measures for one scope
// (a function unit or a whole file).
type Halstead struct {
	DistinctOperators int     `json:"distinct_operators"`
	DistinctOperands  int     `json:"distinct_operands"`
	TotalOperators    int     `json:"total_operators"`
	TotalOperands     int     `json:"total_operands"`
	Vocabulary        int     `json:"vocabulary"`
	Length            int     `json:"length"`
	Volume            float64 `json:"volume"`
	Difficulty        float64 `json:"difficulty"`
	Effort            float64 `json:"effort"`
}

// HalsteadFromTallies derives the full measure set from operator and operand
// occurrence tallies. Volume is zero when the vocabulary is degenerate
// (≤ 1 distinct token) and Difficulty is zero when no operands exist, so the
// function is total over every input.
func HalsteadFromTallies(operators, operands map[string]int) Halstead {
	h := Halstead{
		DistinctOperators: len(operators),
		DistinctOperands:  len(operands),
	}
	for _, n := range operators {
		h.TotalOperators += n
	}
	for _, n := range operands {
		h.TotalOperands += n
	}

	h.Vocabulary = h.DistinctOperators + h.DistinctOperands
	h.Length = h.TotalOperators + h.TotalOperands

	if h.Vocabulary > 1 {
		h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	}
	if h.DistinctOperands > 0 {
		h.Difficulty = (float64(h.DistinctOperators) / 2) *
			(float64(h.TotalOperands) / float64(h.DistinctOperands))
	}
	h.Effort = h.Difficulty * h.Volume

	return h
}
