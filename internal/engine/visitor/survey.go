package visitor

// DecisionClass partitions the control-flow events recorded during traversal.
// The metrics engine maps each class onto its cyclomatic and cognitive cost.
type DecisionClass int

const (
	// ClassBranch covers if, loops, catch clauses and ternaries.
	ClassBranch DecisionClass = iota
	// ClassSwitch is the head of a switch/match/select construct.
	ClassSwitch
	// ClassCase is one non-default arm of a switch construct.
	ClassCase
	// ClassElseIf is an else-if / elif continuation of a branch chain.
	ClassElseIf
	// ClassElse is a bare else with no condition.
	ClassElse
	// ClassBoolean is one logical AND/OR operator occurrence.
	ClassBoolean
)

// Decision is one raw control-flow event inside a function body.
type Decision struct {
	Class DecisionClass
	// Nesting is the cognitive nesting level at the construct, relative to
	// the enclosing function.
	Nesting int
	// Operator is the logical operator spelling for ClassBoolean events.
	Operator string
	// ChainContinues marks a boolean operator that extends a same-operator
	// chain; chains cost once per chain, not once per operator.
	ChainContinues bool
}

// LineTally is the per-language-classified line breakdown of a span.
type LineTally struct {
	Physical int `json:"physical"`
	Logical  int `json:"logical"`
	Comment  int `json:"comment"`
	Blank    int `json:"blank"`
}

// FunctionUnit accumulates the raw structural events of one recognized
// function span. Counts cover the function's own body only; events inside
// nested functions are credited to the innermost unit.
type FunctionUnit struct {
	Name      string
	Kind      string
	StartLine int // 1-based
	EndLine   int // 1-based inclusive
	StartByte uint
	EndByte   uint
	// Depth is the function nesting depth: 0 for top-level functions.
	Depth int

	Parameters  int
	Exits       int
	Assignments int
	Calls       int
	Conditions  int

	Decisions []Decision
	Operators map[string]int
	Operands  map[string]int

	Lines LineTally

	baseNesting int
}

// Survey is the complete structural read of one parsed file: every function
// unit in source order plus the file-scope Halstead tallies and the
// tree-derived line classification.
type Survey struct {
	Language string
	Partial  bool

	Functions []*FunctionUnit

	// File-scope Halstead tallies aggregate across all functions and
	// top-level code.
	FileOperators map[string]int
	FileOperands  map[string]int

	FileLines LineTally
}
