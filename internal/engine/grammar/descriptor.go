package grammar

// KindSet is an immutable membership set over tree-sitter node kinds.
type KindSet map[string]struct{}

func NewKindSet(kinds ...string) KindSet {
	set := make(KindSet, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}

func (s KindSet) Has(kind string) bool {
	_, ok := s[kind]
	return ok
}

// ParamStyle selects how declared parameters are counted for a language.
type ParamStyle int

const (
	// ParamsDefault counts the named children of the parameters node.
	ParamsDefault ParamStyle = iota
	// ParamsGoStyle counts identifiers inside parameter declarations, so
	// grouped parameters like (a, b int) count as two.
	ParamsGoStyle
)

// Descriptor holds everything the visitor needs to know about one language:
// file associations plus the node-kind vocabulary for functions, branches,
// calls, assignments, exits and comments. Descriptors are created once from
// the static table in languages.go and never mutated afterwards.
type Descriptor struct {
	ID               string
	Name             string
	Extensions       []string
	Filenames        []string
	TestFileSuffixes []string
	Enabled          bool

	FunctionKinds KindSet
	BranchKinds   KindSet // if-style constructs
	LoopKinds     KindSet
	SwitchKinds   KindSet // switch/match/select heads
	CaseKinds     KindSet // individual case arms
	CatchKinds    KindSet
	TernaryKinds  KindSet
	ElseKinds     KindSet // named else/elif clause nodes
	BooleanKinds  KindSet // nodes whose operator field may be a logical op
	CallKinds     KindSet
	AssignKinds   KindSet
	ExitKinds     KindSet
	CommentKinds  KindSet

	// LogicalOperators are the operator spellings that count as decision
	// points inside BooleanKinds nodes ("&&", "||", "and", "or").
	LogicalOperators map[string]bool

	ParamStyle ParamStyle
}

// Measurable reports whether the language carries function-level metrics.
// Markup and stylesheet grammars are registered for LOC classification only.
func (d *Descriptor) Measurable() bool {
	return len(d.FunctionKinds) > 0
}

// NestingKind reports whether entering this node kind deepens the cognitive
// nesting level for its subtree.
func (d *Descriptor) NestingKind(kind string) bool {
	return d.BranchKinds.Has(kind) ||
		d.LoopKinds.Has(kind) ||
		d.SwitchKinds.Has(kind) ||
		d.CatchKinds.Has(kind) ||
		d.TernaryKinds.Has(kind)
}
