package visitor

import (
	"bytes"
	"fmt"
	"strings"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"
	"gauge/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type action uint8

const (
	actVisit action = iota
	actCloseFunction
	actCloseNesting
)

type frame struct {
	node *sitter.Node
	act  action
}

// closingDelims are token spellings excluded from Halstead operator tallies;
// their opening counterparts already account for the construct.
var closingDelims = map[string]bool{")": true, "]": true, "}": true}

type walker struct {
	desc   *grammar.Descriptor
	source []byte
	survey *Survey

	stack   []frame
	units   []*FunctionUnit
	nesting int

	rows    int
	code    []bool
	comment []bool
	blank   []bool
}

// Visit walks the tree depth-first pre-order with an explicit heap stack, so
// traversal depth is bounded by memory rather than call-stack size. It
// returns the survey of every function unit plus file-scope tallies.
func Visit(tree *parser.Tree) (*Survey, error) {
	if tree == nil {
		return nil, errors.New(errors.CodeTraversal, "visit called with nil tree")
	}
	root := tree.Root()
	if root == nil {
		return nil, errors.New(errors.CodeTraversal, "tree has no root node")
	}

	rows, blank := surveyRows(tree.Source)
	w := &walker{
		desc:   tree.Language,
		source: tree.Source,
		survey: &Survey{
			Language:      tree.Language.ID,
			Partial:       tree.Partial,
			Functions:     make([]*FunctionUnit, 0),
			FileOperators: make(map[string]int),
			FileOperands:  make(map[string]int),
		},
		stack:   make([]frame, 0, 256),
		rows:    rows,
		code:    make([]bool, rows),
		comment: make([]bool, rows),
		blank:   blank,
	}

	w.stack = append(w.stack, frame{node: root, act: actVisit})
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		switch f.act {
		case actVisit:
			if err := w.handle(f.node); err != nil {
				return nil, err
			}
		case actCloseFunction:
			if err := w.closeFunction(); err != nil {
				return nil, err
			}
		case actCloseNesting:
			if w.nesting == 0 {
				return nil, errors.New(errors.CodeTraversal, "nesting level underflow")
			}
			w.nesting--
		}
	}

	if len(w.units) != 0 {
		return nil, errors.New(errors.CodeTraversal,
			fmt.Sprintf("%d function frames left open after traversal", len(w.units)))
	}

	w.survey.FileLines = w.tallyRange(0, w.rows-1)
	return w.survey, nil
}

func (w *walker) handle(n *sitter.Node) error {
	kind := n.Kind()

	if w.desc.CommentKinds.Has(kind) {
		w.markRows(w.comment, n)
		return nil
	}

	// String-like literals count as a single operand; their internal
	// quote and fragment tokens carry no separate Halstead weight.
	if n.IsNamed() && isAtomicOperandKind(kind) {
		w.markRows(w.code, n)
		w.countOperand(w.text(n))
		return nil
	}

	if n.ChildCount() == 0 {
		w.markRows(w.code, n)
		text := w.text(n)
		if text != "" {
			if n.IsNamed() {
				w.countOperand(text)
			} else if !closingDelims[text] {
				w.countOperator(text)
			}
		}
		return nil
	}

	if w.desc.FunctionKinds.Has(kind) {
		w.openFunction(n)
		w.stack = append(w.stack, frame{node: n, act: actCloseFunction})
	} else if top := w.topUnit(); top != nil {
		w.classify(n, top)
	}

	// An else-if continuation stays at the nesting level of the chain's
	// first if; only the chain head deepens nesting for its arms.
	if w.desc.NestingKind(kind) && !(w.desc.BranchKinds.Has(kind) && w.isElseIf(n)) {
		w.stack = append(w.stack, frame{node: n, act: actCloseNesting})
		w.nesting++
	}

	for i := n.ChildCount(); i > 0; i-- {
		child := n.Child(i - 1)
		if child == nil {
			return errors.New(errors.CodeTraversal,
				fmt.Sprintf("expected child %d of %q, found none", i-1, kind))
		}
		w.stack = append(w.stack, frame{node: child, act: actVisit})
	}
	return nil
}

// classify records the structural events of one non-function node into the
// innermost open function unit. Decision nesting is relative to that unit.
func (w *walker) classify(n *sitter.Node, top *FunctionUnit) {
	kind := n.Kind()
	rel := w.relNesting(top)

	switch {
	case w.desc.BranchKinds.Has(kind):
		class := ClassBranch
		if w.isElseIf(n) {
			class = ClassElseIf
		}
		top.Decisions = append(top.Decisions, Decision{Class: class, Nesting: rel})
		top.Conditions++

		// Grammars without a named else clause (Go, Java) hang a bare
		// else block off the if node's alternative field.
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			ak := alt.Kind()
			if !w.desc.BranchKinds.Has(ak) && !w.desc.ElseKinds.Has(ak) {
				top.Decisions = append(top.Decisions, Decision{Class: ClassElse, Nesting: rel})
			}
		}

	case w.desc.LoopKinds.Has(kind), w.desc.CatchKinds.Has(kind), w.desc.TernaryKinds.Has(kind):
		top.Decisions = append(top.Decisions, Decision{Class: ClassBranch, Nesting: rel})
		top.Conditions++

	case w.desc.SwitchKinds.Has(kind):
		top.Decisions = append(top.Decisions, Decision{Class: ClassSwitch, Nesting: rel})

	case w.desc.CaseKinds.Has(kind):
		if !w.isDefaultArm(n) {
			top.Decisions = append(top.Decisions, Decision{Class: ClassCase, Nesting: rel})
			top.Conditions++
		}

	case w.desc.ElseKinds.Has(kind):
		if n.ChildByFieldName("condition") != nil {
			// elif-style clause: a condition makes it a decision point.
			top.Decisions = append(top.Decisions, Decision{Class: ClassElseIf, Nesting: rel})
			top.Conditions++
		} else if !w.wrapsBranch(n) {
			top.Decisions = append(top.Decisions, Decision{Class: ClassElse, Nesting: rel})
		}

	case w.desc.BooleanKinds.Has(kind):
		op := ""
		if opNode := n.ChildByFieldName("operator"); opNode != nil {
			op = w.text(opNode)
		}
		if w.desc.LogicalOperators[op] {
			top.Decisions = append(top.Decisions, Decision{
				Class:          ClassBoolean,
				Nesting:        rel,
				Operator:       op,
				ChainContinues: w.chainContinues(n, op),
			})
			top.Conditions++
		}
	}

	if w.desc.CallKinds.Has(kind) {
		top.Calls++
	}
	if w.desc.AssignKinds.Has(kind) {
		top.Assignments++
	}
	if w.desc.ExitKinds.Has(kind) {
		top.Exits++
	}
}

func (w *walker) openFunction(n *sitter.Node) {
	startRow := int(n.StartPosition().Row)
	endRow := int(n.EndPosition().Row)

	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = w.text(nameNode)
	}
	if name == "" {
		name = fmt.Sprintf("anonymous@%d", startRow+1)
	}

	unit := &FunctionUnit{
		Name:        name,
		Kind:        n.Kind(),
		StartLine:   startRow + 1,
		EndLine:     endRow + 1,
		StartByte:   n.StartByte(),
		EndByte:     n.EndByte(),
		Depth:       len(w.units),
		Parameters:  w.countParams(n),
		Decisions:   make([]Decision, 0),
		Operators:   make(map[string]int),
		Operands:    make(map[string]int),
		baseNesting: w.nesting,
	}
	w.units = append(w.units, unit)
	w.survey.Functions = append(w.survey.Functions, unit)
}

func (w *walker) closeFunction() error {
	if len(w.units) == 0 {
		return errors.New(errors.CodeTraversal, "expected open function frame, stack empty")
	}
	unit := w.units[len(w.units)-1]
	w.units = w.units[:len(w.units)-1]

	unit.Lines = w.tallyRange(unit.StartLine-1, unit.EndLine-1)
	return nil
}

func (w *walker) topUnit() *FunctionUnit {
	if len(w.units) == 0 {
		return nil
	}
	return w.units[len(w.units)-1]
}

func (w *walker) relNesting(top *FunctionUnit) int {
	rel := w.nesting - top.baseNesting
	if rel < 0 {
		rel = 0
	}
	return rel
}

// isElseIf reports whether an if-node continues an existing branch chain:
// either it sits inside a named else clause, or it is the alternative field
// of a parent if.
func (w *walker) isElseIf(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if w.desc.ElseKinds.Has(parent.Kind()) {
		return true
	}
	if w.desc.BranchKinds.Has(parent.Kind()) {
		alt := parent.ChildByFieldName("alternative")
		return alt != nil && alt.Id() == n.Id()
	}
	return false
}

// wrapsBranch reports whether a named else clause directly wraps an if-node,
// which makes it an else-if chain link rather than a terminal else.
func (w *walker) wrapsBranch(n *sitter.Node) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && w.desc.BranchKinds.Has(child.Kind()) {
			return true
		}
	}
	return false
}

// isDefaultArm filters default arms out of case-arm decision counting for
// grammars that do not give them a distinct node kind: a literal default
// keyword, or a lone wildcard pattern in match-style grammars.
func (w *walker) isDefaultArm(n *sitter.Node) bool {
	if strings.HasPrefix(strings.TrimSpace(w.text(n)), "default") {
		return true
	}
	pat := n.ChildByFieldName("pattern")
	if pat == nil {
		pat = n.NamedChild(0)
	}
	return pat != nil && strings.TrimSpace(w.text(pat)) == "_"
}

// chainContinues reports whether a logical operator extends a same-operator
// chain begun by its parent expression.
func (w *walker) chainContinues(n *sitter.Node, op string) bool {
	parent := n.Parent()
	if parent == nil || parent.Kind() != n.Kind() {
		return false
	}
	opNode := parent.ChildByFieldName("operator")
	return opNode != nil && w.text(opNode) == op
}

func (w *walker) countParams(fn *sitter.Node) int {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		// Single-identifier arrow functions carry a bare parameter field.
		if single := fn.ChildByFieldName("parameter"); single != nil {
			return 1
		}
		return 0
	}

	if w.desc.ParamStyle == grammar.ParamsGoStyle {
		return countGoParams(params)
	}

	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child == nil || w.desc.CommentKinds.Has(child.Kind()) {
			continue
		}
		count++
	}
	return count
}

// countGoParams counts declared names inside a Go parameter_list, so grouped
// parameters like (a, b int) count as two and unnamed parameters as one.
func countGoParams(params *sitter.Node) int {
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		decl := params.NamedChild(i)
		if decl == nil {
			continue
		}
		switch decl.Kind() {
		case "parameter_declaration", "variadic_parameter_declaration":
			names := 0
			for j := uint(0); j < decl.ChildCount(); j++ {
				child := decl.Child(j)
				if child != nil && child.Kind() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1
			}
			count += names
		}
	}
	return count
}

func (w *walker) countOperand(text string) {
	if top := w.topUnit(); top != nil {
		top.Operands[text]++
	}
	w.survey.FileOperands[text]++
}

func (w *walker) countOperator(text string) {
	if top := w.topUnit(); top != nil {
		top.Operators[text]++
	}
	w.survey.FileOperators[text]++
}

func (w *walker) text(n *sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(w.source) || start > end {
		return ""
	}
	return string(w.source[start:end])
}

func (w *walker) markRows(marks []bool, n *sitter.Node) {
	start := int(n.StartPosition().Row)
	end := int(n.EndPosition().Row)
	// A span ending at column zero stops on the previous row.
	if end > start && n.EndPosition().Column == 0 {
		end--
	}
	for r := start; r <= end && r < w.rows; r++ {
		marks[r] = true
	}
}

// tallyRange classifies the rows of an inclusive 0-based range. A row that
// holds both code and a trailing comment counts as code.
func (w *walker) tallyRange(start, end int) LineTally {
	var t LineTally
	if start < 0 {
		start = 0
	}
	for r := start; r <= end && r < w.rows; r++ {
		t.Physical++
		switch {
		case w.code[r]:
			t.Logical++
		case w.comment[r]:
			t.Comment++
		case w.blank[r]:
			t.Blank++
		}
	}
	return t
}

// surveyRows splits the source into rows and records which are blank. A
// trailing newline does not open a final empty row.
func surveyRows(source []byte) (int, []bool) {
	if len(source) == 0 {
		return 0, nil
	}
	lines := bytes.Split(source, []byte("\n"))
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	blank := make([]bool, len(lines))
	for i, line := range lines {
		blank[i] = len(bytes.TrimSpace(line)) == 0
	}
	return len(lines), blank
}

func isAtomicOperandKind(kind string) bool {
	if strings.Contains(kind, "string") {
		return true
	}
	switch kind {
	case "rune_literal", "char_literal", "template_string":
		return true
	}
	return false
}
