package visitor_test

import (
	"strings"
	"testing"

	"gauge/internal/engine/grammar"
	"gauge/internal/engine/metrics"
	"gauge/internal/engine/parser"
	"gauge/internal/engine/visitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *parser.Parser {
	t.Helper()
	registry, err := grammar.Build(nil)
	require.NoError(t, err)
	p, err := parser.New(registry)
	require.NoError(t, err)
	return p
}

func surveyOf(t *testing.T, langID, source string) *visitor.Survey {
	t.Helper()
	tree, err := newTestParser(t).Parse([]byte(source), langID)
	require.NoError(t, err)
	defer tree.Close()

	survey, err := visitor.Visit(tree)
	require.NoError(t, err)
	return survey
}

func TestStraightLineFunctionHasNoDecisions(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f() int {
	x := 1
	return x
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	assert.Equal(t, "f", unit.Name)
	assert.Empty(t, unit.Decisions)
	assert.Equal(t, 1, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 0, metrics.Cognitive(unit.Decisions))
	assert.Equal(t, 1, unit.Exits)
	assert.Equal(t, 1, unit.Assignments)
}

func TestNestedBranchesWeighNesting(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b bool) {
	if a {
		if b {
			g()
		}
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	require.Len(t, unit.Decisions, 2)
	assert.Equal(t, visitor.ClassBranch, unit.Decisions[0].Class)
	assert.Equal(t, 0, unit.Decisions[0].Nesting)
	assert.Equal(t, visitor.ClassBranch, unit.Decisions[1].Class)
	assert.Equal(t, 1, unit.Decisions[1].Nesting)

	assert.Equal(t, 3, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 3, metrics.Cognitive(unit.Decisions))
	assert.Equal(t, 1, unit.Calls)
}

func TestElseIfChain(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b bool) int {
	if a {
		return 1
	} else if b {
		return 2
	} else {
		return 3
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	classes := make([]visitor.DecisionClass, 0, len(unit.Decisions))
	for _, d := range unit.Decisions {
		classes = append(classes, d.Class)
	}
	assert.Equal(t, []visitor.DecisionClass{
		visitor.ClassBranch, visitor.ClassElseIf, visitor.ClassElse,
	}, classes)

	assert.Equal(t, 3, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 3, metrics.Cognitive(unit.Decisions))
	assert.Equal(t, 3, unit.Exits)
}

func TestElseIfArmSharesChainNesting(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b, c bool) {
	if a {
		g()
	} else if b {
		if c {
			g()
		}
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	require.Len(t, unit.Decisions, 3)
	assert.Equal(t, visitor.ClassBranch, unit.Decisions[0].Class)
	assert.Equal(t, 0, unit.Decisions[0].Nesting)
	assert.Equal(t, visitor.ClassElseIf, unit.Decisions[1].Class)
	assert.Equal(t, visitor.ClassBranch, unit.Decisions[2].Class)
	assert.Equal(t, 1, unit.Decisions[2].Nesting,
		"an if inside an else-if arm sits one level deep, same as inside the first arm")

	assert.Equal(t, 4, metrics.Cognitive(unit.Decisions))
}

func TestPythonElifChain(t *testing.T) {
	survey := surveyOf(t, "python", `def f(a, b):
    if a:
        return 1
    elif b:
        return 2
    else:
        return 3
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	classes := make([]visitor.DecisionClass, 0, len(unit.Decisions))
	for _, d := range unit.Decisions {
		classes = append(classes, d.Class)
	}
	assert.Equal(t, []visitor.DecisionClass{
		visitor.ClassBranch, visitor.ClassElseIf, visitor.ClassElse,
	}, classes)
	assert.Equal(t, 2, unit.Parameters)
}

func TestBooleanChainsCostOncePerChain(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b, c bool) {
	if a && b && c {
		g()
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	starts := 0
	for _, d := range unit.Decisions {
		if d.Class == visitor.ClassBoolean && !d.ChainContinues {
			starts++
		}
	}
	assert.Equal(t, 1, starts, "a && b && c is one chain")

	// Cyclomatic counts every operator; cognitive counts the chain once.
	assert.Equal(t, 4, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 2, metrics.Cognitive(unit.Decisions))
}

func TestMixedBooleanOperatorsBreakTheChain(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b, c bool) {
	if a && b || c {
		g()
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	starts := 0
	for _, d := range unit.Decisions {
		if d.Class == visitor.ClassBoolean && !d.ChainContinues {
			starts++
		}
	}
	assert.Equal(t, 2, starts)
	assert.Equal(t, 4, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 3, metrics.Cognitive(unit.Decisions))
}

func TestSwitchArmsCountCasesNotHead(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(n int) int {
	switch n {
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 0
	}
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	var switches, cases int
	for _, d := range unit.Decisions {
		switch d.Class {
		case visitor.ClassSwitch:
			switches++
		case visitor.ClassCase:
			cases++
		}
	}
	assert.Equal(t, 1, switches)
	assert.Equal(t, 2, cases, "default arm adds no path")

	assert.Equal(t, 3, metrics.Cyclomatic(unit.Decisions))
	assert.Equal(t, 1, metrics.Cognitive(unit.Decisions))
}

func TestRustWildcardArmAddsNoPath(t *testing.T) {
	survey := surveyOf(t, "rust", `fn f(n: i32) -> i32 {
    match n {
        1 => 1,
        2 => 2,
        _ => 0,
    }
}
`)
	require.Len(t, survey.Functions, 1)
	unit := survey.Functions[0]

	var switches, cases int
	for _, d := range unit.Decisions {
		switch d.Class {
		case visitor.ClassSwitch:
			switches++
		case visitor.ClassCase:
			cases++
		}
	}
	assert.Equal(t, 1, switches)
	assert.Equal(t, 2, cases, "the wildcard arm adds no path")
	assert.Equal(t, 3, metrics.Cyclomatic(unit.Decisions))
}

func TestNestedFunctionsAccumulateSeparately(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func outer() func() int {
	inner := func() int {
		if true {
			return 1
		}
		return 0
	}
	return inner
}
`)
	require.Len(t, survey.Functions, 2)

	outer := survey.Functions[0]
	inner := survey.Functions[1]
	assert.Equal(t, "outer", outer.Name)
	assert.Equal(t, 0, outer.Depth)
	assert.Equal(t, 1, inner.Depth)
	assert.True(t, strings.HasPrefix(inner.Name, "anonymous@"))

	assert.Equal(t, 1, outer.Exits, "inner returns stay with the inner unit")
	assert.Equal(t, 2, inner.Exits)
	assert.Empty(t, outer.Decisions)
	require.Len(t, inner.Decisions, 1)
	assert.Equal(t, 0, inner.Decisions[0].Nesting, "nesting is relative to the enclosing function")
}

func TestGoParameterGroupsCountEachName(t *testing.T) {
	survey := surveyOf(t, "go", `package p

func f(a, b int, c string) {}

func g(xs ...int) {}

func h() {}
`)
	require.Len(t, survey.Functions, 3)
	assert.Equal(t, 3, survey.Functions[0].Parameters)
	assert.Equal(t, 1, survey.Functions[1].Parameters)
	assert.Equal(t, 0, survey.Functions[2].Parameters)
}

func TestLineClassification(t *testing.T) {
	survey := surveyOf(t, "go", `package p

// leading comment
func f() {
	g() // trailing comment keeps the row logical
}
`)
	assert.Equal(t, 6, survey.FileLines.Physical)
	assert.Equal(t, 4, survey.FileLines.Logical)
	assert.Equal(t, 1, survey.FileLines.Comment)
	assert.Equal(t, 1, survey.FileLines.Blank)

	require.Len(t, survey.Functions, 1)
	assert.Equal(t, visitor.LineTally{Physical: 3, Logical: 3}, survey.Functions[0].Lines)
}

func TestEmptySourceYieldsEmptySurvey(t *testing.T) {
	survey := surveyOf(t, "go", "")
	assert.Empty(t, survey.Functions)
	assert.Equal(t, visitor.LineTally{}, survey.FileLines)
	assert.Empty(t, survey.FileOperators)
	assert.Empty(t, survey.FileOperands)
}

func TestStringLiteralsAreSingleOperands(t *testing.T) {
	survey := surveyOf(t, "go", `package p

var s = "hello world"
`)
	assert.Equal(t, 1, survey.FileOperands[`"hello world"`])
}

// Traversal must hold the walk state on the heap: a pathological nesting
// depth may not grow the call stack.
func TestDeeplyNestedSourceTraversesIteratively(t *testing.T) {
	const depth = 10000

	var b strings.Builder
	b.WriteString("package p\n\nfunc f(a bool) {\n")
	for i := 0; i < depth; i++ {
		b.WriteString("if a {\n")
	}
	b.WriteString("g()\n")
	for i := 0; i < depth; i++ {
		b.WriteString("}\n")
	}
	b.WriteString("}\n")

	survey := surveyOf(t, "go", b.String())
	require.Len(t, survey.Functions, 1)
	assert.Equal(t, depth+1, metrics.Cyclomatic(survey.Functions[0].Decisions))
}

func TestNilTreeIsATraversalError(t *testing.T) {
	_, err := visitor.Visit(nil)
	require.Error(t, err)
}
