package autoprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineExtractsBareAssignment(t *testing.T) {
	expr, ok := ParseLine("x = a + b;")
	require.True(t, ok)
	require.Equal(t, "x", expr)
}

func TestParseLineSkipsTypeName(t *testing.T) {
	expr, ok := ParseLine("    int x = a + b;")
	require.True(t, ok)
	require.Equal(t, "x", expr)
}

func TestParseLineSkipsPointerTypeName(t *testing.T) {
	expr, ok := ParseLine("struct foo *p = bar();")
	require.True(t, ok)
	require.Equal(t, "p", expr)
}

func TestParseLineRejectsComparisonOperators(t *testing.T) {
	_, ok := ParseLine("if (x == 3) {")
	require.False(t, ok)

	_, ok = ParseLine("if (x >= 3) {")
	require.False(t, ok)
}

func TestParseLineNoEqualsSign(t *testing.T) {
	_, ok := ParseLine("return x;")
	require.False(t, ok)
}

type fakeEvaluator struct{ result string }

func (f fakeEvaluator) Evaluate(expr string) (string, error) { return f.result, nil }

func TestOnNewLineSchedulesThenAnnotatesOnNextLine(t *testing.T) {
	tr := &Tracker{}
	eval := fakeEvaluator{result: "$1 = 7"}

	line, ann, ok := tr.OnNewLine(eval, "hello.c", 4, "int x = a + b;")
	require.False(t, ok, "nothing pending on the first line yet")
	_, pending := tr.Pending()
	require.True(t, pending)

	line, ann, ok = tr.OnNewLine(eval, "hello.c", 5, "return x;")
	require.True(t, ok)
	require.Equal(t, 4, line)
	require.Equal(t, "= 7", ann)
}

func TestOnNewLineDiscardsPendingWhenFileChanges(t *testing.T) {
	tr := &Tracker{}
	eval := fakeEvaluator{result: "$1 = 7"}

	tr.OnNewLine(eval, "hello.c", 4, "int x = a + b;")
	_, ann, ok := tr.OnNewLine(eval, "other.c", 1, "return 0;")
	require.False(t, ok)
	require.Empty(t, ann)
}
