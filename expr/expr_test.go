package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, e *Evaluator, src string, context map[string]Value) (Value, error) {
	t.Helper()
	node, err := Parse(src)
	require.NoError(t, err)
	return e.Eval(node, context)
}

func TestArithmeticPrecedence(t *testing.T) {
	e := New()
	v, err := evalString(t, e, "3*(2+4)", nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, v.AsFloat())
}

func TestDivisionByZero(t *testing.T) {
	e := New()
	_, err := evalString(t, e, "10/0", nil)
	require.Error(t, err)
	var evalErr *Error
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, CodeDivisionByZero, evalErr.Code)
}

func TestModuloByZero(t *testing.T) {
	e := New()
	_, err := evalString(t, e, "10%0", nil)
	require.Error(t, err)
	var evalErr *Error
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, CodeDivisionByZero, evalErr.Code)
}

func TestCallStackTooDeep(t *testing.T) {
	e := New(WithLimits(Limits{MaxIterations: 10_000, MaxCallDepth: 1}))
	_, err := evalString(t, e, "1+(2+3)", nil)
	require.Error(t, err)
	var evalErr *Error
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, CodeCallStackTooDeep, evalErr.Code)
}

func TestDottedVariableLookup(t *testing.T) {
	e := New()
	inner := NewOrderedValues()
	inner.Set("age", Int(30))
	ctx := map[string]Value{
		"person": Object(inner),
	}
	v, err := evalString(t, e, "person.age", ctx)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v.AsFloat())
}

func TestUndefinedVariable(t *testing.T) {
	e := New()
	_, err := evalString(t, e, "missing", nil)
	require.Error(t, err)
	var evalErr *Error
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, CodeUndefinedVariable, evalErr.Code)
}

func TestConditionalExpression(t *testing.T) {
	e := New()
	v, err := evalString(t, e, "1 < 2 ? 10 : 20", nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.AsFloat())
}

func TestLogicalShortCircuit(t *testing.T) {
	e := New()
	v, err := evalString(t, e, "false && (1/0 > 0)", nil)
	require.NoError(t, err)
	assert.False(t, v.Truthy())

	v, err = evalString(t, e, "true || (1/0 > 0)", nil)
	require.NoError(t, err)
	assert.True(t, v.Truthy())
}

func TestEvalDeterministic(t *testing.T) {
	e := New()
	node, err := Parse("(1+2)*3 == 9")
	require.NoError(t, err)

	v1, err := e.Eval(node, nil)
	require.NoError(t, err)
	v2, err := e.Eval(node, nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestCacheReusesResult(t *testing.T) {
	e := New(WithCache(NewCache(10)))
	node, err := Parse("2+2")
	require.NoError(t, err)

	v1, err := e.Eval(node, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v1.AsFloat())

	v2, err := e.Eval(node, nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}
