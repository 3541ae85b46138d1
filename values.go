package linkml

import "github.com/simonckemper/linkml-rs-sub001/expr"

// Value is the dynamic, JSON-like value type shared by slot defaults,
// permissible values, expression results and validated data. It is an
// alias of expr.Value so schema definitions and the expression evaluator
// exchange values without conversion.
type Value = expr.Value

// Re-exported constructors so callers of this package never need to
// import expr directly for simple value construction.
var (
	Null         = expr.Null
	BoolValue    = expr.Bool
	FloatValue   = expr.Float
	IntValue     = expr.Int
	StringValue  = expr.String
	ArrayValue   = expr.Array
	ObjectValue  = expr.Object
)
