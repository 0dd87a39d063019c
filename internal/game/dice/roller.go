package dice

import "fmt"

// Roll evaluates an Expression using the given Source.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and result.Total() is within expr.Bounds().
func Roll(expr Expression, src Source) (RollResult, error) {
	if expr.Count < 1 || expr.Sides < 1 {
		return RollResult{}, fmt.Errorf("dice: expression %q was not produced by Parse", expr.Raw)
	}
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}, nil
}

// RollExpr parses expr and rolls it using src in a single call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src)
}
