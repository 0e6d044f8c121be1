package dice

// Fallback is the expression rolled when a damage string cannot be parsed.
// Malformed content data degrades to 1d6 rather than aborting combat.
var Fallback = Expression{Raw: "1d6", Count: 1, Sides: 6}

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: expr must be a valid damage expression string; src must be non-nil.
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// RollDamage is the lenient evaluation entry point used by damage
// calculation: a malformed expression rolls Fallback instead of failing.
//
// Precondition: src must be non-nil.
// Postcondition: Returns the rolled total; on parse failure the total is
// in [1, 6].
func RollDamage(expr string, src Source) int {
	e, err := Parse(expr)
	if err != nil {
		e = Fallback
	}
	return Roll(e, src).Total()
}

// RollRange returns a uniform value in [min, max].
//
// Precondition: min <= max; src must be non-nil.
func RollRange(min, max int, src Source) int {
	if min >= max {
		return min
	}
	return min + src.Intn(max-min+1)
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid damage expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
