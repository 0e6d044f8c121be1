package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a parsed damage expression ready to be rolled.
// Two shapes exist: dice expressions ("2d6+3") with Count >= 1 and
// Sides >= 2, and flat constants ("5") with Count == 0 and the value
// carried entirely in Modifier.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice; 0 for a flat constant
	Sides    int    // faces per die; 0 for a flat constant
	Modifier int    // flat modifier (may be negative)
}

// IsFlat reports whether the expression is a flat constant with no dice.
func (e Expression) IsFlat() bool {
	return e.Count == 0
}

// Parse parses a damage expression string into an Expression.
// Supported forms: "d6", "2d6", "2d6+3", "4d8-2", and flat integers like "5".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		// Flat constant form.
		flat, err := strconv.Atoi(s)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: expression %q is neither dice notation nor an integer", raw)
		}
		return Expression{Raw: raw, Modifier: flat}, nil
	}

	// Parse count (the part before 'd'); defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
	}

	// Split sides and optional modifier. The first '+' or '-' past
	// position 0 starts the modifier (position 0 would be a signed sides
	// value, which is invalid anyway and caught by Atoi below).
	rest := s[dIdx+1:]
	modOffset := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			modOffset = i
			break
		}
	}

	sidesStr, modStr := rest, ""
	if modOffset >= 0 {
		sidesStr, modStr = rest[:modOffset], rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}, nil
}
