package expr

import (
	"cmp"
	"fmt"
	"strings"
)

// Compare applies one of the built-in comparison operators ("==", "!=",
// "<", ">", "<=", ">=", "contains") to two values.
func Compare(left, right any, op string) (bool, error) {
	for _, b := range builtinOps {
		if strings.TrimSpace(b.op) == op {
			return b.compare(left, right), nil
		}
	}
	return false, fmt.Errorf("unknown operator: %s", op)
}

// order compares numerically when both sides are numbers and as text
// otherwise.
func order(left, right any) int {
	l, lok := number(left)
	r, rok := number(right)
	if lok && rok {
		return cmp.Compare(l, r)
	}
	return strings.Compare(text(left), text(right))
}

// text is the formatted form used for equality, so 5 == "5".
func text(v any) string {
	return fmt.Sprint(v)
}

func compareEquals(left, right any) bool    { return text(left) == text(right) }
func compareNotEquals(left, right any) bool { return text(left) != text(right) }
func compareLT(left, right any) bool        { return order(left, right) < 0 }
func compareGT(left, right any) bool        { return order(left, right) > 0 }
func compareLTE(left, right any) bool       { return order(left, right) <= 0 }
func compareGTE(left, right any) bool       { return order(left, right) >= 0 }

func compareContains(left, right any) bool {
	return strings.Contains(text(left), text(right))
}
