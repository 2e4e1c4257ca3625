package expr

import (
	"reflect"
	"strconv"
	"strings"
)

// operand is a literal or an identifier looked up at evaluation time.
type operand struct {
	literal any
	ident   string
}

// value returns the literal, or the variable named by ident. A name with
// no variable stands for itself.
func (o operand) value(vars map[string]any) any {
	if o.ident == "" {
		return o.literal
	}
	if v, ok := vars[o.ident]; ok {
		return v
	}
	return o.ident
}

func (o operand) idents(visit func(string)) {
	if o.ident != "" {
		visit(o.ident)
	}
}

func parseOperand(s string) operand {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return operand{literal: ""}
	case quoted(s):
		return operand{literal: s[1 : len(s)-1]}
	}

	switch strings.ToLower(s) {
	case "true":
		return operand{literal: true}
	case "false":
		return operand{literal: false}
	case "null", "nil":
		return operand{literal: nil}
	}

	if strings.ContainsAny(s[:1], "0123456789+-.") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return operand{literal: i}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return operand{literal: f}
		}
	}
	return operand{ident: s}
}

func quoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	q := s[0]
	return (q == '\'' || q == '"') && s[len(s)-1] == q
}

// Resolve returns the value a single token stands for: a quoted string,
// true, false, null, a number, or the variable it names.
func Resolve(s string, vars map[string]any) any {
	return parseOperand(s).value(vars)
}

// IsTruthy reports whether v counts as true in a condition. nil, false,
// "" and numeric zero are false; anything else is true.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}
	if f, ok := number(v); ok {
		return f != 0
	}
	return true
}

// ToFloat64 converts a number, or a string holding one, to float64.
// Anything else is 0.
func ToFloat64(v any) float64 {
	f, _ := number(v)
	return f
}

func number(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
