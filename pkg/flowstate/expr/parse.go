package expr

import (
	"fmt"
	"strings"
)

// node is one element of a compiled expression tree.
type node interface {
	eval(vars map[string]any) bool
	idents(visit func(string))
}

type notNode struct {
	inner node
}

func (n notNode) eval(vars map[string]any) bool { return !n.inner.eval(vars) }
func (n notNode) idents(visit func(string))     { n.inner.idents(visit) }

type andNode struct {
	left, right node
}

func (n andNode) eval(vars map[string]any) bool {
	return n.left.eval(vars) && n.right.eval(vars)
}

func (n andNode) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

type orNode struct {
	left, right node
}

func (n orNode) eval(vars map[string]any) bool {
	return n.left.eval(vars) || n.right.eval(vars)
}

func (n orNode) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

type compareNode struct {
	compare     BinaryOp
	left, right operand
}

func (n compareNode) eval(vars map[string]any) bool {
	return n.compare(n.left.value(vars), n.right.value(vars))
}

func (n compareNode) idents(visit func(string)) {
	n.left.idents(visit)
	n.right.idents(visit)
}

type truthNode struct {
	value operand
}

func (n truthNode) eval(vars map[string]any) bool { return IsTruthy(n.value.value(vars)) }
func (n truthNode) idents(visit func(string))     { n.value.idents(visit) }

// builtinOps lists comparison operators, longer operators first to avoid
// partial matches.
var builtinOps = []struct {
	op      string
	compare BinaryOp
}{
	{"==", compareEquals},
	{"!=", compareNotEquals},
	{">=", compareGTE},
	{"<=", compareLTE},
	{">", compareGT},
	{"<", compareLT},
	{" contains ", compareContains},
}

// parse builds the tree. Precedence follows the split order: negation
// prefix, then "and", then "or", then comparisons, then a single value.
func (e *Evaluator) parse(expr string) (node, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrMissingOperand
	}

	if strings.HasPrefix(expr, "not ") {
		inner, err := e.parse(strings.TrimPrefix(expr, "not "))
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}

	if strings.HasPrefix(expr, "!") {
		inner, err := e.parse(strings.TrimPrefix(expr, "!"))
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}

	if parts := strings.SplitN(expr, " and ", 2); len(parts) == 2 {
		left, right, err := e.parsePair(parts)
		if err != nil {
			return nil, err
		}
		return andNode{left: left, right: right}, nil
	}

	if parts := strings.SplitN(expr, " or ", 2); len(parts) == 2 {
		left, right, err := e.parsePair(parts)
		if err != nil {
			return nil, err
		}
		return orNode{left: left, right: right}, nil
	}

	for _, op := range builtinOps {
		if parts := strings.SplitN(expr, op.op, 2); len(parts) == 2 {
			return comparison(op.op, op.compare, parts)
		}
	}

	for name, fn := range e.customOps {
		if parts := strings.SplitN(expr, " "+name+" ", 2); len(parts) == 2 {
			return comparison(name, fn, parts)
		}
	}

	return truthNode{value: parseOperand(expr)}, nil
}

func (e *Evaluator) parsePair(parts []string) (node, node, error) {
	left, err := e.parse(parts[0])
	if err != nil {
		return nil, nil, err
	}
	right, err := e.parse(parts[1])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func comparison(op string, fn BinaryOp, parts []string) (node, error) {
	l, r := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if l == "" || r == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingOperand, strings.TrimSpace(op))
	}
	return compareNode{compare: fn, left: parseOperand(l), right: parseOperand(r)}, nil
}
