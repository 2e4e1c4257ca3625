/*
Package expr compiles boolean expressions over named values.

# Overview

expr backs derived properties in the model package: an expression is
compiled once, its identifiers become the property's dependencies, and it
is re-evaluated whenever one of them changes.

# Expression Syntax

	<expr> := <comparison>
	        | <expr> 'and' <expr>
	        | <expr> 'or' <expr>
	        | 'not' <expr>
	        | '!' <expr>
	        | <value>

	<comparison> := <value> <op> <value>
	<op> := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains'
	<value> := 'string' | "string" | number | true | false | null | identifier

Identifiers may contain dots, so qualified names such as range.start can
be used directly.

# Operators

Comparison operators:

	==         Equal (formatted values, so 5 == '5')
	!=         Not equal
	<          Less than
	>          Greater than
	<=         Less than or equal
	>=         Greater than or equal
	contains   String contains substring

Ordering is numeric when both sides are numbers or numeric strings, and
lexical otherwise.

Logical operators:

	and        Logical AND
	or         Logical OR
	not        Logical NOT (prefix)
	!          Logical NOT (prefix)

# Compiling

	x, err := expr.Compile("range.end > range.start and enabled")
	if err != nil {
	    log.Fatal(err)
	}
	x.Deps() // ["range.end", "range.start", "enabled"]
	x.Eval(map[string]any{"range.start": 1, "range.end": 5, "enabled": true}) // true

For one-off evaluation:

	ok, _ := expr.Eval("status == 'active'", map[string]any{"status": "active"})

# Custom Operators

Register custom binary operators:

	e := expr.New(
	    expr.WithCustomOperator("matches", func(left, right any) bool {
	        matched, _ := regexp.MatchString(fmt.Sprintf("%v", right), fmt.Sprintf("%v", left))
	        return matched
	    }),
	)
	x, _ := e.Compile("name matches '^test.*'")

# Truthiness

Single values are evaluated for truthiness:

  - nil/null: false
  - bool: the boolean value
  - string: false if empty, true otherwise
  - numbers: false if zero, true otherwise
  - other types: true
*/
package expr
