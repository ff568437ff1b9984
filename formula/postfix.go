package formula

// ToPostfix reorders an infix sequence so that every operator follows its two
// operands. Nested sequences (array elements, object values, parentheses,
// call arguments and index expressions) are rewritten the same way. Operators
// of equal precedence associate left to right.
func ToPostfix(seq []Expr) []Expr {
	out := make([]Expr, 0, len(seq))
	stack := make([]Expr, 0, 4)

	for _, part := range seq {
		if part.Type != ExprOperator && len(part.Sub) > 0 {
			part.Sub = postfixSub(part.Sub)
		}

		switch part.Type {
		case ExprParentheses:
			part.Inner = ToPostfix(part.Inner)
		case ExprArray:
			part.Args = postfixArgs(part.Args)
		case ExprObject:
			fields := make([]Field, len(part.Fields))
			for i, f := range part.Fields {
				fields[i] = Field{Key: f.Key, Value: ToPostfix(f.Value)}
			}

			part.Fields = fields
		case ExprOperator:
			for len(stack) > 0 &&
				precedence[part.Text] <= precedence[stack[len(stack)-1].Text] {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}

			stack = append(stack, part)

			continue
		}

		out = append(out, part)
	}

	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, stack[i])
	}

	return out
}

func postfixArgs(args [][]Expr) [][]Expr {
	if args == nil {
		return nil
	}

	out := make([][]Expr, len(args))
	for i, a := range args {
		out[i] = ToPostfix(a)
	}

	return out
}

func postfixSub(chain []SubExpr) []SubExpr {
	out := make([]SubExpr, len(chain))

	for i, s := range chain {
		switch s.Type {
		case SubCall:
			s.Args = postfixArgs(s.Args)
		case SubIndex:
			s.Index = ToPostfix(s.Index)
		}

		out[i] = s
	}

	return out
}
