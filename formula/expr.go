package formula

// ExprType identifies the kind of an [Expr].
type ExprType int

const (
	ExprNumber ExprType = iota
	ExprString
	ExprArray
	ExprObject
	ExprVariable
	ExprParentheses
	ExprOperator
)

// String returns the lowercase kind name.
func (t ExprType) String() string {
	switch t {
	case ExprNumber:
		return "number"
	case ExprString:
		return "string"
	case ExprArray:
		return "array"
	case ExprObject:
		return "object"
	case ExprVariable:
		return "variable"
	case ExprParentheses:
		return "parentheses"
	case ExprOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// SubExprType identifies the kind of a [SubExpr].
type SubExprType int

const (
	// SubMember is a ".name" access.
	SubMember SubExprType = iota
	// SubIndex is a "[expr]" access.
	SubIndex
	// SubCall is a "(args...)" call.
	SubCall
)

// String returns the lowercase kind name.
func (t SubExprType) String() string {
	switch t {
	case SubMember:
		return "member"
	case SubIndex:
		return "index"
	case SubCall:
		return "function"
	default:
		return "unknown"
	}
}

// Expr is one node of a parsed formula.
//
// Which fields are meaningful depends on Type:
//
//	ExprNumber       Number
//	ExprString       Text
//	ExprVariable     Text (name), Pos
//	ExprOperator     Text (operator), Pos
//	ExprArray        Args (one sequence per element)
//	ExprObject       Fields
//	ExprParentheses  Inner
//
// Every kind except ExprOperator may carry a suffix chain in Sub.
type Expr struct {
	Type   ExprType
	Pos    int
	Number float64
	Text   string
	Args   [][]Expr
	Fields []Field
	Inner  []Expr
	Sub    []SubExpr
}

// Field is one key of an object literal. A bare key has an empty Value and
// evaluates to undefined.
type Field struct {
	Key   string
	Value []Expr
}

// SubExpr is one element of the suffix chain applied to a primary value.
type SubExpr struct {
	Type  SubExprType
	Pos   int
	Name  string   // SubMember
	Index []Expr   // SubIndex
	Args  [][]Expr // SubCall
}

// Operator precedence. Higher binds tighter.
var precedence = map[string]int{
	"&&": -1,
	"||": -1,
	"==": 0,
	"!=": 0,
	"<":  0,
	">":  0,
	"<=": 0,
	">=": 0,
	"+":  1,
	"-":  1,
	"*":  2,
	"/":  2,
	"^":  3,
}

const maxOperatorLen = 2

// IsOperator reports whether s is one of the language's binary operators.
func IsOperator(s string) bool {
	_, ok := precedence[s]

	return ok
}

// Doc returns a plain tree of maps and slices describing e, suitable for
// encoding as JSON or YAML.
func (e Expr) Doc() map[string]any {
	doc := map[string]any{"type": e.Type.String()}

	switch e.Type {
	case ExprNumber:
		doc["number"] = e.Number
	case ExprString:
		doc["text"] = e.Text
	case ExprVariable:
		doc["name"] = e.Text
		doc["position"] = e.Pos
	case ExprOperator:
		doc["name"] = e.Text
		doc["position"] = e.Pos

		return doc
	case ExprArray:
		doc["arguments"] = docArgs(e.Args)
	case ExprObject:
		fields := make([]any, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, map[string]any{
				"key":   f.Key,
				"value": Docs(f.Value),
			})
		}

		doc["object"] = fields
	case ExprParentheses:
		doc["expr"] = Docs(e.Inner)
	}

	sub := make([]any, 0, len(e.Sub))
	for _, s := range e.Sub {
		sub = append(sub, s.Doc())
	}

	doc["subexpr"] = sub

	return doc
}

// Doc returns a plain tree describing s.
func (s SubExpr) Doc() map[string]any {
	doc := map[string]any{"type": s.Type.String(), "position": s.Pos}

	switch s.Type {
	case SubMember:
		doc["name"] = s.Name
	case SubIndex:
		doc["expr"] = Docs(s.Index)
	case SubCall:
		doc["arguments"] = docArgs(s.Args)
	}

	return doc
}

// Docs returns the plain tree of each node in seq.
func Docs(seq []Expr) []any {
	out := make([]any, 0, len(seq))
	for _, e := range seq {
		out = append(out, e.Doc())
	}

	return out
}

func docArgs(args [][]Expr) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		out = append(out, Docs(a))
	}

	return out
}

// Types lists node and sub-expression kinds of seq in depth-first order.
func Types(seq []Expr) []string {
	var out []string

	var walk func(seq []Expr)

	walk = func(seq []Expr) {
		for _, e := range seq {
			out = append(out, e.Type.String())

			switch e.Type {
			case ExprArray:
				for _, a := range e.Args {
					walk(a)
				}
			case ExprObject:
				for _, f := range e.Fields {
					walk(f.Value)
				}
			case ExprParentheses:
				walk(e.Inner)
			}

			for _, s := range e.Sub {
				out = append(out, s.Type.String())

				switch s.Type {
				case SubCall:
					for _, a := range s.Args {
						walk(a)
					}
				case SubIndex:
					walk(s.Index)
				}
			}
		}
	}

	walk(seq)

	return out
}
