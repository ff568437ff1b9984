package script

import (
	"log/slog"
	"strings"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/rpt/log"
)

// sandbox replaces references to reserved names with nil. A name is
// reserved when it starts with "__" or "$$".
type sandbox struct {
	logger  log.Logger
	patched int
}

// Visit implements ast.Visitor.
func (s *sandbox) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if reserved(n.Value) {
			s.patch(node, n.Value, "identifier")
		}

	case *ast.MemberNode:
		if prop, ok := n.Property.(*ast.StringNode); ok && reserved(prop.Value) {
			s.patch(node, prop.Value, "member")
		}
	}
}

func (s *sandbox) patch(node *ast.Node, name, kind string) {
	ast.Patch(node, &ast.NilNode{})
	s.patched++

	s.logger.Trace("sandbox patch",
		slog.String("name", name),
		slog.String("patch_type", kind))
}

func reserved(name string) bool {
	return strings.HasPrefix(name, "__") || strings.HasPrefix(name, "$$")
}
