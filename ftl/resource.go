package ftl

import (
	"github.com/ftlkit/ftl.go/ftl/parser"
	"github.com/ftlkit/ftl.go/ftl/parser/ast"
)

// Resource represents a collection of messages and terms extracted out of a
// FTL source
type Resource struct {
	ast      *ast.Resource
	messages []*ast.Message
	terms    []*ast.Term
}

// NewResource parses the given source string and assembles its entries into a
// new Resource object.
// Besides the Resource object, this function also returns all errors the
// parser stumbled upon during parsing. As long as Resource.IsEmpty does not
// return true, at least something could be parsed successfully.
func NewResource(source string) (*Resource, []*parser.Error) {
	parsed, errs := parser.Parse(source)
	return FromAST(parsed), errs
}

// FromAST assembles a Resource out of an already parsed AST
func FromAST(parsed *ast.Resource) *Resource {
	resource := &Resource{
		ast:      parsed,
		messages: make([]*ast.Message, 0),
		terms:    make([]*ast.Term, 0),
	}

	// Collect messages and terms; comments and junk stay available through the AST
	for _, entry := range parsed.Body {
		switch e := entry.(type) {
		case *ast.Message:
			resource.messages = append(resource.messages, e)
		case *ast.Term:
			resource.terms = append(resource.terms, e)
		}
	}

	return resource
}

// AST returns the parsed resource AST.
// Consumers must not mutate the returned tree; use ast.Transform to derive
// modified copies instead.
func (resource *Resource) AST() *ast.Resource {
	return resource.ast
}

// IsEmpty returns whether no terms and no messages are present in the
// resource. This can be the case if the parser could not parse any valid
// messages and terms.
func (resource *Resource) IsEmpty() bool {
	return len(resource.messages) == 0 && len(resource.terms) == 0
}
