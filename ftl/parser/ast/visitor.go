package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the returned visitor is not nil, Walk visits each of the children of the
// node with that visitor, mirroring the traversal contract of go/ast.
type Visitor interface {
	Visit(node Node) Visitor
}

// Walk traverses an AST in depth-first order: it first calls visitor.Visit(node);
// node must not be nil. If the visitor returned by that call is not nil, Walk
// is invoked recursively for each of the non-nil children of node.
func Walk(visitor Visitor, node Node) {
	visitor = visitor.Visit(node)
	if visitor == nil {
		return
	}

	switch n := node.(type) {
	case *Resource:
		for _, entry := range n.Body {
			Walk(visitor, entry)
		}
	case *Message:
		Walk(visitor, n.ID)
		if n.Value != nil {
			Walk(visitor, n.Value)
		}
		for _, attribute := range n.Attributes {
			Walk(visitor, attribute)
		}
		if n.Comment != nil {
			Walk(visitor, n.Comment)
		}
	case *Term:
		Walk(visitor, n.ID)
		if n.Value != nil {
			Walk(visitor, n.Value)
		}
		for _, attribute := range n.Attributes {
			Walk(visitor, attribute)
		}
		if n.Comment != nil {
			Walk(visitor, n.Comment)
		}
	case *Attribute:
		Walk(visitor, n.ID)
		if n.Value != nil {
			Walk(visitor, n.Value)
		}
	case *Pattern:
		for _, element := range n.Elements {
			Walk(visitor, element)
		}
	case *Placeable:
		if n.Expression != nil {
			Walk(visitor, n.Expression)
		}
	case *MessageReference:
		Walk(visitor, n.ID)
		if n.Attribute != nil {
			Walk(visitor, n.Attribute)
		}
	case *TermReference:
		Walk(visitor, n.ID)
		if n.Attribute != nil {
			Walk(visitor, n.Attribute)
		}
		if n.Arguments != nil {
			Walk(visitor, n.Arguments)
		}
	case *VariableReference:
		Walk(visitor, n.ID)
	case *FunctionReference:
		Walk(visitor, n.ID)
		if n.Arguments != nil {
			Walk(visitor, n.Arguments)
		}
	case *CallArguments:
		for _, positional := range n.Positional {
			Walk(visitor, positional)
		}
		for _, named := range n.Named {
			Walk(visitor, named)
		}
	case *NamedArgument:
		Walk(visitor, n.Name)
		if n.Value != nil {
			Walk(visitor, n.Value)
		}
	case *SelectExpression:
		if n.Selector != nil {
			Walk(visitor, n.Selector)
		}
		for _, variant := range n.Variants {
			Walk(visitor, variant)
		}
	case *Variant:
		if n.Key != nil {
			Walk(visitor, n.Key)
		}
		if n.Value != nil {
			Walk(visitor, n.Value)
		}
	case *Identifier, *Comment, *GroupComment, *ResourceComment,
		*Text, *StringLiteral, *NumberLiteral, *Junk:
		// Leaf nodes
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order and calls f for every node.
// If f returns false, the children of the current node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// TransformFunc decides the fate of a node during a Transform pass.
// Returning the node itself keeps it, returning a different node replaces it,
// returning multiple nodes expands it (only honored where the parent holds a
// list of nodes) and returning an empty slice deletes it.
type TransformFunc func(Node) []Node

// Transform rebuilds a resource by applying f to every entry, pattern element
// and expression. The input tree is never modified; shared subtrees that f
// keeps are reused in the result.
func Transform(resource *Resource, f TransformFunc) *Resource {
	result := &Resource{Base: resource.Base}
	for _, entry := range resource.Body {
		for _, replacement := range f(entry) {
			result.Body = append(result.Body, transformEntry(replacement, f))
		}
	}
	return result
}

func transformEntry(entry Node, f TransformFunc) Node {
	switch e := entry.(type) {
	case *Message:
		out := &Message{Base: e.Base, ID: e.ID, Comment: e.Comment}
		if e.Value != nil {
			out.Value = transformPattern(e.Value, f)
		}
		for _, attribute := range e.Attributes {
			out.Attributes = append(out.Attributes, transformAttribute(attribute, f))
		}
		return out
	case *Term:
		out := &Term{Base: e.Base, ID: e.ID, Comment: e.Comment}
		if e.Value != nil {
			out.Value = transformPattern(e.Value, f)
		}
		for _, attribute := range e.Attributes {
			out.Attributes = append(out.Attributes, transformAttribute(attribute, f))
		}
		return out
	default:
		return entry
	}
}

func transformAttribute(attribute *Attribute, f TransformFunc) *Attribute {
	return &Attribute{Base: attribute.Base, ID: attribute.ID, Value: transformPattern(attribute.Value, f)}
}

func transformPattern(pattern *Pattern, f TransformFunc) *Pattern {
	out := &Pattern{Base: pattern.Base}
	for _, element := range pattern.Elements {
		for _, replacement := range f(element) {
			if placeable, ok := replacement.(*Placeable); ok {
				replacement = transformPlaceable(placeable, f)
			}
			out.Elements = append(out.Elements, replacement)
		}
	}
	return out
}

func transformPlaceable(placeable *Placeable, f TransformFunc) *Placeable {
	return &Placeable{Base: placeable.Base, Expression: transformExpression(placeable.Expression, f)}
}

// transformExpression applies f to a single-node slot. Deletion and expansion
// make no sense here, so only the first replacement is honored.
func transformExpression(expression Node, f TransformFunc) Node {
	replaced := f(expression)
	if len(replaced) == 0 {
		return expression
	}
	result := replaced[0]
	if selectExpr, ok := result.(*SelectExpression); ok {
		out := &SelectExpression{Base: selectExpr.Base, Selector: transformExpression(selectExpr.Selector, f)}
		for _, variant := range selectExpr.Variants {
			out.Variants = append(out.Variants, &Variant{
				Base:    variant.Base,
				Key:     variant.Key,
				Value:   transformPattern(variant.Value, f),
				Default: variant.Default,
			})
		}
		return out
	}
	return result
}
