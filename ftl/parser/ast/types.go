package ast

// nodeType is used to declare the different possible types of AST nodes
type nodeType string

const (
	TypeResource          nodeType = "Resource"
	TypeIdentifier        nodeType = "Identifier"
	TypeComment           nodeType = "Comment"
	TypeGroupComment      nodeType = "GroupComment"
	TypeResourceComment   nodeType = "ResourceComment"
	TypeMessage           nodeType = "Message"
	TypeTerm              nodeType = "Term"
	TypeAttribute         nodeType = "Attribute"
	TypePattern           nodeType = "Pattern"
	TypeText              nodeType = "TextElement"
	TypePlaceable         nodeType = "Placeable"
	TypeStringLiteral     nodeType = "StringLiteral"
	TypeNumberLiteral     nodeType = "NumberLiteral"
	TypeMessageReference  nodeType = "MessageReference"
	TypeTermReference     nodeType = "TermReference"
	TypeVariableReference nodeType = "VariableReference"
	TypeFunctionReference nodeType = "FunctionReference"
	TypeCallArguments     nodeType = "CallArguments"
	TypeNamedArgument     nodeType = "NamedArgument"
	TypeSelectExpression  nodeType = "SelectExpression"
	TypeVariant           nodeType = "Variant"
	TypeJunk              nodeType = "Junk"
)

// IsComment checks if a node is any of the three comment types
func IsComment(node Node) bool {
	switch node.(type) {
	case *Comment, *GroupComment, *ResourceComment:
		return true
	default:
		return false
	}
}

// IsEntry checks if a node may appear in the body of a resource
func IsEntry(node Node) bool {
	switch node.(type) {
	case *Message, *Term, *Junk:
		return true
	default:
		return IsComment(node)
	}
}
