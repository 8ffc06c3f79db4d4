package parser

import (
	"strings"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
)

// Serialize turns a resource AST back into FTL source text.
// The output is canonical rather than byte-identical to the original source:
// serializing, reparsing and serializing again yields the same text.
func Serialize(resource *ast.Resource) string {
	var sb strings.Builder
	for _, entry := range resource.Body {
		serializeEntry(&sb, entry)
	}
	return sb.String()
}

func serializeEntry(sb *strings.Builder, entry ast.Node) {
	switch e := entry.(type) {
	case *ast.Comment:
		serializeComment(sb, "#", e.Content)
	case *ast.GroupComment:
		serializeComment(sb, "##", e.Content)
	case *ast.ResourceComment:
		serializeComment(sb, "###", e.Content)
	case *ast.Message:
		if e.Comment != nil {
			serializeComment(sb, "#", e.Comment.Content)
		}
		sb.WriteString(e.ID.Name)
		sb.WriteString(" =")
		if e.Value != nil {
			sb.WriteString(" ")
			serializePattern(sb, e.Value)
		}
		serializeAttributes(sb, e.Attributes)
		sb.WriteString("\n")
	case *ast.Term:
		if e.Comment != nil {
			serializeComment(sb, "#", e.Comment.Content)
		}
		sb.WriteString("-")
		sb.WriteString(e.ID.Name)
		sb.WriteString(" = ")
		serializePattern(sb, e.Value)
		serializeAttributes(sb, e.Attributes)
		sb.WriteString("\n")
	case *ast.Junk:
		sb.WriteString(e.Content)
		if !strings.HasSuffix(e.Content, "\n") {
			sb.WriteString("\n")
		}
	}
}

func serializeComment(sb *strings.Builder, marker, content string) {
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString(marker)
		if line != "" {
			sb.WriteString(" ")
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
}

func serializeAttributes(sb *strings.Builder, attributes []*ast.Attribute) {
	for _, attribute := range attributes {
		sb.WriteString("\n    .")
		sb.WriteString(attribute.ID.Name)
		sb.WriteString(" = ")
		serializePattern(sb, attribute.Value)
	}
}

func serializePattern(sb *strings.Builder, pattern *ast.Pattern) {
	for _, element := range pattern.Elements {
		switch e := element.(type) {
		case *ast.Text:
			sb.WriteString(e.Value)
		case *ast.Placeable:
			serializePlaceable(sb, e)
		}
	}
}

func serializePlaceable(sb *strings.Builder, placeable *ast.Placeable) {
	if selectExpr, ok := placeable.Expression.(*ast.SelectExpression); ok {
		serializeSelect(sb, selectExpr)
		return
	}
	sb.WriteString("{ ")
	serializeExpression(sb, placeable.Expression)
	sb.WriteString(" }")
}

func serializeSelect(sb *strings.Builder, selectExpr *ast.SelectExpression) {
	sb.WriteString("{ ")
	serializeExpression(sb, selectExpr.Selector)
	sb.WriteString(" ->\n")
	for _, variant := range selectExpr.Variants {
		if variant.Default {
			sb.WriteString("   *[")
		} else {
			sb.WriteString("    [")
		}
		serializeExpression(sb, variant.Key)
		sb.WriteString("] ")
		serializePattern(sb, variant.Value)
		sb.WriteString("\n")
	}
	sb.WriteString("}")
}

func serializeExpression(sb *strings.Builder, expression ast.Node) {
	switch e := expression.(type) {
	case *ast.Identifier:
		sb.WriteString(e.Name)
	case *ast.StringLiteral:
		sb.WriteString("\"")
		sb.WriteString(escapeString(e.Value))
		sb.WriteString("\"")
	case *ast.NumberLiteral:
		sb.WriteString(e.Raw)
	case *ast.VariableReference:
		sb.WriteString("$")
		sb.WriteString(e.ID.Name)
	case *ast.MessageReference:
		sb.WriteString(e.ID.Name)
		if e.Attribute != nil {
			sb.WriteString(".")
			sb.WriteString(e.Attribute.Name)
		}
	case *ast.TermReference:
		sb.WriteString("-")
		sb.WriteString(e.ID.Name)
		if e.Attribute != nil {
			sb.WriteString(".")
			sb.WriteString(e.Attribute.Name)
		}
		if e.Arguments != nil {
			serializeCallArguments(sb, e.Arguments)
		}
	case *ast.FunctionReference:
		sb.WriteString(e.ID.Name)
		serializeCallArguments(sb, e.Arguments)
	case *ast.Placeable:
		serializePlaceable(sb, e)
	case *ast.SelectExpression:
		serializeSelect(sb, e)
	}
}

func serializeCallArguments(sb *strings.Builder, arguments *ast.CallArguments) {
	sb.WriteString("(")
	first := true
	for _, positional := range arguments.Positional {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		serializeExpression(sb, positional)
	}
	for _, named := range arguments.Named {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(named.Name.Name)
		sb.WriteString(": ")
		serializeExpression(sb, named.Value)
	}
	sb.WriteString(")")
}

func escapeString(value string) string {
	var sb strings.Builder
	for _, char := range value {
		switch char {
		case '\\':
			sb.WriteString("\\\\")
		case '"':
			sb.WriteString("\\\"")
		case '\n':
			sb.WriteString("\\n")
		case '\t':
			sb.WriteString("\\t")
		default:
			sb.WriteRune(char)
		}
	}
	return sb.String()
}
