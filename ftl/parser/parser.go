package parser

import (
	"strings"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
	"github.com/shopspring/decimal"
)

// Parser is used to parse a FTL source into an AST
type Parser struct {
	source string
}

// New creates a new FTL parser from a source string
func New(source string) *Parser {
	return &Parser{source: source}
}

// Parse is a shorthand for New(source).Parse()
func Parse(source string) (*ast.Resource, []*Error) {
	return New(source).Parse()
}

// Parse parses the underlying FTL source string into an AST.
// Parsing never fails as a whole: entries that could not be parsed are kept
// as junk nodes, and the errors that caused them are returned alongside the
// resource.
func (parser *Parser) Parse() (*ast.Resource, []*Error) {
	// Blank space at the beginning of the file is ignored
	cur := parser.skipBlankBlock(NewCursor(parser.source))

	var errors []*Error
	entries := []ast.Node{}
	var lastComment *ast.Comment

	for !cur.EOF() {
		// Parse a new entry or junk.
		// Junk is content that could not be parsed due to an error
		entry, next, err := parser.parseEntryOrJunk(cur)
		cur = next
		if err != nil {
			errors = append(errors, err)
		}

		// Blank space between entries is ignored
		blankStart := cur.Pos()
		cur = parser.skipBlankBlock(cur)
		hadBlank := cur.Pos() != blankStart

		// A single-# comment immediately before a message or term gets attached
		// to it instead of being a standalone entry, so it has to be held back
		// until the next entry got parsed
		if comment, ok := entry.(*ast.Comment); ok && !hadBlank && !cur.EOF() {
			if lastComment != nil {
				entries = append(entries, lastComment)
			}
			lastComment = comment
			continue
		}

		if lastComment != nil {
			switch e := entry.(type) {
			case *ast.Message:
				e.Comment = lastComment
				e.Span.Start = lastComment.Span.Start
			case *ast.Term:
				e.Comment = lastComment
				e.Span.Start = lastComment.Span.Start
			default:
				entries = append(entries, lastComment)
			}
			lastComment = nil
		}

		entries = append(entries, entry)
	}

	if lastComment != nil {
		entries = append(entries, lastComment)
	}

	return &ast.Resource{
		Base: ast.Base{
			Type: ast.TypeResource,
			Span: ast.Span{Start: 0, End: len(parser.source)},
		},
		Body: entries,
	}, errors
}

// parseEntryOrJunk tries to parse a single entry node and synthesizes a junk
// one if an error occurred while parsing it. Junk recovery consumes the first
// line of the entry unconditionally and then every following line until one
// starts like a new entry ('#', '-' or a letter), which is the minimum safe
// resynchronization point of the grammar.
func (parser *Parser) parseEntryOrJunk(cur Cursor) (ast.Node, Cursor, *Error) {
	start := cur

	entry, next, err := parser.parseEntry(cur)
	if err == nil {
		// A parsed entry has to be followed by the end of a line (or the file)
		if end, ok := parser.expectEOL(next); ok {
			return entry, end, nil
		}
		err = newErrorAt(next, CodeExpectedToken, "expected the entry to end here")
		err.Expected = []string{"end of line"}
	}

	cur = parser.skipToNextLine(start)
	for !cur.EOF() && !isEntryStart(cur.Peek(0)) {
		cur = parser.skipToNextLine(cur)
	}

	junk := &ast.Junk{
		Base: ast.Base{
			Type: ast.TypeJunk,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Content:     parser.source[start.Pos():cur.Pos()],
		Annotations: []ast.Annotation{err.annotation()},
	}
	return junk, cur, err
}

// parseEntry parses an entry node (comment, message or term)
func (parser *Parser) parseEntry(cur Cursor) (ast.Node, Cursor, *Error) {
	switch cur.Peek(0) {
	case '#':
		return parser.parseComment(cur)
	case '-':
		term, next, err := parser.parseTerm(cur)
		if err != nil {
			return nil, next, err
		}
		return term, next, nil
	default:
		message, next, err := parser.parseMessage(cur)
		if err != nil {
			return nil, next, err
		}
		return message, next, nil
	}
}

// parseComment parses a comment node.
// One to three leading '#'s select the comment kind; more than three is an error.
func (parser *Parser) parseComment(cur Cursor) (ast.Node, Cursor, *Error) {
	start := cur

	level := 0
	for cur.Peek(level) == '#' {
		level++
		if level > 3 {
			return nil, cur, newError(cur, cur.Advance(level), CodeCommentTooDeep, "comments may have at most three leading '#'s")
		}
	}

	var lines []string
	for {
		cur = cur.Advance(level)

		if parser.eolWidth(cur) == 0 && !cur.EOF() {
			// The '#'s have to be followed by a space
			if cur.Peek(0) != ' ' {
				return nil, cur, newErrorAt(cur, CodeExpectedToken, "expected a space after the '#'s of a comment")
			}
			cur = cur.Advance(1)

			// Append the rest of the line to the content of the comment
			lineStart := cur.Pos()
			for !cur.EOF() && parser.eolWidth(cur) == 0 {
				cur = cur.Advance(1)
			}
			lines = append(lines, parser.source[lineStart:cur.Pos()])
		} else {
			lines = append(lines, "")
		}

		// The comment continues if the next line is a comment of the same level
		width := parser.eolWidth(cur)
		if width == 0 {
			break
		}
		probe := cur.Advance(width)
		sameLevel := probe.Peek(level) != '#'
		for i := 0; i < level; i++ {
			if probe.Peek(i) != '#' {
				sameLevel = false
				break
			}
		}
		if !sameLevel {
			break
		}
		after := probe.Peek(level)
		if after != ' ' && after != EOL && after != '\r' && after != EOF {
			break
		}
		cur = probe
	}

	base := ast.Base{Span: ast.Span{Start: start.Pos(), End: cur.Pos()}}
	content := strings.Join(lines, "\n")

	switch level {
	case 1:
		base.Type = ast.TypeComment
		return &ast.Comment{Base: base, Content: content}, cur, nil
	case 2:
		base.Type = ast.TypeGroupComment
		return &ast.GroupComment{Base: base, Content: content}, cur, nil
	default:
		base.Type = ast.TypeResourceComment
		return &ast.ResourceComment{Base: base, Content: content}, cur, nil
	}
}

// parseTerm parses a term node
func (parser *Parser) parseTerm(cur Cursor) (*ast.Term, Cursor, *Error) {
	start := cur

	// A '-' is expected
	cur, err := parser.expect(cur, '-')
	if err != nil {
		return nil, cur, err
	}

	// Parse the identifier
	id, cur, err := parser.parseIdentifier(cur)
	if err != nil {
		return nil, cur, err
	}

	// Whitespace before the '=' is ignored
	cur = parser.skipBlankInline(cur)

	// A '=' is expected
	cur, err = parser.expect(cur, '=')
	if err != nil {
		return nil, cur, err
	}

	// Parse the pattern value; terms always require one
	value, cur, err := parser.parseOptionalPattern(cur, false)
	if err != nil {
		return nil, cur, err
	}
	if value == nil {
		return nil, cur, newError(start, cur, CodeTermMissingValue, "expected term '-%s' to have a value", id.Name)
	}

	// Parse the attributes
	attributes, cur, err := parser.parseAttributes(cur)
	if err != nil {
		return nil, cur, err
	}

	return &ast.Term{
		Base: ast.Base{
			Type: ast.TypeTerm,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		ID:         id,
		Value:      value,
		Attributes: attributes,
	}, cur, nil
}

// parseMessage parses a message node
func (parser *Parser) parseMessage(cur Cursor) (*ast.Message, Cursor, *Error) {
	start := cur

	// Parse the identifier
	id, cur, err := parser.parseIdentifier(cur)
	if err != nil {
		return nil, cur, err
	}

	// Whitespace before the '=' is ignored
	cur = parser.skipBlankInline(cur)

	// A '=' is expected
	cur, err = parser.expect(cur, '=')
	if err != nil {
		return nil, cur, err
	}

	// Parse the (optional; attributes are enough) pattern value
	value, cur, err := parser.parseOptionalPattern(cur, false)
	if err != nil {
		return nil, cur, err
	}

	// Parse the attributes
	attributes, cur, err := parser.parseAttributes(cur)
	if err != nil {
		return nil, cur, err
	}

	// A message without a value and without attributes degrades to junk
	if value == nil && len(attributes) == 0 {
		return nil, cur, newError(start, cur, CodeMessageBlank, "expected message '%s' to have a value or attributes", id.Name)
	}

	return &ast.Message{
		Base: ast.Base{
			Type: ast.TypeMessage,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		ID:         id,
		Value:      value,
		Attributes: attributes,
	}, cur, nil
}

// parseAttributes parses the attributes following a message or term.
// Every attribute lives on its own line, indented by at least one space and
// introduced by a '.'.
func (parser *Parser) parseAttributes(cur Cursor) ([]*ast.Attribute, Cursor, *Error) {
	attributes := []*ast.Attribute{}

	for {
		probe := parser.skipBlank(cur)
		if probe.Peek(0) != '.' || probe.Pos() == cur.Pos() {
			break
		}
		// The '.' has to be indented; an unindented one starts a new (broken) entry
		if probe.Pos() == 0 || parser.source[probe.Pos()-1] != ' ' {
			break
		}

		attribute, next, err := parser.parseAttribute(probe)
		if err != nil {
			return nil, next, err
		}
		attributes = append(attributes, attribute)
		cur = next
	}

	return attributes, cur, nil
}

// parseAttribute parses a single attribute node
func (parser *Parser) parseAttribute(cur Cursor) (*ast.Attribute, Cursor, *Error) {
	start := cur

	// An attribute key has to start with a '.'
	cur, err := parser.expect(cur, '.')
	if err != nil {
		return nil, cur, err
	}

	// Parse the identifier after the '.'
	id, cur, err := parser.parseIdentifier(cur)
	if err != nil {
		return nil, cur, err
	}

	// Whitespace before the '=' is ignored
	cur = parser.skipBlankInline(cur)

	// A '=' is expected
	cur, err = parser.expect(cur, '=')
	if err != nil {
		return nil, cur, err
	}

	// Parse the pattern; attributes always require one
	value, cur, err := parser.parseOptionalPattern(cur, false)
	if err != nil {
		return nil, cur, err
	}
	if value == nil {
		return nil, cur, newError(start, cur, CodeMissingValue, "expected attribute '.%s' to have a value", id.Name)
	}

	return &ast.Attribute{
		Base: ast.Base{
			Type: ast.TypeAttribute,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		ID:    id,
		Value: value,
	}, cur, nil
}

// parseOptionalPattern parses a pattern if one exists, either starting in the
// current line or as an indented block on the following line(s).
// With inVariant set, the pattern belongs to an inline select variant and
// additionally terminates at the start of the next variant or the closing '}'.
func (parser *Parser) parseOptionalPattern(cur Cursor, inVariant bool) (*ast.Pattern, Cursor, *Error) {
	inline := parser.skipBlankInline(cur)
	if inline.EOF() {
		return nil, inline, nil
	}

	// If the line still carries content, the pattern starts inline
	if parser.eolWidth(inline) == 0 {
		return parser.parsePattern(inline, inVariant)
	}

	// Otherwise the value may start as an indented block on a following line
	if next, ok := parser.continuation(inline); ok {
		return parser.parsePattern(next, inVariant)
	}

	return nil, cur, nil
}

// startsVariant checks whether the cursor points at the '[' or '*[' opening a
// select variant
func startsVariant(cur Cursor) bool {
	return cur.Peek(0) == '[' || (cur.Peek(0) == '*' && cur.Peek(1) == '[')
}

// parsePattern parses a pattern node. The cursor has to point at the first
// content character of the pattern.
func (parser *Parser) parsePattern(cur Cursor, inVariant bool) (*ast.Pattern, Cursor, *Error) {
	start := cur

	var elements []ast.Node
	appendText := func(value string, span ast.Span) {
		if len(elements) > 0 {
			if previous, ok := elements[len(elements)-1].(*ast.Text); ok {
				previous.Value += value
				previous.Span.End = span.End
				return
			}
		}
		elements = append(elements, &ast.Text{
			Base:  ast.Base{Type: ast.TypeText, Span: span},
			Value: value,
		})
	}

loop:
	for !cur.EOF() {
		switch {
		case cur.Peek(0) == '{':
			placeable, next, err := parser.parsePlaceable(cur)
			if err != nil {
				return nil, next, err
			}
			elements = append(elements, placeable)
			cur = next
		case inVariant && startsVariant(cur):
			// The next variant of the surrounding select expression starts
			break loop
		case cur.Peek(0) == '}':
			if inVariant {
				break loop
			}
			return nil, cur, newErrorAt(cur, CodeUnexpectedChar, "unexpected '}'")
		case parser.eolWidth(cur) > 0:
			// The pattern only continues onto the next line if that line is an
			// indented continuation; the line break contributes a single space
			next, ok := parser.continuation(cur)
			if !ok {
				break loop
			}
			appendText(" ", ast.Span{Start: cur.Pos(), End: next.Pos()})
			cur = next
		default:
			value, next := parser.parseText(cur, inVariant)
			appendText(value, ast.Span{Start: cur.Pos(), End: next.Pos()})
			cur = next
		}
	}

	// Trailing whitespace of a final text element is not part of the value
	if len(elements) > 0 {
		if text, ok := elements[len(elements)-1].(*ast.Text); ok {
			text.Value = strings.TrimRight(text.Value, " ")
			if text.Value == "" {
				elements = elements[:len(elements)-1]
			}
		}
	}
	if len(elements) == 0 {
		return nil, cur, nil
	}

	return &ast.Pattern{
		Base: ast.Base{
			Type: ast.TypePattern,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Elements: elements,
	}, cur, nil
}

// continuation checks whether the line following the EOL at the cursor is an
// indented pattern continuation. A continuation line starts with at least one
// space, and its first non-space character must not introduce a variant
// ('[', '*'), an attribute ('.') or close a placeable ('}'). On success the
// returned cursor points at the first content character of that line.
func (parser *Parser) continuation(cur Cursor) (Cursor, bool) {
	width := parser.eolWidth(cur)
	if width == 0 {
		return cur, false
	}

	probe := parser.skipBlankBlock(cur.Advance(width))
	if probe.EOF() {
		return cur, false
	}

	indent := 0
	for probe.Peek(indent) == ' ' {
		indent++
	}
	if indent == 0 {
		return cur, false
	}

	switch probe.Peek(indent) {
	case '[', '*', '.', '}':
		return cur, false
	}
	return probe.Advance(indent), true
}

// parseText consumes a run of raw text until a placeable, a closing brace or
// the end of the line; inside an inline select variant the start of the next
// variant terminates the run too
func (parser *Parser) parseText(cur Cursor, inVariant bool) (string, Cursor) {
	start := cur.Pos()
	for !cur.EOF() {
		peek := cur.Peek(0)
		if peek == '{' || peek == '}' || parser.eolWidth(cur) > 0 {
			break
		}
		if inVariant && startsVariant(cur) {
			break
		}
		cur = cur.Advance(1)
	}
	return parser.source[start:cur.Pos()], cur
}

// parsePlaceable parses a placeable node
func (parser *Parser) parsePlaceable(cur Cursor) (*ast.Placeable, Cursor, *Error) {
	start := cur

	// A '{' is required
	cur, err := parser.expect(cur, '{')
	if err != nil {
		return nil, cur, err
	}

	// Any blank content after the '{' is ignored
	cur = parser.skipBlank(cur)

	// Parse the expression inside the placeable
	expression, cur, err := parser.parseExpression(cur)
	if err != nil {
		return nil, cur, err
	}

	// A '}' afterwards is required
	cur, err = parser.expect(cur, '}')
	if err != nil {
		return nil, cur, err
	}

	return &ast.Placeable{
		Base: ast.Base{
			Type: ast.TypePlaceable,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Expression: expression,
	}, cur, nil
}

// parseExpression parses an expression node, upgrading the parsed inline
// expression to a select expression if a '->' follows it
func (parser *Parser) parseExpression(cur Cursor) (ast.Node, Cursor, *Error) {
	start := cur

	// Parse the inline expression which doubles as the selector of a
	// potential select expression
	selector, cur, err := parser.parseInlineExpression(cur)
	if err != nil {
		return nil, cur, err
	}

	// Any blank content afterwards is ignored
	cur = parser.skipBlank(cur)

	// If no '->' follows, the inline expression stands on its own
	if !(cur.Peek(0) == '-' && cur.Peek(1) == '>') {
		return selector, cur, nil
	}

	// A nested placeable cannot select variants
	if _, ok := selector.(*ast.Placeable); ok {
		return nil, cur, newError(start, cur, CodeForbiddenSelector, "placeables are not allowed as selectors")
	}

	// Skip the '->' and any trailing inline blank
	cur = parser.skipBlankInline(cur.Advance(2))

	// The variants either follow inline in the same line or as an indented
	// block on the following lines
	inline := true
	if next, ok := parser.expectEOL(cur); ok {
		cur = next
		inline = false
	}

	// Parse the select variants
	variants, cur, err := parser.parseVariants(cur, inline)
	if err != nil {
		return nil, cur, err
	}

	return &ast.SelectExpression{
		Base: ast.Base{
			Type: ast.TypeSelectExpression,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Selector: selector,
		Variants: variants,
	}, cur, nil
}

// parseInlineExpression parses an inline expression node
func (parser *Parser) parseInlineExpression(cur Cursor) (ast.Node, Cursor, *Error) {
	start := cur
	peek := cur.Peek(0)

	// A nested placeable
	if peek == '{' {
		return parser.parsePlaceable(cur)
	}

	// A number literal; a '-' only introduces one if a digit follows it
	if isDigit(peek) || (peek == '-' && isDigit(cur.Peek(1))) {
		return parser.parseNumber(cur)
	}

	// A string literal
	if peek == '"' {
		return parser.parseString(cur)
	}

	// A variable reference
	if peek == '$' {
		id, next, err := parser.parseIdentifier(cur.Advance(1))
		if err != nil {
			return nil, next, err
		}
		return &ast.VariableReference{
			Base: ast.Base{
				Type: ast.TypeVariableReference,
				Span: ast.Span{Start: start.Pos(), End: next.Pos()},
			},
			ID: id,
		}, next, nil
	}

	// A term reference ('-' followed by a letter)
	if peek == '-' {
		id, cur, err := parser.parseIdentifier(cur.Advance(1))
		if err != nil {
			return nil, cur, err
		}

		// Parse an optional attribute reference
		var attribute *ast.Identifier
		if cur.Peek(0) == '.' {
			attribute, cur, err = parser.parseIdentifier(cur.Advance(1))
			if err != nil {
				return nil, cur, err
			}
		}

		// Terms receive variables through call arguments; parse these if present
		var arguments *ast.CallArguments
		if probe := parser.skipBlank(cur); probe.Peek(0) == '(' {
			arguments, cur, err = parser.parseCallArguments(probe)
			if err != nil {
				return nil, cur, err
			}
		}

		return &ast.TermReference{
			Base: ast.Base{
				Type: ast.TypeTermReference,
				Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
			},
			ID:        id,
			Attribute: attribute,
			Arguments: arguments,
		}, cur, nil
	}

	// A message or function reference; both start with an identifier
	if !isIdentifierStart(peek) {
		return nil, cur, newErrorAt(cur, CodeExpectedEntry, "expected an inline expression")
	}

	id, cur, err := parser.parseIdentifier(cur)
	if err != nil {
		return nil, cur, err
	}

	// A '(' after the identifier makes it a function reference
	if probe := parser.skipBlank(cur); probe.Peek(0) == '(' {
		// Function names have to be all-uppercase
		if hasLowercase(id.Name) {
			return nil, cur, newError(start, cur, CodeCalleeLowercase, "function names may only contain uppercase letters")
		}

		arguments, next, err := parser.parseCallArguments(probe)
		if err != nil {
			return nil, next, err
		}

		return &ast.FunctionReference{
			Base: ast.Base{
				Type: ast.TypeFunctionReference,
				Span: ast.Span{Start: start.Pos(), End: next.Pos()},
			},
			ID:        id,
			Arguments: arguments,
		}, next, nil
	}

	// A message reference with an optional attribute
	var attribute *ast.Identifier
	if cur.Peek(0) == '.' {
		attribute, cur, err = parser.parseIdentifier(cur.Advance(1))
		if err != nil {
			return nil, cur, err
		}
	}

	return &ast.MessageReference{
		Base: ast.Base{
			Type: ast.TypeMessageReference,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		ID:        id,
		Attribute: attribute,
	}, cur, nil
}

// parseCallArguments parses a call arguments node.
// Positional arguments have to precede named ones and named-argument names
// are unique within one call.
func (parser *Parser) parseCallArguments(cur Cursor) (*ast.CallArguments, Cursor, *Error) {
	start := cur

	positional := []ast.Node{}
	named := []*ast.NamedArgument{}
	names := make(map[string]bool)

	// A '(' is required
	cur, err := parser.expect(cur, '(')
	if err != nil {
		return nil, cur, err
	}

	// Any blank content after the '(' is ignored
	cur = parser.skipBlank(cur)

	for cur.Peek(0) != ')' {
		argStart := cur
		argument, next, err := parser.parseCallArgument(cur)
		if err != nil {
			return nil, next, err
		}
		cur = next

		if namedArg, ok := argument.(*ast.NamedArgument); ok {
			if names[namedArg.Name.Name] {
				return nil, cur, newError(argStart, cur, CodeDuplicateNamedArg, "argument '%s' is provided more than once", namedArg.Name.Name)
			}
			names[namedArg.Name.Name] = true
			named = append(named, namedArg)
		} else if len(named) > 0 {
			return nil, cur, newError(argStart, cur, CodePositionalOrder, "positional arguments may not follow named ones")
		} else {
			positional = append(positional, argument)
		}

		// Any blank content after the argument is ignored
		cur = parser.skipBlank(cur)

		// A ',' announces another argument
		if cur.Peek(0) != ',' {
			break
		}
		cur = parser.skipBlank(cur.Advance(1))
	}

	// A closing ')' is required
	cur, err = parser.expect(cur, ')')
	if err != nil {
		return nil, cur, err
	}

	return &ast.CallArguments{
		Base: ast.Base{
			Type: ast.TypeCallArguments,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Positional: positional,
		Named:      named,
	}, cur, nil
}

// parseCallArgument parses a single call argument, either a positional
// expression or a named literal
func (parser *Parser) parseCallArgument(cur Cursor) (ast.Node, Cursor, *Error) {
	start := cur

	expression, cur, err := parser.parseInlineExpression(cur)
	if err != nil {
		return nil, cur, err
	}

	// Any blank content after the expression is ignored
	cur = parser.skipBlank(cur)

	// Without a ':' the argument is positional
	if cur.Peek(0) != ':' {
		return expression, cur, nil
	}

	// The name of a named argument has to be a bare identifier
	reference, ok := expression.(*ast.MessageReference)
	if !ok || reference.Attribute != nil {
		return nil, cur, newError(start, cur, CodeUnexpectedChar, "the name of a named argument must be a simple identifier")
	}

	// Skip the ':' and any blank content after it
	cur = parser.skipBlank(cur.Advance(1))

	// Named arguments only accept literal values
	value, cur, err := parser.parseLiteral(cur)
	if err != nil {
		return nil, cur, err
	}

	return &ast.NamedArgument{
		Base: ast.Base{
			Type: ast.TypeNamedArgument,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Name:  reference.ID,
		Value: value,
	}, cur, nil
}

// parseVariants parses the variant list of a select expression and validates
// that exactly one variant is marked as the default one.
// In the inline form the variants are collected until the closing '}'; in the
// block form every variant lives on its own line.
func (parser *Parser) parseVariants(cur Cursor, inline bool) ([]*ast.Variant, Cursor, *Error) {
	start := cur

	var variants []*ast.Variant
	var err *Error
	hasDefault := false

	// Blank content before the first variant is ignored
	cur = parser.skipBlank(cur)

	for startsVariant(cur) {
		variantStart := cur

		isDefault := false
		if cur.Peek(0) == '*' {
			if hasDefault {
				return nil, cur, newErrorAt(cur, CodeMultipleDefaults, "only one default variant is allowed")
			}
			hasDefault = true
			isDefault = true
			cur = cur.Advance(1)
		}

		// A '[' is required
		cur, err = parser.expect(cur, '[')
		if err != nil {
			return nil, cur, err
		}
		cur = parser.skipBlank(cur)

		// Parse the key of the variant
		var key ast.Node
		key, cur, err = parser.parseVariantKey(cur)
		if err != nil {
			return nil, cur, err
		}
		cur = parser.skipBlank(cur)

		// A closing ']' is required
		cur, err = parser.expect(cur, ']')
		if err != nil {
			return nil, cur, err
		}

		// Parse the pattern that represents the variant's value
		var value *ast.Pattern
		value, cur, err = parser.parseOptionalPattern(cur, inline)
		if err != nil {
			return nil, cur, err
		}
		if value == nil {
			return nil, cur, newError(variantStart, cur, CodeMissingValue, "expected a value for the select variant")
		}

		variants = append(variants, &ast.Variant{
			Base: ast.Base{
				Type: ast.TypeVariant,
				Span: ast.Span{Start: variantStart.Pos(), End: cur.Pos()},
			},
			Key:     key,
			Value:   value,
			Default: isDefault,
		})

		// In the block form an EOL is required after the variant pattern
		if !inline {
			next, ok := parser.expectEOL(cur)
			if !ok {
				return nil, cur, newErrorAt(cur, CodeExpectedToken, "expected the select variant to end here")
			}
			cur = next
		}
		cur = parser.skipBlank(cur)
	}

	// At least one variant and exactly one default are required
	if len(variants) == 0 {
		return nil, cur, newError(start, cur, CodeMissingVariants, "expected at least one select variant")
	}
	if !hasDefault {
		return nil, cur, newError(start, cur, CodeMissingDefault, "expected one of the select variants to be marked as default (*)")
	}

	return variants, cur, nil
}

// parseVariantKey parses a variant key node (an identifier or a number)
func (parser *Parser) parseVariantKey(cur Cursor) (ast.Node, Cursor, *Error) {
	peek := cur.Peek(0)

	if peek == EOL || parser.eolWidth(cur) > 0 {
		return nil, cur, newErrorAt(cur, CodeMissingVariantKey, "expected a variant key")
	}

	if isDigit(peek) || peek == '-' {
		return parser.parseNumber(cur)
	}

	return parser.parseIdentifier(cur)
}

// parseLiteral parses a literal node (a string or a number).
// This is used for named-argument values, which the language restricts to
// literals so translation tooling can analyze calls statically.
func (parser *Parser) parseLiteral(cur Cursor) (ast.Node, Cursor, *Error) {
	peek := cur.Peek(0)

	if isDigit(peek) || peek == '-' {
		return parser.parseNumber(cur)
	}
	if peek == '"' {
		return parser.parseString(cur)
	}

	err := newErrorAt(cur, CodeNamedArgLiteral, "named-argument values must be string or number literals")
	err.Hint = "to pass a reference, branch on it with a select expression instead"
	return nil, cur, err
}

// parseNumber parses a number node, keeping the raw source text next to the
// parsed exact value
func (parser *Parser) parseNumber(cur Cursor) (*ast.NumberLiteral, Cursor, *Error) {
	start := cur

	if cur.Peek(0) == '-' {
		cur = cur.Advance(1)
	}

	digits := 0
	for isDigit(cur.Peek(0)) {
		digits++
		cur = cur.Advance(1)
	}
	if digits == 0 {
		return nil, cur, newErrorAt(cur, CodeInvalidNumber, "expected a digit")
	}

	// An optional fraction requires at least one digit after the '.';
	// otherwise the '.' is not part of the number
	if cur.Peek(0) == '.' && isDigit(cur.Peek(1)) {
		cur = cur.Advance(1)
		for isDigit(cur.Peek(0)) {
			cur = cur.Advance(1)
		}
	}

	raw := parser.source[start.Pos():cur.Pos()]
	value, parseErr := decimal.NewFromString(raw)
	if parseErr != nil {
		return nil, cur, newError(start, cur, CodeInvalidNumber, "invalid number literal '%s'", raw)
	}

	return &ast.NumberLiteral{
		Base: ast.Base{
			Type: ast.TypeNumberLiteral,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Raw:   raw,
		Value: value,
	}, cur, nil
}

// parseString parses a string literal node, decoding escape sequences
func (parser *Parser) parseString(cur Cursor) (*ast.StringLiteral, Cursor, *Error) {
	start := cur

	// A '"' is required
	cur, err := parser.expect(cur, '"')
	if err != nil {
		return nil, cur, err
	}

	var value strings.Builder
	for {
		if cur.EOF() || parser.eolWidth(cur) > 0 {
			return nil, cur, newError(start, cur, CodeUnterminatedStr, "the string literal is never closed")
		}
		if cur.Peek(0) == '"' {
			cur = cur.Advance(1)
			break
		}
		if cur.Peek(0) == '\\' {
			decoded, next, err := parser.parseEscapeSequence(cur)
			if err != nil {
				return nil, next, err
			}
			value.WriteString(decoded)
			cur = next
			continue
		}
		value.WriteRune(cur.Current())
		cur = cur.Advance(len(string(cur.Current())))
	}

	return &ast.StringLiteral{
		Base: ast.Base{
			Type: ast.TypeStringLiteral,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Value: value.String(),
	}, cur, nil
}

// parseEscapeSequence decodes a single escape sequence inside a string literal
func (parser *Parser) parseEscapeSequence(cur Cursor) (string, Cursor, *Error) {
	// A leading '\' is required
	cur, err := parser.expect(cur, '\\')
	if err != nil {
		return "", cur, err
	}

	switch cur.Peek(0) {
	case '\\':
		return "\\", cur.Advance(1), nil
	case '"':
		return "\"", cur.Advance(1), nil
	case 'n':
		return "\n", cur.Advance(1), nil
	case 't':
		return "\t", cur.Advance(1), nil
	case 'u':
		return parser.parseUnicodeEscape(cur.Advance(1), 4)
	case 'U':
		return parser.parseUnicodeEscape(cur.Advance(1), 6)
	default:
		return "", cur, newErrorAt(cur, CodeInvalidEscape, "unknown escape sequence")
	}
}

// parseUnicodeEscape decodes the hexadecimal part of a '\uXXXX' or '\UXXXXXX'
// escape sequence
func (parser *Parser) parseUnicodeEscape(cur Cursor, digits int) (string, Cursor, *Error) {
	start := cur

	value := 0
	for i := 0; i < digits; i++ {
		peek := cur.Peek(0)
		if !isHexDigit(peek) {
			return "", cur, newErrorAt(cur, CodeInvalidEscape, "expected a hexadecimal digit (0-9a-fA-F)")
		}
		value = value*16 + hexValue(peek)
		cur = cur.Advance(1)
	}

	if value > 0x10FFFF {
		return "", cur, newError(start, cur, CodeEscapeTooLarge, "escaped code points may not exceed U+10FFFF")
	}

	return string(rune(value)), cur, nil
}

func hexValue(char rune) int {
	switch {
	case char >= '0' && char <= '9':
		return int(char - '0')
	case char >= 'a' && char <= 'f':
		return int(char-'a') + 10
	default:
		return int(char-'A') + 10
	}
}

// parseIdentifier parses an identifier node
func (parser *Parser) parseIdentifier(cur Cursor) (*ast.Identifier, Cursor, *Error) {
	start := cur

	if !isIdentifierStart(cur.Peek(0)) {
		return nil, cur, newErrorAt(cur, CodeExpectedCharRange, "expected an identifier to start with a letter (a-zA-Z)")
	}
	cur = cur.Advance(1)

	for isIdentifierFollowing(cur.Peek(0)) {
		cur = cur.Advance(1)
	}

	return &ast.Identifier{
		Base: ast.Base{
			Type: ast.TypeIdentifier,
			Span: ast.Span{Start: start.Pos(), End: cur.Pos()},
		},
		Name: parser.source[start.Pos():cur.Pos()],
	}, cur, nil
}

// eolWidth returns the byte width of the line ending at the cursor: 2 for a
// CRLF sequence, 1 for a plain LF, 0 for anything else (including EOF)
func (parser *Parser) eolWidth(cur Cursor) int {
	switch cur.Peek(0) {
	case EOL:
		return 1
	case '\r':
		if cur.Peek(1) == EOL {
			return 2
		}
	}
	return 0
}

// skipBlankInline moves the cursor past any spaces in the current line
func (parser *Parser) skipBlankInline(cur Cursor) Cursor {
	for cur.Peek(0) == ' ' {
		cur = cur.Advance(1)
	}
	return cur
}

// skipBlank moves the cursor past any spaces and line endings
func (parser *Parser) skipBlank(cur Cursor) Cursor {
	for {
		if cur.Peek(0) == ' ' {
			cur = cur.Advance(1)
			continue
		}
		if width := parser.eolWidth(cur); width > 0 {
			cur = cur.Advance(width)
			continue
		}
		return cur
	}
}

// skipBlankBlock consumes fully blank lines. The returned cursor points at
// the start of the first line carrying content (or at EOF).
func (parser *Parser) skipBlankBlock(cur Cursor) Cursor {
	for {
		lineStart := cur
		rest := parser.skipBlankInline(cur)
		if width := parser.eolWidth(rest); width > 0 {
			cur = rest.Advance(width)
			continue
		}
		if rest.EOF() {
			return rest
		}
		return lineStart
	}
}

// skipToNextLine moves the cursor past the current line including its line ending
func (parser *Parser) skipToNextLine(cur Cursor) Cursor {
	for !cur.EOF() {
		if width := parser.eolWidth(cur); width > 0 {
			return cur.Advance(width)
		}
		cur = cur.Advance(1)
	}
	return cur
}

// expect consumes the given ASCII character or fails
func (parser *Parser) expect(cur Cursor, char rune) (Cursor, *Error) {
	if cur.Peek(0) != char {
		err := newErrorAt(cur, CodeExpectedToken, "expected '%s'", string(char))
		err.Expected = []string{string(char)}
		return cur, err
	}
	return cur.Advance(1), nil
}

// expectEOL consumes a line ending; the end of the file counts as one
func (parser *Parser) expectEOL(cur Cursor) (Cursor, bool) {
	if cur.EOF() {
		return cur, true
	}
	if width := parser.eolWidth(cur); width > 0 {
		return cur.Advance(width), true
	}
	return cur, false
}
