package parser

import (
	"strings"
	"testing"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSingleMessage(t *testing.T, source string) *ast.Message {
	t.Helper()
	resource, errs := Parse(source)
	require.Empty(t, errs)
	require.Len(t, resource.Body, 1)
	message, ok := resource.Body[0].(*ast.Message)
	require.True(t, ok, "expected the entry to be a message")
	return message
}

func parseJunk(t *testing.T, source string) (*ast.Junk, []*Error) {
	t.Helper()
	resource, errs := Parse(source)
	require.NotEmpty(t, errs)
	require.NotEmpty(t, resource.Body)
	junk, ok := resource.Body[0].(*ast.Junk)
	require.True(t, ok, "expected the entry to be junk")
	return junk, errs
}

func textValue(t *testing.T, pattern *ast.Pattern) string {
	t.Helper()
	require.NotNil(t, pattern)
	var sb strings.Builder
	for _, element := range pattern.Elements {
		text, ok := element.(*ast.Text)
		require.True(t, ok, "expected the pattern to only contain text")
		sb.WriteString(text.Value)
	}
	return sb.String()
}

func TestParseSimpleMessage(t *testing.T) {
	message := parseSingleMessage(t, "hello = Hello, World!")

	assert.Equal(t, "hello", message.ID.Name)
	assert.Equal(t, "Hello, World!", textValue(t, message.Value))
	assert.Empty(t, message.Attributes)
}

func TestParseEmptySource(t *testing.T) {
	for _, source := range []string{"", "\n\n", "   \n \n"} {
		resource, errs := Parse(source)
		assert.Empty(t, errs)
		assert.Empty(t, resource.Body)
	}
}

func TestParseMessageWithAttributes(t *testing.T) {
	message := parseSingleMessage(t, "login = Login\n    .tooltip = Click here\n    .aria-label = Login button\n")

	assert.Equal(t, "Login", textValue(t, message.Value))
	require.Len(t, message.Attributes, 2)
	assert.Equal(t, "tooltip", message.Attributes[0].ID.Name)
	assert.Equal(t, "Click here", textValue(t, message.Attributes[0].Value))
	assert.Equal(t, "aria-label", message.Attributes[1].ID.Name)
	assert.Equal(t, "Login button", textValue(t, message.Attributes[1].Value))
}

func TestParseMessageWithAttributesOnly(t *testing.T) {
	message := parseSingleMessage(t, "login =\n    .tooltip = Click here\n")

	assert.Nil(t, message.Value)
	require.Len(t, message.Attributes, 1)
}

func TestParseMultilinePattern(t *testing.T) {
	message := parseSingleMessage(t, "hello =\n    multi\n    line\n")

	// Line breaks inside a pattern contribute a single space
	assert.Equal(t, "multi line", textValue(t, message.Value))
}

func TestParseMultilinePatternInline(t *testing.T) {
	message := parseSingleMessage(t, "hello = first\n    second\n")
	assert.Equal(t, "first second", textValue(t, message.Value))
}

func TestParseUnindentedLineEndsPattern(t *testing.T) {
	resource, errs := Parse("first = One\nsecond = Two\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 2)
	assert.Equal(t, "One", textValue(t, resource.Body[0].(*ast.Message).Value))
	assert.Equal(t, "Two", textValue(t, resource.Body[1].(*ast.Message).Value))
}

func TestParseCRLFSource(t *testing.T) {
	resource, errs := Parse("first = One\r\nsecond =\r\n    Two\r\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 2)
	assert.Equal(t, "One", textValue(t, resource.Body[0].(*ast.Message).Value))
	assert.Equal(t, "Two", textValue(t, resource.Body[1].(*ast.Message).Value))
}

func TestParseTerm(t *testing.T) {
	resource, errs := Parse("-brand = Firefox\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 1)
	term, ok := resource.Body[0].(*ast.Term)
	require.True(t, ok)
	assert.Equal(t, "brand", term.ID.Name)
	assert.Equal(t, "Firefox", textValue(t, term.Value))
}

func TestParseVariableReference(t *testing.T) {
	message := parseSingleMessage(t, "welcome = Welcome, { $user }!")

	require.Len(t, message.Value.Elements, 3)
	placeable, ok := message.Value.Elements[1].(*ast.Placeable)
	require.True(t, ok)
	variable, ok := placeable.Expression.(*ast.VariableReference)
	require.True(t, ok)
	assert.Equal(t, "user", variable.ID.Name)
}

func TestParseSelectExpression(t *testing.T) {
	source := "emails =\n" +
		"    { $count ->\n" +
		"        [one] One email\n" +
		"       *[other] { $count } emails\n" +
		"    }\n"
	message := parseSingleMessage(t, source)

	require.Len(t, message.Value.Elements, 1)
	placeable := message.Value.Elements[0].(*ast.Placeable)
	selectExpr, ok := placeable.Expression.(*ast.SelectExpression)
	require.True(t, ok)

	selector, ok := selectExpr.Selector.(*ast.VariableReference)
	require.True(t, ok)
	assert.Equal(t, "count", selector.ID.Name)

	require.Len(t, selectExpr.Variants, 2)
	assert.False(t, selectExpr.Variants[0].Default)
	assert.True(t, selectExpr.Variants[1].Default)
	assert.Equal(t, "one", selectExpr.Variants[0].Key.(*ast.Identifier).Name)
	assert.Equal(t, "other", selectExpr.Variants[1].Key.(*ast.Identifier).Name)
	assert.Equal(t, "One email", textValue(t, selectExpr.Variants[0].Value))
}

func TestParseSelectWithNumberKeys(t *testing.T) {
	source := "score =\n" +
		"    { $points ->\n" +
		"        [0] No points\n" +
		"       *[other] Some points\n" +
		"    }\n"
	message := parseSingleMessage(t, source)

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	key, ok := selectExpr.Variants[0].Key.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, "0", key.Raw)
}

func TestParseJunkRecovery(t *testing.T) {
	resource, errs := Parse("bad = { missing\nhello = World\n")

	require.Len(t, errs, 1)
	require.Len(t, resource.Body, 2)

	junk, ok := resource.Body[0].(*ast.Junk)
	require.True(t, ok)
	assert.Equal(t, "bad = { missing\n", junk.Content)
	require.Len(t, junk.Annotations, 1)
	assert.Equal(t, errs[0].Code, junk.Annotations[0].Code)

	message, ok := resource.Body[1].(*ast.Message)
	require.True(t, ok)
	assert.Equal(t, "hello", message.ID.Name)
	assert.Equal(t, "World", textValue(t, message.Value))
}

func TestParseJunkSpansMultipleLines(t *testing.T) {
	// Lines that cannot start an entry are swallowed into the same junk node
	resource, errs := Parse("bad = { missing\n   stray indented line\n= stray equals\nhello = World\n")

	require.Len(t, errs, 1)
	require.Len(t, resource.Body, 2)
	junk := resource.Body[0].(*ast.Junk)
	assert.Equal(t, "bad = { missing\n   stray indented line\n= stray equals\n", junk.Content)
	assert.Equal(t, "hello", resource.Body[1].(*ast.Message).ID.Name)
}

func TestParseJunkAtEOF(t *testing.T) {
	resource, errs := Parse("bad = { missing")
	require.Len(t, errs, 1)
	require.Len(t, resource.Body, 1)
	assert.Equal(t, "bad = { missing", resource.Body[0].(*ast.Junk).Content)
}

func TestParseBlankMessageBecomesJunk(t *testing.T) {
	_, errs := parseJunk(t, "blank =\n")
	assert.Equal(t, CodeMessageBlank, errs[0].Code)
}

func TestParseBlankTermBecomesJunk(t *testing.T) {
	_, errs := parseJunk(t, "-blank =\n")
	assert.Equal(t, CodeTermMissingValue, errs[0].Code)
}

func TestParseCommentLevels(t *testing.T) {
	resource, errs := Parse("### Resource wide\n\n## Group wide\n\n# Standalone\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 3)

	assert.Equal(t, "Resource wide", resource.Body[0].(*ast.ResourceComment).Content)
	assert.Equal(t, "Group wide", resource.Body[1].(*ast.GroupComment).Content)
	assert.Equal(t, "Standalone", resource.Body[2].(*ast.Comment).Content)
}

func TestParseMultilineComment(t *testing.T) {
	resource, errs := Parse("# first line\n# second line\n#\n# fourth line\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 1)
	assert.Equal(t, "first line\nsecond line\n\nfourth line", resource.Body[0].(*ast.Comment).Content)
}

func TestParseCommentAttachesToFollowingMessage(t *testing.T) {
	resource, errs := Parse("# Shown on the start page\nhello = World\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 1)

	message := resource.Body[0].(*ast.Message)
	require.NotNil(t, message.Comment)
	assert.Equal(t, "Shown on the start page", message.Comment.Content)
	// The attached comment extends the span of the message
	assert.Equal(t, 0, message.Span.Start)
}

func TestParseCommentSeparatedByBlankStaysStandalone(t *testing.T) {
	resource, errs := Parse("# Standalone\n\nhello = World\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 2)
	assert.IsType(t, &ast.Comment{}, resource.Body[0])
	assert.Nil(t, resource.Body[1].(*ast.Message).Comment)
}

func TestParseGroupCommentNeverAttaches(t *testing.T) {
	resource, errs := Parse("## Group\nhello = World\n")
	require.Empty(t, errs)
	require.Len(t, resource.Body, 2)
	assert.IsType(t, &ast.GroupComment{}, resource.Body[0])
	assert.Nil(t, resource.Body[1].(*ast.Message).Comment)
}

func TestParseCommentTooDeep(t *testing.T) {
	_, errs := parseJunk(t, "#### way too deep\n")
	assert.Equal(t, CodeCommentTooDeep, errs[0].Code)
}

func TestParseCommentWithoutSpace(t *testing.T) {
	_, errs := parseJunk(t, "#comment\n")
	assert.Equal(t, CodeExpectedToken, errs[0].Code)
}

func TestParseStringLiteralEscapes(t *testing.T) {
	message := parseSingleMessage(t, `msg = { "quote: \" slash: \\ break: \n tab: \t" }`)

	literal := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.StringLiteral)
	assert.Equal(t, "quote: \" slash: \\ break: \n tab: \t", literal.Value)
}

func TestParseUnicodeEscapes(t *testing.T) {
	message := parseSingleMessage(t, `msg = { "A\U01F602" }`)

	literal := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.StringLiteral)
	assert.Equal(t, "A\U0001F602", literal.Value)
}

func TestParseInvalidEscapeBecomesJunk(t *testing.T) {
	_, errs := parseJunk(t, `msg = { "\x41" }`+"\n")
	assert.Equal(t, CodeInvalidEscape, errs[0].Code)
}

func TestParseEscapeBeyondUnicodeRange(t *testing.T) {
	_, errs := parseJunk(t, `msg = { "\U110000" }`+"\n")
	assert.Equal(t, CodeEscapeTooLarge, errs[0].Code)
}

func TestParseUnterminatedString(t *testing.T) {
	_, errs := parseJunk(t, `msg = { "never closed`+"\n")
	assert.Equal(t, CodeUnterminatedStr, errs[0].Code)
}

func TestParseNumberLiterals(t *testing.T) {
	message := parseSingleMessage(t, "msg = { 0.50 }")

	literal := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.NumberLiteral)
	// The raw source form is kept for exact serialization
	assert.Equal(t, "0.50", literal.Raw)
	assert.Equal(t, "0.5", literal.Value.String())
}

func TestParseNegativeNumberVersusTermReference(t *testing.T) {
	// A '-' followed by a digit is a number, followed by a letter a term reference
	number := parseSingleMessage(t, "msg = { -3.14 }")
	literal := number.Value.Elements[0].(*ast.Placeable).Expression.(*ast.NumberLiteral)
	assert.Equal(t, "-3.14", literal.Raw)

	term := parseSingleMessage(t, "msg = { -brand }")
	reference := term.Value.Elements[0].(*ast.Placeable).Expression.(*ast.TermReference)
	assert.Equal(t, "brand", reference.ID.Name)
}

func TestParseTermReferenceWithArguments(t *testing.T) {
	message := parseSingleMessage(t, `msg = { -brand(case: "genitive") }`)

	reference := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.TermReference)
	require.NotNil(t, reference.Arguments)
	require.Len(t, reference.Arguments.Named, 1)
	assert.Equal(t, "case", reference.Arguments.Named[0].Name.Name)
}

func TestParseTermAttributeInPlaceable(t *testing.T) {
	message := parseSingleMessage(t, "msg = { -brand.gender }\n")

	reference := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.TermReference)
	assert.Equal(t, "brand", reference.ID.Name)
	require.NotNil(t, reference.Attribute)
	assert.Equal(t, "gender", reference.Attribute.Name)
}

func TestParseTermAttributeAsSelector(t *testing.T) {
	source := "msg = { -brand.gender ->\n" +
		"   *[other] they\n" +
		"}\n"
	message := parseSingleMessage(t, source)

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	selector := selectExpr.Selector.(*ast.TermReference)
	assert.Equal(t, "gender", selector.Attribute.Name)
}

func TestParseMessageReferenceSelector(t *testing.T) {
	source := "msg = { other ->\n" +
		"   *[a] x\n" +
		"}\n"
	message := parseSingleMessage(t, source)

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	selector := selectExpr.Selector.(*ast.MessageReference)
	assert.Equal(t, "other", selector.ID.Name)
}

func TestParseTermValueSelector(t *testing.T) {
	source := "msg = { -brand ->\n" +
		"   *[a] x\n" +
		"}\n"
	message := parseSingleMessage(t, source)

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	selector := selectExpr.Selector.(*ast.TermReference)
	assert.Equal(t, "brand", selector.ID.Name)
	assert.Nil(t, selector.Attribute)
}

func TestParseFunctionReference(t *testing.T) {
	message := parseSingleMessage(t, `msg = { NUMBER($count, minimumFractionDigits: 2) }`)

	reference := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.FunctionReference)
	assert.Equal(t, "NUMBER", reference.ID.Name)
	require.Len(t, reference.Arguments.Positional, 1)
	require.Len(t, reference.Arguments.Named, 1)
	assert.Equal(t, "minimumFractionDigits", reference.Arguments.Named[0].Name.Name)
}

func TestParseLowercaseCalleeForbidden(t *testing.T) {
	_, errs := parseJunk(t, "msg = { number(1) }\n")
	assert.Equal(t, CodeCalleeLowercase, errs[0].Code)
}

func TestParseDuplicateNamedArgument(t *testing.T) {
	_, errs := parseJunk(t, `msg = { NUMBER(1, style: "a", style: "b") }`+"\n")
	assert.Equal(t, CodeDuplicateNamedArg, errs[0].Code)
}

func TestParsePositionalAfterNamedArgument(t *testing.T) {
	_, errs := parseJunk(t, `msg = { NUMBER(style: "a", 1) }`+"\n")
	assert.Equal(t, CodePositionalOrder, errs[0].Code)
}

func TestParseNamedArgumentRequiresLiteral(t *testing.T) {
	_, errs := parseJunk(t, "msg = { NUMBER(1, style: $var) }\n")
	assert.Equal(t, CodeNamedArgLiteral, errs[0].Code)
	assert.NotEmpty(t, errs[0].Hint)
}

func TestParseSelectWithoutDefault(t *testing.T) {
	source := "msg = { $count ->\n" +
		"    [one] One\n" +
		"}\n"
	_, errs := parseJunk(t, source)
	assert.Equal(t, CodeMissingDefault, errs[0].Code)
}

func TestParseSelectWithTwoDefaults(t *testing.T) {
	source := "msg = { $count ->\n" +
		"   *[one] One\n" +
		"   *[other] Other\n" +
		"}\n"
	_, errs := parseJunk(t, source)
	assert.Equal(t, CodeMultipleDefaults, errs[0].Code)
}

func TestParseInlineSelectExpression(t *testing.T) {
	message := parseSingleMessage(t, "count = { $n -> [one] One *[other] { $n } items }")

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	require.Len(t, selectExpr.Variants, 2)

	one := selectExpr.Variants[0]
	assert.False(t, one.Default)
	assert.Equal(t, "one", one.Key.(*ast.Identifier).Name)
	// The variant pattern ends where the next variant starts; trailing
	// blank is trimmed like any other pattern
	assert.Equal(t, "One", textValue(t, one.Value))

	other := selectExpr.Variants[1]
	assert.True(t, other.Default)
	require.Len(t, other.Value.Elements, 2)
	variable := other.Value.Elements[0].(*ast.Placeable).Expression.(*ast.VariableReference)
	assert.Equal(t, "n", variable.ID.Name)
	assert.Equal(t, " items", other.Value.Elements[1].(*ast.Text).Value)
}

func TestParseInlineSelectSingleVariant(t *testing.T) {
	message := parseSingleMessage(t, "msg = { $count -> *[other] x }\n")

	selectExpr := message.Value.Elements[0].(*ast.Placeable).Expression.(*ast.SelectExpression)
	require.Len(t, selectExpr.Variants, 1)
	assert.True(t, selectExpr.Variants[0].Default)
	assert.Equal(t, "x", textValue(t, selectExpr.Variants[0].Value))
}

func TestParseNestedPlaceable(t *testing.T) {
	message := parseSingleMessage(t, `msg = { { "nested" } }`)

	outer := message.Value.Elements[0].(*ast.Placeable)
	inner, ok := outer.Expression.(*ast.Placeable)
	require.True(t, ok)
	assert.IsType(t, &ast.StringLiteral{}, inner.Expression)
}

func TestParseStrayClosingBrace(t *testing.T) {
	_, errs := parseJunk(t, "msg = closing } brace\n")
	assert.Equal(t, CodeUnexpectedChar, errs[0].Code)
}

func TestParseTrailingSpacesAreTrimmed(t *testing.T) {
	message := parseSingleMessage(t, "msg = value   \n")
	assert.Equal(t, "value", textValue(t, message.Value))
}

func TestParseNeverLosesInput(t *testing.T) {
	// Entry spans are contiguous and cover all non-blank input, no matter how broken it is
	sources := []string{
		"a = } {\nb = {{{\nc = ok\n",
		"= = =\n--\n#!\n",
		"msg = { $ }\n",
		strings.Repeat("x = { broken\n", 50),
		"a =\n .b\n",
	}
	for _, source := range sources {
		resource, _ := Parse(source)
		require.NotNil(t, resource)
		previousEnd := 0
		for _, entry := range resource.Body {
			junk, ok := entry.(*ast.Junk)
			if !ok {
				continue
			}
			assert.GreaterOrEqual(t, junk.Span.Start, previousEnd)
			assert.Equal(t, junk.Content, source[junk.Span.Start:junk.Span.End])
			previousEnd = junk.Span.End
		}
	}
}

func TestErrorRender(t *testing.T) {
	_, errs := Parse("first = ok\nbad = { missing\n")
	require.Len(t, errs, 1)

	rendered := errs[0].Render("first = ok\nbad = { missing\n")
	assert.Contains(t, rendered, "error[")
	assert.Contains(t, rendered, " --> 3:1")
	assert.Contains(t, rendered, "= note: expected }")
}
