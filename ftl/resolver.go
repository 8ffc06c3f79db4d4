package ftl

import (
	"fmt"
	"strings"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
	"github.com/shopspring/decimal"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Diagnostic codes reported by the resolver
const (
	CodeUnknownMessage   = "unknown-message"
	CodeUnknownTerm      = "unknown-term"
	CodeUnknownAttribute = "unknown-attribute"
	CodeUnknownVariable  = "unknown-variable"
	CodeUnknownFunction  = "unknown-function"
	CodeMessageNoValue   = "message-no-value"
	CodeCyclicReference  = "cyclic-reference"
	CodeFunctionFailed   = "function-failed"
	CodeNoVariants       = "no-variants"
)

// A ResolveError describes a single expected failure encountered while
// resolving a pattern. It never aborts the resolution; a readable fallback is
// produced instead and the error is accumulated.
type ResolveError struct {
	Code    string
	Message string
	Hint    string
}

// Error renders the diagnostic as a single human-readable line
func (err *ResolveError) Error() string {
	return fmt.Sprintf("error[%s]: %s", err.Code, err.Message)
}

// Unicode directional isolation marks wrapped around interpolated values when
// bidirectional isolation is enabled
const (
	firstStrongIsolate    = "\u2068"
	popDirectionalIsolate = "\u2069"
)

var pluralStrings = map[plural.Form]string{
	plural.Other: "other",
	plural.Zero:  "zero",
	plural.One:   "one",
	plural.Two:   "two",
	plural.Few:   "few",
	plural.Many:  "many",
}

// The resolver walks a pattern AST and produces the final string together
// with every diagnostic encountered along the way. A fresh resolver is built
// for every top-level format call; the resolution stack and the error
// accumulator never outlive one call, which keeps bundles safe for
// concurrent formatting.
type resolver struct {
	bundle    *Bundle
	params    map[string]Value
	variables map[string]Value
	functions map[string]Function
	errors    []error
	stack     []string
}

// resolveRoot resolves the pattern registered under the given cycle key and
// stringifies the result
func (resolver *resolver) resolveRoot(key string, pattern *ast.Pattern) string {
	return resolver.resolveGuarded(key, pattern).String()
}

// resolveGuarded resolves a pattern with the given key pushed onto the
// resolution stack. If the key is already being resolved, a cyclic-reference
// diagnostic carrying the full cycle path is recorded and the key's fallback
// is returned immediately, bounding recursion to the number of distinct keys.
func (resolver *resolver) resolveGuarded(key string, pattern *ast.Pattern) Value {
	for _, active := range resolver.stack {
		if active == key {
			resolver.errors = append(resolver.errors, &ResolveError{
				Code:    CodeCyclicReference,
				Message: fmt.Sprintf("cyclic reference: %s", strings.Join(append(append([]string{}, resolver.stack...), key), " -> ")),
			})
			return &NoValue{fallback: key}
		}
	}

	resolver.stack = append(resolver.stack, key)
	resolved := resolver.resolvePattern(pattern)
	resolver.stack = resolver.stack[:len(resolver.stack)-1]
	return resolved
}

// resolvePattern concatenates the elements of a pattern strictly left to right
func (resolver *resolver) resolvePattern(pattern *ast.Pattern) Value {
	var sb strings.Builder
	for _, element := range pattern.Elements {
		if text, ok := element.(*ast.Text); ok {
			sb.WriteString(text.Value)
			continue
		}

		value := resolver.resolveExpression(element.(*ast.Placeable).Expression)
		if _, failed := value.(*NoValue); !failed && resolver.bundle.useIsolating {
			// Isolate interpolated values so they cannot corrupt the visual
			// ordering of surrounding bidirectional text
			sb.WriteString(firstStrongIsolate)
			sb.WriteString(value.String())
			sb.WriteString(popDirectionalIsolate)
			continue
		}
		sb.WriteString(value.String())
	}
	return &StringValue{Value: sb.String()}
}

func (resolver *resolver) resolveExpression(expression ast.Node) Value {
	switch e := expression.(type) {
	case *ast.Placeable:
		return resolver.resolveExpression(e.Expression)

	case *ast.StringLiteral:
		return &StringValue{Value: e.Value}

	case *ast.NumberLiteral:
		return &NumberValue{Value: e.Value}

	case *ast.MessageReference:
		return resolver.resolveMessageReference(e)

	case *ast.TermReference:
		return resolver.resolveTermReference(e)

	case *ast.VariableReference:
		return resolver.resolveVariableReference(e)

	case *ast.FunctionReference:
		return resolver.resolveFunctionReference(e)

	case *ast.SelectExpression:
		return resolver.resolveSelectExpression(e)

	default:
		return &NoValue{fallback: "???"}
	}
}

func (resolver *resolver) resolveMessageReference(ref *ast.MessageReference) Value {
	key := ref.ID.Name
	if ref.Attribute != nil {
		key += "." + ref.Attribute.Name
	}

	message := resolver.bundle.messages[ref.ID.Name]
	if message == nil {
		resolver.errors = append(resolver.errors, &ResolveError{
			Code:    CodeUnknownMessage,
			Message: fmt.Sprintf("unknown message '%s'", ref.ID.Name),
		})
		return &NoValue{fallback: key}
	}

	if ref.Attribute != nil {
		attribute := findAttribute(message.Attributes, ref.Attribute.Name)
		if attribute == nil {
			resolver.errors = append(resolver.errors, &ResolveError{
				Code:    CodeUnknownAttribute,
				Message: fmt.Sprintf("unknown attribute '%s'", key),
			})
			return &NoValue{fallback: key}
		}
		return resolver.resolveGuarded(key, attribute.Value)
	}

	if message.Value == nil {
		resolver.errors = append(resolver.errors, &ResolveError{
			Code:    CodeMessageNoValue,
			Message: fmt.Sprintf("message '%s' has no value", ref.ID.Name),
		})
		return &NoValue{fallback: key}
	}

	return resolver.resolveGuarded(key, message.Value)
}

func (resolver *resolver) resolveTermReference(ref *ast.TermReference) Value {
	key := "-" + ref.ID.Name
	if ref.Attribute != nil {
		key += "." + ref.Attribute.Name
	}

	term := resolver.bundle.terms[ref.ID.Name]
	if term == nil {
		resolver.errors = append(resolver.errors, &ResolveError{
			Code:    CodeUnknownTerm,
			Message: fmt.Sprintf("unknown term '%s'", "-"+ref.ID.Name),
		})
		return &NoValue{fallback: key}
	}

	var pattern *ast.Pattern
	if ref.Attribute != nil {
		attribute := findAttribute(term.Attributes, ref.Attribute.Name)
		if attribute == nil {
			resolver.errors = append(resolver.errors, &ResolveError{
				Code:    CodeUnknownAttribute,
				Message: fmt.Sprintf("unknown attribute '%s'", key),
			})
			return &NoValue{fallback: key}
		}
		pattern = attribute.Value
	} else {
		pattern = term.Value
	}

	// Terms receive variables exclusively through their call arguments; the
	// caller's variables are hidden while the term's pattern resolves
	previousParams := resolver.params
	if ref.Arguments != nil {
		_, named := resolver.assembleArguments(ref.Arguments)
		resolver.params = named
	} else {
		resolver.params = map[string]Value{}
	}
	resolved := resolver.resolveGuarded(key, pattern)
	resolver.params = previousParams

	return resolved
}

func (resolver *resolver) resolveVariableReference(ref *ast.VariableReference) Value {
	if resolver.params != nil {
		if value, set := resolver.params[ref.ID.Name]; set {
			return value
		}
	} else if value, set := resolver.variables[ref.ID.Name]; set {
		return value
	}

	resolver.errors = append(resolver.errors, &ResolveError{
		Code:    CodeUnknownVariable,
		Message: fmt.Sprintf("variable '$%s' was not provided", ref.ID.Name),
	})
	return &NoValue{fallback: "$" + ref.ID.Name}
}

func (resolver *resolver) resolveFunctionReference(ref *ast.FunctionReference) Value {
	name := ref.ID.Name
	fallback := name + "(...)"
	positional, named := resolver.assembleArguments(ref.Arguments)

	// Per-call functions shadow the registry and, being caller-supplied,
	// never receive the locale
	if fn, ok := resolver.functions[name]; ok {
		if value := fn(positional, named); value != nil {
			return value
		}
		resolver.errors = append(resolver.errors, &ResolveError{
			Code:    CodeFunctionFailed,
			Message: fmt.Sprintf("function '%s' failed to produce a value", name),
		})
		return &NoValue{fallback: fallback}
	}

	if value, ok := resolver.bundle.registry.Call(resolver.locale(), name, positional, named); ok {
		if value != nil {
			return value
		}
		resolver.errors = append(resolver.errors, &ResolveError{
			Code:    CodeFunctionFailed,
			Message: fmt.Sprintf("function '%s' failed to produce a value", name),
		})
		return &NoValue{fallback: fallback}
	}

	resolver.errors = append(resolver.errors, &ResolveError{
		Code:    CodeUnknownFunction,
		Message: fmt.Sprintf("unknown function '%s'", name),
	})
	return &NoValue{fallback: fallback}
}

// resolveSelectExpression picks a variant in this order: an exactly matching
// key, the plural category of a numeric selector, the default variant and,
// defensively, the first variant. The parser guarantees a default exists, so
// the last two fallbacks are unreachable for parsed sources.
func (resolver *resolver) resolveSelectExpression(ref *ast.SelectExpression) Value {
	selector := resolver.resolveExpression(ref.Selector)

	if _, failed := selector.(*NoValue); !failed {
		// Exact matches take precedence
		for _, variant := range ref.Variants {
			if resolver.matchesExactly(selector, variant.Key) {
				return resolver.resolvePattern(variant.Value)
			}
		}

		// A numeric selector falls back to its plural category
		if num, ok := selector.(*NumberValue); ok {
			category := resolver.pluralCategory(num.Value)
			for _, variant := range ref.Variants {
				if id, ok := variant.Key.(*ast.Identifier); ok && id.Name == category {
					return resolver.resolvePattern(variant.Value)
				}
			}
		}
	}

	for _, variant := range ref.Variants {
		if variant.Default {
			return resolver.resolvePattern(variant.Value)
		}
	}
	if len(ref.Variants) > 0 {
		return resolver.resolvePattern(ref.Variants[0].Value)
	}

	resolver.errors = append(resolver.errors, &ResolveError{
		Code:    CodeNoVariants,
		Message: "select expression has no variants",
	})
	return &NoValue{fallback: "???"}
}

// matchesExactly compares a selector value against a variant key: identifier
// keys match the stringified selector, number keys match numerically
func (resolver *resolver) matchesExactly(selector Value, key ast.Node) bool {
	switch k := key.(type) {
	case *ast.Identifier:
		str, ok := selector.(*StringValue)
		return ok && str.Value == k.Name
	case *ast.NumberLiteral:
		num, ok := selector.(*NumberValue)
		return ok && num.Value.Equal(k.Value)
	default:
		return false
	}
}

func (resolver *resolver) assembleArguments(args *ast.CallArguments) (positional []Value, named map[string]Value) {
	named = make(map[string]Value)
	if args == nil {
		return nil, named
	}
	positional = make([]Value, 0, len(args.Positional))
	for _, arg := range args.Positional {
		positional = append(positional, resolver.resolveExpression(arg))
	}
	for _, arg := range args.Named {
		named[arg.Name.Name] = resolver.resolveExpression(arg.Value)
	}
	return positional, named
}

// pluralCategory computes the CLDR plural category name for an exact decimal
// in the bundle's primary locale
func (resolver *resolver) pluralCategory(value decimal.Decimal) string {
	return PluralCategory(resolver.locale(), value)
}

func (resolver *resolver) locale() language.Tag {
	return resolver.bundle.locales[0]
}

// PluralCategory returns the CLDR cardinal plural category (e.g. "one",
// "few", "other") of an exact decimal number in the given locale.
func PluralCategory(locale language.Tag, value decimal.Decimal) string {
	abs := value.Abs()

	// Keep trailing fraction zeros; "1.0" and "1" may fall into different
	// plural categories
	digits := abs.String()
	if exp := abs.Exponent(); exp < 0 {
		digits = abs.StringFixed(-exp)
	}

	intPart := digits
	fracPart := ""
	if dot := strings.IndexByte(digits, '.'); dot >= 0 {
		intPart = digits[:dot]
		fracPart = digits[dot+1:]
	}

	bytes := make([]byte, 0, len(intPart)+len(fracPart))
	for _, digit := range intPart + fracPart {
		bytes = append(bytes, byte(digit-'0'))
	}

	return pluralStrings[plural.Cardinal.MatchDigits(locale, bytes, len(intPart), len(fracPart))]
}

func findAttribute(attributes []*ast.Attribute, name string) *ast.Attribute {
	for _, attribute := range attributes {
		if attribute.ID.Name == name {
			return attribute
		}
	}
	return nil
}
