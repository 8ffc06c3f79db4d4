package ftl

import (
	"fmt"
	"strings"
	"time"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
)

// Bundle represents a collection of messages and terms collected from one or
// many resources. It provides the main API to format messages.
// The message and term tables and the function registry are read-only during
// a format call, so a bundle may serve concurrent format calls once built.
type Bundle struct {
	locales      []language.Tag
	messages     map[string]*ast.Message
	terms        map[string]*ast.Term
	registry     *Registry
	useIsolating bool
}

// NewBundle creates a new empty bundle for the given primary locale
func NewBundle(primaryLocale language.Tag, fallbackLocales ...language.Tag) *Bundle {
	locales := make([]language.Tag, 0, len(fallbackLocales)+1)
	locales = append(locales, primaryLocale)
	locales = append(locales, fallbackLocales...)

	return &Bundle{
		locales:  locales,
		messages: make(map[string]*ast.Message),
		terms:    make(map[string]*ast.Term),
		registry: NewRegistry(),
	}
}

// Locales returns the locales of the bundle, the primary one first
func (bundle *Bundle) Locales() []language.Tag {
	return bundle.locales
}

// Registry returns the function registry of the bundle.
// Custom functions registered on it are available to every format call.
func (bundle *Bundle) Registry() *Registry {
	return bundle.registry
}

// SetUseIsolating enables or disables the wrapping of interpolated values in
// Unicode directional isolation marks
func (bundle *Bundle) SetUseIsolating(useIsolating bool) {
	bundle.useIsolating = useIsolating
}

// AddResource adds a Resource to the Bundle.
// If a message or term was already defined by another resource, an error is
// raised and the entry is skipped.
func (bundle *Bundle) AddResource(resource *Resource) (errs []error) {
	for _, message := range resource.messages {
		id := message.ID.Name
		if bundle.messages[id] != nil {
			errs = append(errs, fmt.Errorf("message '%s' is already defined", id))
			continue
		}
		bundle.messages[id] = message
	}
	for _, term := range resource.terms {
		id := term.ID.Name
		if bundle.terms[id] != nil {
			errs = append(errs, fmt.Errorf("term '%s' is already defined", id))
			continue
		}
		bundle.terms[id] = term
	}
	return
}

// AddResourceOverriding adds a Resource to the Bundle.
// If a message or term was already defined by another resource, the newer
// definition wins.
func (bundle *Bundle) AddResourceOverriding(resource *Resource) {
	for _, message := range resource.messages {
		bundle.messages[message.ID.Name] = message
	}
	for _, term := range resource.terms {
		bundle.terms[term.ID.Name] = term
	}
}

// HasMessage returns whether the bundle defines a message with the given key
func (bundle *Bundle) HasMessage(key string) bool {
	return bundle.messages[key] != nil
}

// FormatOption configures a single format call
type FormatOption func(*resolver)

// WithVariable passes a single variable to a format call
func WithVariable(key string, value interface{}) FormatOption {
	return WithVariables(map[string]interface{}{key: value})
}

// WithVariables passes multiple variables to a format call.
// Values are coerced into the matching Value kind; see CoerceValue.
func WithVariables(variables map[string]interface{}) FormatOption {
	return func(r *resolver) {
		if r.variables == nil {
			r.variables = make(map[string]Value, len(variables))
		}
		for name, variable := range variables {
			if value := CoerceValue(variable); value != nil {
				r.variables[strings.TrimSpace(name)] = value
			}
		}
	}
}

// WithFunction makes a single custom function available to a format call.
// Per-call functions shadow the bundle's registry, built-ins included.
func WithFunction(name string, fn Function) FormatOption {
	return WithFunctions(map[string]Function{name: fn})
}

// WithFunctions makes multiple custom functions available to a format call
func WithFunctions(functions map[string]Function) FormatOption {
	return func(r *resolver) {
		if r.functions == nil {
			r.functions = make(map[string]Function, len(functions))
		}
		for name, function := range functions {
			r.functions[strings.TrimSpace(name)] = function
		}
	}
}

// CoerceValue converts an arbitrary caller-supplied value into a Value.
// Strings stay strings, everything numeric becomes an exact decimal and
// time.Time becomes a date time. Unconvertible values yield nil.
func CoerceValue(value interface{}) Value {
	switch v := value.(type) {
	case time.Time:
		return DateTime(v)
	case Value:
		return v
	case string:
		return String(v)
	case decimal.Decimal:
		return Decimal(v)
	case float32, float64:
		return Number(cast.ToFloat64(v))
	default:
		if parsed, err := cast.ToInt64E(value); err == nil {
			return Decimal(decimal.NewFromInt(parsed))
		}
		if parsed, err := cast.ToFloat64E(value); err == nil {
			return Number(parsed)
		}
		if parsed, err := cast.ToStringE(value); err == nil {
			return String(parsed)
		}
		return nil
	}
}

// FormatMessage formats the value of the message with the given key.
// To pass variables or functions, use WithVariable, WithVariables,
// WithFunction or WithFunctions.
// Besides the formatted string, this method returns the diagnostics the
// resolver accumulated while resolving specific values, and an error if no
// message with the given key exists. Diagnostics do not mean the whole
// message failed; the returned string is always a complete best effort.
func (bundle *Bundle) FormatMessage(key string, options ...FormatOption) (string, []error, error) {
	message := bundle.messages[key]
	if message == nil {
		return "", nil, fmt.Errorf("message '%s' does not exist", key)
	}
	return bundle.format(message, "", options)
}

// FormatAttribute formats the named attribute of the message with the given key.
// A missing attribute is an expected failure mode: it yields a readable
// fallback plus a diagnostic, not an error.
func (bundle *Bundle) FormatAttribute(key, attribute string, options ...FormatOption) (string, []error, error) {
	message := bundle.messages[key]
	if message == nil {
		return "", nil, fmt.Errorf("message '%s' does not exist", key)
	}
	return bundle.format(message, attribute, options)
}

func (bundle *Bundle) format(message *ast.Message, attribute string, options []FormatOption) (string, []error, error) {
	res := &resolver{bundle: bundle}
	for _, option := range options {
		option(res)
	}

	if attribute != "" {
		key := message.ID.Name + "." + attribute
		attr := findAttribute(message.Attributes, attribute)
		if attr == nil {
			res.errors = append(res.errors, &ResolveError{
				Code:    CodeUnknownAttribute,
				Message: fmt.Sprintf("unknown attribute '%s'", key),
			})
			return "{" + key + "}", res.errors, nil
		}
		return res.resolveRoot(key, attr.Value), res.errors, nil
	}

	if message.Value == nil {
		res.errors = append(res.errors, &ResolveError{
			Code:    CodeMessageNoValue,
			Message: fmt.Sprintf("message '%s' has no value", message.ID.Name),
		})
		return "{" + message.ID.Name + "}", res.errors, nil
	}
	return res.resolveRoot(message.ID.Name, message.Value), res.errors, nil
}
