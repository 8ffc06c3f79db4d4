package ftl

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Function represents a custom function that builds a Value based on the
// resolved call arguments. Returning nil reports a failure; the resolver
// records a diagnostic and falls back to a readable placeholder.
type Function func(positional []Value, named map[string]Value) Value

// BuiltinFunction is the shape of the registry's own formatting functions.
// Unlike custom functions they receive the active locale as an implicit
// argument.
type BuiltinFunction func(locale language.Tag, positional []Value, named map[string]Value) Value

// registryEntry distinguishes the registry's own built-ins from
// caller-registered functions. Only an entry still holding the built-in is
// handed the locale; a custom function that reuses a built-in's name never
// receives an argument it did not ask for.
type registryEntry struct {
	fn      Function
	builtin BuiltinFunction
}

// Registry holds the functions available to placeable expressions.
// A fresh registry starts with the NUMBER and DATETIME built-ins.
type Registry struct {
	entries map[string]registryEntry
}

// NewRegistry creates a registry pre-populated with the built-in formatting functions
func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]registryEntry{
			"NUMBER":   {builtin: builtinNumber},
			"DATETIME": {builtin: builtinDateTime},
		},
	}
}

// Register adds a custom function under the given name, replacing any
// previous entry (including a built-in) wholesale
func (registry *Registry) Register(name string, fn Function) {
	registry.entries[strings.TrimSpace(name)] = registryEntry{fn: fn}
}

// Has returns whether a function with the given name is registered
func (registry *Registry) Has(name string) bool {
	_, ok := registry.entries[name]
	return ok
}

// Call dispatches a function call by name. The second return value reports
// whether the function exists at all.
func (registry *Registry) Call(locale language.Tag, name string, positional []Value, named map[string]Value) (Value, bool) {
	entry, ok := registry.entries[name]
	if !ok {
		return nil, false
	}
	if entry.builtin != nil {
		return entry.builtin(locale, positional, named), true
	}
	return entry.fn(positional, named), true
}

// builtinNumber formats its first argument as a locale-aware number.
// Supported named options: minimumFractionDigits, maximumFractionDigits and
// useGrouping (0 disables the locale's digit grouping).
func builtinNumber(locale language.Tag, positional []Value, named map[string]Value) Value {
	if len(positional) == 0 {
		return nil
	}
	value, ok := toDecimal(positional[0])
	if !ok {
		return nil
	}

	var options []number.Option
	minDigits, hasMin := namedInt(named, "minimumFractionDigits")
	if hasMin {
		options = append(options, number.MinFractionDigits(minDigits))
	}
	maxDigits, hasMax := namedInt(named, "maximumFractionDigits")
	if hasMax {
		options = append(options, number.MaxFractionDigits(maxDigits))
	}

	if grouping, ok := namedInt(named, "useGrouping"); ok && grouping == 0 {
		// Plain decimal form without separators
		if hasMax {
			value = value.Round(int32(maxDigits))
		}
		if hasMin {
			return String(value.StringFixed(int32(minDigits)))
		}
		return String(value.String())
	}

	printer := message.NewPrinter(locale)
	return String(printer.Sprint(number.Decimal(value.InexactFloat64(), options...)))
}

// Date and time layouts addressed by the DATETIME style options
var dateLayouts = map[string]string{
	"short":  "1/2/06",
	"medium": "Jan 2, 2006",
	"long":   "January 2, 2006",
	"full":   "Monday, January 2, 2006",
}

var timeLayouts = map[string]string{
	"short":  "3:04 PM",
	"medium": "3:04:05 PM",
	"long":   "3:04:05 PM MST",
	"full":   "3:04:05 PM MST",
}

// builtinDateTime formats its first argument as a date and/or time.
// Supported named options: dateStyle and timeStyle (short/medium/long/full),
// or an explicit Go reference layout via the format option.
func builtinDateTime(_ language.Tag, positional []Value, named map[string]Value) Value {
	if len(positional) == 0 {
		return nil
	}
	value, ok := toTime(positional[0])
	if !ok {
		return nil
	}

	if format, ok := namedString(named, "format"); ok {
		return String(value.Format(format))
	}

	var layouts []string
	if style, ok := namedString(named, "dateStyle"); ok {
		if layout, ok := dateLayouts[style]; ok {
			layouts = append(layouts, layout)
		}
	}
	if style, ok := namedString(named, "timeStyle"); ok {
		if layout, ok := timeLayouts[style]; ok {
			layouts = append(layouts, layout)
		}
	}
	if len(layouts) == 0 {
		layouts = append(layouts, dateLayouts["medium"])
	}

	return String(value.Format(strings.Join(layouts, ", ")))
}

func toDecimal(value Value) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case *NumberValue:
		return v.Value, true
	case *StringValue:
		parsed, err := decimal.NewFromString(v.Value)
		if err != nil {
			return decimal.Zero, false
		}
		return parsed, true
	default:
		return decimal.Zero, false
	}
}

func toTime(value Value) (time.Time, bool) {
	switch v := value.(type) {
	case *DateTimeValue:
		return v.Value, true
	case *StringValue:
		parsed, err := time.Parse(time.RFC3339, v.Value)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func namedInt(named map[string]Value, key string) (int, bool) {
	value, ok := named[key]
	if !ok {
		return 0, false
	}
	parsed, ok := toDecimal(value)
	if !ok {
		return 0, false
	}
	return int(parsed.IntPart()), true
}

func namedString(named map[string]Value, key string) (string, bool) {
	value, ok := named[key]
	if !ok {
		return "", false
	}
	return value.String(), true
}
