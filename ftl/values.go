package ftl

import (
	"time"

	"github.com/shopspring/decimal"
)

// A Value is the result of a resolving operation performed by the resolver.
// It represents either a string, an exact number or a date time.
type Value interface {
	String() string
}

// StringValue wraps a string in order to comply with the Value API
type StringValue struct {
	Value string
}

// String returns the wrapped value of a StringValue
func (value *StringValue) String() string {
	return value.Value
}

// String returns a new StringValue with the given value; used for variables
func String(val string) *StringValue {
	return &StringValue{Value: val}
}

// NumberValue wraps an exact decimal number in order to comply with the Value API
type NumberValue struct {
	Value decimal.Decimal
}

// String formats a NumberValue into its plain decimal form.
// Locale-aware formatting is the job of the NUMBER built-in function.
func (value *NumberValue) String() string {
	return value.Value.String()
}

// Number returns a new NumberValue with the given value; used for variables
func Number(val float64) *NumberValue {
	return &NumberValue{Value: decimal.NewFromFloat(val)}
}

// Decimal returns a new NumberValue wrapping the given exact decimal
func Decimal(val decimal.Decimal) *NumberValue {
	return &NumberValue{Value: val}
}

// DateTimeValue wraps a point in time in order to comply with the Value API
type DateTimeValue struct {
	Value time.Time
}

// String formats a DateTimeValue using a neutral default layout.
// Locale- and style-aware formatting is the job of the DATETIME built-in function.
func (value *DateTimeValue) String() string {
	return value.Value.Format("2006-01-02 15:04")
}

// DateTime returns a new DateTimeValue with the given value; used for variables
func DateTime(val time.Time) *DateTimeValue {
	return &DateTimeValue{Value: val}
}

// NoValue is used whenever no real value could be resolved. Its string form
// is the readable fallback fragment shown in place of the broken placeable,
// e.g. "{$name}" for a missing variable.
type NoValue struct {
	fallback string
}

// String returns the NoValue's readable fallback representation
func (value *NoValue) String() string {
	return "{" + value.fallback + "}"
}
