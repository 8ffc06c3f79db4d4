package ftl

import "fmt"

// Localizer formats messages against an ordered chain of bundles, falling
// back to the next bundle whenever the current one does not define the
// requested message. The chain order encodes the locale priority.
type Localizer struct {
	bundles []*Bundle
}

// NewLocalizer creates a localizer trying the given bundles in order
func NewLocalizer(bundles ...*Bundle) *Localizer {
	return &Localizer{bundles: bundles}
}

// Format formats the message with the given key using the first bundle in
// the chain that defines it
func (localizer *Localizer) Format(key string, options ...FormatOption) (string, []error, error) {
	for _, bundle := range localizer.bundles {
		if bundle.HasMessage(key) {
			return bundle.FormatMessage(key, options...)
		}
	}
	return "", nil, fmt.Errorf("message '%s' does not exist in any bundle", key)
}

// FormatAttribute formats the named attribute of the message with the given
// key using the first bundle in the chain that defines the message
func (localizer *Localizer) FormatAttribute(key, attribute string, options ...FormatOption) (string, []error, error) {
	for _, bundle := range localizer.bundles {
		if bundle.HasMessage(key) {
			return bundle.FormatAttribute(key, attribute, options...)
		}
	}
	return "", nil, fmt.Errorf("message '%s' does not exist in any bundle", key)
}
