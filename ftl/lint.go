package ftl

import (
	"fmt"
	"sort"

	"github.com/ftlkit/ftl.go/ftl/parser/ast"
)

// Lint statically checks every message and term of the bundle for references
// to undefined messages, terms or attributes and for reference cycles, all
// without formatting anything. The returned errors use the same diagnostic
// shape the resolver produces at format time.
func (bundle *Bundle) Lint() []error {
	var errs []error

	// Reference edges between pattern keys ("id", "id.attr", "-id", "-id.attr")
	edges := make(map[string][]string)

	keys := bundle.patternKeys()
	for _, key := range keys {
		pattern := bundle.patternForKey(key)
		for _, ref := range collectReferences(pattern) {
			if err := bundle.checkReference(key, ref); err != nil {
				errs = append(errs, err)
				continue
			}
			edges[key] = append(edges[key], ref.key())
		}
	}

	errs = append(errs, detectCycles(keys, edges)...)
	return errs
}

// reference is a single message or term reference found inside a pattern
type reference struct {
	term      bool
	name      string
	attribute string
}

func (ref reference) key() string {
	key := ref.name
	if ref.term {
		key = "-" + key
	}
	if ref.attribute != "" {
		key += "." + ref.attribute
	}
	return key
}

// collectReferences gathers every message and term reference inside a
// pattern, using the generic AST traversal so the logic stays decoupled from
// the node definitions
func collectReferences(pattern *ast.Pattern) []reference {
	var refs []reference
	ast.Inspect(pattern, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.MessageReference:
			ref := reference{name: n.ID.Name}
			if n.Attribute != nil {
				ref.attribute = n.Attribute.Name
			}
			refs = append(refs, ref)
		case *ast.TermReference:
			ref := reference{term: true, name: n.ID.Name}
			if n.Attribute != nil {
				ref.attribute = n.Attribute.Name
			}
			refs = append(refs, ref)
		}
		return true
	})
	return refs
}

func (bundle *Bundle) checkReference(from string, ref reference) error {
	if ref.term {
		term := bundle.terms[ref.name]
		if term == nil {
			return &ResolveError{
				Code:    CodeUnknownTerm,
				Message: fmt.Sprintf("unknown term '-%s' referenced by '%s'", ref.name, from),
			}
		}
		if ref.attribute != "" && findAttribute(term.Attributes, ref.attribute) == nil {
			return &ResolveError{
				Code:    CodeUnknownAttribute,
				Message: fmt.Sprintf("unknown attribute '%s' referenced by '%s'", ref.key(), from),
			}
		}
		return nil
	}

	message := bundle.messages[ref.name]
	if message == nil {
		return &ResolveError{
			Code:    CodeUnknownMessage,
			Message: fmt.Sprintf("unknown message '%s' referenced by '%s'", ref.name, from),
		}
	}
	if ref.attribute != "" && findAttribute(message.Attributes, ref.attribute) == nil {
		return &ResolveError{
			Code:    CodeUnknownAttribute,
			Message: fmt.Sprintf("unknown attribute '%s' referenced by '%s'", ref.key(), from),
		}
	}
	if ref.attribute == "" && message.Value == nil {
		return &ResolveError{
			Code:    CodeMessageNoValue,
			Message: fmt.Sprintf("message '%s' referenced by '%s' has no value", ref.name, from),
		}
	}
	return nil
}

// patternKeys returns every pattern key of the bundle in deterministic order
func (bundle *Bundle) patternKeys() []string {
	var keys []string
	for name, message := range bundle.messages {
		if message.Value != nil {
			keys = append(keys, name)
		}
		for _, attribute := range message.Attributes {
			keys = append(keys, name+"."+attribute.ID.Name)
		}
	}
	for name, term := range bundle.terms {
		keys = append(keys, "-"+name)
		for _, attribute := range term.Attributes {
			keys = append(keys, "-"+name+"."+attribute.ID.Name)
		}
	}
	sort.Strings(keys)
	return keys
}

// patternForKey resolves a pattern key back to its pattern
func (bundle *Bundle) patternForKey(key string) *ast.Pattern {
	name, attribute := key, ""
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			name, attribute = key[:i], key[i+1:]
			break
		}
	}

	if len(name) > 0 && name[0] == '-' {
		term := bundle.terms[name[1:]]
		if term == nil {
			return nil
		}
		if attribute != "" {
			if attr := findAttribute(term.Attributes, attribute); attr != nil {
				return attr.Value
			}
			return nil
		}
		return term.Value
	}

	message := bundle.messages[name]
	if message == nil {
		return nil
	}
	if attribute != "" {
		if attr := findAttribute(message.Attributes, attribute); attr != nil {
			return attr.Value
		}
		return nil
	}
	return message.Value
}

// detectCycles runs a depth-first search over the reference graph and
// reports every strongly-cyclic reference chain once
func detectCycles(keys []string, edges map[string][]string) []error {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int)
	var errs []error
	var path []string

	var visit func(key string)
	visit = func(key string) {
		switch state[key] {
		case visiting:
			cycle := append([]string{}, path...)
			errs = append(errs, &ResolveError{
				Code:    CodeCyclicReference,
				Message: fmt.Sprintf("cyclic reference: %s", joinCycle(cycle, key)),
			})
			return
		case done:
			return
		}

		state[key] = visiting
		path = append(path, key)
		for _, next := range edges[key] {
			visit(next)
		}
		path = path[:len(path)-1]
		state[key] = done
	}

	for _, key := range keys {
		if state[key] == unvisited {
			visit(key)
		}
	}
	return errs
}

func joinCycle(path []string, repeated string) string {
	start := 0
	for i, key := range path {
		if key == repeated {
			start = i
			break
		}
	}
	joined := ""
	for _, key := range append(path[start:], repeated) {
		if joined != "" {
			joined += " -> "
		}
		joined += key
	}
	return joined
}
