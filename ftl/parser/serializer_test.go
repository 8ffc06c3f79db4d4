package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeCanonicalForm(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "simple message",
			source:   "hello   =   Hello, World!",
			expected: "hello = Hello, World!\n",
		},
		{
			name:     "term",
			source:   "-brand = Firefox",
			expected: "-brand = Firefox\n",
		},
		{
			name:     "multiline collapses to one line",
			source:   "hello =\n    multi\n    line\n",
			expected: "hello = multi line\n",
		},
		{
			name:     "attributes",
			source:   "login = Login\n  .tooltip = Click here\n",
			expected: "login = Login\n    .tooltip = Click here\n",
		},
		{
			name:     "placeable",
			source:   "welcome = Welcome, {$user}!",
			expected: "welcome = Welcome, { $user }!\n",
		},
		{
			name:     "string literal re-escaped",
			source:   `msg = { "a\nb" }`,
			expected: "msg = { \"a\\nb\" }\n",
		},
		{
			name:     "number keeps raw form",
			source:   "msg = { 0.50 }",
			expected: "msg = { 0.50 }\n",
		},
		{
			name:     "call arguments",
			source:   `msg = { NUMBER($n,minimumFractionDigits:2) }`,
			expected: "msg = { NUMBER($n, minimumFractionDigits: 2) }\n",
		},
		{
			name:     "attached comment",
			source:   "# Start page greeting\nhello = World\n",
			expected: "# Start page greeting\nhello = World\n",
		},
		{
			name:     "comment levels",
			source:   "### File\n\n## Section\n\nhello = World\n",
			expected: "### File\n## Section\nhello = World\n",
		},
		{
			name:     "select expression",
			source:   "emails = { $count ->\n  [one] One email\n  *[other] { $count } emails\n  }\n",
			expected: "emails = { $count ->\n    [one] One email\n   *[other] { $count } emails\n}\n",
		},
		{
			name:     "inline select expands to block form",
			source:   "count = { $n -> [one] One *[other] { $n } items }\n",
			expected: "count = { $n ->\n    [one] One\n   *[other] { $n } items\n}\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resource, errs := Parse(test.source)
			require.Empty(t, errs)
			assert.Equal(t, test.expected, Serialize(resource))
		})
	}
}

func TestSerializeJunkVerbatim(t *testing.T) {
	resource, errs := Parse("bad = { missing\nhello = World\n")
	require.NotEmpty(t, errs)
	assert.Equal(t, "bad = { missing\nhello = World\n", Serialize(resource))
}

func TestSerializeIsAFixedPoint(t *testing.T) {
	// Serializing a reparsed canonical form reproduces it byte for byte
	corpus := []string{
		"hello = Hello, World!\n",
		"-brand = Firefox\n    .gender = neuter\n",
		"login =\n    .tooltip = Click here\n",
		"welcome = Welcome, { $user }! You have { NUMBER($count, useGrouping: 0) } points.\n",
		"emails =\n    { $count ->\n        [one] One email\n       *[other] { $count } emails\n    }\n",
		"msg = { -brand(case: \"genitive\") } rocks\n",
		"# Attached comment\ngreeting = Hi\n",
		"### Resource comment\n\n## Group comment\n\nstandalone = yes\n",
		"broken = { junk\nrecovered = yes\n",
		"nested = { { \"deep\" } }\n",
	}

	for _, source := range corpus {
		resource, _ := Parse(source)
		canonical := Serialize(resource)

		reparsed, _ := Parse(canonical)
		assert.Equal(t, canonical, Serialize(reparsed), "source: %q", source)
	}
}
