package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsComponentName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Button", true},
		{"Counter", true},
		{"X", true},
		{"My_Component", true},
		{"$Store", false},
		{"div", false},
		{"span", false},
		{"button", false},
		{"Fragment", false},
		{"Object", false},
		{"Math", false},
		{"", false},
		{"9Lives", false},
		{"lowercase", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isComponentName(tc.name))
		})
	}
}

func TestIsHTMLElement(t *testing.T) {
	assert.True(t, isHTMLElement("div"))
	assert.True(t, isHTMLElement("DIV"), "lookup is case-insensitive")
	assert.True(t, isHTMLElement("marquee"), "obsolete tags still count")
	assert.False(t, isHTMLElement("Counter"))
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, isValidIdentifier("foo"))
	assert.True(t, isValidIdentifier("_private"))
	assert.True(t, isValidIdentifier("$store"))
	assert.True(t, isValidIdentifier("a1"))
	assert.False(t, isValidIdentifier("1a"))
	assert.False(t, isValidIdentifier("a-b"))
	assert.False(t, isValidIdentifier(""))
}

func TestPropName(t *testing.T) {
	assert.Equal(t, "__qwik_analyzer_has_Child", PropName("Child"))
	assert.Equal(t, "__qwik_analyzer_has_Counter_Item", PropName("Counter.Item"))
	assert.Equal(t, "__qwik_analyzer_has_A_B_C", PropName("A.B.C"))
}

func TestJSXUsageSegments(t *testing.T) {
	u := JSXUsage{Name: "A.B.C"}
	assert.True(t, u.Dotted())
	assert.Equal(t, "A", u.Namespace())
	assert.Equal(t, "C", u.Property())
	assert.Equal(t, "A.C", u.Canonical())

	bare := JSXUsage{Name: "Widget"}
	assert.False(t, bare.Dotted())
	assert.Equal(t, "Widget", bare.Namespace())
	assert.Equal(t, "Widget", bare.Property())
	assert.Equal(t, "Widget", bare.Canonical())
}
