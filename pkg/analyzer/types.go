// Package analyzer statically answers isComponentPresent() marker calls
// across a project's import graph and rewrites source text so the answer is
// read from a synthetic prop instead of being recomputed at runtime.
package analyzer

import (
	"strings"
)

const (
	// markerFunction is the presence-marker call scanned for inside
	// component definitions: isComponentPresent(Target).
	markerFunction = "isComponentPresent"

	// componentWrapper declares a renderable component; its sole argument is
	// a function literal whose parameter list receives the synthetic prop.
	componentWrapper = "component$"

	// propPrefix prefixes every synthetic boolean prop name.
	propPrefix = "__qwik_analyzer_has_"

	// Sentinel imported names for non-named bindings.
	importedDefault   = "default"
	importedNamespace = "*"
)

// Patch is a half-open byte range [Start, End) in one file's original text
// plus its replacement. Start == End is a pure insertion. Patches for one
// file must be pairwise non-overlapping.
type Patch struct {
	Start       uint32 `json:"start"`
	End         uint32 `json:"end"`
	Replacement string `json:"replacement"`
}

// AnalysisResult is the verdict for one analyzed file: whether any marker
// call's target component was found in the file's effective render tree, and
// the patches to apply to this file's text. Patches for other files are
// never emitted; each file is patched when it is itself analyzed.
type AnalysisResult struct {
	HasComponent    bool    `json:"has_component"`
	Transformations []Patch `json:"transformations"`
}

// ImportBinding is one local name introduced by an import statement.
type ImportBinding struct {
	// LocalName is the identifier bound in this file's scope.
	LocalName string
	// ImportedName is the exported name on the declaring module, or the
	// "default" / "*" sentinels.
	ImportedName string
	// Specifier is the module specifier exactly as written in source.
	Specifier string
}

// IsDefault reports whether this binding is a default import.
func (b ImportBinding) IsDefault() bool { return b.ImportedName == importedDefault }

// IsNamespace reports whether this binding is a namespace import.
func (b ImportBinding) IsNamespace() bool { return b.ImportedName == importedNamespace }

// JSXUsage is one rendered element in a file's render tree that could be a
// component reference. Name keeps the full dotted depth (A.B.C) for
// resolution; matching against marker targets uses the canonical
// two-segment form.
type JSXUsage struct {
	// Name is the element name as written: a bare identifier or the full
	// dotted member path.
	Name string
	// TagStart / TagEnd span the opening tag (or the whole self-closing
	// element) in the original text.
	TagStart uint32
	TagEnd   uint32
	// InsertPos is the byte offset just before the closing ">" (before the
	// "/" of a self-closing tag) where an injected attribute goes.
	InsertPos uint32
	// SelfClosing marks <Foo /> elements.
	SelfClosing bool
}

// Dotted reports whether the usage is a member-style reference.
func (u JSXUsage) Dotted() bool { return strings.Contains(u.Name, ".") }

// Namespace returns the outermost segment of a dotted usage ("A" for
// A.B.C), or the whole name for a bare usage.
func (u JSXUsage) Namespace() string {
	if i := strings.IndexByte(u.Name, '.'); i >= 0 {
		return u.Name[:i]
	}
	return u.Name
}

// Property returns the innermost segment of a dotted usage ("C" for A.B.C),
// or the whole name for a bare usage.
func (u JSXUsage) Property() string {
	if i := strings.LastIndexByte(u.Name, '.'); i >= 0 {
		return u.Name[i+1:]
	}
	return u.Name
}

// Canonical returns the dotted form reduced to the outermost two segments
// (A.C for A.B.C). Marker targets are matched against this form; resolution
// through indirection uses the full Name.
func (u JSXUsage) Canonical() string {
	if !u.Dotted() {
		return u.Name
	}
	return u.Namespace() + "." + u.Property()
}

// MarkerCall is one isComponentPresent(...) call found in a file together
// with its enclosing component-definition wrapper, located so the patch
// generator can inject the synthetic props parameter exactly once per
// wrapper function.
type MarkerCall struct {
	// Target is the component name asked about, possibly dotted.
	Target string
	// ArgText is the first argument's original source text, carried
	// verbatim into the rewritten call.
	ArgText string
	// CallStart / CallEnd span the full call expression.
	CallStart uint32
	CallEnd   uint32

	// HasWrapper is true when an enclosing componentWrapper call with a
	// function-literal argument was found.
	HasWrapper bool
	// WrapperStart identifies the wrapper's function literal; used to dedupe
	// the parameter patch when several marker calls share one wrapper.
	WrapperStart uint32
	// ParamInsertPos is the byte offset just after the "(" of the function
	// literal's parameter list.
	ParamInsertPos uint32
	// HasParam is true when the parameter list already declares a parameter.
	HasParam bool
}

// presenceCall pairs a marker call found in an imported component's defining
// file with the verdict computed from the analyzed file's render tree. The
// verdict is what gets frozen into the usage-site prop.
type presenceCall struct {
	target     string
	sourceFile string
	present    bool
}

// PropName derives the deterministic synthetic prop name for a target
// component name: non-alphanumeric runes (notably ".") become "_".
func PropName(target string) string {
	var b strings.Builder
	b.WriteString(propPrefix)
	for _, r := range target {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
