package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// extractMarkerCalls finds every isComponentPresent(...) call in a file.
//
// A call qualifies when its callee is the bare marker identifier and it has
// at least one argument. The target name comes from the first argument: a
// bare identifier's name, or the original source text of a member
// expression. The textual fallback is accepted only when it contains a "."
// separator; anything else (literals, spreads, computed references) is a
// malformed argument and the call is skipped.
func extractMarkerCalls(root *ts.Node, source []byte) []MarkerCall {
	calls := make([]MarkerCall, 0)
	walkMarkerCalls(root, source, &calls)
	return calls
}

func walkMarkerCalls(node *ts.Node, source []byte, out *[]MarkerCall) {
	if node.Kind() == "call_expression" {
		if call, ok := markerCallFromNode(node, source); ok {
			*out = append(*out, call)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkMarkerCalls(node.Child(i), source, out)
	}
}

func markerCallFromNode(node *ts.Node, source []byte) (MarkerCall, bool) {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" || callee.Utf8Text(source) != markerFunction {
		return MarkerCall{}, false
	}

	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return MarkerCall{}, false
	}

	arg := args.NamedChild(0)
	target, ok := targetFromArgument(arg, source)
	if !ok {
		return MarkerCall{}, false
	}

	call := MarkerCall{
		Target:    target,
		ArgText:   arg.Utf8Text(source),
		CallStart: uint32(node.StartByte()),
		CallEnd:   uint32(node.EndByte()),
	}
	locateWrapper(node, source, &call)
	return call, true
}

// targetFromArgument extracts the component name the marker asks about.
func targetFromArgument(arg *ts.Node, source []byte) (string, bool) {
	switch arg.Kind() {
	case "identifier":
		return arg.Utf8Text(source), true

	case "member_expression", "nested_identifier":
		// Reconstruct the dotted form from the original span. Reject when
		// the text carries no separator: that means an unsupported argument
		// shape slipped through, not a real member reference.
		text := arg.Utf8Text(source)
		if !strings.Contains(text, ".") || !validDottedName(text) {
			return "", false
		}
		return text, true

	default:
		return "", false
	}
}

// locateWrapper finds the nearest enclosing component$(...) call whose sole
// argument is a function literal, and records the parameter-list span and
// whether a parameter is already declared. The patch generator injects the
// synthetic props parameter exactly once per wrapper.
func locateWrapper(call *ts.Node, source []byte, out *MarkerCall) {
	for node := call.Parent(); node != nil; node = node.Parent() {
		if node.Kind() != "call_expression" {
			continue
		}

		callee := node.ChildByFieldName("function")
		if callee == nil || callee.Kind() != "identifier" || callee.Utf8Text(source) != componentWrapper {
			continue
		}

		args := node.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			continue
		}

		fn := args.NamedChild(0)
		switch fn.Kind() {
		case "arrow_function", "function_expression", "function":
		default:
			continue
		}

		out.HasWrapper = true
		out.WrapperStart = uint32(fn.StartByte())

		if params := fn.ChildByFieldName("parameters"); params != nil {
			out.ParamInsertPos = uint32(params.StartByte()) + 1
			out.HasParam = params.NamedChildCount() > 0
			return
		}

		// Unparenthesized single-parameter arrow: a parameter exists, there
		// is just no list to splice into.
		if fn.ChildByFieldName("parameter") != nil {
			out.HasParam = true
		}
		return
	}
}
