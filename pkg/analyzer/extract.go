package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// extractImportBindings reads every import statement in the file and records
// each introduced local name with the exported name it corresponds to
// ("default" and "*" sentinels for default/namespace imports) and the module
// specifier verbatim.
func extractImportBindings(root *ts.Node, source []byte) []ImportBinding {
	bindings := make([]ImportBinding, 0)

	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt.Kind() != "import_statement" {
			continue
		}

		specifier := importSource(stmt, source)
		if specifier == "" {
			continue
		}

		for j := uint(0); j < stmt.ChildCount(); j++ {
			clause := stmt.Child(j)
			if clause.Kind() != "import_clause" {
				continue
			}
			collectClauseBindings(clause, source, specifier, &bindings)
		}
	}

	return bindings
}

// collectClauseBindings handles the clause between "import" and "from":
// default imports, namespace imports and named import lists.
func collectClauseBindings(clause *ts.Node, source []byte, specifier string, out *[]ImportBinding) {
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "identifier":
			// import Foo from './foo'
			*out = append(*out, ImportBinding{
				LocalName:    child.Utf8Text(source),
				ImportedName: importedDefault,
				Specifier:    specifier,
			})

		case "namespace_import":
			// import * as NS from './ns'
			for j := uint(0); j < child.ChildCount(); j++ {
				if ident := child.Child(j); ident.Kind() == "identifier" {
					*out = append(*out, ImportBinding{
						LocalName:    ident.Utf8Text(source),
						ImportedName: importedNamespace,
						Specifier:    specifier,
					})
					break
				}
			}

		case "named_imports":
			// import { Foo, Bar as Baz } from './mod'
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec.Kind() != "import_specifier" {
					continue
				}

				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				imported := name.Utf8Text(source)
				local := imported
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = alias.Utf8Text(source)
				}

				*out = append(*out, ImportBinding{
					LocalName:    local,
					ImportedName: imported,
					Specifier:    specifier,
				})
			}
		}
	}
}

// importSource returns the unquoted module specifier of an import or export
// statement, or "" when there is none.
func importSource(stmt *ts.Node, source []byte) string {
	str := stmt.ChildByFieldName("source")
	if str == nil {
		return ""
	}
	return stringContent(str, source)
}

// stringContent gets the text inside a string node (without quotes).
func stringContent(node *ts.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "string_fragment" {
			return child.Utf8Text(source)
		}
	}
	// Fallback: strip quotes from the full text.
	text := node.Utf8Text(source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// extractJSXUsages walks the render tree and keeps every element that could
// be a component reference: bare identifiers passing the component-name
// filter and member-style references with valid segments. Standard markup
// tags, reserved words and lowercase identifiers are dropped here so the
// presence engine never has to reconsider them.
func extractJSXUsages(root *ts.Node, source []byte) []JSXUsage {
	usages := make([]JSXUsage, 0)
	walkJSX(root, source, &usages)
	return usages
}

func walkJSX(node *ts.Node, source []byte, out *[]JSXUsage) {
	switch node.Kind() {
	case "jsx_opening_element":
		if usage, ok := usageFromTag(node, source, false); ok {
			*out = append(*out, usage)
		}
	case "jsx_self_closing_element":
		if usage, ok := usageFromTag(node, source, true); ok {
			*out = append(*out, usage)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkJSX(node.Child(i), source, out)
	}
}

// usageFromTag builds a JSXUsage from an opening tag or self-closing element
// node, or reports false when the tag does not name a component.
func usageFromTag(tag *ts.Node, source []byte, selfClosing bool) (JSXUsage, bool) {
	name := tagName(tag, source)
	if name == "" {
		return JSXUsage{}, false
	}

	if strings.Contains(name, ".") {
		if !validDottedName(name) {
			return JSXUsage{}, false
		}
	} else if !isComponentName(name) {
		return JSXUsage{}, false
	}

	return JSXUsage{
		Name:        name,
		TagStart:    uint32(tag.StartByte()),
		TagEnd:      uint32(tag.EndByte()),
		InsertPos:   attributeInsertPos(tag, selfClosing),
		SelfClosing: selfClosing,
	}, true
}

// tagName extracts the element name from an opening tag. Member-style names
// keep their full dotted depth.
func tagName(tag *ts.Node, source []byte) string {
	for i := uint(0); i < tag.ChildCount(); i++ {
		child := tag.Child(i)
		switch child.Kind() {
		case "identifier", "member_expression", "nested_identifier":
			return child.Utf8Text(source)
		}
	}
	return ""
}

// attributeInsertPos locates the byte offset just before the tag's closing
// ">" token ("/" token for self-closing tags), where an injected attribute
// is spliced in.
func attributeInsertPos(tag *ts.Node, selfClosing bool) uint32 {
	closer := ">"
	if selfClosing {
		closer = "/"
	}
	for i := tag.ChildCount(); i > 0; i-- {
		child := tag.Child(i - 1)
		if child.Kind() == closer {
			return uint32(child.StartByte())
		}
	}
	// Token missing only on malformed tags; fall back to the span end.
	if selfClosing {
		return uint32(tag.EndByte()) - 2
	}
	return uint32(tag.EndByte()) - 1
}

// validDottedName checks that every segment of a dotted reference is a
// syntactically valid identifier; computed member references are not.
func validDottedName(name string) bool {
	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return false
	}
	for _, seg := range segments {
		if !isValidIdentifier(seg) {
			return false
		}
	}
	return true
}
