package analyzer

import (
	"strings"
	"unicode"
)

// htmlElements is the closed set of standard markup tag names, matched
// case-insensitively. A JSX identifier naming one of these is never a
// component reference. The set covers all current HTML flow/inline/void
// elements plus the obsolete names browsers still recognize and the SVG and
// MathML container tags that commonly appear in JSX.
var htmlElements = map[string]struct{}{
	// Document metadata
	"html": {}, "head": {}, "title": {}, "base": {}, "link": {}, "meta": {}, "style": {},
	// Sectioning and headings
	"body": {}, "article": {}, "section": {}, "nav": {}, "aside": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"hgroup": {}, "header": {}, "footer": {}, "address": {}, "main": {}, "search": {},
	// Grouping content
	"p": {}, "hr": {}, "pre": {}, "blockquote": {}, "ol": {}, "ul": {}, "menu": {},
	"li": {}, "dl": {}, "dt": {}, "dd": {}, "figure": {}, "figcaption": {}, "div": {},
	// Text-level semantics
	"a": {}, "em": {}, "strong": {}, "small": {}, "s": {}, "cite": {}, "q": {},
	"dfn": {}, "abbr": {}, "ruby": {}, "rt": {}, "rp": {}, "data": {}, "time": {},
	"code": {}, "var": {}, "samp": {}, "kbd": {}, "sub": {}, "sup": {}, "i": {},
	"b": {}, "u": {}, "mark": {}, "bdi": {}, "bdo": {}, "span": {}, "br": {}, "wbr": {},
	// Edits
	"ins": {}, "del": {},
	// Embedded content
	"picture": {}, "source": {}, "img": {}, "iframe": {}, "embed": {}, "object": {},
	"param": {}, "video": {}, "audio": {}, "track": {}, "map": {}, "area": {},
	"portal": {}, "svg": {}, "math": {},
	// Tabular data
	"table": {}, "caption": {}, "colgroup": {}, "col": {}, "tbody": {}, "thead": {},
	"tfoot": {}, "tr": {}, "td": {}, "th": {},
	// Forms
	"form": {}, "label": {}, "input": {}, "button": {}, "select": {}, "datalist": {},
	"optgroup": {}, "option": {}, "textarea": {}, "output": {}, "progress": {},
	"meter": {}, "fieldset": {}, "legend": {},
	// Interactive elements
	"details": {}, "summary": {}, "dialog": {},
	// Scripting
	"script": {}, "noscript": {}, "template": {}, "slot": {}, "canvas": {},
	// Obsolete but still parsed
	"acronym": {}, "big": {}, "center": {}, "dir": {}, "font": {}, "frame": {},
	"frameset": {}, "noframes": {}, "marquee": {}, "nobr": {}, "strike": {}, "tt": {},
}

// reservedWords is the set of identifiers the language reserves or treats as
// well-known globals; these never name components even when capitalized.
var reservedWords = map[string]struct{}{
	// ECMAScript reserved words
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"yield": {}, "let": {}, "static": {}, "await": {},
	// Well-known globals that would otherwise pass the uppercase check
	"Infinity": {}, "NaN": {}, "Object": {}, "Array": {}, "String": {}, "Number": {},
	"Boolean": {}, "Function": {}, "Symbol": {}, "Math": {}, "Date": {}, "JSON": {},
	"Promise": {}, "Fragment": {},
}

// isHTMLElement reports whether name is a standard markup tag (case-insensitive).
func isHTMLElement(name string) bool {
	_, ok := htmlElements[strings.ToLower(name)]
	return ok
}

// isValidIdentifier reports whether name is a syntactically valid identifier.
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// isComponentName decides whether a bare JSX identifier refers to a
// component: uppercase first letter, valid identifier, not reserved, not a
// standard markup tag.
func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	first := rune(name[0])
	if !unicode.IsUpper(first) {
		return false
	}
	if !isValidIdentifier(name) {
		return false
	}
	if _, reserved := reservedWords[name]; reserved {
		return false
	}
	return !isHTMLElement(name)
}
