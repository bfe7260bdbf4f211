package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
)

// resolveUsageDefiningFile maps a JSX usage in f to the file that actually
// defines the referenced component. Bare usages resolve their own import
// binding; member-style usages resolve the namespace binding, then follow
// each remaining segment through index/barrel indirection.
func (s *session) resolveUsageDefiningFile(f *sourceFile, usage JSXUsage) (string, error) {
	if !usage.Dotted() {
		binding := f.binding(usage.Name)
		if binding == nil {
			return "", fmt.Errorf("%s has no import binding: %w", usage.Name, ErrModuleNotFound)
		}
		return s.analyzer.resolver.Resolve(binding.Specifier, f.path)
	}

	binding := f.binding(usage.Namespace())
	if binding == nil {
		return "", fmt.Errorf("namespace %s has no import binding: %w", usage.Namespace(), ErrModuleNotFound)
	}

	current, err := s.analyzer.resolver.Resolve(binding.Specifier, f.path)
	if err != nil {
		return "", err
	}

	// Full dotted depth: each segment below the namespace is one level of
	// indirection to follow.
	for _, segment := range strings.Split(usage.Name, ".")[1:] {
		current, err = s.resolveMember(current, segment)
		if err != nil {
			return "", err
		}
	}
	return current, nil
}

// resolveMember resolves one exported member of a module file to the file
// defining it. Lookup order (first match wins, a documented tie-break for
// ambiguous re-exports):
//  1. a re-export statement naming the member, following its own specifier;
//  2. a declaration of the member in the module file itself, including an
//     object-valued export whose matching key maps to a locally imported
//     identifier;
//  3. filename heuristic over the module directory (guarded, best-effort).
func (s *session) resolveMember(moduleFile, member string) (string, error) {
	f, err := s.load(moduleFile)
	if err != nil {
		// Unparseable index: the heuristic is all that is left.
		return s.memberFileFallback(moduleFile, member)
	}

	if path, ok := s.memberFromExports(f, member); ok {
		return path, nil
	}

	return s.memberFileFallback(moduleFile, member)
}

// memberFromExports scans the file's export statements in document order for
// a binding of member.
func (s *session) memberFromExports(f *sourceFile, member string) (string, bool) {
	root := f.tree.RootNode()

	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		if stmt.Kind() != "export_statement" {
			continue
		}

		specifier := importSource(stmt, f.source)

		// export { Member } from './member' / export { X as Member } from ...
		if local, ok := exportClauseLocal(stmt, f.source, member); ok {
			if specifier != "" {
				if path, err := s.analyzer.resolver.Resolve(specifier, f.path); err == nil {
					return path, true
				}
				continue
			}
			// No source: the member is local to this file, possibly via its
			// own import.
			return s.localOrImported(f, local), true
		}

		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			if path, ok := s.memberFromDeclaration(f, decl, member); ok {
				return path, true
			}
		}
	}

	return "", false
}

// exportClauseLocal finds member among the statement's export specifiers and
// returns the local name it is exported under.
func exportClauseLocal(stmt *ts.Node, source []byte, member string) (string, bool) {
	for i := uint(0); i < stmt.ChildCount(); i++ {
		clause := stmt.Child(i)
		if clause.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			spec := clause.Child(j)
			if spec.Kind() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("name")
			if name == nil {
				continue
			}
			exported := name.Utf8Text(source)
			local := exported
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = alias.Utf8Text(source)
			}
			if exported == member {
				return local, true
			}
		}
	}
	return "", false
}

// memberFromDeclaration handles exported declarations: a function, class or
// variable named member defines it here; an object-valued export with a
// matching key follows the value identifier's own import.
func (s *session) memberFromDeclaration(f *sourceFile, decl *ts.Node, member string) (string, bool) {
	switch decl.Kind() {
	case "function_declaration", "class_declaration":
		if name := decl.ChildByFieldName("name"); name != nil && name.Utf8Text(f.source) == member {
			return f.path, true
		}

	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < decl.ChildCount(); i++ {
			declarator := decl.Child(i)
			if declarator.Kind() != "variable_declarator" {
				continue
			}

			if name := declarator.ChildByFieldName("name"); name != nil && name.Utf8Text(f.source) == member {
				return f.path, true
			}

			value := declarator.ChildByFieldName("value")
			if value == nil || value.Kind() != "object" {
				continue
			}
			if local, ok := objectValueForKey(value, f.source, member); ok {
				return s.localOrImported(f, local), true
			}
		}
	}

	return "", false
}

// objectValueForKey finds the identifier an object literal maps member to:
// { Member: LocalIdent } or the shorthand { Member }.
func objectValueForKey(object *ts.Node, source []byte, member string) (string, bool) {
	for i := uint(0); i < object.ChildCount(); i++ {
		entry := object.Child(i)
		switch entry.Kind() {
		case "pair":
			key := entry.ChildByFieldName("key")
			value := entry.ChildByFieldName("value")
			if key == nil || value == nil || key.Utf8Text(source) != member {
				continue
			}
			if value.Kind() == "identifier" {
				return value.Utf8Text(source), true
			}
			return "", false

		case "shorthand_property_identifier":
			if entry.Utf8Text(source) == member {
				return member, true
			}
		}
	}
	return "", false
}

// localOrImported resolves a local identifier to its defining file: the
// identifier's own import specifier when it is imported, otherwise the file
// itself.
func (s *session) localOrImported(f *sourceFile, localName string) string {
	if binding := f.binding(localName); binding != nil {
		if path, err := s.analyzer.resolver.Resolve(binding.Specifier, f.path); err == nil {
			return path
		}
	}
	return f.path
}

// memberFileFallback is the last-resort lookup: scan the module directory
// for a source file whose stem matches the member name (case-insensitive),
// then for any source file that declares the member. Lower confidence than
// the structural paths, so its use is surfaced at debug level.
func (s *session) memberFileFallback(moduleFile, member string) (string, error) {
	dir := filepath.Dir(moduleFile)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("member %s: %w", member, ErrModuleNotFound)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || parser.DetectLanguage(entry.Name()) == parser.LanguageUnknown {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	lowered := strings.ToLower(member)
	for _, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.ToLower(stem) == lowered {
			path := filepath.Join(dir, name)
			s.analyzer.logger.Debug("index lookup fell back to filename heuristic",
				"member", member, "module", moduleFile, "resolved", path)
			return path, nil
		}
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		if path == moduleFile {
			continue
		}
		candidate, err := s.load(path)
		if err != nil {
			continue
		}
		if fileDeclares(candidate, member) {
			s.analyzer.logger.Debug("index lookup fell back to directory scan",
				"member", member, "module", moduleFile, "resolved", path)
			return path, nil
		}
	}

	return "", fmt.Errorf("member %s not found via %s: %w", member, moduleFile, ErrModuleNotFound)
}

// fileDeclares reports whether the file declares a top-level name equal to
// member, exported or not.
func fileDeclares(f *sourceFile, member string) bool {
	root := f.tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		stmt := root.Child(i)
		decl := stmt
		if stmt.Kind() == "export_statement" {
			if d := stmt.ChildByFieldName("declaration"); d != nil {
				decl = d
			}
		}

		switch decl.Kind() {
		case "function_declaration", "class_declaration":
			if name := decl.ChildByFieldName("name"); name != nil && name.Utf8Text(f.source) == member {
				return true
			}
		case "lexical_declaration", "variable_declaration":
			for j := uint(0); j < decl.ChildCount(); j++ {
				declarator := decl.Child(j)
				if declarator.Kind() != "variable_declarator" {
					continue
				}
				if name := declarator.ChildByFieldName("name"); name != nil && name.Utf8Text(f.source) == member {
					return true
				}
			}
		}
	}
	return false
}
