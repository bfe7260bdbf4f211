package analyzer

import (
	"fmt"
	"path/filepath"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/thejackshelton/qwik-analyzer/pkg/util"
)

// sourceFile is one parsed file inside a session: its text, tree and the
// derived facts the engine reads. The core never mutates the tree.
type sourceFile struct {
	path    string
	source  []byte
	ref     *util.Ref // pins source in the shared cache; nil for caller-supplied text
	tree    *ts.Tree
	imports []ImportBinding
	usages  []JSXUsage
	markers []MarkerCall
}

// binding returns the import binding for a local name, or nil.
func (f *sourceFile) binding(localName string) *ImportBinding {
	for i := range f.imports {
		if f.imports[i].LocalName == localName {
			return &f.imports[i]
		}
	}
	return nil
}

// session owns all per-invocation state of one top-level Analyze call: the
// parse cache and the presence memo table. Sessions are never shared across
// concurrent analyses, so none of this needs locking.
type session struct {
	analyzer *Analyzer
	files    map[string]*sourceFile
	failed   map[string]error
	memo     map[presenceKey]bool
}

type presenceKey struct {
	file   string
	target string
}

func (a *Analyzer) newSession() *session {
	return &session{
		analyzer: a,
		files:    make(map[string]*sourceFile),
		failed:   make(map[string]error),
		memo:     make(map[presenceKey]bool),
	}
}

// load returns the parsed form of path, reading through the analyzer's
// source cache. Results, including failures, are cached for the session's
// lifetime: the resolution graph revisits the same file from many call sites.
func (s *session) load(path string) (*sourceFile, error) {
	path = filepath.Clean(path)

	if f, ok := s.files[path]; ok {
		return f, nil
	}
	if err, ok := s.failed[path]; ok {
		return nil, err
	}

	ref, err := s.analyzer.sources.Get(path)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", path, err)
		s.failed[path] = err
		return nil, err
	}

	f, err := s.loadParsed(path, ref.Bytes())
	if err != nil {
		ref.Release()
		return nil, err
	}
	f.ref = ref
	return f, nil
}

// loadWithSource is load with caller-supplied text, used for the top-level
// file when the host build tool already holds the (possibly unsaved) text.
func (s *session) loadWithSource(path string, source []byte) (*sourceFile, error) {
	path = filepath.Clean(path)

	if source == nil {
		return s.load(path)
	}
	if f, ok := s.files[path]; ok {
		return f, nil
	}
	return s.loadParsed(path, source)
}

func (s *session) loadParsed(path string, source []byte) (*sourceFile, error) {
	tree, err := s.analyzer.parsers.ParseFile(source, path)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", path, err)
		s.failed[path] = err
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		err := fmt.Errorf("parse errors in %s", path)
		s.failed[path] = err
		return nil, err
	}

	f := &sourceFile{
		path:    path,
		source:  source,
		tree:    tree,
		imports: extractImportBindings(root, source),
		usages:  extractJSXUsages(root, source),
		markers: extractMarkerCalls(root, source),
	}
	s.files[path] = f
	return f, nil
}

// close releases every tree the session parsed and unpins the source text
// each one borrowed from the shared cache.
func (s *session) close() {
	for _, f := range s.files {
		if f.tree != nil {
			f.tree.Close()
		}
		if f.ref != nil {
			f.ref.Release()
		}
	}
	s.files = nil
	s.failed = nil
	s.memo = nil
}
