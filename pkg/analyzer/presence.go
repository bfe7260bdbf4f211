package analyzer

import (
	"errors"
	"strings"
)

// defaultMaxDepth bounds the presence recursion in addition to the visited
// set, as defense against pathological import graphs.
const defaultMaxDepth = 32

// hasComponent reports whether target is reachable in file's effective
// render tree: rendered directly, or rendered anywhere inside a component
// the file renders, recursing through index/barrel indirection.
//
// Per query: Start -> DirectCheck -> (Found | IndirectCheck) -> (Found |
// NotFound). The visited set carries (file, target) pairs so mutually
// importing files terminate; hits are memoized per session since the same
// pair is re-derived from many usage sites. Every failure along the way
// (unreadable file, unresolvable specifier, parse errors) collapses the
// branch to NotFound: presence is a best-effort existence query.
func (s *session) hasComponent(file, target string, visited map[presenceKey]struct{}, depth int) bool {
	key := presenceKey{file: file, target: target}

	if cached, ok := s.memo[key]; ok {
		return cached
	}
	if _, seen := visited[key]; seen {
		return false
	}
	if depth > s.analyzer.maxDepth {
		s.analyzer.logger.Debug("presence search hit depth bound",
			"file", file, "target", target, "depth", depth)
		return false
	}
	visited[key] = struct{}{}

	f, err := s.load(file)
	if err != nil {
		s.memo[key] = false
		return false
	}

	if s.directMatch(f, target) {
		s.memo[key] = true
		return true
	}

	result := s.indirectMatch(f, target, visited, depth)
	s.memo[key] = result
	return result
}

// directMatch scans the file's own render tree for target: an exact name
// match, or a member-style usage naming the target through a namespace that
// resolves to a local file. A bare target matches a dotted usage by property
// segment; a dotted target only matches its full dotted suffix, so
// Radio.Description never satisfies a Checkbox.Description marker. An
// element rendered through an external package's namespace never counts.
func (s *session) directMatch(f *sourceFile, target string) bool {
	for _, usage := range f.usages {
		if usage.Name == target || (usage.Dotted() && usage.Canonical() == target) {
			return true
		}

		if !usage.Dotted() || !usageSuffixMatches(usage, target) {
			continue
		}

		binding := f.binding(usage.Namespace())
		if binding == nil {
			continue
		}
		if _, err := s.analyzer.resolver.Resolve(binding.Specifier, f.path); err == nil {
			return true
		} else if errors.Is(err, ErrExternalModule) {
			s.analyzer.logger.Debug("skipping external namespace usage",
				"usage", usage.Name, "target", target, "specifier", binding.Specifier)
		}
	}

	return false
}

// usageSuffixMatches reports whether a dotted usage's trailing segments name
// target: the property segment alone for a bare target, the whole dotted
// path for a dotted one.
func usageSuffixMatches(usage JSXUsage, target string) bool {
	if strings.Contains(target, ".") {
		return strings.HasSuffix(usage.Name, "."+target)
	}
	return usage.Property() == target
}

// usageNamesTarget reports whether the usage names target in one of the
// forms the direct check evaluates.
func usageNamesTarget(usage JSXUsage, target string) bool {
	if usage.Name == target {
		return true
	}
	if !usage.Dotted() {
		return false
	}
	return usage.Canonical() == target || usageSuffixMatches(usage, target)
}

// indirectMatch recurses into the defining file of every other component the
// file renders and asks whether that component's subtree supplies target.
func (s *session) indirectMatch(f *sourceFile, target string, visited map[presenceKey]struct{}, depth int) bool {
	for _, usage := range f.usages {
		// A usage that itself names the target was already covered by the
		// direct check; recursing into it would just re-ask the question.
		if usageNamesTarget(usage, target) {
			continue
		}

		defFile, err := s.resolveUsageDefiningFile(f, usage)
		if err != nil || defFile == f.path {
			continue
		}

		if s.hasComponent(defFile, target, visited, depth+1) {
			return true
		}
	}

	return false
}
