package analyzer

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
	"github.com/thejackshelton/qwik-analyzer/pkg/util"
)

// Config controls Analyzer construction. The zero value is usable: a default
// logger, an owned parser manager and the default depth bound.
type Config struct {
	// Logger receives structured diagnostics. Nil means slog.Default().
	Logger *slog.Logger

	// Parsers is the shared parser manager. When nil the analyzer creates
	// and owns one, closing it on Close().
	Parsers *parser.ParserManager

	// MaxDepth bounds the presence recursion (defense in addition to the
	// visited set). Zero means the default bound.
	MaxDepth int

	// MaxCachedFiles caps the mmap-backed source cache. Zero means
	// unlimited.
	MaxCachedFiles int
}

// Analyzer statically answers isComponentPresent marker calls for one file
// at a time and produces the byte-range patches that freeze each verdict
// into the source.
//
// An Analyzer is safe for concurrent Analyze calls: every call owns an
// independent session (parse cache + memo table); the resolver and source
// caches it shares are thread-safe.
type Analyzer struct {
	parsers     *parser.ParserManager
	ownsParsers bool
	resolver    *Resolver
	sources     *util.SourceCache
	logger      *slog.Logger
	maxDepth    int
}

// New creates an Analyzer from cfg.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	parsers := cfg.Parsers
	ownsParsers := false
	if parsers == nil {
		parsers = parser.NewParserManager(logger)
		ownsParsers = true
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	return &Analyzer{
		parsers:     parsers,
		ownsParsers: ownsParsers,
		resolver:    NewResolver(logger),
		sources:     util.NewSourceCache(cfg.MaxCachedFiles, logger),
		logger:      logger,
		maxDepth:    maxDepth,
	}
}

// Close releases the source cache and, when owned, the parser manager.
func (a *Analyzer) Close() error {
	err := a.sources.Close()
	if a.ownsParsers {
		if perr := a.parsers.Close(); err == nil {
			err = perr
		}
	}
	return err
}

// InvalidateFile drops a file from the source cache and purges the
// resolution cache. Watch mode calls this when the file changes on disk
// before re-analyzing its dependents. The whole resolution cache goes
// because a created or removed file can change the outcome of probes that
// never touched this path, such as an extension earlier in the probe order
// appearing next to a cached hit.
func (a *Analyzer) InvalidateFile(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	a.sources.Invalidate(filepath.Clean(path))
	a.resolver.Purge()
}

// Analyze computes the presence verdict and patch set for one file.
//
// source may be nil, in which case the file is read from disk. Byte offsets
// in the returned patches index the original supplied text. Failures in
// dependency files are absorbed as "component absent"; only the target
// file's own read or parse failure is returned as an error.
func (a *Analyzer) Analyze(filePath string, source []byte) (*AnalysisResult, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}

	sess := a.newSession()
	defer sess.close()

	f, err := sess.loadWithSource(abs, source)
	if err != nil {
		return nil, err
	}

	calls := sess.collectPresenceCalls(f)
	for i := range calls {
		visited := make(map[presenceKey]struct{})
		calls[i].present = sess.hasComponent(f.path, calls[i].target, visited, 0)
	}

	result := &AnalysisResult{
		HasComponent:    anyPresent(calls),
		Transformations: sess.generatePatches(f, calls),
	}

	a.logger.Debug("analysis complete",
		"file", abs,
		"marker_calls", len(calls),
		"has_component", result.HasComponent,
		"patches", len(result.Transformations))

	return result, nil
}

// AnalyzeAndApply analyzes the file and returns the fully patched text
// (identical to the input when there is nothing to patch).
func (a *Analyzer) AnalyzeAndApply(filePath string, source []byte) (string, error) {
	if source == nil {
		abs, err := filepath.Abs(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", filePath, err)
		}
		ref, err := a.sources.Get(filepath.Clean(abs))
		if err != nil {
			return "", err
		}
		defer ref.Release()
		source = ref.Bytes()
	}

	result, err := a.Analyze(filePath, source)
	if err != nil {
		return "", err
	}

	patched, err := ApplyPatches(source, result.Transformations)
	if err != nil {
		return "", err
	}
	return string(patched), nil
}

// collectPresenceCalls gathers, for every component the file renders, the
// marker calls declared in that component's defining file. These are the
// questions this file's render tree has to answer.
func (s *session) collectPresenceCalls(f *sourceFile) []presenceCall {
	type callKey struct {
		target, sourceFile string
	}
	seen := make(map[callKey]struct{})

	calls := make([]presenceCall, 0)
	for _, usage := range f.usages {
		defFile, err := s.resolveUsageDefiningFile(f, usage)
		if err != nil {
			continue
		}

		dep, err := s.load(defFile)
		if err != nil {
			continue
		}

		for _, mc := range dep.markers {
			key := callKey{target: mc.Target, sourceFile: defFile}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			calls = append(calls, presenceCall{
				target:     mc.Target,
				sourceFile: defFile,
			})
		}
	}
	return calls
}
