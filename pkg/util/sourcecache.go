// SourceCache provides read-only access to source files using memory-mapped
// reads with a graceful os.ReadFile fallback.
//
// The presence resolution graph revisits the same dependency files from many
// call sites; mapping each file once keeps those repeat reads O(1) while
// letting the OS page in only what analysis actually touches.
//
// Lifecycle: Get hands out pinned Refs. A mapping stays live while any Ref
// pins it; Invalidate(path) and Close() drop a mapping from the cache
// immediately but defer the unmap until the last Ref is released, so a
// concurrent analysis session never reads unmapped memory.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// mappedSource is one cached source file. refs and doomed are guarded by the
// owning cache's mu.
type mappedSource struct {
	data mmap.MMap // nil when the fallback path was used or the file is empty
	raw  []byte    // fallback contents (mmap failed)
	file *os.File  // kept open for unmapping; nil on the fallback path

	refs   int
	doomed bool // dropped from the cache; unmap once refs hits zero
}

func (m *mappedSource) bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.raw
}

func (m *mappedSource) close() error {
	var err error
	if m.data != nil {
		err = m.data.Unmap()
	}
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Ref is a pinned view of one file's contents. Bytes stays valid until
// Release, even across Invalidate or Close of the owning cache.
type Ref struct {
	sc *SourceCache
	ms *mappedSource
}

// Bytes returns the file contents. The slice is read-only.
func (r *Ref) Bytes() []byte {
	return r.ms.bytes()
}

// Release returns the pin. The slice from Bytes must not be used afterwards.
// Releasing twice is a no-op.
func (r *Ref) Release() {
	if r.ms == nil {
		return
	}
	ms := r.ms
	r.ms = nil

	r.sc.mu.Lock()
	ms.refs--
	dead := ms.doomed && ms.refs == 0
	r.sc.mu.Unlock()

	if dead {
		if err := ms.close(); err != nil {
			r.sc.logger.Warn("failed to unmap file", "error", err)
		}
	}
}

// SourceCache caches source file contents keyed by absolute path.
type SourceCache struct {
	maxFiles int
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]*mappedSource

	statsMu      sync.Mutex
	hits, misses int64
	mmapFailures int64
}

// SourceCacheStats reports cache behavior for observability.
type SourceCacheStats struct {
	FilesCached  int
	Hits         int64
	Misses       int64
	MmapFailures int64
}

// NewSourceCache creates a cache holding at most maxFiles files.
// maxFiles <= 0 means unlimited. A nil logger falls back to slog.Default().
func NewSourceCache(maxFiles int, logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{
		maxFiles: maxFiles,
		logger:   logger,
		files:    make(map[string]*mappedSource),
	}
}

// Get returns a pinned reference to the contents of filePath, loading and
// mapping it on first access. The caller must Release the reference when it
// stops reading.
func (sc *SourceCache) Get(filePath string) (*Ref, error) {
	sc.mu.Lock()

	if ms, ok := sc.files[filePath]; ok {
		ms.refs++
		sc.mu.Unlock()
		sc.recordHit()
		return &Ref{sc: sc, ms: ms}, nil
	}

	sc.recordMiss()

	if sc.maxFiles > 0 && len(sc.files) >= sc.maxFiles {
		sc.mu.Unlock()
		// Over the cap we still serve the read, just without caching. The
		// doomed one-ref entry frees itself on Release.
		sc.logger.Debug("source cache full, reading without caching", "file", filePath)
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		return &Ref{sc: sc, ms: &mappedSource{raw: raw, refs: 1, doomed: true}}, nil
	}

	ms, err := sc.load(filePath)
	if err != nil {
		sc.mu.Unlock()
		return nil, err
	}

	ms.refs = 1
	sc.files[filePath] = ms
	sc.mu.Unlock()
	return &Ref{sc: sc, ms: ms}, nil
}

// load opens and maps a file. Must be called while holding mu.
func (sc *SourceCache) load(filePath string) (*mappedSource, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Empty files can't be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &mappedSource{raw: []byte{}}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		sc.logger.Warn("mmap failed, using fallback read",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		file.Close()

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap and fallback read both failed for %q: %w", filePath, readErr)
		}

		sc.recordMmapFailure()
		return &mappedSource{raw: raw}, nil
	}

	return &mappedSource{data: data, file: file}, nil
}

// Invalidate drops a file from the cache. Used by watch mode when the file
// changes on disk. The mapping is unmapped once every outstanding Ref is
// released. Dropping an unknown path is a no-op.
func (sc *SourceCache) Invalidate(filePath string) {
	sc.mu.Lock()
	ms, ok := sc.files[filePath]
	if !ok {
		sc.mu.Unlock()
		return
	}
	delete(sc.files, filePath)
	if ms.refs > 0 {
		ms.doomed = true
		sc.mu.Unlock()
		return
	}
	sc.mu.Unlock()

	if err := ms.close(); err != nil {
		sc.logger.Warn("failed to unmap file", "file", filePath, "error", err)
	}
}

// Size returns the number of currently cached files.
func (sc *SourceCache) Size() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.files)
}

// Stats returns current cache metrics.
func (sc *SourceCache) Stats() SourceCacheStats {
	sc.mu.Lock()
	cached := len(sc.files)
	sc.mu.Unlock()

	sc.statsMu.Lock()
	defer sc.statsMu.Unlock()
	return SourceCacheStats{
		FilesCached:  cached,
		Hits:         sc.hits,
		Misses:       sc.misses,
		MmapFailures: sc.mmapFailures,
	}
}

// Close empties the cache. Unpinned mappings are unmapped now; pinned ones
// when their last Ref is released. The cache may be reused afterwards; it
// simply starts empty.
func (sc *SourceCache) Close() error {
	sc.mu.Lock()
	var unpinned []*mappedSource
	for _, ms := range sc.files {
		if ms.refs > 0 {
			ms.doomed = true
			continue
		}
		unpinned = append(unpinned, ms)
	}
	sc.files = make(map[string]*mappedSource)
	sc.mu.Unlock()

	var firstErr error
	for _, ms := range unpinned {
		if err := ms.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to unmap source file: %w", err)
		}
	}
	return firstErr
}

func (sc *SourceCache) recordHit() {
	sc.statsMu.Lock()
	sc.hits++
	sc.statsMu.Unlock()
}

func (sc *SourceCache) recordMiss() {
	sc.statsMu.Lock()
	sc.misses++
	sc.statsMu.Unlock()
}

func (sc *SourceCache) recordMmapFailure() {
	sc.statsMu.Lock()
	sc.mmapFailures++
	sc.statsMu.Unlock()
}
