package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
	"github.com/thejackshelton/qwik-analyzer/pkg/parser"
)

// WatchOptions configures the file watcher.
type WatchOptions struct {
	// DebounceMs groups rapid events for the same file; 0 means 200ms.
	DebounceMs int
	// Apply rewrites changed files in place instead of reporting only.
	Apply bool
	// IgnorePatterns are matched against the base name of each path.
	IgnorePatterns []string
}

// DefaultWatchOptions returns watch settings for report-only mode.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{DebounceMs: 200}
}

// WatchResult is delivered on the watcher's result channel after a changed
// file has been re-analyzed.
type WatchResult struct {
	FilePath string
	Result   *analyzer.AnalysisResult
	Patched  string
	Err      error
}

// FileWatcher re-analyzes source files as they change on disk. Each event
// first invalidates the analyzer's caches for the file so the re-run sees
// fresh content.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	options  WatchOptions
	results  chan WatchResult

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a watcher over an existing analyzer.
func NewFileWatcher(an *analyzer.Analyzer, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.DebounceMs == 0 {
		options.DebounceMs = 200
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FileWatcher{
		watcher:        watcher,
		analyzer:       an,
		logger:         logger,
		options:        options,
		results:        make(chan WatchResult, 16),
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Results returns the channel on which re-analysis outcomes are delivered.
func (fw *FileWatcher) Results() <-chan WatchResult {
	return fw.results
}

// Start watches rootPath and its subdirectories and begins the event loop.
func (fw *FileWatcher) Start(rootPath string) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already stopped")
	}
	fw.mu.Unlock()

	if err := fw.watcher.Add(rootPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", rootPath, err)
	}

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			if fw.shouldIgnore(path) {
				return filepath.SkipDir
			}
			if err := fw.watcher.Add(path); err != nil {
				fw.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to setup watches: %w", err)
	}

	fw.logger.Info("file watcher started", "root", rootPath)

	go fw.eventLoop()

	return nil
}

// Stop stops the watcher. Idempotent.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return nil
	}

	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceTimers = make(map[string]*time.Timer)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("file watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	filePath := event.Name

	if fw.shouldIgnore(filePath) {
		return
	}

	// New directories need a watch of their own.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(filePath); err == nil && info.IsDir() {
			if err := fw.watcher.Add(filePath); err != nil {
				fw.logger.Warn("failed to watch directory", "path", filePath, "error", err)
			}
			return
		}
	}

	if parser.DetectLanguage(filePath) == parser.LanguageUnknown {
		return
	}

	fw.logger.Debug("file event", "op", event.Op.String(), "file", filePath)

	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		fw.debounceReanalyze(filePath)

	case event.Op&fsnotify.Create == fsnotify.Create:
		fw.debounceReanalyze(filePath)

	case event.Op&fsnotify.Remove == fsnotify.Remove:
		fw.analyzer.InvalidateFile(filePath)

	case event.Op&fsnotify.Rename == fsnotify.Rename:
		fw.analyzer.InvalidateFile(filePath)
	}
}

// debounceReanalyze schedules a re-analysis after the debounce delay. If
// more events for the same file arrive within the window, only the last
// one fires.
func (fw *FileWatcher) debounceReanalyze(filePath string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[filePath]; exists {
		timer.Stop()
	}

	fw.debounceTimers[filePath] = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		func() {
			fw.reanalyzeFile(filePath)

			fw.debounceMu.Lock()
			delete(fw.debounceTimers, filePath)
			fw.debounceMu.Unlock()
		},
	)
}

func (fw *FileWatcher) reanalyzeFile(filePath string) {
	fw.logger.Debug("re-analyzing file", "file", filePath)

	fw.analyzer.InvalidateFile(filePath)

	var res WatchResult
	res.FilePath = filePath

	if fw.options.Apply {
		source, err := os.ReadFile(filePath)
		if err != nil {
			res.Err = fmt.Errorf("failed to read file: %w", err)
		} else if patched, err := fw.analyzer.AnalyzeAndApply(filePath, source); err != nil {
			res.Err = err
		} else {
			res.Patched = patched
			// Writing only on change keeps the apply->event->apply loop
			// from running forever on an already-patched file.
			if patched != string(source) {
				if err := os.WriteFile(filePath, []byte(patched), 0o644); err != nil {
					res.Err = fmt.Errorf("failed to write patched file: %w", err)
				} else {
					fw.analyzer.InvalidateFile(filePath)
				}
			}
		}
	} else {
		res.Result, res.Err = fw.analyzer.Analyze(filePath, nil)
	}

	if res.Err != nil {
		fw.logger.Warn("re-analysis failed", "file", filePath, "error", res.Err)
	} else {
		fw.logger.Debug("file re-analyzed", "file", filePath)
	}

	select {
	case fw.results <- res:
	case <-fw.stopChan:
	}
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	for _, pattern := range fw.options.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}

	base := filepath.Base(path)
	switch base {
	case "node_modules", ".git", "dist", "build", ".next":
		return true
	}

	return false
}

// GetStats returns watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := !fw.stopped
	fw.mu.Unlock()

	return FileWatcherStats{
		PendingReanalyses: pending,
		IsRunning:         running,
	}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingReanalyses int
	IsRunning         bool
}
