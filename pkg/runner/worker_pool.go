package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/thejackshelton/qwik-analyzer/pkg/analyzer"
	"github.com/thejackshelton/qwik-analyzer/pkg/util"
)

// FileJob represents a file to be analyzed by the worker pool.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult contains the analysis outcome for a file. Patched is only
// populated when the pool runs in apply mode.
type FileResult struct {
	FilePath string
	Result   *analyzer.AnalysisResult
	Patched  string
	JobID    int
}

// FileError pairs a file path with the error that stopped its analysis.
type FileError struct {
	FilePath string
	Error    error
	JobID    int
}

// WorkerPool fans file analysis out over a fixed set of goroutines.
//
// Worker count defaults to util.GetOptimalPoolSize() so it matches the
// parser pool size; more workers than parsers would just block on parser
// acquisition.
//
// Usage:
//
//	pool := NewWorkerPool(0, an, false, logger)
//	pool.Start()
//	for i, file := range files {
//	    pool.Submit(FileJob{FilePath: file, JobID: i})
//	}
//	pool.FinishSubmitting()
//	// drain pool.Results() / pool.Errors(), then pool.Stop()
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup
	analyzer   *analyzer.Analyzer
	apply      bool
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool over an existing analyzer. numWorkers of 0
// auto-detects. When apply is true, workers rewrite the source and return
// the patched text alongside the analysis result.
func NewWorkerPool(numWorkers int, an *analyzer.Analyzer, apply bool, logger *slog.Logger) *WorkerPool {
	if numWorkers == 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		analyzer:   an,
		apply:      apply,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the worker goroutines. Must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	wp.logger.Debug("starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	wp.logger.Debug("analyzing file", "worker_id", workerID, "file", job.FilePath)

	if wp.apply {
		patched, err := wp.analyzer.AnalyzeAndApply(job.FilePath, nil)
		if err != nil {
			wp.fail(job, err)
			return
		}
		wp.jobsProcessed.Add(1)
		wp.results <- FileResult{FilePath: job.FilePath, Patched: patched, JobID: job.JobID}
		return
	}

	result, err := wp.analyzer.Analyze(job.FilePath, nil)
	if err != nil {
		wp.fail(job, err)
		return
	}

	wp.jobsProcessed.Add(1)
	wp.results <- FileResult{FilePath: job.FilePath, Result: result, JobID: job.JobID}
}

func (wp *WorkerPool) fail(job FileJob, err error) {
	wp.jobsFailed.Add(1)
	wp.errors <- FileError{
		FilePath: job.FilePath,
		Error:    fmt.Errorf("analysis failed: %w", err),
		JobID:    job.JobID,
	}
}

// Submit enqueues a job. Blocks while the jobs channel is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	wp.jobsSubmitted.Add(1)

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel so workers exit once it drains.
// Idempotent.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Wait blocks until all workers have exited. Call after FinishSubmitting.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop shuts the pool down: no new jobs, in-flight jobs finish, then the
// result and error channels close. Idempotent.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}

	wp.wg.Wait()
	wp.cancel()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("worker pool stopped",
		"submitted", wp.jobsSubmitted.Load(),
		"processed", wp.jobsProcessed.Load(),
		"failed", wp.jobsFailed.Load())
}

// Stats reports counters for submitted, processed, and failed jobs.
func (wp *WorkerPool) Stats() (submitted, processed, failed int64) {
	return wp.jobsSubmitted.Load(), wp.jobsProcessed.Load(), wp.jobsFailed.Load()
}

// BatchReport aggregates the outcome of a batch run.
type BatchReport struct {
	Results []FileResult
	Errors  []FileError
}

// RunBatch discovers files under rootDir and analyzes them in parallel.
// Results come back sorted by job order (discovery order), errors likewise.
func RunBatch(an *analyzer.Analyzer, rootDir string, cfg ScanConfig, apply bool, logger *slog.Logger) (*BatchReport, error) {
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, err
	}

	pool := NewWorkerPool(0, an, apply, logger)
	pool.Start()

	go func() {
		for i, file := range files {
			if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
				return
			}
		}
		pool.FinishSubmitting()
	}()

	report := &BatchReport{}
	for remaining := len(files); remaining > 0; remaining-- {
		select {
		case res := <-pool.Results():
			report.Results = append(report.Results, res)
		case ferr := <-pool.Errors():
			report.Errors = append(report.Errors, ferr)
		}
	}

	pool.Stop()

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].JobID < report.Results[j].JobID
	})
	sort.Slice(report.Errors, func(i, j int) bool {
		return report.Errors[i].JobID < report.Errors[j].JobID
	})
	return report, nil
}
