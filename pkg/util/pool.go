package util

import "runtime"

// GetOptimalPoolSize returns the optimal pool size for CPU-bound tasks.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
//   - Minimum 4: ensure some parallelism even on weak machines
//   - 2x CPU cores: tree-sitter parsing is CGO-heavy, extra goroutines keep
//     cores busy during CGO blocks
//   - Maximum 32: caps memory on high-core machines
//
// Used for both the parser pool (parsers per language) and the batch worker
// pool (concurrent file analyses).
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns pool size with optional override.
//
// If override > 0, uses the override value (for testing/tuning).
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
