package parser

import (
	"github.com/thejackshelton/qwik-analyzer/pkg/util"
)

// getDefaultPoolSize returns the default pool size based on CPU count.
//
// Delegates to util.GetOptimalPoolSize() so the parser pool and the batch
// worker pool stay the same size; a worker must never block waiting for a
// parser that another worker holds.
func getDefaultPoolSize() int {
	return util.GetOptimalPoolSize()
}
