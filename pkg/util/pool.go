package util

import "runtime"

// GetOptimalPoolSize returns the pool size for CPU-bound work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Parsing runs in cgo, so twice the core count keeps the CPUs busy while some
// goroutines sit in C calls. The cap bounds memory held by idle parsers.
//
// Used for the parser pool of each grammar and the file worker pool.
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

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise. The --workers flag goes through here.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
