// Package resource governs the memory and IO budgets used by bitmap buffers
// and bitmap persistence.
//
// The Controller manages two resource types:
//
//   - Memory: Track and limit bytes held by bitmap buffers (non-blocking, fail-fast)
//   - IO: Rate-limit bitmap file and blob traffic
//
// # Architecture
//
//	┌─────────────────────────────────────────────┐
//	│                 Controller                  │
//	├──────────────────────┬──────────────────────┤
//	│  Memory Limit        │  IO Rate Limiter     │
//	│  (fail-fast)         │  (token bucket)      │
//	├──────────────────────┼──────────────────────┤
//	│  AcquireMemory       │  AcquireIO           │
//	│  ReleaseMemory       │  RateLimitedWriter   │
//	│  MemoryUsage         │  RateLimitedReader   │
//	│  MemoryLimit         │                      │
//	└──────────────────────┴──────────────────────┘
//
// # Memory Management
//
// AcquireMemory never blocks. It returns ErrMemoryLimitExceeded immediately
// when the reservation does not fit:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - the bitmap operation fails, nothing changes
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	writer := resource.NewRateLimitedWriter(ctx, file, rc)
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
