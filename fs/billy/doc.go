// Package billy provides go-billy-backed implementations of core.Backend for
// the local disk and for memory.
//
// LocalFS wraps go-billy's osfs rooted at "/" and serves both bare paths and
// file:// locators. Relative paths resolve against the working directory and
// relative glob patterns produce relative matches. Create writes to a
// temporary file next to the target and renames it on Close, so concurrent
// writers of the same path converge on one complete file.
//
// MemoryFS wraps go-billy's memfs and serves mem:// locators, mostly in tests.
//
// Usage:
//
//	local := billy.NewLocal()
//	matches, err := local.Glob(ctx, "/data/**/*.jsonl")
//
//	mem := billy.NewMemory()
//	w, err := mem.Create(ctx, "bucket/a.txt")
//
// Both backends match "**" across any number of directories natively.
//
// # Thread Safety
//
// LocalFS and MemoryFS are safe for concurrent use by multiple goroutines.
// Streams returned by Open and Create are not.
package billy
