// Package pipeline orchestrates file discovery, the per-file two-pass
// state machine, disposition of originals, and batch summary reporting.
//
// Files are independent: the scan is snapshotted before any work starts,
// log-file bases are unique per file, and the two passes of one file are
// strictly ordered while distinct files may run concurrently under a
// bounded pool.
package pipeline
