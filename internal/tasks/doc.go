// package tasks implements the long-running library maintenance operations.
//
// The core abstractions are Indexer, which orchestrates full rebuilds of the
// reference index from the external catalog plus the incremental
// recent-additions rescan, and Reconciler, which re-verifies ledger entries
// against the match engine to clear false positives.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers. A full rebuild walks a fixed state machine:
//
//	Idle -> Connecting -> Estimating -> Clearing -> Fetching -> Indexing -> Completed | Failed
//
// Estimation failure is non-fatal (progress degrades to counts without
// percentages); a single batch failure is logged and skipped rather than
// aborting the run. At most one rebuild may be active at a time; overlapping
// runs are rejected rather than queued.
package tasks
