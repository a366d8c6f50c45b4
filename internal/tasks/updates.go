package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase (0 when unknown)
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Connecting Phase = iota
	Estimating
	Clearing
	Fetching
	Indexing
	Rescanning
	Verifying
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Connecting:
		return "connecting"
	case Estimating:
		return "estimating"
	case Clearing:
		return "clearing"
	case Fetching:
		return "fetching"
	case Indexing:
		return "indexing_batches"
	case Rescanning:
		return "rescanning"
	case Verifying:
		return "verifying"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func connectingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Connecting,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Connecting to %s catalog...", name),
	}
}

func estimatingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Estimating,
		Step:    1,
		Total:   1,
		Message: "Estimating library size...",
	}
}

func estimatedUpdate(total int) ProgressUpdate {
	msg := "Library size unknown, proceeding anyway"
	if total > 0 {
		msg = fmt.Sprintf("Estimated %d tracks in library", total)
	}
	return ProgressUpdate{
		Phase:   Estimating,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func clearingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Clearing,
		Step:    1,
		Total:   1,
		Message: "Clearing existing index for full rebuild...",
	}
}

func fetchingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetching,
		Step:    1,
		Total:   1,
		Message: "Fetching complete track listing from catalog...",
	}
}

func batchUpdate(batch, totalBatches, processed, inserted int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Indexing,
		Step:    batch,
		Total:   totalBatches,
		Message: fmt.Sprintf("Batch %d/%d: %d processed, %d indexed", batch, totalBatches, processed, inserted),
	}
}

func completedUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Indexing complete: %d processed, %d indexed in %d batches", result.Processed, result.Inserted, result.Batches),
		Data:    result,
	}
}

func failedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Failed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Indexing failed: %v", err),
	}
}

func rescanUpdate(fetched, indexed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Rescanning,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rescan: %d recent tracks fetched, %d newly indexed", fetched, indexed),
	}
}

func verifyUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Verifying,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Verifying: %s", step, total, title),
	}
}
