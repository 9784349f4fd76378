package tracker

import "math"

// Progress computes a task's completion percentage from its subtask counts.
// Returns 0 when the task has no subtasks. The value is derived on every
// read and never persisted on the task record.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
