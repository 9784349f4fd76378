// Package tracker holds the domain rules for the project board: status
// enumerations, subtask-derived progress, and due-date urgency.
package tracker

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ValidTaskStatuses lists the closed task status enumeration, in board order.
var ValidTaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

// IsValidTaskStatus reports whether s is a persistable task status.
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// BugStatus represents the lifecycle state of a bug.
type BugStatus string

const (
	BugOpen       BugStatus = "open"
	BugInProgress BugStatus = "in_progress"
	BugResolved   BugStatus = "resolved"
)

// IsValidBugStatus reports whether s is a persistable bug status.
func IsValidBugStatus(s BugStatus) bool {
	switch s {
	case BugOpen, BugInProgress, BugResolved:
		return true
	}
	return false
}

// Severity represents bug severity, chosen at creation and immutable after.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IsValidSeverity reports whether s is a persistable severity.
func IsValidSeverity(s Severity) bool {
	switch s {
	case SeverityCritical, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// MilestoneStatus represents the lifecycle state of a milestone.
type MilestoneStatus string

const (
	MilestonePlanned    MilestoneStatus = "planned"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// IsValidMilestoneStatus reports whether s is a persistable milestone status.
func IsValidMilestoneStatus(s MilestoneStatus) bool {
	switch s {
	case MilestonePlanned, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

// ActivityType categorizes activity feed entries.
type ActivityType string

const (
	ActivityTask      ActivityType = "task"
	ActivityBug       ActivityType = "bug"
	ActivityMilestone ActivityType = "milestone"
)

// IsValidActivityType reports whether t is a persistable activity type.
func IsValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityTask, ActivityBug, ActivityMilestone:
		return true
	}
	return false
}

// TransitionNeeded reports whether moving from current to requested is a real
// status change. Any-to-any transitions are allowed; a request for the
// current status is a no-op and must not issue an update or record activity.
func TransitionNeeded[S ~string](current, requested S) bool {
	return current != requested
}
