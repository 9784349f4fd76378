// Package events provides event types and publishing infrastructure for the
// project flow service.
package events

import (
	"time"
)

// EventType defines the type of event.
type EventType string

const (
	// EventTaskCreated indicates a new task was created.
	EventTaskCreated EventType = "task_created"
	// EventTaskUpdated indicates a task changed.
	EventTaskUpdated EventType = "task_updated"
	// EventTaskDeleted indicates a task was removed.
	EventTaskDeleted EventType = "task_deleted"

	// EventSubtaskCreated indicates a new subtask under a task.
	EventSubtaskCreated EventType = "subtask_created"
	// EventSubtaskUpdated indicates a subtask changed, including the
	// completed toggle that drives task progress.
	EventSubtaskUpdated EventType = "subtask_updated"
	// EventSubtaskDeleted indicates a subtask was removed.
	EventSubtaskDeleted EventType = "subtask_deleted"

	// EventBugCreated indicates a new bug report.
	EventBugCreated EventType = "bug_created"
	// EventBugUpdated indicates a bug status change.
	EventBugUpdated EventType = "bug_updated"

	// EventCommentCreated indicates a new comment on a task.
	EventCommentCreated EventType = "comment_created"

	// EventMilestoneCreated indicates a new milestone.
	EventMilestoneCreated EventType = "milestone_created"
	// EventMilestoneUpdated indicates a milestone changed.
	EventMilestoneUpdated EventType = "milestone_updated"
	// EventMilestoneDeleted indicates a milestone was removed.
	EventMilestoneDeleted EventType = "milestone_deleted"

	// EventStatsUpdated indicates a project stat was written.
	EventStatsUpdated EventType = "stats_updated"
)

// Event represents a published event. EntityID carries the id of the task,
// bug, or milestone the event concerns; subtask and comment events carry
// their parent task id so board subscribers see them.
type Event struct {
	Type     EventType `json:"type"`
	EntityID string    `json:"entity_id"`
	Data     any       `json:"data,omitempty"`
	Time     time.Time `json:"time"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, entityID string, data any) Event {
	return Event{
		Type:     eventType,
		EntityID: entityID,
		Data:     data,
		Time:     time.Now(),
	}
}
