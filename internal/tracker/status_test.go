package tracker

import "testing"

func TestIsValidTaskStatus(t *testing.T) {
	for _, s := range ValidTaskStatuses {
		if !IsValidTaskStatus(s) {
			t.Errorf("IsValidTaskStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []TaskStatus{"", "open", "DONE", "archived"} {
		if IsValidTaskStatus(s) {
			t.Errorf("IsValidTaskStatus(%q) = true, want false", s)
		}
	}
}

func TestIsValidBugStatus(t *testing.T) {
	for _, s := range []BugStatus{BugOpen, BugInProgress, BugResolved} {
		if !IsValidBugStatus(s) {
			t.Errorf("IsValidBugStatus(%q) = false, want true", s)
		}
	}
	if IsValidBugStatus("todo") {
		t.Error("task statuses must not validate as bug statuses")
	}
}

func TestIsValidSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityCritical, SeverityMedium, SeverityLow} {
		if !IsValidSeverity(s) {
			t.Errorf("IsValidSeverity(%q) = false, want true", s)
		}
	}
	if IsValidSeverity("high") {
		t.Error("severity enumeration is closed: critical, medium, low only")
	}
}

func TestTransitionNeeded(t *testing.T) {
	if TransitionNeeded(TaskTodo, TaskTodo) {
		t.Error("same-status transition must be a no-op")
	}
	if !TransitionNeeded(TaskDone, TaskTodo) {
		t.Error("done back to todo is a legal transition")
	}
	if !TransitionNeeded(BugOpen, BugResolved) {
		t.Error("open to resolved is a legal transition")
	}
}
