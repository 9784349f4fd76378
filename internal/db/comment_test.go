package db

import "testing"

func TestStore_CreateAndListComments(t *testing.T) {
	store := NewTestStore(t)

	task := &Task{Title: "discussed"}
	if err := store.CreateTask(task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	first := &Comment{TaskID: task.ID, Content: "first note", UserName: "Ada"}
	second := &Comment{TaskID: task.ID, Content: "with picture", UserName: "Grace", ImageURL: "/uploads/comments/x/1-shot.png"}
	for _, c := range []*Comment{first, second} {
		if err := store.CreateComment(c); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}

	comments, err := store.ListComments(task.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("len(comments) = %d, want 2", len(comments))
	}
	var withImage int
	for _, c := range comments {
		if c.ImageURL != "" {
			withImage++
		}
	}
	if withImage != 1 {
		t.Errorf("comments with image = %d, want 1", withImage)
	}
}

func TestStore_ListComments_ScopedToTask(t *testing.T) {
	store := NewTestStore(t)

	a := &Task{Title: "a"}
	b := &Task{Title: "b"}
	for _, task := range []*Task{a, b} {
		if err := store.CreateTask(task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}

	if err := store.CreateComment(&Comment{TaskID: a.ID, Content: "on a", UserName: "Ada"}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	comments, err := store.ListComments(b.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments leaked across tasks: %d", len(comments))
	}
}
