package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
)

type subtaskResp struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type progressResp struct {
	TaskID    string `json:"task_id"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
}

func createSubtask(t *testing.T, srv *Server, token, taskID, title string) subtaskResp {
	t.Helper()
	w := doJSON(t, srv, "POST", "/api/tasks/"+taskID+"/subtasks", token, map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[subtaskResp](t, w)
}

func getProgress(t *testing.T, srv *Server, token, taskID string) progressResp {
	t.Helper()
	w := doJSON(t, srv, "GET", "/api/tasks/"+taskID+"/progress", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeBody[progressResp](t, w)
}

func TestSubtaskProgress_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)
	task := createTask(t, srv, token, map[string]any{"title": "parent"})

	// No subtasks: progress is 0, not an error.
	p := getProgress(t, srv, token, task.ID)
	require.Equal(t, 0, p.Total)
	require.Equal(t, 0, p.Progress)

	a := createSubtask(t, srv, token, task.ID, "a")
	b := createSubtask(t, srv, token, task.ID, "b")
	createSubtask(t, srv, token, task.ID, "c")

	p = getProgress(t, srv, token, task.ID)
	require.Equal(t, 3, p.Total)
	require.Equal(t, 0, p.Progress)

	// Completing 2 of 3 rounds to 67.
	for _, id := range []string{a.ID, b.ID} {
		w := doJSON(t, srv, "PATCH", "/api/subtasks/"+id, token, map[string]any{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)
	}
	p = getProgress(t, srv, token, task.ID)
	require.Equal(t, 2, p.Completed)
	require.Equal(t, 67, p.Progress)

	// Deleting a completed subtask recomputes: 1 of 2 -> 50.
	w := doJSON(t, srv, "DELETE", "/api/subtasks/"+a.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p = getProgress(t, srv, token, task.ID)
	require.Equal(t, 1, p.Completed)
	require.Equal(t, 2, p.Total)
	require.Equal(t, 50, p.Progress)
}

func TestCreateSubtask_UnknownTask(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "POST", "/api/tasks/TSK-ghost/subtasks", token, map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSubtasks(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)
	task := createTask(t, srv, token, map[string]any{"title": "parent"})

	createSubtask(t, srv, token, task.ID, "one")
	createSubtask(t, srv, token, task.ID, "two")

	w := doJSON(t, srv, "GET", "/api/tasks/"+task.ID+"/subtasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	subtasks := decodeBody[[]subtaskResp](t, w)
	require.Len(t, subtasks, 2)
}

func TestUpdateSubtask_NotFound(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "PATCH", "/api/subtasks/ST-ghost", token, map[string]any{"completed": true})
	require.Equal(t, http.StatusNotFound, w.Code)
}
