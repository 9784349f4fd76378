package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
)

type taskResp struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	AssignedTo    string `json:"assigned_to"`
	DueDate       string `json:"due_date"`
	Urgency       string `json:"urgency"`
	DaysRemaining *int   `json:"days_remaining"`
	Progress      int    `json:"progress"`
}

func createTask(t *testing.T, srv *Server, token string, body map[string]any) taskResp {
	t.Helper()
	w := doJSON(t, srv, "POST", "/api/tasks", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[taskResp](t, w)
}

func TestCreateTask_RoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	created := createTask(t, srv, token, map[string]any{"title": "T", "status": "todo"})
	require.NotEmpty(t, created.ID)
	require.Equal(t, "T", created.Title)
	require.Equal(t, "todo", created.Status)

	w := doJSON(t, srv, "GET", "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[taskResp](t, w)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "T", got.Title)
	require.Equal(t, "todo", got.Status)
}

func TestCreateTask_RoleGate(t *testing.T) {
	srv := newTestServer(t)

	// pm and developer may create tasks; tester and analyst may not.
	for role, want := range map[auth.Role]int{
		auth.RolePM:        http.StatusCreated,
		auth.RoleDeveloper: http.StatusCreated,
		auth.RoleTester:    http.StatusForbidden,
		auth.RoleAnalyst:   http.StatusForbidden,
	} {
		token := signUp(t, srv, string(role)+"@example.com", role)
		w := doJSON(t, srv, "POST", "/api/tasks", token, map[string]any{"title": "by " + string(role)})
		require.Equal(t, want, w.Code, "role %s", role)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "POST", "/api/tasks", token, map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, "POST", "/api/tasks", token, map[string]any{"title": "x", "status": "blocked"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, "POST", "/api/tasks", token, map[string]any{"title": "x", "due_date": "next tuesday"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasks_OrderAndUrgency(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	createTask(t, srv, token, map[string]any{"title": "no due"})
	createTask(t, srv, token, map[string]any{"title": "tomorrow", "due_date": dateOffset(1)})
	createTask(t, srv, token, map[string]any{"title": "next month", "due_date": dateOffset(30)})
	createTask(t, srv, token, map[string]any{"title": "late", "due_date": dateOffset(-3)})

	w := doJSON(t, srv, "GET", "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeBody[[]taskResp](t, w)
	require.Len(t, tasks, 4)

	// Due-date ascending, no due date last.
	require.Equal(t, "late", tasks[0].Title)
	require.Equal(t, "tomorrow", tasks[1].Title)
	require.Equal(t, "next month", tasks[2].Title)
	require.Equal(t, "no due", tasks[3].Title)

	require.Equal(t, "overdue", tasks[0].Urgency)
	require.Equal(t, "imminent", tasks[1].Urgency)
	require.Equal(t, "distant", tasks[2].Urgency)
	require.Equal(t, "none", tasks[3].Urgency)
	require.Nil(t, tasks[3].DaysRemaining)
}

func TestUpdateTask_StatusNoopSkipsActivity(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	created := createTask(t, srv, token, map[string]any{"title": "T", "status": "todo"})
	before, err := srv.store.CountActivities()
	require.NoError(t, err)

	// Same status: no update, no activity.
	w := doJSON(t, srv, "PATCH", "/api/tasks/"+created.ID, token, map[string]any{"status": "todo"})
	require.Equal(t, http.StatusOK, w.Code)
	after, err := srv.store.CountActivities()
	require.NoError(t, err)
	require.Equal(t, before, after)

	// Real transition: activity recorded.
	w = doJSON(t, srv, "PATCH", "/api/tasks/"+created.ID, token, map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[taskResp](t, w)
	require.Equal(t, "in_progress", got.Status)

	after, err = srv.store.CountActivities()
	require.NoError(t, err)
	require.Equal(t, before+1, after)
}

func TestUpdateTask_SequentialStatusWrites(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	created := createTask(t, srv, token, map[string]any{"title": "race"})

	for _, status := range []string{"in_progress", "done"} {
		w := doJSON(t, srv, "PATCH", "/api/tasks/"+created.ID, token, map[string]any{"status": status})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, srv, "GET", "/api/tasks/"+created.ID, token, nil)
	got := decodeBody[taskResp](t, w)
	require.Equal(t, "done", got.Status)
}

func TestUpdateTask_NotFound(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "PATCH", "/api/tasks/TSK-ghost", token, map[string]any{"status": "done"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTask(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	created := createTask(t, srv, token, map[string]any{"title": "doomed"})

	w := doJSON(t, srv, "DELETE", "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, "DELETE", "/api/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
