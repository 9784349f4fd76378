package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
)

type bugResp struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Severity      string `json:"severity"`
	Status        string `json:"status"`
	ReportedBy    string `json:"reported_by"`
	RelatedTaskID string `json:"related_task_id"`
}

func TestCreateBug_DefaultsAndReporter(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "tester@example.com", auth.RoleTester)

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{
		"title":    "it broke",
		"severity": "critical",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	bug := decodeBody[bugResp](t, w)
	require.NotEmpty(t, bug.ID)
	require.Equal(t, "open", bug.Status)
	require.Equal(t, "critical", bug.Severity)
	require.Equal(t, "Test User", bug.ReportedBy)
}

func TestCreateBug_BlankRelatedTaskStoredAsNone(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "tester@example.com", auth.RoleTester)

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{
		"title":           "loose",
		"severity":        "low",
		"related_task_id": "   ",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	bug := decodeBody[bugResp](t, w)
	w = doJSON(t, srv, "GET", "/api/bugs/"+bug.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[bugResp](t, w)
	require.Empty(t, got.RelatedTaskID)
}

func TestCreateBug_Validation(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "tester@example.com", auth.RoleTester)

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{"title": "", "severity": "low"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{"title": "x", "severity": "catastrophic"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateBugStatus_SeverityImmutable(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "tester@example.com", auth.RoleTester)

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{"title": "triage", "severity": "medium"})
	require.Equal(t, http.StatusCreated, w.Code)
	bug := decodeBody[bugResp](t, w)

	// Status moves; severity is not accepted by the route at all.
	w = doJSON(t, srv, "PATCH", "/api/bugs/"+bug.ID, token, map[string]any{
		"status":   "resolved",
		"severity": "critical",
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[bugResp](t, w)
	require.Equal(t, "resolved", got.Status)
	require.Equal(t, "medium", got.Severity)
}

func TestUpdateBugStatus_NoopSkipsActivity(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "tester@example.com", auth.RoleTester)

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{"title": "steady", "severity": "low"})
	require.Equal(t, http.StatusCreated, w.Code)
	bug := decodeBody[bugResp](t, w)

	before, err := srv.store.CountActivities()
	require.NoError(t, err)

	w = doJSON(t, srv, "PATCH", "/api/bugs/"+bug.ID, token, map[string]any{"status": "open"})
	require.Equal(t, http.StatusOK, w.Code)

	after, err := srv.store.CountActivities()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestListTaskBugs_SurviveTaskDeletion(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	task := createTask(t, srv, token, map[string]any{"title": "parent"})

	w := doJSON(t, srv, "POST", "/api/bugs", token, map[string]any{
		"title":           "linked",
		"severity":        "low",
		"related_task_id": task.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	bug := decodeBody[bugResp](t, w)

	w = doJSON(t, srv, "GET", "/api/tasks/"+task.ID+"/bugs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bugs := decodeBody[[]bugResp](t, w)
	require.Len(t, bugs, 1)

	// Deleting the task leaves the bug in place.
	w = doJSON(t, srv, "DELETE", "/api/tasks/"+task.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/api/bugs/"+bug.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
