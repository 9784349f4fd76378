package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
)

type milestoneResp struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	DueDate  string `json:"due_date"`
}

func TestMilestones_CRUD(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "POST", "/api/milestones", token, map[string]any{
		"title":    "Beta release",
		"status":   "planned",
		"progress": 0,
		"due_date": dateOffset(30),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ms := decodeBody[milestoneResp](t, w)
	require.NotEmpty(t, ms.ID)
	require.Equal(t, "planned", ms.Status)

	w = doJSON(t, srv, "PUT", "/api/milestones/"+ms.ID, token, map[string]any{
		"status":   "in_progress",
		"progress": 40,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[milestoneResp](t, w)
	require.Equal(t, "in_progress", updated.Status)
	require.Equal(t, 40, updated.Progress)
	require.Equal(t, "Beta release", updated.Title)

	w = doJSON(t, srv, "GET", "/api/milestones", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]milestoneResp](t, w)
	require.Len(t, list, 1)

	w = doJSON(t, srv, "DELETE", "/api/milestones/"+ms.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/api/milestones/"+ms.ID, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMilestones_Validation(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty title", map[string]any{"title": ""}},
		{"bad status", map[string]any{"title": "m", "status": "shipped"}},
		{"progress over 100", map[string]any{"title": "m", "progress": 150}},
		{"negative progress", map[string]any{"title": "m", "progress": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, srv, "POST", "/api/milestones", token, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMilestones_UpdateRecordsActivity(t *testing.T) {
	srv := newTestServer(t)
	token := signUp(t, srv, "dev@example.com", auth.RoleDeveloper)

	w := doJSON(t, srv, "POST", "/api/milestones", token, map[string]any{"title": "M1"})
	require.Equal(t, http.StatusCreated, w.Code)
	ms := decodeBody[milestoneResp](t, w)

	before, err := srv.store.CountActivities()
	require.NoError(t, err)

	w = doJSON(t, srv, "PUT", "/api/milestones/"+ms.ID, token, map[string]any{"progress": 10})
	require.Equal(t, http.StatusOK, w.Code)

	after, err := srv.store.CountActivities()
	require.NoError(t, err)
	require.Equal(t, before+1, after)
}
