package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"lifelevel/internal/catalog"
	"lifelevel/internal/engine"
	"lifelevel/internal/metrics"
	"lifelevel/internal/models"
	"lifelevel/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func setupServer(t *testing.T) (*Server, *engine.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := engine.NewService(context.Background(), catalog.MustLoad(), storage.NewMemoryStore(), engine.Options{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
		User:     engine.NewUserInput{Name: "Sam"},
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	logger := log.New(&bytes.Buffer{})
	return New(Config{Debug: true, Gatherer: reg}, svc, m, logger), svc
}

func httpDo(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestStateAndAreas(t *testing.T) {
	s, _ := setupServer(t)

	w := httpDo(s, "GET", "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, "Sam", st.Profile.Name)
	require.Equal(t, 1, st.OverallLevel)
	require.Zero(t, st.TotalExperience)

	w = httpDo(s, "GET", "/api/areas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var areas []areaView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &areas))
	require.NotEmpty(t, areas)
	require.Equal(t, 1, areas[0].Progress.CurrentLevel)

	w = httpDo(s, "GET", "/api/areas/no-such-area", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httpDo(s, "GET", "/api/areas/fitness/activities?filter=bogus", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httpDo(s, "GET", "/api/areas/fitness/activities?filter=all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var acts []catalog.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acts))
	require.NotEmpty(t, acts)
	for _, a := range acts {
		require.Equal(t, "fitness", a.AreaID)
	}
}

func TestCompleteActivityEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	w := httpDo(s, "POST", "/api/activities/fitness-daily-movement/complete", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp completeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "fitness-daily-movement", resp.Completion.ActivityID)
	require.Greater(t, resp.State.TotalExperience, 0)
	require.NotEmpty(t, resp.Achievements)
	require.Equal(t, "first-steps", resp.Achievements[0].ID)

	w = httpDo(s, "POST", "/api/activities/daily-mindful-moment/complete", completeRequest{})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "reflection")

	w = httpDo(s, "POST", "/api/activities/nope/complete", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httpDo(s, "GET", "/api/history?area=fitness&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist []models.ActivityCompletion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist, 1)

	w = httpDo(s, "GET", "/api/history?limit=-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteLockedActivityConflicts(t *testing.T) {
	s, svc := setupServer(t)

	w := httpDo(s, "POST", "/api/activities/faith-spiritual-mentoring/complete", completeRequest{Reflection: "r", Proof: "p"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "unlocks at level")
	require.Empty(t, svc.State().ActivityHistory)
}

func TestSkillRoutesAcceptMixedCaseArea(t *testing.T) {
	s, _ := setupServer(t)

	w := httpDo(s, "GET", "/api/areas/Fitness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = httpDo(s, "GET", "/api/areas/Fitness/skills", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestQuestEndpoints(t *testing.T) {
	s, _ := setupServer(t)

	w := httpDo(s, "POST", "/api/quests/fitness-first/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v engine.QuestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.Equal(t, models.QuestActive, v.Status)

	w = httpDo(s, "POST", "/api/quests/fitness-first/accept", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = httpDo(s, "GET", "/api/quests?status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []engine.QuestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	require.Len(t, active, 1)

	w = httpDo(s, "POST", "/api/quests/fitness-first/abandon", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(s, "GET", "/api/quests?status=whatever", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSkillUnlockEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	w := httpDo(s, "POST", "/api/areas/faith/skills/faith-1/unlock", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "not enough")

	w = httpDo(s, "GET", "/api/areas/faith/skills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []engine.SkillView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.NotEmpty(t, views)
}

func TestProfileAvatarAndPlans(t *testing.T) {
	s, svc := setupServer(t)

	w := httpDo(s, "PUT", "/api/profile/enneagram", enneagramRequest{Type: 12})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = httpDo(s, "PUT", "/api/profile/enneagram", enneagramRequest{Type: 4})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 4, svc.State().Profile.EnneagramType)

	w = httpDo(s, "GET", "/api/avatar", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = httpDo(s, "PUT", "/api/avatar", models.AvatarSettings{HairStyle: "short"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = httpDo(s, "PUT", "/api/avatar", models.AvatarSettings{SkinColor: "#f1c27d", HairStyle: "short"})
	require.Equal(t, http.StatusOK, w.Code)
	w = httpDo(s, "GET", "/api/avatar", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = httpDo(s, "POST", "/api/planned", planRequest{
		ActivityID:   "fitness-daily-movement",
		TargetDate:   testNow.Add(24 * time.Hour),
		Recurring:    true,
		Frequency:    "daily",
		Reminder:     true,
		ReminderTime: "07:30",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var p models.PlannedActivity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, models.FrequencyDaily, p.Frequency)
	require.Equal(t, "07:30", p.ReminderTime)

	w = httpDo(s, "DELETE", "/api/planned/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = httpDo(s, "DELETE", "/api/planned/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	httpDo(s, "GET", "/healthz", nil)

	w := httpDo(s, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "lifelevel_http_requests_total")
}

func TestWebSocketStreamsEvents(t *testing.T) {
	s, svc := setupServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "hello", ev.Type)

	_, err = svc.CompleteActivity(context.Background(), "fitness-daily-movement", engine.CompletionInput{})
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, string(engine.EventCompletion), ev.Type)
	var c models.ActivityCompletion
	require.NoError(t, json.Unmarshal(ev.Payload, &c))
	require.Equal(t, "fitness-daily-movement", c.ActivityID)
}
