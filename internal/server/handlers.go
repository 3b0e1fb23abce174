package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lifelevel/internal/catalog"
	"lifelevel/internal/engine"
	"lifelevel/internal/models"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type stateResponse struct {
	models.UserState
	OverallLevel    int `json:"overallLevel"`
	TotalExperience int `json:"totalExperience"`
}

func newStateResponse(st models.UserState) stateResponse {
	return stateResponse{
		UserState:       st,
		OverallLevel:    engine.OverallLevel(st),
		TotalExperience: engine.TotalExperience(st),
	}
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(s.svc.State()))
}

type areaView struct {
	catalog.Area
	Progress   models.AreaProgress `json:"progress"`
	IntoLevel  int                 `json:"intoLevel"`
	LevelSpan  int                 `json:"levelSpan"`
	MaxLevel   bool                `json:"maxLevel"`
	LevelTitle string              `json:"levelTitle"`
}

func newAreaView(a catalog.Area, st models.UserState) areaView {
	v := areaView{Area: a}
	if i := st.ProgressFor(a.ID); i >= 0 {
		v.Progress = st.Progress[i]
	}
	v.IntoLevel, v.LevelSpan = engine.LevelProgress(a, v.Progress)
	v.MaxLevel = engine.IsMaxLevel(a, v.Progress)
	if info, ok := a.LevelInfo(v.Progress.CurrentLevel); ok {
		v.LevelTitle = info.Title
	}
	return v
}

func (s *Server) listAreas(c *gin.Context) {
	st := s.svc.State()
	areas := s.svc.Catalog().Areas()
	out := make([]areaView, 0, len(areas))
	for _, a := range areas {
		out = append(out, newAreaView(a, st))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getArea(c *gin.Context) {
	a, err := s.svc.Catalog().Area(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAreaView(a, s.svc.State()))
}

func (s *Server) listActivities(c *gin.Context) {
	a, err := s.svc.Catalog().Area(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	f, err := catalog.ParseActivityFilter(c.Query("filter"))
	if err != nil {
		badRequest(c, err)
		return
	}
	st := s.svc.State()
	level := 1
	if i := st.ProgressFor(a.ID); i >= 0 {
		level = st.Progress[i].CurrentLevel
	}
	out := catalog.Filter(s.svc.Catalog().ActivitiesByArea(a.ID), level, f)
	if out == nil {
		out = []catalog.Activity{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listSkills(c *gin.Context) {
	tree, err := s.svc.Catalog().SkillTree(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.SkillViews(s.svc.State(), tree))
}

func (s *Server) unlockSkill(c *gin.Context) {
	u, err := s.svc.UnlockSkill(c.Request.Context(), c.Param("id"), c.Param("skill"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type completeRequest struct {
	Reflection string `json:"reflection"`
	Proof      string `json:"proof"`
}

type completeResponse struct {
	Completion      models.ActivityCompletion `json:"completion"`
	LevelUp         *engine.LevelUpEvent      `json:"levelUp,omitempty"`
	Achievements    []models.Achievement      `json:"achievements"`
	CompletedQuests []catalog.Quest           `json:"completedQuests"`
	State           stateResponse             `json:"state"`
}

func (s *Server) completeActivity(c *gin.Context) {
	var req completeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	t, err := s.svc.CompleteActivity(c.Request.Context(), c.Param("id"), engine.CompletionInput{
		Reflection: req.Reflection,
		Proof:      req.Proof,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := completeResponse{
		Completion:      t.Completion,
		LevelUp:         t.LevelUp,
		Achievements:    t.NewAchievements,
		CompletedQuests: t.CompletedQuests,
		State:           newStateResponse(t.State),
	}
	if resp.Achievements == nil {
		resp.Achievements = []models.Achievement{}
	}
	if resp.CompletedQuests == nil {
		resp.CompletedQuests = []catalog.Quest{}
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) listHistory(c *gin.Context) {
	area := c.Query("area")
	if area != "" {
		a, err := s.svc.Catalog().Area(area)
		if err != nil {
			s.writeError(c, err)
			return
		}
		area = a.ID
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	out := engine.History(s.svc.State(), area, limit)
	if out == nil {
		out = []models.ActivityCompletion{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listDailyQuests(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Catalog().DailyQuests())
}

func (s *Server) listQuests(c *gin.Context) {
	views := engine.QuestViews(s.svc.State(), s.svc.Catalog())
	if raw := c.Query("status"); raw != "" {
		st, err := engine.ParseQuestStatus(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filtered := views[:0]
		for _, v := range views {
			if v.Status == st {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) acceptQuest(c *gin.Context) {
	if err := s.svc.AcceptQuest(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	s.writeQuest(c, c.Param("id"))
}

func (s *Server) abandonQuest(c *gin.Context) {
	if err := s.svc.AbandonQuest(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	s.writeQuest(c, c.Param("id"))
}

func (s *Server) writeQuest(c *gin.Context, id string) {
	for _, v := range engine.QuestViews(s.svc.State(), s.svc.Catalog()) {
		if v.ID == id {
			c.JSON(http.StatusOK, v)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
}

func (s *Server) listAchievements(c *gin.Context) {
	out := s.svc.State().Achievements
	if out == nil {
		out = []models.Achievement{}
	}
	c.JSON(http.StatusOK, out)
}

type enneagramRequest struct {
	Type int `json:"type"`
}

func (s *Server) setEnneagram(c *gin.Context) {
	var req enneagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.svc.SetEnneagramType(c.Request.Context(), req.Type); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.svc.State().Profile)
}

func (s *Server) listEnneagram(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Catalog().EnneagramTypes())
}

func (s *Server) getAvatar(c *gin.Context) {
	a, err := s.svc.Avatar(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "avatar not created"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) putAvatar(c *gin.Context) {
	var a models.AvatarSettings
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.svc.SaveAvatar(c.Request.Context(), a); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) listPlanned(c *gin.Context) {
	out := s.svc.State().PlannedActivities
	if out == nil {
		out = []models.PlannedActivity{}
	}
	c.JSON(http.StatusOK, out)
}

type planRequest struct {
	ActivityID   string    `json:"activityId"`
	TargetDate   time.Time `json:"targetDate"`
	Recurring    bool      `json:"recurring"`
	Frequency    string    `json:"frequency"`
	Reminder     bool      `json:"reminder"`
	ReminderTime string    `json:"reminderTime"`
}

func (s *Server) createPlanned(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var freq models.Frequency
	if req.Frequency != "" {
		f, err := engine.ParseFrequency(req.Frequency)
		if err != nil {
			badRequest(c, err)
			return
		}
		freq = f
	}
	p, err := s.svc.PlanActivity(c.Request.Context(), engine.PlanInput{
		ActivityID:   req.ActivityID,
		TargetDate:   req.TargetDate,
		Recurring:    req.Recurring,
		Frequency:    freq,
		Reminder:     req.Reminder,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) deletePlanned(c *gin.Context) {
	if err := s.svc.RemovePlan(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
