package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
	"lifelevel/internal/storage"
)

var testNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testEnv(now time.Time) Env {
	return Env{Now: now, Location: time.UTC, NewID: sequentialIDs()}
}

func newState(t *testing.T) (*catalog.Catalog, models.UserState) {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat, NewUserState(cat, NewUserInput{Name: "Sam"}, testEnv(testNow))
}

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	cat := catalog.MustLoad()
	svc, err := NewService(ctx, cat, storage.NewSQLiteStore(db), Options{
		Now:      func() time.Time { return testNow },
		NewID:    sequentialIDs(),
		Location: time.UTC,
		User:     NewUserInput{Name: "Sam"},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func setExperience(s *models.UserState, areaID string, xp int) {
	i := s.ProgressFor(areaID)
	s.Progress[i].Experience = xp
	s.Progress[i].SpendableExperience = xp
}

func TestNewUserState(t *testing.T) {
	cat, s := newState(t)
	if len(s.Progress) != len(cat.Areas()) {
		t.Fatalf("progress entries=%d, want %d", len(s.Progress), len(cat.Areas()))
	}
	for _, p := range s.Progress {
		if p.CurrentLevel != 1 || p.Experience != 0 || p.ExperienceToNextLevel != 1000 {
			t.Fatalf("unexpected seed progress: %+v", p)
		}
	}
	for _, q := range s.Quests {
		if q.Status != models.QuestAvailable {
			t.Fatalf("quest %s status=%s, want available", q.QuestID, q.Status)
		}
	}
}

func TestCompleteActivityMissingReflectionLeavesStateUntouched(t *testing.T) {
	cat, s := newState(t)
	a, err := cat.Activity("daily-mindful-moment")
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	before := s.Clone()

	tr, err := CompleteActivity(s, cat, a, CompletionInput{Reflection: "   "}, testEnv(testNow))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "reflection" {
		t.Fatalf("expected reflection field error, got %v", err)
	}
	if !reflect.DeepEqual(before, tr.State) || !reflect.DeepEqual(before, s) {
		t.Fatalf("state changed after rejected completion")
	}
}

func TestCompleteActivityRequiresProof(t *testing.T) {
	cat, s := newState(t)
	a := catalog.Activity{ID: "proofed", AreaID: "finance", XPReward: 10, RequiresProof: true}
	if _, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow)); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	tr, err := CompleteActivity(s, cat, a, CompletionInput{Proof: "receipt.png"}, testEnv(testNow))
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	if tr.Completion.Proof != "receipt.png" {
		t.Fatalf("proof=%q", tr.Completion.Proof)
	}
}

func TestCompleteActivityLevelUp(t *testing.T) {
	cat, s := newState(t)
	setExperience(&s, "fitness", 950)
	a := catalog.Activity{ID: "sprint", AreaID: "fitness", XPReward: 80, Frequency: models.FrequencyDaily}

	tr, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow))
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	p := tr.State.Progress[tr.State.ProgressFor("fitness")]
	if p.Experience != 1030 {
		t.Fatalf("Experience=%d, want 1030", p.Experience)
	}
	if p.CurrentLevel != 2 {
		t.Fatalf("CurrentLevel=%d, want 2", p.CurrentLevel)
	}
	if p.ExperienceToNextLevel != 3000 {
		t.Fatalf("ExperienceToNextLevel=%d, want 3000", p.ExperienceToNextLevel)
	}
	if tr.LevelUp == nil || tr.LevelUp.NewLevel != 2 || tr.LevelUp.XPGained != 80 || tr.LevelUp.AreaID != "fitness" {
		t.Fatalf("unexpected level up event: %+v", tr.LevelUp)
	}

	// Input state untouched.
	if got := s.Progress[s.ProgressFor("fitness")].Experience; got != 950 {
		t.Fatalf("input Experience mutated to %d", got)
	}
}

func TestCompleteActivityAddsExperienceAndAppendsHistory(t *testing.T) {
	cat, s := newState(t)
	a, err := cat.Activity("fitness-daily-movement")
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	env := testEnv(testNow)

	first, err := CompleteActivity(s, cat, a, CompletionInput{}, env)
	if err != nil {
		t.Fatalf("first completion: %v", err)
	}
	prior := append([]models.ActivityCompletion(nil), first.State.ActivityHistory...)

	second, err := CompleteActivity(first.State, cat, a, CompletionInput{}, env)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}

	if got := len(second.State.ActivityHistory); got != len(prior)+1 {
		t.Fatalf("history len=%d, want %d", got, len(prior)+1)
	}
	if !reflect.DeepEqual(prior, second.State.ActivityHistory[:len(prior)]) {
		t.Fatalf("prior history entries changed")
	}
	if first.Completion.ID == second.Completion.ID {
		t.Fatalf("completion IDs collide: %s", first.Completion.ID)
	}

	p0 := first.State.Progress[first.State.ProgressFor("fitness")]
	p1 := second.State.Progress[second.State.ProgressFor("fitness")]
	if p1.Experience != p0.Experience+a.XPReward {
		t.Fatalf("Experience=%d, want %d", p1.Experience, p0.Experience+a.XPReward)
	}
	if p1.SpendableExperience != p0.SpendableExperience+a.XPReward {
		t.Fatalf("SpendableExperience=%d, want %d", p1.SpendableExperience, p0.SpendableExperience+a.XPReward)
	}
	if second.State.Profile.Streak != 1 || p1.StreakDays != 1 {
		t.Fatalf("two completions on one day: streak=%d area streak=%d, want 1", second.State.Profile.Streak, p1.StreakDays)
	}
}

func TestCompleteActivityGainsAtMostOneLevel(t *testing.T) {
	cat, s := newState(t)
	a := catalog.Activity{ID: "windfall", AreaID: "focus", XPReward: 20000}

	tr, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow))
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	p := tr.State.Progress[tr.State.ProgressFor("focus")]
	if p.CurrentLevel != 2 {
		t.Fatalf("CurrentLevel=%d, want 2", p.CurrentLevel)
	}
}

func TestCompleteActivityAtMaxLevel(t *testing.T) {
	cat, s := newState(t)
	i := s.ProgressFor("fun")
	s.Progress[i].CurrentLevel = 5
	s.Progress[i].Experience = 16000
	s.Progress[i].ExperienceToNextLevel = 15000
	a := catalog.Activity{ID: "party", AreaID: "fun", XPReward: 100}

	tr, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow))
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	p := tr.State.Progress[i]
	if p.CurrentLevel != 5 || p.ExperienceToNextLevel != 15000 || tr.LevelUp != nil {
		t.Fatalf("max level changed: %+v levelUp=%v", p, tr.LevelUp)
	}
	if p.Experience != 16100 {
		t.Fatalf("Experience=%d, want 16100", p.Experience)
	}
}

func TestCompleteActivityUnknownArea(t *testing.T) {
	cat, s := newState(t)
	a := catalog.Activity{ID: "ghost", AreaID: "fame", XPReward: 10}
	_, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuestProgress(t *testing.T) {
	cat, s := newState(t)
	q := catalog.Quest{ID: "pair", Requirements: []catalog.Requirement{
		{Type: catalog.RequirementActivities, Count: 1, AreaID: "faith"},
		{Type: catalog.RequirementActivities, Count: 1, AreaID: "family"},
	}}
	if got := QuestProgress(s, q); got != 0 {
		t.Fatalf("progress=%d, want 0", got)
	}

	a, _ := cat.Activity("faith-daily-mindfulness")
	tr, err := CompleteActivity(s, cat, a, CompletionInput{}, testEnv(testNow))
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	if got := QuestProgress(tr.State, q); got != 50 {
		t.Fatalf("progress=%d, want 50", got)
	}

	if got := QuestProgress(s, catalog.Quest{ID: "empty"}); got != 100 {
		t.Fatalf("empty quest progress=%d, want 100", got)
	}

	three := catalog.Quest{ID: "three", Requirements: []catalog.Requirement{
		{Type: catalog.RequirementActivities, Count: 1, AreaID: "faith"},
		{Type: catalog.RequirementXP, Count: 1000, AreaID: "faith"},
		{Type: catalog.RequirementLevel, Count: 2},
	}}
	if got := QuestProgress(tr.State, three); got != 33 {
		t.Fatalf("progress=%d, want 33", got)
	}
}

func TestAcceptAndAbandonQuest(t *testing.T) {
	cat, s := newState(t)

	s1, err := AcceptQuest(s, cat, "fitness-first", testNow)
	if err != nil {
		t.Fatalf("AcceptQuest: %v", err)
	}
	if QuestStatusOf(s1, "fitness-first") != models.QuestActive {
		t.Fatalf("quest not active after accept")
	}
	if QuestStatusOf(s, "fitness-first") != models.QuestAvailable {
		t.Fatalf("input state mutated by accept")
	}

	var qe *QuestStateError
	if _, err := AcceptQuest(s1, cat, "fitness-first", testNow); !errors.As(err, &qe) {
		t.Fatalf("expected QuestStateError on double accept, got %v", err)
	}
	if _, err := AbandonQuest(s, cat, "fitness-first"); !IsConflict(err) {
		t.Fatalf("expected conflict abandoning an available quest, got %v", err)
	}
	if _, err := AcceptQuest(s, cat, "nope", testNow); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	s2, err := AbandonQuest(s1, cat, "fitness-first")
	if err != nil {
		t.Fatalf("AbandonQuest: %v", err)
	}
	if QuestStatusOf(s2, "fitness-first") != models.QuestAvailable {
		t.Fatalf("quest not available after abandon")
	}
}

func TestActiveQuestCompletesAndGrantsBadge(t *testing.T) {
	cat, s := newState(t)
	s, err := AcceptQuest(s, cat, "balanced-beginnings", testNow)
	if err != nil {
		t.Fatalf("AcceptQuest: %v", err)
	}

	env := testEnv(testNow)
	var tr Transition
	for _, area := range cat.Areas() {
		a := cat.ActivitiesByArea(area.ID)[0]
		tr, err = CompleteActivity(s, cat, a, CompletionInput{Reflection: "done", Proof: "done"}, env)
		if err != nil {
			t.Fatalf("complete %s: %v", a.ID, err)
		}
		s = tr.State
	}

	if len(tr.CompletedQuests) != 1 || tr.CompletedQuests[0].ID != "balanced-beginnings" {
		t.Fatalf("CompletedQuests=%v", tr.CompletedQuests)
	}
	i := s.QuestFor("balanced-beginnings")
	if s.Quests[i].Status != models.QuestCompleted || s.Quests[i].CompletedAt == nil {
		t.Fatalf("quest state=%+v", s.Quests[i])
	}
	if !s.HasAchievement("quest-balanced-beginnings") {
		t.Fatalf("missing quest badge")
	}
	// Completed quests are terminal.
	if _, err := AbandonQuest(s, cat, "balanced-beginnings"); !IsConflict(err) {
		t.Fatalf("expected conflict abandoning a completed quest, got %v", err)
	}
}

func TestMilestonesAwardedOnce(t *testing.T) {
	cat, s := newState(t)
	a, _ := cat.Activity("fitness-daily-movement")
	env := testEnv(testNow)

	tr, err := CompleteActivity(s, cat, a, CompletionInput{}, env)
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	found := false
	for _, ach := range tr.NewAchievements {
		if ach.ID == "first-steps" {
			found = true
		}
	}
	if !found {
		t.Fatalf("first-steps not awarded: %+v", tr.NewAchievements)
	}

	tr2, err := CompleteActivity(tr.State, cat, a, CompletionInput{}, env)
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	for _, ach := range tr2.NewAchievements {
		if ach.ID == "first-steps" {
			t.Fatalf("first-steps awarded twice")
		}
	}
}

func TestUnlockSkillRequiresPredecessors(t *testing.T) {
	cat, s := newState(t)
	tree, err := cat.SkillTree("faith")
	if err != nil {
		t.Fatalf("SkillTree: %v", err)
	}
	setExperience(&s, "faith", 10000)

	_, _, err = UnlockSkill(s, tree, "faith-5", testNow)
	var pe *PrerequisiteError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PrerequisiteError, got %v", err)
	}
	if !reflect.DeepEqual(pe.Missing, []string{"faith-1", "faith-3"}) {
		t.Fatalf("missing=%v", pe.Missing)
	}

	s, _, err = UnlockSkill(s, tree, "faith-1", testNow)
	if err != nil {
		t.Fatalf("unlock faith-1: %v", err)
	}
	if _, _, err := UnlockSkill(s, tree, "faith-5", testNow); !IsConflict(err) {
		t.Fatalf("expected conflict with faith-3 still locked, got %v", err)
	}
	s, _, err = UnlockSkill(s, tree, "faith-3", testNow)
	if err != nil {
		t.Fatalf("unlock faith-3: %v", err)
	}
	if _, _, err := UnlockSkill(s, tree, "faith-5", testNow); err != nil {
		t.Fatalf("unlock faith-5: %v", err)
	}
}

func TestUnlockSkillSpendsOnlySpendableExperience(t *testing.T) {
	cat, s := newState(t)
	tree, _ := cat.SkillTree("faith")
	setExperience(&s, "faith", 1500)
	i := s.ProgressFor("faith")
	s.Progress[i].CurrentLevel = 2
	s.Progress[i].ExperienceToNextLevel = 3000

	next, u, err := UnlockSkill(s, tree, "faith-1", testNow)
	if err != nil {
		t.Fatalf("UnlockSkill: %v", err)
	}
	p := next.Progress[i]
	if p.SpendableExperience != 1300 || u.XPSpent != 200 {
		t.Fatalf("SpendableExperience=%d spent=%d", p.SpendableExperience, u.XPSpent)
	}
	if p.Experience != 1500 || p.CurrentLevel != 2 || p.ExperienceToNextLevel != 3000 {
		t.Fatalf("level progress changed: %+v", p)
	}
	if !IsSkillUnlocked(next, tree, "faith-1") || IsSkillUnlocked(s, tree, "faith-1") {
		t.Fatalf("unlock not isolated to the new state")
	}

	if _, _, err := UnlockSkill(next, tree, "faith-1", testNow); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("expected ErrAlreadyUnlocked, got %v", err)
	}
	if _, _, err := UnlockSkill(next, tree, "faith-root", testNow); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("expected root to count as unlocked, got %v", err)
	}
}

func TestUnlockSkillInsufficientXP(t *testing.T) {
	cat, s := newState(t)
	tree, _ := cat.SkillTree("faith")
	setExperience(&s, "faith", 199)

	_, _, err := UnlockSkill(s, tree, "faith-1", testNow)
	var xe *InsufficientXPError
	if !errors.As(err, &xe) || xe.Required != 200 || xe.Available != 199 {
		t.Fatalf("expected InsufficientXPError, got %v", err)
	}
}

func TestCalculateStreak(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }

	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"empty", nil, 0},
		{"today only", []time.Time{day(15, 9)}, 1},
		{"same day twice", []time.Time{day(15, 9), day(15, 17)}, 1},
		{"three consecutive", []time.Time{day(13, 8), day(14, 8), day(15, 8)}, 3},
		{"ending yesterday", []time.Time{day(13, 8), day(14, 8)}, 2},
		{"gap resets", []time.Time{day(11, 8), day(12, 8), day(14, 8), day(15, 8)}, 2},
		{"stale", []time.Time{day(12, 8), day(13, 8)}, 0},
		{"unordered", []time.Time{day(15, 8), day(13, 8), day(14, 8)}, 3},
	}
	for _, tc := range cases {
		if got := CalculateStreak(tc.dates, testNow, time.UTC); got != tc.want {
			t.Fatalf("%s: CalculateStreak=%d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestCalculateStreakUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 15th is still the 14th at UTC-5.
	dates := []time.Time{time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC)}
	now := time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)
	if got := CalculateStreak(dates, now, loc); got != 0 {
		t.Fatalf("streak=%d, want 0", got)
	}
	if got := CalculateStreak(dates, now, time.UTC); got != 1 {
		t.Fatalf("streak=%d, want 1", got)
	}
}

func TestOverallLevelAndAttention(t *testing.T) {
	_, s := newState(t)
	s.Progress[s.ProgressFor("faith")].CurrentLevel = 3
	s.Progress[s.ProgressFor("fitness")].CurrentLevel = 4
	if got := OverallLevel(s); got != 1 {
		t.Fatalf("OverallLevel=%d, want 1", got)
	}

	setExperience(&s, "family", 900)
	order := AreasNeedingAttention(s)
	if order[len(order)-1].AreaID != "fitness" {
		t.Fatalf("last=%s, want fitness", order[len(order)-1].AreaID)
	}
	if order[4].AreaID != "family" {
		t.Fatalf("family should be the most advanced level-1 area, got order %v", order)
	}
}

func TestDueReminders(t *testing.T) {
	cat, s := newState(t)
	env := testEnv(testNow)

	s, daily, err := PlanActivity(s, cat, PlanInput{
		ActivityID:   "fitness-daily-movement",
		TargetDate:   testNow.AddDate(0, 0, -3),
		Recurring:    true,
		Frequency:    models.FrequencyDaily,
		Reminder:     true,
		ReminderTime: "07:00",
	}, env)
	if err != nil {
		t.Fatalf("PlanActivity: %v", err)
	}
	s, later, err := PlanActivity(s, cat, PlanInput{
		ActivityID:   "fitness-daily-movement",
		TargetDate:   testNow,
		Reminder:     true,
		ReminderTime: "21:00",
	}, env)
	if err != nil {
		t.Fatalf("PlanActivity: %v", err)
	}

	due := DueReminders(s, testNow, time.UTC)
	if len(due) != 1 || due[0].ID != daily.ID {
		t.Fatalf("due=%v, want only %s", due, daily.ID)
	}

	s = MarkReminded(s, []string{daily.ID}, testNow)
	if due := DueReminders(s, testNow, time.UTC); len(due) != 0 {
		t.Fatalf("reminder fired twice in one period: %v", due)
	}

	tomorrow := testNow.Add(14 * time.Hour)
	due = DueReminders(s, tomorrow, time.UTC)
	if len(due) != 2 {
		t.Fatalf("due tomorrow=%d, want 2 (%s, %s)", len(due), daily.ID, later.ID)
	}

	if _, _, err := PlanActivity(s, cat, PlanInput{ActivityID: "fitness-daily-movement", Reminder: true, ReminderTime: "25:99"}, env); !IsValidation(err) {
		t.Fatalf("expected validation error for bad time, got %v", err)
	}
	if _, _, err := PlanActivity(s, cat, PlanInput{ActivityID: "nope"}, env); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseEnneagramType(t *testing.T) {
	for in, want := range map[string]int{"1": 1, " 9 ": 9, "type 4": 4} {
		got, err := ParseEnneagramType(in)
		if err != nil || got != want {
			t.Fatalf("ParseEnneagramType(%q)=%d,%v want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"0", "10", "x"} {
		if _, err := ParseEnneagramType(in); !IsValidation(err) {
			t.Fatalf("ParseEnneagramType(%q) expected validation error", in)
		}
	}
}

func TestServicePersistsAndPublishes(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	events, cancel := svc.Subscribe(8)
	defer cancel()

	if err := svc.AcceptQuest(ctx, "fitness-first"); err != nil {
		t.Fatalf("AcceptQuest: %v", err)
	}
	tr, err := svc.CompleteActivity(ctx, "fitness-daily-movement", CompletionInput{})
	if err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}

	ev := <-events
	if ev.Type != EventCompletion {
		t.Fatalf("first event=%s, want completion", ev.Type)
	}
	if c, ok := ev.Payload.(models.ActivityCompletion); !ok || c.ID != tr.Completion.ID {
		t.Fatalf("unexpected payload %#v", ev.Payload)
	}

	st := svc.State()
	if len(st.ActivityHistory) != 1 || QuestStatusOf(st, "fitness-first") != models.QuestActive {
		t.Fatalf("unexpected state after completion: %+v", st.Quests)
	}

	if _, err := svc.CompleteActivity(ctx, "no-such-activity", CompletionInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.CompleteActivity(ctx, "daily-mindful-moment", CompletionInput{}); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := len(svc.State().ActivityHistory); got != 1 {
		t.Fatalf("history len=%d after rejected completions, want 1", got)
	}
}

type failingRepo struct {
	storage.MemoryStore
	fail bool
}

func (r *failingRepo) Save(ctx context.Context, s models.UserState) error {
	if r.fail {
		return errors.New("disk full")
	}
	return r.MemoryStore.Save(ctx, s)
}

func TestServiceDoesNotAdvanceWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{}
	svc, err := NewService(ctx, catalog.MustLoad(), repo, Options{Now: func() time.Time { return testNow }, Location: time.UTC})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	repo.fail = true
	if _, err := svc.CompleteActivity(ctx, "fitness-daily-movement", CompletionInput{}); err == nil {
		t.Fatalf("expected save error")
	}
	if got := len(svc.State().ActivityHistory); got != 0 {
		t.Fatalf("history len=%d, want 0", got)
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	events, cancel := svc.Subscribe(1)
	defer cancel()

	for i := 0; i < 3; i++ {
		if _, err := svc.CompleteActivity(ctx, "fitness-daily-movement", CompletionInput{}); err != nil {
			t.Fatalf("CompleteActivity: %v", err)
		}
	}
	if got := len(events); got != 1 {
		t.Fatalf("buffered events=%d, want 1", got)
	}
}

func TestServiceReloadsState(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "reload.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	opts := Options{Now: func() time.Time { return testNow }, Location: time.UTC}
	svc, err := NewService(ctx, catalog.MustLoad(), storage.NewSQLiteStore(db), opts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.CompleteActivity(ctx, "finance-expense-tracking", CompletionInput{Reflection: "ok", Proof: "ok"}); err != nil {
		t.Fatalf("CompleteActivity: %v", err)
	}
	if err := svc.SetEnneagramType(ctx, 4); err != nil {
		t.Fatalf("SetEnneagramType: %v", err)
	}

	again, err := NewService(ctx, catalog.MustLoad(), storage.NewSQLiteStore(db), opts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	a, b := svc.State(), again.State()
	if len(b.ActivityHistory) != 1 || b.Profile.EnneagramType != 4 {
		t.Fatalf("reloaded state: history=%d enneagram=%d", len(b.ActivityHistory), b.Profile.EnneagramType)
	}
	if a.Progress[a.ProgressFor("finance")].Experience != b.Progress[b.ProgressFor("finance")].Experience {
		t.Fatalf("finance experience not persisted")
	}
}

func TestCompleteActivityRejectsLockedActivity(t *testing.T) {
	cat, s := newState(t)
	a, err := cat.Activity("faith-spiritual-mentoring")
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if a.Level <= 1 {
		t.Fatalf("expected a higher-level activity, got level %d", a.Level)
	}

	tr, err := CompleteActivity(s, cat, a, CompletionInput{Reflection: "r", Proof: "p"}, testEnv(testNow))
	var le *LockedActivityError
	if !errors.As(err, &le) {
		t.Fatalf("expected LockedActivityError, got %v", err)
	}
	if le.Required != a.Level || le.CurrentLevel != 1 || !IsConflict(err) {
		t.Fatalf("unexpected error %+v", le)
	}
	if len(tr.State.ActivityHistory) != 0 || tr.State.Progress[tr.State.ProgressFor("faith")].Experience != 0 {
		t.Fatalf("state advanced on a locked activity")
	}

	i := s.ProgressFor("faith")
	s.Progress[i].CurrentLevel = a.Level
	if _, err := CompleteActivity(s, cat, a, CompletionInput{Reflection: "r", Proof: "p"}, testEnv(testNow)); err != nil {
		t.Fatalf("CompleteActivity at level %d: %v", a.Level, err)
	}
}

func TestServiceAcceptCompletesSatisfiedQuest(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(ctx, catalog.MustLoad(), storage.NewMemoryStore(), Options{
		Now:      func() time.Time { return testNow },
		NewID:    sequentialIDs(),
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	cat := svc.Catalog()
	for _, area := range cat.Areas() {
		a := cat.ActivitiesByArea(area.ID)[0]
		if _, err := svc.CompleteActivity(ctx, a.ID, CompletionInput{Reflection: "done", Proof: "done"}); err != nil {
			t.Fatalf("complete %s: %v", a.ID, err)
		}
	}

	events, cancel := svc.Subscribe(8)
	defer cancel()
	if err := svc.AcceptQuest(ctx, "balanced-beginnings"); err != nil {
		t.Fatalf("AcceptQuest: %v", err)
	}

	st := svc.State()
	if got := QuestStatusOf(st, "balanced-beginnings"); got != models.QuestCompleted {
		t.Fatalf("status=%s, want completed", got)
	}
	if !st.HasAchievement("quest-balanced-beginnings") {
		t.Fatalf("missing quest badge")
	}
	ev := <-events
	if ev.Type != EventQuestCompleted {
		t.Fatalf("event=%s, want quest_completed", ev.Type)
	}
	if q, ok := ev.Payload.(catalog.Quest); !ok || q.ID != "balanced-beginnings" {
		t.Fatalf("unexpected payload %#v", ev.Payload)
	}
}
