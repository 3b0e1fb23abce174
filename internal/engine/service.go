package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"lifelevel/internal/catalog"
	"lifelevel/internal/models"
)

// Repository is the persistence port. Load returns (nil, nil) when nothing
// has been stored yet; Avatar likewise returns (nil, nil) when unset.
type Repository interface {
	Load(ctx context.Context) (*models.UserState, error)
	Save(ctx context.Context, s models.UserState) error
	Avatar(ctx context.Context) (*models.AvatarSettings, error)
	SaveAvatar(ctx context.Context, a models.AvatarSettings) error
}

type Options struct {
	Logger   *log.Logger
	Now      func() time.Time
	NewID    func() string
	Location *time.Location
	// User seeds the profile when the repository is empty.
	User NewUserInput
}

// Service owns the single in-memory UserState. Every transition runs under
// mu, is persisted, and only then becomes visible and is published.
type Service struct {
	cat  *catalog.Catalog
	repo Repository
	log  *log.Logger

	now   func() time.Time
	newID func() string
	loc   *time.Location

	mu    sync.Mutex
	state models.UserState

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func NewService(ctx context.Context, cat *catalog.Catalog, repo Repository, opts Options) (*Service, error) {
	s := &Service{
		cat:   cat,
		repo:  repo,
		log:   opts.Logger,
		now:   opts.Now,
		newID: opts.NewID,
		loc:   opts.Location,
		subs:  map[int]chan Event{},
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.loc == nil {
		s.loc = time.Local
	}

	stored, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if stored == nil {
		seed := NewUserState(cat, opts.User, s.env())
		if err := repo.Save(ctx, seed); err != nil {
			return nil, fmt.Errorf("save initial state: %w", err)
		}
		s.log.Info("created new profile", "name", seed.Profile.Name)
		s.state = seed
		return s, nil
	}
	s.state = Reconcile(*stored, cat)
	return s, nil
}

func (s *Service) Catalog() *catalog.Catalog { return s.cat }

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) env() Env {
	return Env{Now: s.now(), Location: s.loc, NewID: s.newID}
}

// State returns a copy of the current state with streaks brought up to date.
func (s *Service) State() models.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RefreshStreaks(s.state, s.now(), s.loc)
}

// commit persists next and makes it current. Callers hold mu.
func (s *Service) commit(ctx context.Context, next models.UserState) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	s.state = next
	return nil
}

func (s *Service) CompleteActivity(ctx context.Context, activityID string, in CompletionInput) (Transition, error) {
	a, err := s.cat.Activity(activityID)
	if err != nil {
		return Transition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := CompleteActivity(s.state, s.cat, a, in, s.env())
	if err != nil {
		if IsValidation(err) || IsConflict(err) {
			s.log.Warn("completion rejected", "activity", a.ID, "err", err)
		}
		return Transition{}, err
	}
	if err := s.commit(ctx, t.State); err != nil {
		return Transition{}, err
	}

	s.log.Info("activity completed", "activity", a.ID, "area", a.AreaID, "xp", a.XPReward)
	if t.LevelUp != nil {
		s.log.Info("level up", "area", t.LevelUp.AreaID, "level", t.LevelUp.NewLevel)
	}
	s.publish(transitionEvents(t, t.Completion.Date)...)
	return t, nil
}

func (s *Service) AcceptQuest(ctx context.Context, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, err := AcceptQuest(s.state, s.cat, questID, now)
	if err != nil {
		return err
	}
	// History may already satisfy the quest.
	next, done, badges := CompleteSatisfiedQuests(next, s.cat, now)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("quest accepted", "quest", questID)

	at := now.UTC()
	var evs []Event
	for _, q := range done {
		s.log.Info("quest completed", "quest", q.ID)
		evs = append(evs, Event{Type: EventQuestCompleted, At: at, Payload: q})
	}
	for _, b := range badges {
		evs = append(evs, Event{Type: EventAchievement, At: at, Payload: b})
	}
	s.publish(evs...)
	return nil
}

func (s *Service) AbandonQuest(ctx context.Context, questID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := AbandonQuest(s.state, s.cat, questID)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Info("quest abandoned", "quest", questID)
	return nil
}

func (s *Service) UnlockSkill(ctx context.Context, areaID, skillID string) (models.SkillUnlock, error) {
	tree, err := s.cat.SkillTree(areaID)
	if err != nil {
		return models.SkillUnlock{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, u, err := UnlockSkill(s.state, tree, skillID, s.now())
	if err != nil {
		return models.SkillUnlock{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return models.SkillUnlock{}, err
	}
	s.log.Info("skill unlocked", "area", areaID, "skill", skillID, "cost", u.XPSpent)
	s.publish(Event{Type: EventSkillUnlocked, At: u.UnlockedAt, Payload: u})
	return u, nil
}

func (s *Service) SetEnneagramType(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := SetEnneagramType(s.state, s.cat, n)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

func (s *Service) SetPriorityAreas(ctx context.Context, areaIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := SetPriorityAreas(s.state, s.cat, areaIDs)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

func (s *Service) PlanActivity(ctx context.Context, in PlanInput) (models.PlannedActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, p, err := PlanActivity(s.state, s.cat, in, s.env())
	if err != nil {
		return models.PlannedActivity{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return models.PlannedActivity{}, err
	}
	s.log.Debug("activity planned", "activity", p.ActivityID, "frequency", p.Frequency)
	return p, nil
}

func (s *Service) RemovePlan(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := RemovePlan(s.state, planID)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// CheckReminders fires every due reminder once and returns what fired.
func (s *Service) CheckReminders(ctx context.Context) ([]ReminderNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	due := DueReminders(s.state, now, s.loc)
	if len(due) == 0 {
		return nil, nil
	}

	var notices []ReminderNotice
	ids := make([]string, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.ID)
		a, err := s.cat.Activity(p.ActivityID)
		if err != nil {
			s.log.Warn("reminder for unknown activity", "plan", p.ID, "activity", p.ActivityID)
			continue
		}
		notices = append(notices, ReminderNotice{Plan: p, Activity: a})
	}
	if err := s.commit(ctx, MarkReminded(s.state, ids, now)); err != nil {
		return nil, err
	}

	evs := make([]Event, 0, len(notices))
	for _, n := range notices {
		evs = append(evs, Event{Type: EventReminder, At: now, Payload: n})
	}
	s.publish(evs...)
	return notices, nil
}

func (s *Service) Avatar(ctx context.Context) (*models.AvatarSettings, error) {
	return s.repo.Avatar(ctx)
}

func (s *Service) SaveAvatar(ctx context.Context, a models.AvatarSettings) error {
	if err := ValidateAvatar(a); err != nil {
		return err
	}
	return s.repo.SaveAvatar(ctx, a)
}

// Subscribe registers a listener. Events are dropped for a subscriber whose
// buffer is full. The returned func unsubscribes and closes the channel.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(evs ...Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ev := range evs {
		for id, ch := range s.subs {
			select {
			case ch <- ev:
			default:
				s.log.Debug("dropping event for slow subscriber", "subscriber", id, "type", ev.Type)
			}
		}
	}
}
