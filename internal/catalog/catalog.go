package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"lifelevel/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed quests.yaml
var questsYAML []byte

//go:embed skills.yaml
var skillsYAML []byte

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = errors.New("not found")

type Level struct {
	Level        int      `yaml:"level" json:"level"`
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description"`
	Requirements []string `yaml:"requirements" json:"requirements"`
	Benefits     []string `yaml:"benefits" json:"benefits"`
	XPRequired   int      `yaml:"xp_required" json:"xpRequired"`
}

type Area struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Icon        string  `yaml:"icon" json:"icon"`
	Levels      []Level `yaml:"levels" json:"levels"`
}

// MaxLevel is the number of levels in the area's table.
func (a Area) MaxLevel() int { return len(a.Levels) }

// LevelInfo returns the definition of a 1-based level.
func (a Area) LevelInfo(level int) (Level, bool) {
	if level < 1 || level > len(a.Levels) {
		return Level{}, false
	}
	return a.Levels[level-1], true
}

type Activity struct {
	ID                 string           `yaml:"id" json:"id"`
	AreaID             string           `yaml:"area" json:"areaId"`
	Name               string           `yaml:"name" json:"name"`
	Description        string           `yaml:"description" json:"description"`
	XPReward           int              `yaml:"xp_reward" json:"xpReward"`
	Frequency          models.Frequency `yaml:"frequency" json:"frequency"`
	Duration           int              `yaml:"duration" json:"duration"`
	RequiresProof      bool             `yaml:"requires_proof" json:"requiresProof"`
	RequiresReflection bool             `yaml:"requires_reflection" json:"requiresReflection"`
	Level              int              `yaml:"level" json:"level"`
	Tags               []string         `yaml:"tags" json:"tags"`
}

type RequirementType string

const (
	RequirementActivities RequirementType = "activities"
	RequirementXP         RequirementType = "xp"
	RequirementLevel      RequirementType = "level"
)

func (t RequirementType) IsValid() bool {
	switch t {
	case RequirementActivities, RequirementXP, RequirementLevel:
		return true
	default:
		return false
	}
}

type Requirement struct {
	Type   RequirementType `yaml:"type" json:"type"`
	Count  int             `yaml:"count" json:"count"`
	AreaID string          `yaml:"area" json:"areaId,omitempty"`
}

// Description renders the requirement for display.
func (r Requirement) Description() string {
	scope := ""
	if r.AreaID != "" {
		scope = " in " + r.AreaID
	}
	switch r.Type {
	case RequirementActivities:
		return fmt.Sprintf("Complete %d activities%s", r.Count, scope)
	case RequirementXP:
		return fmt.Sprintf("Earn %d XP%s", r.Count, scope)
	case RequirementLevel:
		if scope == "" {
			scope = " in every area"
		}
		return fmt.Sprintf("Reach level %d%s", r.Count, scope)
	default:
		return string(r.Type)
	}
}

type Reward struct {
	XP    int    `yaml:"xp" json:"xp"`
	Badge string `yaml:"badge" json:"badge,omitempty"`
}

type Quest struct {
	ID           string        `yaml:"id" json:"id"`
	Title        string        `yaml:"title" json:"title"`
	Description  string        `yaml:"description" json:"description"`
	Difficulty   string        `yaml:"difficulty" json:"difficulty"`
	DurationDays int           `yaml:"duration_days" json:"durationDays"`
	Areas        []string      `yaml:"areas" json:"areas"`
	Requirements []Requirement `yaml:"requirements" json:"requirements"`
	Reward       Reward        `yaml:"reward" json:"reward"`
}

type EnneagramType struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type document struct {
	Areas       []Area          `yaml:"areas"`
	Activities  []Activity      `yaml:"activities"`
	Quests      []Quest         `yaml:"quests"`
	DailyQuests []Activity      `yaml:"daily_quests"`
	Enneagram   []EnneagramType `yaml:"enneagram"`
	SkillTrees  []skillTreeDoc  `yaml:"skill_trees"`
}

// Catalog is the read-only reference data. It is safe for concurrent use
// because nothing mutates it after Load.
type Catalog struct {
	areas       []Area
	activities  []Activity
	quests      []Quest
	dailyQuests []Activity
	enneagram   []EnneagramType
	trees       map[string]SkillTree

	areaIdx     map[string]int
	activityIdx map[string]int
	questIdx    map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var doc document
	for _, src := range []struct {
		name string
		data []byte
	}{
		{"catalog.yaml", catalogYAML},
		{"quests.yaml", questsYAML},
		{"skills.yaml", skillsYAML},
	} {
		if err := yaml.Unmarshal(src.data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.name, err)
		}
	}
	return build(doc)
}

// MustLoad is Load for callers that treat a broken embedded catalog as a
// programming error.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		areas:       doc.Areas,
		activities:  doc.Activities,
		quests:      doc.Quests,
		dailyQuests: doc.DailyQuests,
		enneagram:   doc.Enneagram,
		areaIdx:     map[string]int{},
		activityIdx: map[string]int{},
		questIdx:    map[string]int{},
	}

	for i, a := range c.areas {
		if len(a.Levels) == 0 {
			return nil, fmt.Errorf("area %s has no levels", a.ID)
		}
		for j, l := range a.Levels {
			if l.Level != j+1 {
				return nil, fmt.Errorf("area %s: level %d out of order", a.ID, l.Level)
			}
			if j > 0 && l.XPRequired <= a.Levels[j-1].XPRequired {
				return nil, fmt.Errorf("area %s: level %d threshold not increasing", a.ID, l.Level)
			}
		}
		if _, dup := c.areaIdx[a.ID]; dup {
			return nil, fmt.Errorf("duplicate area %s", a.ID)
		}
		c.areaIdx[a.ID] = i
	}

	for i, a := range append(append([]Activity(nil), c.activities...), c.dailyQuests...) {
		if _, ok := c.areaIdx[a.AreaID]; !ok {
			return nil, fmt.Errorf("activity %s: unknown area %q", a.ID, a.AreaID)
		}
		if !a.Frequency.IsValid() {
			return nil, fmt.Errorf("activity %s: invalid frequency %q", a.ID, a.Frequency)
		}
		if _, dup := c.activityIdx[a.ID]; dup {
			return nil, fmt.Errorf("duplicate activity %s", a.ID)
		}
		c.activityIdx[a.ID] = i
	}

	for i, q := range c.quests {
		for _, r := range q.Requirements {
			if !r.Type.IsValid() {
				return nil, fmt.Errorf("quest %s: invalid requirement type %q", q.ID, r.Type)
			}
			if r.AreaID != "" {
				if _, ok := c.areaIdx[r.AreaID]; !ok {
					return nil, fmt.Errorf("quest %s: unknown area %q", q.ID, r.AreaID)
				}
			}
		}
		c.questIdx[q.ID] = i
	}

	trees, err := buildSkillTrees(c.areas, doc.SkillTrees)
	if err != nil {
		return nil, err
	}
	c.trees = trees
	return c, nil
}

func (c *Catalog) Areas() []Area { return c.areas }

func (c *Catalog) Area(id string) (Area, error) {
	i, ok := c.areaIdx[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Area{}, fmt.Errorf("area %q: %w", id, ErrNotFound)
	}
	return c.areas[i], nil
}

// Activity looks up catalog activities and daily quests.
func (c *Catalog) Activity(id string) (Activity, error) {
	i, ok := c.activityIdx[strings.TrimSpace(id)]
	if !ok {
		return Activity{}, fmt.Errorf("activity %q: %w", id, ErrNotFound)
	}
	if i < len(c.activities) {
		return c.activities[i], nil
	}
	return c.dailyQuests[i-len(c.activities)], nil
}

func (c *Catalog) Activities() []Activity { return c.activities }

func (c *Catalog) ActivitiesByArea(areaID string) []Activity {
	var out []Activity
	for _, a := range c.activities {
		if a.AreaID == areaID {
			out = append(out, a)
		}
	}
	return out
}

func (c *Catalog) DailyQuests() []Activity { return c.dailyQuests }

func (c *Catalog) Quests() []Quest { return c.quests }

func (c *Catalog) Quest(id string) (Quest, error) {
	i, ok := c.questIdx[strings.TrimSpace(id)]
	if !ok {
		return Quest{}, fmt.Errorf("quest %q: %w", id, ErrNotFound)
	}
	return c.quests[i], nil
}

func (c *Catalog) EnneagramTypes() []EnneagramType { return c.enneagram }

func (c *Catalog) EnneagramType(id int) (EnneagramType, error) {
	for _, t := range c.enneagram {
		if t.ID == id {
			return t, nil
		}
	}
	return EnneagramType{}, fmt.Errorf("enneagram type %d: %w", id, ErrNotFound)
}

func (c *Catalog) SkillTree(areaID string) (SkillTree, error) {
	t, ok := c.trees[strings.ToLower(strings.TrimSpace(areaID))]
	if !ok {
		return SkillTree{}, fmt.Errorf("skill tree %q: %w", areaID, ErrNotFound)
	}
	return t, nil
}
