package catalog

import (
	"fmt"
	"strings"
)

type Skill struct {
	ID            string   `yaml:"id" json:"id"`
	AreaID        string   `yaml:"-" json:"areaId"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	XPCost        int      `yaml:"xp_cost" json:"xpCost"`
	Icon          string   `yaml:"icon" json:"icon"`
	Connections   []string `yaml:"connections" json:"connections"`
	Root          bool     `yaml:"-" json:"root"`
	SpecialEffect string   `yaml:"special_effect" json:"specialEffect,omitempty"`
}

type skillTreeDoc struct {
	Area   string  `yaml:"area"`
	Skills []Skill `yaml:"skills"`
}

// SkillTree is a fixed per-area graph. Edges point from a skill to the
// skills it leads to.
type SkillTree struct {
	AreaID string  `json:"areaId"`
	Skills []Skill `json:"skills"`
}

func (t SkillTree) Skill(id string) (Skill, bool) {
	for _, s := range t.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

func (t SkillTree) Root() Skill {
	for _, s := range t.Skills {
		if s.Root {
			return s
		}
	}
	return Skill{}
}

// Predecessors returns the skills with a direct edge into id.
func (t SkillTree) Predecessors(id string) []Skill {
	var out []Skill
	for _, s := range t.Skills {
		for _, c := range s.Connections {
			if c == id {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

const templateTree = "template"

func buildSkillTrees(areas []Area, docs []skillTreeDoc) (map[string]SkillTree, error) {
	byArea := map[string][]Skill{}
	for _, d := range docs {
		byArea[d.Area] = d.Skills
	}
	tmpl, ok := byArea[templateTree]
	if !ok {
		return nil, fmt.Errorf("skill trees: missing %q tree", templateTree)
	}

	trees := make(map[string]SkillTree, len(areas))
	for _, area := range areas {
		src, bespoke := byArea[area.ID]
		if !bespoke {
			src = tmpl
		}
		r := strings.NewReplacer("{area}", area.ID, "{area_lower}", strings.ToLower(area.Name))

		root := Skill{
			ID:          area.ID + "-root",
			AreaID:      area.ID,
			Name:        area.Name + " Basics",
			Description: fmt.Sprintf("Fundamental understanding of %s.", strings.ToLower(area.Name)),
			Icon:        area.Icon,
			Root:        true,
		}
		skills := []Skill{root}
		for _, s := range src {
			s.ID = r.Replace(s.ID)
			s.AreaID = area.ID
			s.Description = r.Replace(s.Description)
			conns := make([]string, len(s.Connections))
			for i, c := range s.Connections {
				conns[i] = r.Replace(c)
			}
			s.Connections = conns
			skills = append(skills, s)
		}
		// The root leads to the first three nodes.
		for i := 1; i <= 3 && i < len(skills); i++ {
			skills[0].Connections = append(skills[0].Connections, skills[i].ID)
		}

		tree := SkillTree{AreaID: area.ID, Skills: skills}
		for _, s := range skills {
			for _, c := range s.Connections {
				if _, ok := tree.Skill(c); !ok {
					return nil, fmt.Errorf("skill tree %s: %s connects to unknown %s", area.ID, s.ID, c)
				}
			}
		}
		trees[area.ID] = tree
	}
	return trees, nil
}
