package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lifelevel/internal/catalog"
	"lifelevel/internal/engine"
	"lifelevel/internal/models"
	"lifelevel/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	state      models.UserState
	area       int
	activities []catalog.Activity
	selected   int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	state models.UserState
}

type completedMsg struct {
	activity catalog.Activity
	res      engine.Transition
	err      error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{state: m.svc.State()}
	}
}

func (m boardModel) completeCmd(a catalog.Activity) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteActivity(m.ctx, a.ID, engine.CompletionInput{})
		return completedMsg{activity: a, res: res, err: err}
	}
}

func (m boardModel) areas() []catalog.Area {
	return m.svc.Catalog().Areas()
}

func (m boardModel) currentArea() catalog.Area {
	return m.areas()[m.area]
}

func (m boardModel) levelOf(areaID string) int {
	if i := m.state.ProgressFor(areaID); i >= 0 {
		return m.state.Progress[i].CurrentLevel
	}
	return 1
}

// refreshActivities lists what can be done now in the selected area.
func (m *boardModel) refreshActivities() {
	a := m.currentArea()
	m.activities = catalog.Filter(m.svc.Catalog().ActivitiesByArea(a.ID), m.levelOf(a.ID), catalog.FilterAvailable)
	if m.selected >= len(m.activities) {
		m.selected = len(m.activities) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.state = msg.state
		m.refreshActivities()
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completionLog(msg.activity, msg.res)
		m.state = msg.res.State
		m.refreshActivities()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
			return m, m.loadCmd()
		case "tab", "right", "l":
			m.area = (m.area + 1) % len(m.areas())
			m.selected = 0
			m.refreshActivities()
			return m, nil
		case "shift+tab", "left", "h":
			m.area = (m.area + len(m.areas()) - 1) % len(m.areas())
			m.selected = 0
			m.refreshActivities()
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.activities)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < 0 || m.selected >= len(m.activities) {
				return m, nil
			}
			a := m.activities[m.selected]
			if a.RequiresReflection || a.RequiresProof {
				m.lastLog = fmt.Sprintf("%s needs a reflection or proof: use `ll do %s`.", a.Name, a.ID)
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %s…", a.Name)
			return m, m.completeCmd(a)
		}
	}
	return m, nil
}

func completionLog(a catalog.Activity, t engine.Transition) string {
	parts := []string{fmt.Sprintf("%s %s: +%d XP", ui.IconDone, a.Name, t.Completion.ExperienceGained)}
	if t.LevelUp != nil {
		parts = append(parts, fmt.Sprintf("%s %s level %d (%s)", ui.BadgeLevelUp, t.LevelUp.AreaName, t.LevelUp.NewLevel, t.LevelUp.Title))
	}
	for _, q := range t.CompletedQuests {
		parts = append(parts, ui.IconScroll+" quest complete: "+q.Title)
	}
	for _, ach := range t.NewAchievements {
		parts = append(parts, ui.IconTrophy+" "+ach.Name)
	}
	return strings.Join(parts, " | ")
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 34
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "LifeLevel | loading…"
	}
	p := m.state.Profile
	return fmt.Sprintf("LifeLevel | %s | Overall level %d | %d XP | %s %d day streak",
		p.Name, engine.OverallLevel(m.state), engine.TotalExperience(m.state), ui.IconFire, p.Streak)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Areas"}
	for i, a := range m.areas() {
		cursor := "  "
		if i == m.area {
			cursor = "> "
		}
		lines = append(lines, cursor+m.renderArea(a))
	}
	lines = append(lines, "", "Active quests")
	active := 0
	for _, v := range engine.QuestViews(m.state, m.svc.Catalog()) {
		if v.Status != models.QuestActive {
			continue
		}
		active++
		lines = append(lines, fmt.Sprintf("- %s %d%%", v.Title, v.Progress))
	}
	if active == 0 {
		lines = append(lines, "(none)")
	}
	lines = append(lines,
		"",
		"Keys",
		"- tab/←/→: switch area",
		"- ↑/↓ or j/k: move",
		"- c/space/enter: complete",
		"- r: refresh",
		"- q: quit",
	)
	return strings.Join(lines, "\n")
}

func (m boardModel) renderArea(a catalog.Area) string {
	i := m.state.ProgressFor(a.ID)
	if i < 0 {
		return a.Icon + " " + a.Name
	}
	p := m.state.Progress[i]
	into, span := engine.LevelProgress(a, p)
	return fmt.Sprintf("%s L%d %s", a.Icon, p.CurrentLevel, ui.ProgressBar(into, span, 14))
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	a := m.currentArea()
	out := []string{fmt.Sprintf("%s %s (level %d)", a.Icon, a.Name, m.levelOf(a.ID))}
	if len(m.activities) == 0 {
		out = append(out, "(no activities available)")
		return strings.Join(out, "\n")
	}
	for i, act := range m.activities {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		marks := ""
		if act.RequiresReflection {
			marks += " [R]"
		}
		if act.RequiresProof {
			marks += " [P]"
		}
		out = append(out, fmt.Sprintf("%s%s +%d XP (%s)%s", cursor, act.Name, act.XPReward, act.Frequency, marks))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
