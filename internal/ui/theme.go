package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lifelevel/internal/models"
)

// LifeLevel theme shared by the CLI and the board.

const (
	IconSparkle = "✨"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconFire    = "🔥"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconScroll  = "📜"
	IconLock    = "🔒"
	IconUnlock  = "🔓"
	IconBell    = "🔔"
	IconCal     = "📅"
	IconStar    = "⭐"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func QuestStatusText(status models.QuestStatus) string {
	switch status {
	case models.QuestCompleted:
		return Good.Render("completed")
	case models.QuestActive:
		return H2.Render("active")
	case models.QuestAvailable:
		return Warn.Render("available")
	default:
		return Muted.Render(string(status))
	}
}

// ProgressBar renders value/total as a fixed-width bar.
func ProgressBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := value * width / total
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// Percent renders a 0-100 value with a color for how close it is to done.
func Percent(p int) string {
	s := fmt.Sprintf("%d%%", p)
	switch {
	case p >= 100:
		return Good.Render(s)
	case p >= 50:
		return Warn.Render(s)
	default:
		return Muted.Render(s)
	}
}

func Locked(ok bool) string {
	if ok {
		return Good.Render(IconUnlock + " unlocked")
	}
	return Bad.Render(IconLock + " locked")
}
