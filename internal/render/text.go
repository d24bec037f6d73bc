// Package render draws battle snapshots as styled terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/battle/internal/battle"
)

const barWidth = 10

type styles struct {
	title   lipgloss.Style
	column  lipgloss.Style
	active  lipgloss.Style
	fallen  lipgloss.Style
	log     lipgloss.Style
	help    lipgloss.Style
	victory lipgloss.Style
	defeat  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true),
		column: r.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(1).
			PaddingRight(2),
		active: r.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true),
		fallen: r.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Strikethrough(true),
		log: r.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")),
		help: r.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true),
		victory: r.NewStyle().
			Foreground(lipgloss.Color("#00D75F")).
			Bold(true),
		defeat: r.NewStyle().
			Foreground(lipgloss.Color("#D70000")).
			Bold(true),
	}
}

// Text writes a view of the battle to a writer whenever the state changes.
// Frames that carry the same snapshot as the last one draw nothing.
//
// Colors follow the writer: a terminal gets them, a file or buffer gets
// plain text.
type Text struct {
	out    io.Writer
	styles styles
	last   *battle.State
	draws  int
}

// NewText creates a Text renderer writing to w.
func NewText(w io.Writer) *Text {
	return &Text{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// Render implements director.Renderer.
func (t *Text) Render(state *battle.State, _ float64) {
	if state == nil || state == t.last {
		return
	}
	t.last = state
	t.draws++
	fmt.Fprintln(t.out, t.View(state))
}

// Draws is how many times the view has been written.
func (t *Text) Draws() int {
	return t.draws
}

// View renders one snapshot.
func (t *Text) View(state *battle.State) string {
	s := t.styles
	title := s.title.Render(fmt.Sprintf("Round %d", state.Round))
	sides := lipgloss.JoinHorizontal(lipgloss.Top,
		s.column.Render(t.side(state, battle.Players)),
		s.column.Render(t.side(state, battle.Enemies)),
	)

	lines := []string{
		title,
		sides,
		fmt.Sprintf("Mana %d/%d", state.Mana, state.MaxMana),
		s.log.Render(state.Log),
	}

	switch state.Winner {
	case battle.PlayersWin:
		lines = append(lines, s.victory.Render("Victory!"))
	case battle.EnemiesWin:
		lines = append(lines, s.defeat.Render("Defeat..."))
	default:
		if state.Turn.Side == battle.Players {
			lines = append(lines, s.help.Render(Moves(state.Current())))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (t *Text) side(state *battle.State, side battle.Side) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(side.String()))
	for i, c := range state.Side(side) {
		b.WriteString("\n")
		line := fmt.Sprintf("%d %-8s %s %3d/%d", i+1, c.Name, Bar(c.Health, c.MaxHealth, barWidth), c.Health, c.MaxHealth)
		switch {
		case !c.Alive():
			line = t.styles.fallen.Render(line)
		case state.Turn == (battle.Ref{Side: side, Index: i}) && !state.Over():
			line = t.styles.active.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

// Bar draws a health bar of width cells. Any living character shows at
// least one filled cell.
func Bar(health, maxHealth, width int) string {
	if maxHealth <= 0 || width <= 0 {
		return ""
	}
	filled := health * width / maxHealth
	if health > 0 && filled == 0 {
		filled = 1
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// Moves lists a character's attacks in command syntax.
func Moves(c battle.Character) string {
	parts := make([]string, 0, len(c.Attacks)+1)
	for i, a := range c.Attacks {
		desc := fmt.Sprintf("%d) %s %d", i+1, a.Name, a.Power)
		if a.Heal {
			desc += " heal"
		}
		if a.ManaCost > 0 {
			desc += fmt.Sprintf(" (%d mana)", a.ManaCost)
		}
		parts = append(parts, desc)
	}
	parts = append(parts, "or pass")
	return fmt.Sprintf("%s: attack <n> <target>  %s", c.Name, strings.Join(parts, "  "))
}
