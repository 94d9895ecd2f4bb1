package card

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/matze/zk-spaced/internal/review"
	"github.com/matze/zk-spaced/internal/router"
	"github.com/matze/zk-spaced/internal/screen"
	"github.com/matze/zk-spaced/internal/screens/summary"
	"github.com/matze/zk-spaced/internal/spacedrep"
	"github.com/matze/zk-spaced/internal/ui/components"
	"github.com/matze/zk-spaced/internal/ui/layout"
	"github.com/matze/zk-spaced/internal/ui/theme"
)

type cardState int

const (
	stateHidden cardState = iota
	stateShown
)

// CardScreen shows the due cards of a session one at a time. The body
// stays hidden until asked for; grading is only possible once it is shown.
type CardScreen struct {
	ctx     context.Context
	session *review.Session
	state   cardState
	body    viewport.Model
}

var _ screen.Screen = (*CardScreen)(nil)
var _ screen.KeyHintProvider = (*CardScreen)(nil)
var _ screen.StatusProvider = (*CardScreen)(nil)

// New creates a CardScreen over a session.
func New(ctx context.Context, session *review.Session) *CardScreen {
	vp := viewport.New()
	vp.SoftWrap = true
	return &CardScreen{
		ctx:     ctx,
		session: session,
		body:    vp,
	}
}

func (s *CardScreen) Init() tea.Cmd {
	return nil
}

func (s *CardScreen) Title() string {
	if cur := s.session.Current(); cur != nil {
		return cur.Item.Title
	}
	return "Review"
}

func (s *CardScreen) Status() string {
	return fmt.Sprintf("%d due", s.session.Remaining())
}

func (s *CardScreen) KeyHints() []layout.KeyHint {
	if s.state == stateShown {
		return []layout.KeyHint{
			{Key: "0-5", Description: "Grade"},
			{Key: "↑↓", Description: "Scroll"},
			{Key: "n", Description: "Skip"},
			{Key: "q", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "s", Description: "Show"},
		{Key: "n", Description: "Skip"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *CardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	key := kmsg.String()
	switch key {
	case "q":
		return s, tea.Quit
	case "n":
		s.session.Skip()
		return s, s.next()
	}

	switch s.state {
	case stateHidden:
		switch key {
		case "s", "space":
			s.show()
		}
	case stateShown:
		if g, err := spacedrep.ParseGrade(key); err == nil {
			return s, s.grade(g)
		}
		var cmd tea.Cmd
		s.body, cmd = s.body.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CardScreen) show() {
	cur := s.session.Current()
	if cur == nil {
		return
	}
	s.body.SetContent(cur.Item.Body)
	s.body.GotoTop()
	s.state = stateShown
}

// grade persists synchronously so the next card is only selected once the
// snapshot holds the grade.
func (s *CardScreen) grade(g spacedrep.Grade) tea.Cmd {
	if err := s.session.Grade(s.ctx, g); err != nil {
		return func() tea.Msg { return screen.FatalErrMsg{Err: err} }
	}
	return s.next()
}

// next resets to the hidden state, or hands over to the summary once the
// session has nothing left.
func (s *CardScreen) next() tea.Cmd {
	s.state = stateHidden
	s.body.SetContent("")
	if s.session.Done() {
		sum := summary.New(s.session.Summary())
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
	}
	return nil
}

func (s *CardScreen) View(width, height int) string {
	cur := s.session.Current()
	if cur == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(cur.Item.Title))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(cur.Item.ID))
	b.WriteString("\n\n")

	if s.state == stateHidden {
		b.WriteString(theme.Hint.Width(width).Align(lipgloss.Center).
			Render("Try to recall the note, then press s to show it."))
		b.WriteString("\n\n")
		b.WriteString(s.progress(width))
		return b.String()
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).
		Render(strings.Repeat("─", max(width-4, 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	legend := gradeLegend()
	used := lipgloss.Height(b.String()) + lipgloss.Height(legend) + 1

	// The viewport takes whatever room the frame leaves.
	s.body.SetWidth(max(width-4, 1))
	s.body.SetHeight(max(height-used, 1))
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(s.body.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, legend))

	return b.String()
}

func (s *CardScreen) progress(width int) string {
	sum := s.session.Summary()
	done := sum.Reviewed + sum.Skipped
	total := done + sum.Remaining
	bar := components.NewProgressBar(
		fmt.Sprintf("%d/%d", done, total),
		components.Fraction(done, total),
		false,
		min(width-8, 50),
	)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View())
}

// gradeLegend renders one key per grade with its label.
func gradeLegend() string {
	parts := make([]string, 0, len(spacedrep.Grades()))
	for _, g := range spacedrep.Grades() {
		key := theme.GradeKey.Foreground(theme.GradeColor(int(g))).Render(fmt.Sprintf("%d", g))
		parts = append(parts, key+" "+theme.Hint.Render(g.String()))
	}
	return strings.Join(parts, "  ")
}
