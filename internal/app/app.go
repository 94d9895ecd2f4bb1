package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/matze/zk-spaced/internal/review"
	"github.com/matze/zk-spaced/internal/router"
	"github.com/matze/zk-spaced/internal/screen"
	"github.com/matze/zk-spaced/internal/screens/card"
	"github.com/matze/zk-spaced/internal/screens/summary"
	"github.com/matze/zk-spaced/internal/ui/layout"
)

// Options configures the TUI program.
type Options struct {
	Session *review.Session
	Logger  *zap.Logger

	// OpenTTY reads keys from the terminal instead of stdin, for when stdin
	// carried the card list.
	OpenTTY bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	log    *zap.Logger
	width  int
	height int
	err    error
}

// newAppModel starts on the card screen, or straight on the summary when
// nothing is due.
func newAppModel(ctx context.Context, opts Options) AppModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var first screen.Screen = card.New(ctx, opts.Session)
	if opts.Session.Done() {
		first = summary.New(opts.Session.Summary())
	}
	return AppModel{
		router: router.New(first),
		log:    log,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.FatalErrMsg:
		m.log.Error("review aborted", zap.Error(msg.Err))
		m.err = msg.Err
		return m, tea.Quit
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if hp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = hp.KeyHints()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits. An error
// that aborted the session is returned.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return fmt.Errorf("app: no session")
	}

	popts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.OpenTTY {
		in, out, err := tea.OpenTTY()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer in.Close()
		defer out.Close()
		popts = append(popts, tea.WithInput(in))
	}

	p := tea.NewProgram(newAppModel(ctx, opts), popts...)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	if m, ok := final.(AppModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
