package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DaanHessen/snappr/internal/engine"
	"github.com/DaanHessen/snappr/internal/puzzles"
	"github.com/DaanHessen/snappr/internal/text"
)

const (
	tickEvery  = 100 * time.Millisecond
	authDelay  = 300 * time.Millisecond
	validUser  = "OAK"
	validPass  = "NEW-DAY"
	authFailed = "Invalid credentials. Its wood and a new tomorrow, you know?"
)

type tickMsg time.Time

// navQueue collects navigation requests raised inside engine callbacks. The
// model drains it after every message so mounts never nest.
type navQueue struct {
	pending []engine.ScreenID
}

func (q *navQueue) Navigate(to engine.ScreenID) { q.pending = append(q.pending, to) }

func (q *navQueue) pop() (engine.ScreenID, bool) {
	if len(q.pending) == 0 {
		return "", false
	}
	to := q.pending[0]
	q.pending = q.pending[1:]
	return to, true
}

type model struct {
	ctx    context.Context
	sess   *engine.Session
	seed   engine.Seed
	nav    *navQueue
	md     text.Renderer
	styles styles
	logger *log.Logger

	screen engine.ScreenID
	hub    *engine.Hub
	puzzle *engine.PuzzleScreen
	timers *engine.Scope

	input     textinput.Model
	pass      textinput.Model
	remaining int
	status    string
	width     int
	height    int
}

type option func(*model)

func withLogger(l *log.Logger) option {
	return func(m *model) {
		if l != nil {
			m.logger = l
		}
	}
}

func newModel(ctx context.Context, sess *engine.Session, seed engine.Seed, md text.Renderer, theme string, opts ...option) *model {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 280
	in.Focus()
	pw := textinput.New()
	pw.Prompt = "password: "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	m := &model{
		ctx:    ctx,
		sess:   sess,
		seed:   seed,
		nav:    &navQueue{},
		md:     md,
		styles: newStyles(theme),
		logger: log.New(io.Discard, "", 0),
		input:  in,
		pass:   pw,
	}
	for _, o := range opts {
		o(m)
	}
	sess.SetNavigator(m.nav)
	m.mount(engine.ScreenHub)
	return m
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Init() tea.Cmd { return tea.Batch(textinput.Blink, m.tick()) }

// unmount cancels every timer the current screen owns.
func (m *model) unmount() {
	if m.hub != nil {
		m.hub.Unmount()
		m.hub = nil
	}
	if m.puzzle != nil {
		m.puzzle.Unmount()
		m.puzzle = nil
	}
	if m.timers != nil {
		m.timers.Close()
		m.timers = nil
	}
}

func (m *model) mount(to engine.ScreenID) {
	m.unmount()
	m.screen = to
	m.status = ""
	m.input.Reset()
	m.pass.Reset()
	m.input.Focus()
	m.pass.Blur()
	switch to {
	case engine.ScreenHub:
		hub, err := m.sess.MountHub(m.ctx)
		if err != nil {
			m.fail("mount hub", err)
			return
		}
		m.hub = hub
		m.input.Prompt = "> "
		m.input.Placeholder = "message, or /help"
		m.input.SetValue(hub.Record().MessageDraft)
	case engine.ScreenLoading:
		m.mountLoading()
	case engine.ScreenPassword:
		m.timers = m.sess.Scheduler().Scope()
		m.input.Prompt = "username: "
		m.input.Placeholder = "username"
		m.pass.Placeholder = "password"
	default:
		p, ok := puzzles.ByScreen(to)
		if !ok {
			m.fail("mount", fmt.Errorf("unknown screen %q", to))
			return
		}
		ps, err := m.sess.MountPuzzle(m.ctx, p, m.seed.BoardStream(p.ID()))
		if err != nil {
			m.fail("mount "+string(to), err)
			return
		}
		m.puzzle = ps
		m.input.Prompt = "$ "
		m.input.Placeholder = "command"
	}
}

// mountLoading counts down once a second and moves on when the route's
// settle delay runs out.
func (m *model) mountLoading() {
	sc := m.sess.Scheduler().Scope()
	m.timers = sc
	wait := 10 * time.Second
	if r, ok := m.sess.Router().Route(engine.ScreenLoading); ok && r.Settle > 0 {
		wait = r.Settle
	}
	m.remaining = int(math.Ceil(wait.Seconds()))
	sc.Every(time.Second, func() {
		if m.remaining > 0 {
			m.remaining--
		}
	})
	sc.After(wait, func() {
		if next, ok := m.sess.Router().Next(engine.ScreenLoading); ok {
			m.nav.Navigate(next)
		}
	})
}

func (m *model) fail(what string, err error) {
	m.logger.Printf("%s: %v", what, err)
	m.status = err.Error()
}

// drain mounts every screen requested since the last message, in order.
func (m *model) drain() {
	for {
		to, ok := m.nav.pop()
		if !ok {
			return
		}
		m.mount(to)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-6)
		return m, nil
	case tickMsg:
		m.sess.Scheduler().Advance(time.Time(msg))
		m.drain()
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.unmount()
			return m, tea.Quit
		}
		switch m.screen {
		case engine.ScreenHub:
			cmd = m.updateHub(msg)
		case engine.ScreenLoading:
		case engine.ScreenPassword:
			cmd = m.updatePassword(msg)
		default:
			cmd = m.updatePuzzle(msg)
		}
		m.drain()
	}
	return m, cmd
}

func (m *model) updateHub(msg tea.KeyMsg) tea.Cmd {
	if m.hub == nil {
		return nil
	}
	switch msg.String() {
	case "tab":
		m.cycleView(1)
		return nil
	case "shift+tab":
		m.cycleView(-1)
		return nil
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		if strings.HasPrefix(line, "/") {
			m.input.Reset()
			_ = m.hub.SetDraft("")
			m.hubCommand(line)
			return nil
		}
		if err := m.hub.SetDraft(m.input.Value()); err != nil {
			m.fail("draft", err)
			return nil
		}
		if _, err := m.hub.Send(); err != nil {
			if !errors.Is(err, engine.ErrEmptyDraft) {
				m.fail("send", err)
			}
			return nil
		}
		m.input.Reset()
		m.status = "sending…"
		return nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		if err := m.hub.SetDraft(v); err != nil {
			m.fail("draft", err)
		}
	}
	return cmd
}

func (m *model) cycleView(step int) {
	views := m.hub.Views()
	if len(views) == 0 {
		return
	}
	active := m.hub.Record().Active
	idx := 0
	for i, v := range views {
		if v == active {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(views)
	if idx < 0 {
		idx += len(views)
	}
	if err := m.hub.Select(views[idx]); err != nil {
		m.fail("select", err)
	}
}

const hubHelp = "/open <id> follows a message action · /play starts the next puzzle · tab switches views"

func (m *model) hubCommand(line string) {
	ev := engine.ParseEvent(strings.TrimPrefix(line, "/"))
	switch ev.Verb {
	case "help":
		m.status = hubHelp
	case "open":
		id, err := strconv.Atoi(ev.Arg(0))
		if err != nil {
			m.status = "usage: /open <id>"
			return
		}
		note, err := m.hub.Open(id)
		if err != nil {
			m.fail("open", err)
			return
		}
		m.status = note
	case "play":
		if next, ok := m.sess.Router().Next(engine.ScreenHub); ok {
			m.nav.Navigate(next)
		}
	default:
		m.status = "unknown command. " + hubHelp
	}
}

func (m *model) updatePuzzle(msg tea.KeyMsg) tea.Cmd {
	if m.puzzle == nil {
		return nil
	}
	switch msg.String() {
	case "esc":
		m.puzzle.Dispatch(engine.Event{Verb: "back"})
		return nil
	case "enter":
		line := m.input.Value()
		m.input.Reset()
		fb, _, err := m.puzzle.Dispatch(engine.ParseEvent(line))
		switch {
		case err == nil:
			m.status = ""
		case len(fb.Lines) > 0:
			m.status = strings.Join(fb.Lines, " ")
		default:
			m.status = err.Error()
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// checkCredentials compares case-insensitively after trimming.
func checkCredentials(user, pass string) bool {
	up := cases.Upper(language.Und)
	return up.String(strings.TrimSpace(user)) == validUser && up.String(strings.TrimSpace(pass)) == validPass
}

func (m *model) updatePassword(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		if m.input.Focused() {
			m.input.Blur()
			return m.pass.Focus()
		}
		m.pass.Blur()
		return m.input.Focus()
	case "enter":
		if m.input.Value() == "" || m.pass.Value() == "" {
			return nil
		}
		if !checkCredentials(m.input.Value(), m.pass.Value()) {
			m.status = authFailed
			return nil
		}
		m.status = "> AUTH // success → redirecting"
		if next, ok := m.sess.Router().Next(engine.ScreenPassword); ok && m.timers != nil {
			m.timers.After(authDelay, func() { m.nav.Navigate(next) })
		}
		return nil
	}
	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.pass, cmd = m.pass.Update(msg)
	}
	return cmd
}

func (m *model) View() string {
	w := m.width
	if w <= 0 {
		w = 100
	}
	var body string
	switch m.screen {
	case engine.ScreenHub:
		body = m.renderHub(w)
	case engine.ScreenLoading:
		body = m.renderLoading()
	case engine.ScreenPassword:
		body = m.renderPassword()
	default:
		body = m.renderPuzzle(w)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTopBar(w), body, m.renderStatus(w))
}

func (m *model) renderTopBar(w int) string {
	rec := m.sess.Record()
	left := "SNAPPR • " + string(m.screen)
	right := fmt.Sprintf("%d/%d solved", len(rec.CompletedList()), len(engine.AllPuzzles))
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.title.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *model) renderStatus(w int) string {
	if m.status == "" {
		return ""
	}
	s := m.status
	if len([]rune(s)) > w && w > 3 {
		s = string([]rune(s)[:w-3]) + "..."
	}
	if m.status == authFailed {
		return m.styles.danger.Render(s)
	}
	return m.styles.muted.Render(s)
}

func (m *model) renderHub(w int) string {
	if m.hub == nil {
		return ""
	}
	rec := m.hub.Record()
	sideWidth := 26
	if w < 80 {
		sideWidth = 20
	}
	var side strings.Builder
	for _, v := range m.hub.Views() {
		label := v.String()
		if n := rec.Unread[v.Name]; v.Kind == engine.ViewDirect && n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		switch {
		case v == rec.Active:
			side.WriteString(m.styles.active.Render(label))
		case v.Kind == engine.ViewDirect && rec.Unread[v.Name] > 0:
			side.WriteString(m.styles.unread.Render(label))
		default:
			side.WriteString(label)
		}
		side.WriteString("\n")
	}
	mainWidth := w - sideWidth - 4
	var main strings.Builder
	main.WriteString(m.styles.title.Render(rec.Active.String()) + "\n\n")
	msgs := rec.Log(rec.Active)
	if len(msgs) == 0 {
		main.WriteString(m.styles.muted.Render("(no messages yet)") + "\n")
	}
	for _, msg := range msgs {
		main.WriteString(text.Message(m.md, msg, mainWidth))
		main.WriteString("\n\n")
	}
	if n := len(rec.Outbox); n > 0 {
		main.WriteString(m.styles.muted.Render(fmt.Sprintf("%d sending…", n)) + "\n")
	}
	lines := tail(strings.Split(strings.TrimRight(main.String(), "\n"), "\n"), m.height-6)
	panel := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.side.Width(sideWidth).Render(strings.TrimRight(side.String(), "\n")),
		lipgloss.NewStyle().Width(mainWidth).PaddingLeft(1).Render(strings.Join(lines, "\n")),
	)
	return lipgloss.JoinVertical(lipgloss.Left, panel, m.input.View())
}

func (m *model) renderPuzzle(w int) string {
	if m.puzzle == nil {
		return ""
	}
	p := m.puzzle.Puzzle()
	board := m.styles.panel.Width(w - 4).Render(m.puzzle.View())
	logLines := tail(m.puzzle.Log(), m.height-lipgloss.Height(board)-6)
	var b strings.Builder
	b.WriteString(m.styles.title.Render(p.Title()) + "\n")
	b.WriteString(strings.Join(logLines, "\n"))
	head := b.String()
	if m.puzzle.Completed() {
		head += "\n" + m.styles.success.Render("solved")
	}
	footer := m.styles.muted.Render("esc back · skip · reset")
	return lipgloss.JoinVertical(lipgloss.Left, head, board, m.input.View(), footer)
}

func (m *model) renderLoading() string {
	lines := []string{
		"Establishing secure uplink.",
		"Decrypting channel. Aligning phase.",
		"Remember the keys?",
		fmt.Sprintf("ETA: %ds", m.remaining),
	}
	return m.styles.panel.Render(m.styles.success.Render(strings.Join(lines, "\n")))
}

func (m *model) renderPassword() string {
	lines := []string{
		m.styles.muted.Render("ACCESS REQUIRED ~ enter credentials"),
		m.input.View(),
		m.pass.View(),
		m.styles.muted.Render("Hey, you remember the key 2 and key 3?"),
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

// tail keeps the last n lines; n <= 0 keeps everything.
func tail(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
