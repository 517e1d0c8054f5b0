package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scandesk/internal/core/broadcast"
	"scandesk/internal/core/manualscan"
	"scandesk/internal/core/ownership"
	"scandesk/internal/core/provider"
	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
)

const (
	debugTail  = 8
	manualID   = "manual-input"
	eventQueue = 256
)

type (
	scanMsg     struct{ ev broadcast.Event }
	fallbackMsg struct{ ev broadcast.Event }
	previewMsg  struct {
		class router.Classification
		token string
	}
	modalMsg struct {
		req     manualscan.Request
		open    bool
		outcome manualscan.Outcome
	}
	debugMsg      struct{ ev scan.DebugEvent }
	clearMsg      struct{ target scan.Target }
	manualDoneMsg struct {
		res manualscan.Result
		err error
	}
)

// sink turns provider callbacks into tea messages. Callbacks run on the
// classifier's caller or its timer goroutine, so sends never block; a full
// queue drops the message.
type sink chan tea.Msg

func (s sink) send(m tea.Msg) {
	select {
	case s <- m:
	default:
	}
}

func (s sink) Preview(c router.Classification, token string) { s.send(previewMsg{c, token}) }
func (s sink) Fallback(ev broadcast.Event)                     { s.send(fallbackMsg{ev}) }
func (s sink) Open(req manualscan.Request)                     { s.send(modalMsg{req: req, open: true}) }
func (s sink) Close(req manualscan.Request, o manualscan.Outcome) {
	s.send(modalMsg{req: req, outcome: o})
}

func (s sink) wait() tea.Cmd {
	return func() tea.Msg { return <-s }
}

var (
	_ router.Presenter   = sink(nil)
	_ broadcast.Notifier = sink(nil)
	_ manualscan.Modal   = sink(nil)
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	previewStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1)
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1)
)

type preview struct {
	class router.Classification
	token string
	at    time.Time
}

type model struct {
	ctx  context.Context
	p    *provider.Provider
	in   sink
	keys keyMap
	now  func() time.Time

	input   textinput.Model
	modal   *manualscan.Request
	release func()

	path     string
	last     *broadcast.Event
	preview  *preview
	status   string
	debug    bool
	debugLog []scan.DebugEvent
	width    int
}

// newModel wires a provider to a fresh sink. The returned model owns the
// provider; callers close it once the program exits.
func newModel(ctx context.Context, o provider.Options, showDebug bool) *model {
	in := make(sink, eventQueue)

	o.Presenter = in
	o.Notifier = in
	o.Modal = in
	o.ClearTarget = func(t scan.Target) { in.send(clearMsg{t}) }
	p := provider.New(o)
	p.Subscribe(func(ev broadcast.Event) { in.send(scanMsg{ev}) })
	p.SubscribeDebug(func(ev scan.DebugEvent) { in.send(debugMsg{ev}) })

	ti := textinput.New()
	ti.Placeholder = "scan or type a token"
	ti.CharLimit = 128

	return &model{
		ctx:   ctx,
		p:     p,
		in:    in,
		keys:  defaultKeys,
		now:   time.Now,
		input: ti,
		path:  o.Path,
		debug: showDebug,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.in.wait(), textinput.Blink)
}

func (m *model) target() scan.Target {
	if m.modal != nil {
		return scan.Target{Kind: scan.TargetManualInput, ID: manualID}
	}
	return scan.Target{}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case manualDoneMsg:
		if msg.err != nil {
			m.status = "manual scan: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("manual scan %s: %s (%s)", msg.res.RequestID, msg.res.Token, msg.res.Source)
		}
		return m, nil
	}

	m.apply(msg)
	return m, m.in.wait()
}

// apply folds one sink message into the view state
func (m *model) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case scanMsg:
		ev := msg.ev
		m.last = &ev
	case previewMsg:
		m.preview = &preview{class: msg.class, token: msg.token, at: m.now()}
	case fallbackMsg:
		m.status = "unhandled scan: " + msg.ev.Data
	case modalMsg:
		if msg.open {
			req := msg.req
			m.modal = &req
			m.input.Reset()
			m.input.Focus()
			return
		}
		if m.modal != nil && m.modal.ID == msg.req.ID {
			m.modal = nil
			m.input.Blur()
			m.input.Reset()
		}
	case clearMsg:
		if msg.target.Kind != scan.TargetNone {
			m.input.Reset()
		}
	case debugMsg:
		m.debugLog = append(m.debugLog, msg.ev)
		if len(m.debugLog) > debugTail {
			m.debugLog = m.debugLog[len(m.debugLog)-debugTail:]
		}
	}
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Manual):
		if m.modal != nil {
			return m, nil
		}
		return m, m.startManual()
	case key.Matches(msg, m.keys.Cancel):
		if m.modal != nil {
			m.p.CancelScan()
		} else {
			m.preview = nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Ownership):
		m.cycleOwner()
		return m, nil
	case key.Matches(msg, m.keys.Debug):
		m.debug = !m.debug
		return m, nil
	}

	prevented := false
	for _, ev := range keyEvents(msg, m.target(), m.now()) {
		v := m.p.HandleKey(ev)
		prevented = prevented || v.PreventDefault
		if m.modal != nil && ev.Key == scan.KeyEnter && !v.PreventDefault {
			if err := m.p.SubmitManual(m.input.Value()); err != nil {
				m.status = err.Error()
			}
			return m, nil
		}
	}
	if m.modal == nil || prevented {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) startManual() tea.Cmd {
	p, ctx := m.p, m.ctx
	return func() tea.Msg {
		res, err := p.Scan(ctx)
		return manualDoneMsg{res: res, err: err}
	}
}

// cycleOwner releases the current claim and claims the next owner; GLOBAL
// needs no claim
func (m *model) cycleOwner() {
	next := nextOwner(m.p.Ownership().Active())
	if m.release != nil {
		m.release()
		m.release = nil
	}
	if next != ownership.Global {
		m.release = m.p.Ownership().Claim(next)
	}
	m.status = "owner: " + string(next)
}

func nextOwner(c ownership.Context) ownership.Context {
	for i, o := range ownership.All {
		if o == c {
			return ownership.All[(i+1)%len(ownership.All)]
		}
	}
	return ownership.Global
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("scandesk station"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  path %s  owner %s", m.path, m.p.Ownership().Active())))
	b.WriteString("\n\n")

	if m.last != nil {
		fmt.Fprintf(&b, "last scan  %s  %s\n\n", m.last.Data, mutedStyle.Render(string(m.last.Source)))
	} else {
		b.WriteString(mutedStyle.Render("waiting for a scan") + "\n\n")
	}

	if m.preview != nil {
		body := fmt.Sprintf("%s\n%s\n%s",
			titleStyle.Render(strings.ToUpper(string(m.preview.class))),
			m.preview.token,
			mutedStyle.Render(m.preview.at.Format("15:04:05")),
		)
		b.WriteString(previewStyle.Render(body))
		b.WriteString("\n")
	}

	if m.modal != nil {
		body := "Manual scan\n" + m.input.View() + "\n" + mutedStyle.Render("enter submit  esc cancel")
		b.WriteString(modalStyle.Render(body))
		b.WriteString("\n")
	}

	if m.debug && len(m.debugLog) > 0 {
		b.WriteString("\n")
		for _, ev := range m.debugLog {
			line := fmt.Sprintf("%-9s %-6q buf=%q detected=%t", ev.Type, ev.Key, ev.Buffer, ev.ScannerDetected)
			if ev.Delay != nil {
				line += fmt.Sprintf(" +%dms", *ev.Delay)
			}
			b.WriteString(mutedStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	help := []string{}
	for _, k := range []key.Binding{m.keys.Manual, m.keys.Cancel, m.keys.Ownership, m.keys.Debug, m.keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(mutedStyle.Render(strings.Join(help, " • ")))
	return b.String()
}
