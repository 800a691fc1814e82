package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	orchestration "github.com/voxlabs/jarvis-core/core"
	"github.com/voxlabs/jarvis-core/core/audio/miniaudio"
	"github.com/voxlabs/jarvis-core/core/calendar"
	"github.com/voxlabs/jarvis-core/core/responses"
	capturedeepgram "github.com/voxlabs/jarvis-core/core/speechcapture/deepgram"
	outputdeepgram "github.com/voxlabs/jarvis-core/core/speechoutput/deepgram"
)

const (
	sidebarWidth      = 28
	sidebarPadding    = 1
	sidebarOuterWidth = sidebarWidth + sidebarPadding*2

	viewportPadding = 1

	defaultEndpoint = "http://localhost:8888/api/jarvis"
)

type statusMsg orchestration.Status
type transcriptMsg string
type responseDeltaMsg string
type responseEndMsg struct{}
type sourcesMsg []responses.GroundingChunk
type bannerMsg string
type cancelledMsg struct{}
type calendarMsg []calendar.Event

var program *tea.Program

type model struct {
	orchestrator *orchestration.Orchestrator

	termWidth  int
	termHeight int
	ready      bool

	status   orchestration.Status
	banner   string
	sources  []responses.GroundingChunk
	events   []calendar.Event
	log      strings.Builder
	pending  string
	viewport viewport.Model
	spinner  spinner.Model

	automaticScroll bool
}

func newModel(orchestrator *orchestration.Orchestrator) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	return model{
		orchestrator:    orchestrator,
		status:          orchestration.StatusIdle,
		spinner:         s,
		automaticScroll: true,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	viewportHeight := m.termHeight - viewportPadding*2 - 3

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height

		viewportHeight = m.termHeight - viewportPadding*2 - 3
		if !m.ready {
			m.viewport = viewport.New(m.viewportWidth(), viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.viewportWidth()
			m.viewport.Height = viewportHeight
		}
		m.viewport.SetContent(m.getContent())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			m.orchestrator.Trigger()
		case "esc":
			m.orchestrator.CancelTurn()
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case statusMsg:
		m.status = orchestration.Status(msg)

	case transcriptMsg:
		m.log.WriteString("\n\nVocê: " + string(msg))
		m.refreshContent()

	case responseDeltaMsg:
		if m.pending == "" {
			m.log.WriteString("\n\nJarvis: ")
		}
		m.pending += string(msg)
		m.log.WriteString(string(msg))
		m.refreshContent()

	case responseEndMsg:
		m.pending = ""
		m.refreshContent()

	case cancelledMsg:
		m.pending = ""
		m.refreshContent()

	case sourcesMsg:
		m.sources = msg

	case bannerMsg:
		m.banner = string(msg)

	case calendarMsg:
		m.events = msg

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.viewport, _ = m.viewport.Update(msg)
	if m.viewport.AtBottom() {
		m.automaticScroll = true
	} else {
		m.automaticScroll = false
	}

	return m, nil
}

func (m *model) refreshContent() {
	m.viewport.SetContent(m.getContent())
	if m.automaticScroll {
		m.viewport.GotoBottom()
	}
}

func (m model) viewportWidth() int {
	return m.termWidth - sidebarOuterWidth - viewportPadding*2
}

func (m model) getContent() string {
	return wordwrap.String(strings.TrimSpace(m.log.String()), m.viewportWidth()-4)
}

var statusStyles = map[orchestration.Status]lipgloss.Style{
	orchestration.StatusIdle:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	orchestration.StatusListening: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	orchestration.StatusThinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	orchestration.StatusSpeaking:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

func (m model) statusLine() string {
	orb := statusStyles[m.status].Render("●")
	if m.status == orchestration.StatusThinking {
		orb = m.spinner.View()
	}
	return fmt.Sprintf("%s %s", orb, string(m.status))
}

func (m model) View() string {
	if m.termWidth == 0 {
		return "Loading..."
	}

	mainStyle := lipgloss.NewStyle().
		Padding(1).
		Width(m.termWidth - sidebarOuterWidth).
		Height(m.termHeight - 3)

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(sidebarPadding).
		Width(sidebarWidth).
		Height(m.termHeight - 2)

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))

	sidebarSections := []string{
		labelStyle.Render("Jarvis"),
		"",
		m.statusLine(),
	}

	if len(m.sources) > 0 {
		sidebarSections = append(sidebarSections, "", labelStyle.Render("Fontes"))
		for _, source := range m.sources {
			if source.Web == nil {
				continue
			}
			title := source.Web.Title
			if title == "" {
				title = source.Web.URI
			}
			sidebarSections = append(sidebarSections, wordwrap.String("• "+title, sidebarWidth))
		}
	}

	if len(m.events) > 0 {
		sidebarSections = append(sidebarSections, "", labelStyle.Render("Agenda"))
		for _, event := range m.events {
			sidebarSections = append(sidebarSections, wordwrap.String(eventLine(event), sidebarWidth))
		}
	}

	if m.banner != "" {
		sidebarSections = append(sidebarSections, "",
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(wordwrap.String(m.banner, sidebarWidth)))
	}

	footer := lipgloss.NewStyle().
		PaddingTop(1).
		Foreground(lipgloss.Color("241")).
		Render("space: falar/interromper • esc: cancelar • q: sair")

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left,
			mainStyle.Render(m.viewport.View()),
			footer,
		),
		sidebarStyle.Render(strings.Join(sidebarSections, "\n")),
	)
}

func eventLine(event calendar.Event) string {
	when := event.Start.DateTime
	if when == "" {
		when = event.Start.Date
	}
	if parsed, err := time.Parse(time.RFC3339, when); err == nil {
		when = parsed.Format("02/01 15:04")
	}
	return "• " + when + " " + event.Summary
}

func main() {
	endpoint := os.Getenv("JARVIS_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		fmt.Printf("Error: failed to initialize audio: %v\n", err)
		os.Exit(1)
	}
	defer audioClient.Close()

	orchestrator := orchestration.NewOrchestrator(
		orchestration.WithResponseClient(responses.NewClient(endpoint)),
		orchestration.WithSpeechCapture(capturedeepgram.NewClient(audioClient)),
		orchestration.WithSpeechOutput(outputdeepgram.NewClient(audioClient)),
		orchestration.WithLocale("pt-BR"),
	)
	defer orchestrator.Close()

	program = tea.NewProgram(
		newModel(orchestrator),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orchestrator.Orchestrate(ctx,
		orchestration.WithStatusChangedCallback(func(status orchestration.Status) {
			program.Send(statusMsg(status))
		}),
		orchestration.WithTranscriptionCallback(func(transcript string) {
			program.Send(transcriptMsg(transcript))
		}),
		orchestration.WithResponseCallback(func(response string) {
			program.Send(responseDeltaMsg(response))
		}),
		orchestration.WithResponseEndedCallback(func() {
			program.Send(responseEndMsg{})
		}),
		orchestration.WithSourcesUpdatedCallback(func(sources []responses.GroundingChunk) {
			program.Send(sourcesMsg(sources))
		}),
		orchestration.WithCancellationCallback(func() {
			program.Send(cancelledMsg{})
		}),
		orchestration.WithErrorCallback(func(message string) {
			program.Send(bannerMsg(message))
		}),
	)

	if token := os.Getenv("GOOGLE_CALENDAR_TOKEN"); token != "" {
		go func() {
			events, err := calendar.NewClient().UpcomingEvents(ctx, token, 5)
			if err != nil {
				program.Send(bannerMsg(fmt.Sprintf("Falha ao carregar a agenda: %v", err)))
				return
			}
			program.Send(calendarMsg(events))
		}()
	}

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
