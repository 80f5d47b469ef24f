package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hollowaylabs/libris/internal/config"
	"github.com/hollowaylabs/libris/internal/ollama"
	"github.com/hollowaylabs/libris/internal/profile"
)

// Styles define the chat theme. Speaker colors follow the topic
// palette used in the graph visualization.
var (
	chatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1a2e")).
			Background(lipgloss.Color("#4ECDC4")).
			Padding(0, 2)

	chatModelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666680")).
			Italic(true).
			PaddingLeft(2)

	chatUserStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			PaddingLeft(1)

	chatBotStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			PaddingLeft(1)

	chatSystemStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFE66D")).
			PaddingLeft(1)

	chatMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666680")).
			Italic(true).
			PaddingLeft(2)

	chatBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3d3d5c"))

	chatInputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4"))

	chatHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4a4a6a")).
			PaddingLeft(1)

	chatWaitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")).
			Italic(true)
)

// Speaker labels in the transcript.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
)

const chatHelpText = `
### Commands
- **/help**: Show this help message
- **/clear**: Clear the conversation
- **/quit**: Leave the chat

### Keys
- **Enter**: Send
- **Tab**: Cycle suggested prompts
- **Ctrl+C / Esc**: Leave the chat
`

type chatMessage struct {
	role     string
	content  string
	duration time.Duration
}

type askResult struct {
	answer string
	err    error
	start  time.Time
}

type chatModel struct {
	session *ollama.Session
	env     *profile.EnvironmentConfig
	model   string

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	messages []chatMessage
	ready    bool
	loading  bool
	width    int
	height   int

	promptIdx int
}

func newChatModel(session *ollama.Session, env *profile.EnvironmentConfig, model string) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your library (Tab for suggestions)"
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(2)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	return chatModel{
		session:  session,
		env:      env,
		model:    model,
		textarea: ta,
		spinner:  s,
		renderer: newChatRenderer(80),
		messages: []chatMessage{welcomeMessage(env)},
	}
}

// newChatRenderer builds the markdown renderer, honoring the chat_theme
// from the global config when one is set.
func newChatRenderer(width int) *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if theme := config.GetChatTheme(); theme != "" {
		opts = append(opts, glamour.WithStylePath(theme))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return renderer
}

// welcomeMessage greets the session and lists the suggested prompts.
func welcomeMessage(env *profile.EnvironmentConfig) chatMessage {
	var b strings.Builder
	b.WriteString(env.Chat.Welcome)
	if len(env.Chat.SuggestedPrompts) > 0 {
		b.WriteString("\n\nSuggestions (press Tab):\n")
		for _, p := range env.Chat.SuggestedPrompts {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	return chatMessage{role: roleSystem, content: strings.TrimRight(b.String(), "\n")}
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyTab:
			prompts := m.env.Chat.SuggestedPrompts
			if len(prompts) > 0 {
				m.textarea.SetValue(prompts[m.promptIdx%len(prompts)])
				m.textarea.CursorEnd()
				m.promptIdx++
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if handled, cmd := m.handleCommand(input); handled {
				m.textarea.Reset()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{role: roleUser, content: input})
			m.textarea.Reset()
			m.loading = true
			m.updateViewport()

			return m, tea.Batch(m.spinner.Tick, m.ask(input))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		inputHeight := 4
		footerHeight := 1
		verticalMargin := headerHeight + inputHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-verticalMargin-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - verticalMargin - 2
		}

		m.textarea.SetWidth(msg.Width - 6)

		// Rebuild the renderer so word wrap follows the new width
		m.renderer = newChatRenderer(m.viewport.Width - 4)
		m.updateViewport()

	case askResult:
		m.loading = false
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{
				role:    roleSystem,
				content: "Error: " + msg.err.Error(),
			})
		} else {
			m.messages = append(m.messages, chatMessage{
				role:     roleAssistant,
				content:  msg.answer,
				duration: time.Since(msg.start),
			})
		}
		m.updateViewport()
		return m, nil

	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		if m.loading {
			m.updateViewport()
			return m, spCmd
		}
		return m, nil
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(taCmd, vpCmd)
}

// handleCommand processes slash commands typed into the input.
func (m *chatModel) handleCommand(input string) (bool, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/help":
		m.messages = append(m.messages, chatMessage{role: roleSystem, content: chatHelpText})
		m.updateViewport()
		return true, nil

	case "/clear":
		m.session.Clear()
		m.messages = []chatMessage{welcomeMessage(m.env)}
		m.updateViewport()
		return true, nil

	case "/quit", "/exit":
		return true, tea.Quit
	}

	return false, nil
}

// ask sends a question to the session off the UI loop.
func (m chatModel) ask(question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.env.Performance.RequestTimeout)
		defer cancel()

		start := time.Now()
		answer, err := m.session.Ask(ctx, question, "")
		return askResult{answer: answer, err: err, start: start}
	}
}

func (m *chatModel) updateViewport() {
	var sb strings.Builder

	for i, msg := range m.messages {
		switch msg.role {
		case roleUser:
			sb.WriteString(chatUserStyle.Render("YOU") + "\n")
			sb.WriteString(msg.content + "\n\n")

		case roleAssistant:
			sb.WriteString(chatBotStyle.Render("LIBRIS") + "\n")

			rendered := msg.content
			if m.renderer != nil && msg.content != "" {
				if r, err := m.renderer.Render(msg.content); err == nil {
					rendered = r
				}
			}
			sb.WriteString(rendered)

			if i == len(m.messages)-1 && !m.loading && msg.duration > 0 {
				meta := fmt.Sprintf("%s | %s", m.model, msg.duration.Truncate(time.Millisecond))
				sb.WriteString("\n" + chatMetaStyle.Render(meta) + "\n")
			}
			sb.WriteString("\n")

		default:
			sb.WriteString(chatSystemStyle.Render("SYSTEM") + "\n")
			sb.WriteString(msg.content + "\n\n")
		}
	}

	if m.loading {
		sb.WriteString("\n" + m.spinner.View() + chatWaitStyle.Render(" Thinking..."))
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Starting chat..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		chatTitleStyle.Render(" libris "),
		chatModelStyle.Render(m.model),
	)

	help := chatHelpStyle.Render("Enter Send | Tab Suggestions | /help Commands | Ctrl+C Quit")

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		chatBorderStyle.Render(m.viewport.View()),
		chatInputStyle.Render(m.textarea.View()),
		help,
	)
}
