package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleError     = "error"
)

// reservado para status e input
const chromeHeight = 5

type message struct {
	id      string
	role    string
	content string
}

// Mensagens internas
type frameMsg model.WSFrame
type disconnectedMsg struct{}
type sendErrMsg struct{ err error }

// Model é o estado da interface de chat no terminal
type Model struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer MarkdownRenderer

	frames <-chan model.WSFrame
	send   func(string) error

	sessionID    string
	messages     []message
	status       string
	busy         bool
	disconnected bool
	width        int
}

// NewModel cria o modelo ligado ao fluxo de frames e à função de envio
func NewModel(frames <-chan model.WSFrame, send func(string) error, renderer MarkdownRenderer) Model {
	ti := textinput.New()
	ti.Placeholder = "Descreva o que aconteceu..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		renderer: renderer,
		frames:   frames,
		send:     send,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, listen(m.frames))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.input.Width = max(msg.Width-6, 10)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case frameMsg:
		m.apply(model.WSFrame(msg))
		return m, listen(m.frames)

	case disconnectedMsg:
		m.disconnected = true
		m.busy = false
		m.status = "Conexão encerrada."
		return m, nil

	case sendErrMsg:
		m.busy = false
		m.messages = append(m.messages, message{role: roleError, content: msg.err.Error()})
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.busy || m.disconnected {
			return m, nil
		}
		if text == "/sair" {
			return m, tea.Quit
		}

		m.messages = append(m.messages, message{role: roleUser, content: text})
		m.input.SetValue("")
		m.busy = true
		m.status = ""
		m.refresh()
		return m, m.sendCmd(text)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply incorpora um frame do servidor ao estado
func (m *Model) apply(f model.WSFrame) {
	switch f.Type {
	case model.FrameConnected:
		m.sessionID = f.SessionID

	case model.FrameMessage:
		m.messages = append(m.messages, message{id: f.MessageID, role: roleAssistant, content: f.Content})
		// Mensagem com conteúdo fecha o turno; a vazia é o início do streaming
		if f.Content != "" {
			m.busy = false
		}

	case model.FrameToken:
		if i := m.find(f.MessageID); i >= 0 {
			m.messages[i].content += f.Content
		}

	case model.FrameUpdate:
		m.busy = false

	case model.FrameStatus:
		m.status = f.Content

	case model.FrameError:
		m.busy = false
		m.messages = append(m.messages, message{role: roleError, content: f.Content})
	}
	m.refresh()
}

func (m *Model) find(id string) int {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].id == id {
			return i
		}
	}
	return -1
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m Model) renderMessages() string {
	var lines []string
	for _, msg := range m.messages {
		switch msg.role {
		case roleUser:
			lines = append(lines, userStyle.Render("Você: ")+msg.content)
		case roleError:
			lines = append(lines, errorStyle.Render("Erro: "+msg.content))
		default:
			if msg.content == "" {
				continue
			}
			lines = append(lines, assistantStyle.Render(m.markdown(msg.content)))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) markdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content, m.width-4)
	if err != nil {
		return content
	}
	return out
}

func (m Model) sendCmd(text string) tea.Cmd {
	send := m.send
	return func() tea.Msg {
		if err := send(text); err != nil {
			return sendErrMsg{err: fmt.Errorf("falha ao enviar mensagem: %w", err)}
		}
		return nil
	}
}

func (m Model) View() string {
	var status string
	switch {
	case m.busy:
		status = statusStyle.Render(m.spinner.View() + " " + m.status)
	case m.status != "":
		status = statusDoneStyle.Render(m.status)
	default:
		status = statusStyle.Render("Pronto")
	}
	if m.sessionID != "" {
		status += statusStyle.Render("  sessão " + m.sessionID)
	}

	return m.viewport.View() + "\n" + status + "\n" + inputStyle.Render(m.input.View())
}

func listen(frames <-chan model.WSFrame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return disconnectedMsg{}
		}
		return frameMsg(f)
	}
}
