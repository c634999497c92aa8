// Package tui is the terminal rendition of the patient intake form.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"patient-intake-service/internal/domain/dtos"
	"patient-intake-service/internal/forms/patients"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// focus order: name, email, submit, clear
const (
	focusName = iota
	focusEmail
	focusSubmit
	focusClear
	focusCount
)

type patientsLoadedMsg struct{ err error }

type submitDoneMsg struct {
	result dtos.SubmitResult
	err    error
}

// Model wraps a PatientForm for bubbletea.
type Model struct {
	form    *patients.PatientForm
	timeout time.Duration

	nameInput  textinput.Model
	emailInput textinput.Model
	focus      int
	submitting bool

	status  string
	failed  bool
	loadErr error

	styles Styles
}

func New(form *patients.PatientForm, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	name := textinput.New()
	name.Placeholder = "Nome completo"
	name.CharLimit = 100
	name.Width = 40
	name.Focus()

	email := textinput.New()
	email.Placeholder = "email@exemplo.com"
	email.CharLimit = 254
	email.Width = 40

	state := form.State()
	name.SetValue(state.Name)
	email.SetValue(state.Email)

	return Model{
		form:       form,
		timeout:    timeout,
		nameInput:  name,
		emailInput: email,
		styles:     DefaultStyles(),
	}
}

// Init mounts the form, loading the patient list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.mountCmd())
}

func (m Model) mountCmd() tea.Cmd {
	form, timeout := m.form, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return patientsLoadedMsg{err: form.Mount(ctx)}
	}
}

func (m Model) submitCmd() tea.Cmd {
	form, timeout := m.form, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := form.Submit(ctx)
		if err == nil && result.OK() {
			// the list is informational; a failed reload keeps the old one
			_ = form.Reload(ctx)
		}
		return submitDoneMsg{result: result, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case patientsLoadedMsg:
		m.loadErr = msg.err
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		switch {
		case msg.err != nil:
			m.status, m.failed = "Erro ao cadastrar: "+msg.err.Error(), true
		case msg.result.OK():
			m.status, m.failed = msg.result.Message, false
			m.syncInputs()
			m.setFocus(focusName)
		default:
			m.status, m.failed = msg.result.Message, true
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case "enter":
			return m.activate()
		}
	}

	return m.updateInputs(msg)
}

// activate handles enter on the focused element.
func (m Model) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusName:
		m.setFocus(focusEmail)
	case focusEmail:
		m.setFocus(focusSubmit)
	case focusSubmit:
		if m.submitting || m.form.SubmitButton().Disabled {
			return m, nil
		}
		m.submitting = true
		m.status = ""
		return m, m.submitCmd()
	case focusClear:
		if m.submitting {
			return m, nil
		}
		m.form.Clear()
		m.syncInputs()
		m.status = ""
		m.setFocus(focusName)
	}
	return m, nil
}

// updateInputs forwards keys to the focused text input and pushes its value into the form.
// Keys are dropped while a submit is running so the values sent stay on screen.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); isKey && m.submitting {
		return m, nil
	}
	switch m.focus {
	case focusName:
		m.nameInput, cmd = m.nameInput.Update(msg)
		m.form.SetName(m.nameInput.Value())
	case focusEmail:
		m.emailInput, cmd = m.emailInput.Update(msg)
		m.form.SetEmail(m.emailInput.Value())
	}
	return m, cmd
}

func (m *Model) syncInputs() {
	state := m.form.State()
	m.nameInput.SetValue(state.Name)
	m.emailInput.SetValue(state.Email)
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.nameInput.Blur()
	m.emailInput.Blur()
	switch f {
	case focusName:
		m.nameInput.Focus()
	case focusEmail:
		m.emailInput.Focus()
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Pacientes"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s%s\n", m.styles.Label.Render("Nome"), m.nameInput.View())
	fmt.Fprintf(&b, "%s%s\n\n", m.styles.Label.Render("E-mail"), m.emailInput.View())

	button := m.form.SubmitButton()
	submitStyle := m.styles.Button
	switch {
	case button.Disabled:
		submitStyle = m.styles.ButtonDisabled
	case m.focus == focusSubmit:
		submitStyle = m.styles.ButtonFocused
	}
	clearStyle := m.styles.Button
	if m.focus == focusClear {
		clearStyle = m.styles.ButtonFocused
	}
	submitLabel := "Cadastrar"
	if m.submitting {
		submitLabel = "Enviando..."
	}
	b.WriteString(submitStyle.Render(submitLabel) + " " + clearStyle.Render("Limpar"))
	b.WriteString("\n")
	if button.Disabled {
		b.WriteString(m.styles.Hint.Render(button.Title))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := m.styles.Success
		if m.failed {
			style = m.styles.Error
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	if m.loadErr != nil {
		b.WriteString("\n" + m.styles.Error.Render("Não foi possível carregar os pacientes") + "\n")
	} else if list := m.form.Patients(); len(list) > 0 {
		b.WriteString("\n" + m.styles.Muted.Render(fmt.Sprintf("%d pacientes cadastrados", len(list))) + "\n")
		for _, p := range list {
			fmt.Fprintf(&b, "  • %s <%s>\n", p.Name, p.Email)
		}
	}

	b.WriteString("\n" + m.styles.Muted.Render("tab: próximo campo • enter: confirmar • esc: sair"))
	return b.String()
}
