// Package wizard is the terminal front-end of the form: three steps rendered
// as a bubbletea model over the controller, with color-coded field rings for
// structural and remote validation state.
package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zgloszenie/accident-form/internal/api"
	"github.com/zgloszenie/accident-form/internal/model"
)

type stage int

const (
	stageDraftChoice stage = iota
	stageForm
	stageDone
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	toastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Toast is one transient notification line.
type Toast struct {
	Level string
	Text  string
}

// Notifier bridges controller notifications onto the bubbletea event loop.
type Notifier struct {
	ch chan Toast
}

// NewNotifier returns a buffered notifier; overflowing toasts are dropped
// instead of blocking the controller.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan Toast, 16)}
}

func (n *Notifier) push(level, text string) {
	select {
	case n.ch <- Toast{Level: level, Text: text}:
	default:
	}
}

// Info sends an informational toast.
func (n *Notifier) Info(msg string) { n.push("info", msg) }

// Success sends a success toast.
func (n *Notifier) Success(msg string) { n.push("success", msg) }

// Error sends an error toast.
func (n *Notifier) Error(msg string) { n.push("error", msg) }

// Controller is the orchestrator surface the wizard drives.
type Controller interface {
	Start() bool
	ContinueDraft()
	StartOver()
	Values() model.FormValues
	Step() model.Step
	FormErrors() map[model.FieldName]string
	Statuses() map[model.FieldName]string
	Hints() map[model.FieldName]string
	RemoteErrors() map[model.FieldName]string
	History() []api.VersionSummary
	SetString(f model.FieldName, val string)
	SetBool(f model.FieldName, val bool)
	SaveDraft()
	Next() error
	Prev()
	FieldBlur(ctx context.Context, field model.FieldName) error
	ValidateSection(ctx context.Context) error
	Submit(ctx context.Context) error
}

type toastMsg Toast

type remoteDoneMsg struct{ err error }

type submitDoneMsg struct{ err error }

// Model is the bubbletea model of the whole wizard.
type Model struct {
	ctrl     Controller
	notifier *Notifier
	ctx      context.Context

	stage       stage
	choice      int
	fields      []fieldDef
	inputs      []textinput.Model
	focus       int
	busy        bool
	spin        spinner.Model
	toast       Toast
	quitting    bool
	finalReport string
}

// New builds the wizard. Start decides whether the draft choice screen is
// shown first.
func New(ctx context.Context, ctrl Controller, notifier *Notifier) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{ctrl: ctrl, notifier: notifier, ctx: ctx, spin: sp}
	if ctrl.Start() {
		m.stage = stageDraftChoice
	} else {
		m.stage = stageForm
	}
	m.rebuildInputs()
	return m
}

func listenToasts(n *Notifier) tea.Cmd {
	return func() tea.Msg { return toastMsg(<-n.ch) }
}

// Init starts the toast listener and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listenToasts(m.notifier), m.spin.Tick)
}

// rebuildInputs recreates the per-field inputs for the active step from the
// controller's value snapshot.
func (m *Model) rebuildInputs() {
	values := m.ctrl.Values()
	m.fields = stepFields(m.ctrl.Step(), values)
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, def := range m.fields {
		if def.boolean {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		if p := values.StringField(def.name); p != nil {
			in.SetValue(*p)
		}
		m.inputs[i] = in
	}
	if m.focus >= len(m.fields) {
		m.focus = 0
	}
	m.applyFocus()
}

func (m *Model) applyFocus() {
	for i := range m.inputs {
		if m.fields[i].boolean {
			continue
		}
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	prev := m.fields[m.focus].name
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.applyFocus()
	return m.blurCmd(prev)
}

// blurCmd fires the scoped remote validation for the field just left.
func (m *Model) blurCmd(field model.FieldName) tea.Cmd {
	if m.busy {
		return nil
	}
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return remoteDoneMsg{err: ctrl.FieldBlur(ctx, field)}
	}
}

func (m *Model) sectionCmd() tea.Cmd {
	m.busy = true
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return remoteDoneMsg{err: ctrl.ValidateSection(ctx)}
	}
}

func (m *Model) submitCmd() tea.Cmd {
	m.busy = true
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx)}
	}
}

// Update handles key events and background command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastMsg:
		m.toast = Toast(msg)
		return m, listenToasts(m.notifier)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case remoteDoneMsg:
		m.busy = false
		return m, nil
	case submitDoneMsg:
		m.busy = false
		if msg.err == nil {
			m.stage = stageDone
			m.finalReport = m.renderHistory()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.stage {
	case stageDraftChoice:
		return m.handleDraftChoiceKey(msg)
	case stageDone:
		if msg.String() == "q" || msg.Type == tea.KeyEnter {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	return m.handleFormKey(msg)
}

func (m Model) handleDraftChoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp, tea.KeyDown, tea.KeyTab:
		m.choice = 1 - m.choice
	case tea.KeyEnter:
		if m.choice == 0 {
			m.ctrl.ContinueDraft()
		} else {
			m.ctrl.StartOver()
		}
		m.stage = stageForm
		m.rebuildInputs()
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		return m, m.moveFocus(-1)
	case tea.KeyDown, tea.KeyTab, tea.KeyEnter:
		return m, m.moveFocus(1)
	case tea.KeyCtrlN:
		if err := m.ctrl.Next(); err == nil {
			m.focus = 0
			m.rebuildInputs()
		}
		return m, nil
	case tea.KeyCtrlB:
		m.ctrl.Prev()
		m.focus = 0
		m.rebuildInputs()
		return m, nil
	case tea.KeyCtrlS:
		m.ctrl.SaveDraft()
		return m, nil
	case tea.KeyCtrlR:
		if m.busy {
			return m, nil
		}
		return m, m.sectionCmd()
	case tea.KeyCtrlD:
		if m.ctrl.Step() != model.StepSummary || m.busy {
			return m, nil
		}
		return m, m.submitCmd()
	}

	if len(m.fields) == 0 {
		return m, nil
	}
	def := m.fields[m.focus]
	if def.boolean {
		if msg.String() == " " || msg.String() == "x" {
			vals := m.ctrl.Values()
			cur := vals.BoolField(def.name)
			if cur != nil {
				m.ctrl.SetBool(def.name, !*cur)
				if def.name == model.FieldResidenceAbroad {
					m.rebuildInputs()
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	val := m.inputs[m.focus].Value()
	if def.normalize != nil {
		norm := def.normalize(val)
		if norm != val {
			m.inputs[m.focus].SetValue(norm)
			val = norm
		}
	}
	m.ctrl.SetString(def.name, val)
	return m, cmd
}

func statusMarker(status string, spin spinner.Model) string {
	switch status {
	case api.StatusSuccess:
		return okStyle.Render("✓")
	case api.StatusObjection:
		return errorStyle.Render("✗")
	case api.StatusPending:
		return pendingStyle.Render(spin.View())
	default:
		return " "
	}
}

// View renders the active stage.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.stage {
	case stageDraftChoice:
		return m.viewDraftChoice()
	case stageDone:
		return m.viewDone()
	}
	if m.ctrl.Step() == model.StepSummary {
		return m.viewSummary()
	}
	return m.viewForm()
}

func (m Model) viewDraftChoice() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Znaleziono zapisany szkic formularza") + "\n\n")
	options := []string{"Kontynuuj szkic", "Zacznij od nowa"}
	for i, opt := range options {
		cursor := "  "
		if i == m.choice {
			cursor = focusStyle.Render("> ")
		}
		b.WriteString(cursor + opt + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter: wybierz • ctrl+c: wyjdź"))
	return b.String()
}

func (m Model) viewForm() string {
	step := m.ctrl.Step()
	values := m.ctrl.Values()
	errors := m.ctrl.FormErrors()
	statuses := m.ctrl.Statuses()
	hints := m.ctrl.Hints()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Zgłoszenie wypadku — krok "+step.Progress()) + "\n\n")
	for i, def := range m.fields {
		marker := statusMarker(statuses[def.name], m.spin)
		label := labelStyle.Render(def.label)
		if i == m.focus {
			label = focusStyle.Render(def.label)
		}
		if def.boolean {
			mark := "[ ]"
			if p := values.BoolField(def.name); p != nil && *p {
				mark = "[x]"
			}
			b.WriteString(fmt.Sprintf(" %s %s %s\n", marker, mark, label))
		} else {
			b.WriteString(fmt.Sprintf(" %s %s: %s\n", marker, label, m.inputs[i].View()))
		}
		if msg, ok := errors[def.name]; ok {
			b.WriteString("     " + errorStyle.Render(msg) + "\n")
		} else if hint, ok := hints[def.name]; ok {
			b.WriteString("     " + errorStyle.Render(hint) + "\n")
		}
	}
	b.WriteString("\n" + m.toastLine())
	b.WriteString(helpStyle.Render("tab/↑↓: pola • spacja: przełącz • ctrl+n: dalej • ctrl+b: wstecz • ctrl+r: sprawdź sekcję • ctrl+s: zapisz szkic"))
	return b.String()
}

func (m Model) viewSummary() string {
	values := m.ctrl.Values()
	errors := m.ctrl.FormErrors()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Podsumowanie — krok "+model.StepSummary.Progress()) + "\n\n")
	rows := []struct {
		label string
		value string
	}{
		{"PESEL", values.Pesel},
		{"Imię i nazwisko", strings.TrimSpace(values.FirstName + " " + values.LastName)},
		{"Dokument", strings.TrimSpace(values.DocType + " " + values.DocNumber)},
		{"Telefon", values.Phone},
		{"Adres", values.Residence.Street + " " + values.Residence.HouseNumber + ", " + values.Residence.PostalCode + " " + values.Residence.City},
		{"Data wypadku", values.Accident.Date},
		{"Miejsce wypadku", values.Accident.Place},
		{"Urazy", values.Accident.InjuryTypes},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf(" %s: %s\n", labelStyle.Render(row.label), row.value))
	}
	if len(errors) > 0 {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Braki w formularzu: %d pól wymaga uzupełnienia", len(errors))) + "\n")
	}
	if remoteErrors := m.ctrl.RemoteErrors(); len(remoteErrors) > 0 {
		b.WriteString("\n" + errorStyle.Render("Zastrzeżenia walidacji:") + "\n")
		for _, def := range allFields() {
			if msg, ok := remoteErrors[def.name]; ok {
				b.WriteString(fmt.Sprintf("   %s: %s\n", def.label, errorStyle.Render(msg)))
			}
		}
	}
	if m.busy {
		b.WriteString("\n " + m.spin.View() + " trwa walidacja i wysyłka...\n")
	}
	b.WriteString("\n" + m.toastLine())
	b.WriteString(helpStyle.Render("ctrl+d: wyślij • ctrl+r: sprawdź zdalnie • ctrl+b: wstecz • ctrl+s: zapisz szkic"))
	return b.String()
}

func (m Model) viewDone() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Formularz wysłany") + "\n\n")
	b.WriteString(m.finalReport)
	b.WriteString("\n" + helpStyle.Render("enter/q: zakończ"))
	return b.String()
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for _, v := range m.ctrl.History() {
		comment := ""
		if v.Comment != nil {
			comment = " — " + *v.Comment
		}
		b.WriteString(fmt.Sprintf(" wersja %d (%s) %s%s\n", v.Version, v.Source, v.CreatedAt, comment))
	}
	if b.Len() == 0 {
		b.WriteString(" brak zapisanych wersji\n")
	}
	return b.String()
}

func (m Model) toastLine() string {
	if m.toast.Text == "" {
		return "\n"
	}
	style := toastStyle
	if m.toast.Level == "error" {
		style = errorStyle
	} else if m.toast.Level == "success" {
		style = okStyle
	}
	return style.Render(m.toast.Text) + "\n\n"
}
