package tui

import (
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/record"
)

type formKind int

const (
	formLogin formKind = iota
	formAdd
	formReassign
	formReschedule
	formRegister
)

type formField struct {
	Label  string
	Value  string
	Secret bool
}

type formState struct {
	kind   formKind
	task   *model.Task
	fields []formField
	index  int
}

const (
	fieldLoginUsername = iota
	fieldLoginPassword
)

const (
	fieldAddAssignee = iota
	fieldAddTitle
	fieldAddDescription
	fieldAddDue
)

const (
	fieldRegisterUsername = iota
	fieldRegisterPassword
	fieldRegisterConfirm
)

func newForm(kind formKind, task *model.Task) *formState {
	form := &formState{kind: kind, task: task}
	switch kind {
	case formLogin:
		form.fields = []formField{
			{Label: "Username"},
			{Label: "Password", Secret: true},
		}
	case formAdd:
		form.fields = []formField{
			{Label: "Assign to"},
			{Label: "Title"},
			{Label: "Description (<255)"},
			{Label: "Due (DD Mon YYYY)"},
		}
	case formReassign:
		form.fields = []formField{{Label: "Reassign to"}}
	case formReschedule:
		form.fields = []formField{{Label: "New due (DD Mon YYYY)"}}
		if task != nil {
			form.fields[0].Value = model.FormatDate(task.DueDate)
		}
	case formRegister:
		form.fields = []formField{
			{Label: "New username"},
			{Label: "Password", Secret: true},
			{Label: "Confirm password", Secret: true},
		}
	}
	return form
}

func (f *formState) title() string {
	switch f.kind {
	case formLogin:
		return "Login"
	case formAdd:
		return "New Task"
	case formReassign:
		return "Reassign: " + f.task.Title
	case formReschedule:
		return "Due date: " + f.task.Title
	case formRegister:
		return "Register User"
	}
	return "Form"
}

func (f *formState) value(index int) string {
	return strings.TrimSpace(f.fields[index].Value)
}

// parseDue reads a "DD Mon YYYY" date field.
func parseDue(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, model.Errorf(model.ErrInvalidDate, "due date is required, use DD Mon YYYY")
	}
	due, err := record.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w (use DD Mon YYYY)", err)
	}
	return due, nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := len(u.form.fields) + 1
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.title()
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, displayValue(field))
	}
	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func displayValue(field formField) string {
	if field.Secret {
		return strings.Repeat("*", len([]rune(field.Value)))
	}
	return field.Value
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}
