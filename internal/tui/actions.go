package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/report"
	"github.com/Joseda-hg/taskdesk/internal/tasks"
)

func (u *UI) openAdd(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = newForm(formAdd, nil)
	return nil
}

func (u *UI) openReassign(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task, ok := u.editableTask()
	if !ok {
		return nil
	}
	u.form = newForm(formReassign, task)
	return nil
}

func (u *UI) openReschedule(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task, ok := u.editableTask()
	if !ok {
		return nil
	}
	u.form = newForm(formReschedule, task)
	return nil
}

func (u *UI) openRegister(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.requireAdmin("register new users") {
		return nil
	}
	u.form = newForm(formRegister, nil)
	return nil
}

// editableTask returns a copy of the selected task when edits are allowed
// on it. Edits go through the My tasks pane only.
func (u *UI) editableTask() (*model.Task, bool) {
	if u.focus != viewMine {
		u.status = "Select a task in My tasks (2) to edit it"
		return nil, false
	}
	selected := u.selectedTask()
	if selected == nil {
		u.status = "No task selected"
		return nil, false
	}
	task := *selected
	return &task, true
}

func (u *UI) requireAdmin(action string) bool {
	if u.session.IsAdmin() {
		return true
	}
	u.status = fmt.Sprintf("Only admin can %s", action)
	return false
}

func (u *UI) completeTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task, ok := u.editableTask()
	if !ok {
		return nil
	}
	if _, err := u.tasks.Edit(context.Background(), u.session, *task, tasks.Edit{Action: tasks.ActionComplete}); err != nil {
		return u.reject(err)
	}
	u.status = fmt.Sprintf("Task: %s has been marked as complete for %s", task.Title, task.Assignee)
	return u.loadTasks()
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	var (
		message string
		err     error
	)
	switch u.form.kind {
	case formLogin:
		message, err = u.submitLogin()
	case formAdd:
		message, err = u.submitAdd()
	case formReassign:
		message, err = u.submitReassign()
	case formReschedule:
		message, err = u.submitReschedule()
	case formRegister:
		message, err = u.submitRegister()
	}
	if err != nil {
		return u.reject(err)
	}

	u.closeForm(gui)
	u.status = message
	return u.loadTasks()
}

func (u *UI) submitLogin() (string, error) {
	session, err := u.users.Authenticate(u.form.value(fieldLoginUsername), u.form.fields[fieldLoginPassword].Value)
	if err != nil {
		u.form.fields[fieldLoginPassword].Value = ""
		return "", err
	}
	u.session = session
	u.focus = viewMine
	u.logger.Printf("[tui][login][ok] user=%s", session.Username)
	return fmt.Sprintf("Welcome back, %s!", session.Username), nil
}

func (u *UI) submitAdd() (string, error) {
	due, err := parseDue(u.form.fields[fieldAddDue].Value)
	if err != nil {
		return "", err
	}
	task, err := u.tasks.Add(context.Background(), u.session, tasks.NewTask{
		Assignee:    u.form.value(fieldAddAssignee),
		Title:       u.form.value(fieldAddTitle),
		Description: u.form.value(fieldAddDescription),
		DueDate:     due,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task successfully assigned to %s", task.Assignee), nil
}

func (u *UI) submitReassign() (string, error) {
	edited, err := u.tasks.Edit(context.Background(), u.session, *u.form.task, tasks.Edit{
		Action:   tasks.ActionReassign,
		Assignee: u.form.value(0),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task successfully reassigned to %s", edited.Assignee), nil
}

func (u *UI) submitReschedule() (string, error) {
	due, err := parseDue(u.form.fields[0].Value)
	if err != nil {
		return "", err
	}
	edited, err := u.tasks.Edit(context.Background(), u.session, *u.form.task, tasks.Edit{
		Action:  tasks.ActionReschedule,
		DueDate: due,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task: %s due date changed to %s for %s", edited.Title, model.FormatDate(edited.DueDate), edited.Assignee), nil
}

func (u *UI) submitRegister() (string, error) {
	user, err := u.users.Register(context.Background(), u.session,
		u.form.value(fieldRegisterUsername),
		u.form.fields[fieldRegisterPassword].Value,
		u.form.fields[fieldRegisterConfirm].Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s has been successfully added to database", user.Username), nil
}

func (u *UI) cancelForm(gui *gocui.Gui, view *gocui.View) error {
	if u.form != nil && u.form.kind == formLogin {
		return u.quit(gui, view)
	}
	u.closeForm(gui)
	u.status = ""
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	if gui != nil {
		_ = gui.DeleteView(viewForm)
		_, _ = gui.SetCurrentView(u.focus)
	}
}

func (u *UI) showStats(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.requireAdmin("display statistics") {
		return nil
	}
	all, err := u.tasks.All(context.Background())
	if err != nil {
		return u.reject(err)
	}
	u.panelTitle = "System summative statistics"
	u.panel = report.FormatSummary(report.Summarize(u.users.Names(), all))
	u.status = ""
	return nil
}

func (u *UI) generateReports(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.requireAdmin("generate reports") {
		return nil
	}
	if _, err := u.reports.Generate(context.Background()); err != nil {
		return u.reject(err)
	}
	u.status = "Report successfully generated!"
	return nil
}

// viewReports regenerates both artifacts and shows them in the side panel.
func (u *UI) viewReports(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || !u.requireAdmin("view reports") {
		return nil
	}
	if _, err := u.reports.Generate(context.Background()); err != nil {
		return u.reject(err)
	}
	taskText, userText, err := u.reports.Read()
	if err != nil {
		return u.reject(err)
	}
	u.panelTitle = "Reports"
	u.panel = taskText + "\n" + strings.Repeat("*", 40) + "\n" + userText
	u.status = ""
	return nil
}

// reject shows a rejected operation in the status line. Storage failures are
// logged as well.
func (u *UI) reject(err error) error {
	if errors.Is(err, model.ErrStoreUnavailable) || errors.Is(err, model.ErrMalformedRecord) {
		u.logger.Printf("[tui][err] %v", err)
	}
	u.status = err.Error()
	return nil
}
