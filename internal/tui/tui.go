// Package tui is the interactive terminal front end: a login prompt followed
// by task panes and the commands of the task menu.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/taskdesk/internal/model"
	"github.com/Joseda-hg/taskdesk/internal/report"
	"github.com/Joseda-hg/taskdesk/internal/tasks"
	"github.com/Joseda-hg/taskdesk/internal/users"
)

const (
	viewHeader = "header"
	viewFooter = "footer"
	viewAll    = "all"
	viewMine   = "mine"
	viewDetail = "detail"
	viewPanel  = "panel"
	viewForm   = "form"
	viewHelp   = "help"
)

// Deps are the services the UI drives.
type Deps struct {
	Tasks   *tasks.Service
	Users   *users.Directory
	Reports *report.Generator
	Logger  *log.Logger
}

type UI struct {
	tasks   *tasks.Service
	users   *users.Directory
	reports *report.Generator
	logger  *log.Logger
	gui     *gocui.Gui

	session users.Session

	all     []model.Task
	mine    []model.Task
	history []model.HistoryEntry

	selectedAll  int
	selectedMine int
	focus        string

	panelTitle string
	panel      string

	form       *formState
	formEditor *formEditor
	helpActive bool
	status     string
}

type formEditor struct {
	ui *UI
}

func Run(deps Deps) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(deps)
	ui.gui = gui
	gui.Mouse = true
	ui.formEditor = &formEditor{ui: ui}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(deps Deps) *UI {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &UI{
		tasks:   deps.Tasks,
		users:   deps.Users,
		reports: deps.Reports,
		logger:  logger,
		focus:   viewMine,
		form:    newForm(formLogin, nil),
	}
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quitMenu},
		{'a', u.openAdd},
		{'1', u.focusAll},
		{'2', u.focusMine},
		{gocui.KeyTab, u.switchFocus},
		{'c', u.completeTask},
		{'o', u.openReassign},
		{'d', u.openReschedule},
		{'s', u.showStats},
		{'g', u.generateReports},
		{'v', u.viewReports},
		{'r', u.openRegister},
		{'R', u.reload},
		{'?', u.toggleHelp},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewAll, viewMine} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
	}

	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlJ, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}

	for _, name := range []string{viewAll, viewMine} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + layout.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	allY0 := bodyTop
	allY1 := allY0 + layout.allHeight - 1
	mineY0 := allY1 + 1
	mineY1 := bodyBottom

	detailY0 := bodyTop
	detailY1 := detailY0 + layout.detailHeight - 1
	panelY0 := detailY1 + 1
	panelY1 := bodyBottom

	allView, err := gui.SetView(viewAll, leftX0, allY0, leftX1, allY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		allView.Title = "1 All tasks"
		allView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(allView, u.focus == viewAll, true)
	u.renderTaskList(allView, u.all, u.selectedAll, u.focus == viewAll)

	mineView, err := gui.SetView(viewMine, leftX0, mineY0, leftX1, mineY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		mineView.TitleColor = gocui.ColorGreen
	}
	mineView.Title = "2 My tasks"
	if u.session.Valid() {
		mineView.Title = fmt.Sprintf("2 My tasks (%s)", u.session.Username)
	}
	applyViewStyle(mineView, u.focus == viewMine, true)
	u.renderTaskList(mineView, u.mine, u.selectedMine, u.focus == viewMine)

	detailView, err := gui.SetView(viewDetail, rightX0, detailY0, rightX1, detailY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "Task"
		detailView.Wrap = true
	}
	applyViewStyle(detailView, false, false)
	u.renderDetail(detailView)

	panelView, err := gui.SetView(viewPanel, rightX0, panelY0, rightX1, panelY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		panelView.Wrap = true
	}
	panelView.Title = u.panelTitle
	applyViewStyle(panelView, false, false)
	panelView.Clear()
	fmt.Fprint(panelView, u.panel)

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil

	return nil
}

type layout struct {
	leftWidth    int
	allHeight    int
	mineHeight   int
	detailHeight int
	panelHeight  int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 8)

	leftWidth := safeWidth / 2
	if leftWidth < 30 {
		leftWidth = 30
	}
	if leftWidth > safeWidth-18 {
		leftWidth = safeWidth / 2
	}

	allHeight := max(safeHeight/2, 4)
	mineHeight := max(safeHeight-allHeight, 4)

	detailHeight := max(int(float64(safeHeight)*0.45), 6)
	panelHeight := max(safeHeight-detailHeight, 4)

	return layout{
		leftWidth:    leftWidth,
		allHeight:    allHeight,
		mineHeight:   mineHeight,
		detailHeight: detailHeight,
		panelHeight:  panelHeight,
	}
}

func (u *UI) loadTasks() error {
	ctx := context.Background()
	all, err := u.tasks.All(ctx)
	if err != nil {
		return err
	}
	u.all = all

	mine := make([]model.Task, 0, len(all))
	for _, task := range all {
		if task.Assignee == u.session.Username {
			mine = append(mine, task)
		}
	}
	u.mine = mine

	if u.selectedAll >= len(u.all) {
		u.selectedAll = max(len(u.all)-1, 0)
	}
	if u.selectedMine >= len(u.mine) {
		u.selectedMine = max(len(u.mine)-1, 0)
	}

	return u.loadHistory()
}

func (u *UI) loadHistory() error {
	selected := u.selectedTask()
	if selected == nil {
		u.history = nil
		return nil
	}

	history, err := u.tasks.History(context.Background(), *selected)
	if err != nil {
		return err
	}
	u.history = history
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	if !u.session.Valid() {
		fmt.Fprint(view, "taskdesk | not logged in")
		return
	}
	role := "user"
	if u.session.IsAdmin() {
		role = "admin"
	}
	overview := report.TaskOverviewOf(u.mine, u.tasks.Today())
	fmt.Fprintf(view, "taskdesk | %s (%s) | %d tasks, %d open, %d overdue | %s",
		u.session.Username, role, overview.Total, overview.Incomplete, overview.Overdue,
		model.FormatDate(u.tasks.Today()))
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "a add | c complete | o reassign | d due date | 1 all | 2 mine | R reload | ? help | q quit")
	if u.session.IsAdmin() {
		fmt.Fprintln(view, "r register user | s statistics | g generate reports | v view reports")
	} else {
		fmt.Fprintln(view, "")
	}
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderTaskList(view *gocui.View, list []model.Task, selected int, focused bool) {
	view.Clear()
	today := u.tasks.Today()
	for i, task := range list {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task, today))
	}
	if focused {
		view.SetCursor(0, max(min(selected, len(list)-1), 0))
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedTask()
	if selected == nil {
		fmt.Fprint(view, "No task selected")
		return
	}

	lines := formatTaskDetail(*selected, u.tasks.Today())
	if len(u.history) > 0 {
		lines = append(lines, "", "History:")
		for _, entry := range u.history {
			lines = append(lines, fmt.Sprintf("  %s | %s", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Details))
		}
	}
	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewAll:
		u.selectedAll = min(row, len(u.all)-1)
	case viewMine:
		u.selectedMine = min(row, len(u.mine)-1)
	default:
		return nil
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range []string{viewAll, viewMine, viewDetail, viewPanel} {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) selectedTask() *model.Task {
	switch u.focus {
	case viewAll:
		if u.selectedAll >= 0 && u.selectedAll < len(u.all) {
			return &u.all[u.selectedAll]
		}
	default:
		if u.selectedMine >= 0 && u.selectedMine < len(u.mine) {
			return &u.mine[u.selectedMine]
		}
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewAll {
		return u.setFocus(gui, viewMine)
	}
	return u.setFocus(gui, viewAll)
}

func (u *UI) focusAll(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewAll)
}

func (u *UI) focusMine(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewMine)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return u.loadHistory()
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewAll:
		if u.selectedAll < len(u.all)-1 {
			u.selectedAll++
			return u.loadHistory()
		}
	case viewMine:
		if u.selectedMine < len(u.mine)-1 {
			u.selectedMine++
			return u.loadHistory()
		}
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewAll:
		if u.selectedAll > 0 {
			u.selectedAll--
			return u.loadHistory()
		}
	case viewMine:
		if u.selectedMine > 0 {
			u.selectedMine--
			return u.loadHistory()
		}
	}
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.loadTasks()
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 16
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewHelp, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

// quitMenu is the "q" key: it leaves the program unless a prompt is open, in
// which case the key is typed into the prompt.
func (u *UI) quitMenu(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.quit(gui, view)
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  1 All tasks | 2 My tasks | Tab switch pane",
		"  j/k or arrows move selection, mouse click selects",
		"",
		"Tasks:",
		"  a add task",
		"  c mark selected task complete (My tasks)",
		"  o reassign selected task (My tasks)",
		"  d change due date of selected task (My tasks)",
		"",
		"Admin:",
		"  r register user | s statistics",
		"  g generate reports | v view reports",
		"",
		"Forms:",
		"  tab/arrows next field | enter submit | esc cancel",
		"  dates are written as DD Mon YYYY, e.g. 05 Jan 2024",
		"",
		"R reload | ? help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
