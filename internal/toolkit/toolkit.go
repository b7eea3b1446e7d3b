package toolkit

import (
	"context"
	"errors"
	"strings"
)

// Operation names. Each doubles as the dispatch mode passed to the wrapper.
const (
	ModeGetTask             = "get_task"
	ModeGetTaskAttribute    = "get_task_attribute"
	ModeGetTeams            = "get_teams"
	ModeCreateTask          = "create_task"
	ModeCreateList          = "create_list"
	ModeCreateFolder        = "create_folder"
	ModeGetList             = "get_list"
	ModeGetFolders          = "get_folders"
	ModeGetSpaces           = "get_spaces"
	ModeUpdateTask          = "update_task"
	ModeUpdateTaskAssignees = "update_task_assignees"
)

// ErrNoWrapper is returned when an action built from a nil wrapper is run.
var ErrNoWrapper = errors.New("toolkit: action has no API wrapper")

// APIWrapper executes one remote operation selected by mode. The query is the
// operation's JSON instructions; the result is the JSON-encoded response.
type APIWrapper interface {
	Run(ctx context.Context, mode, query string) (string, error)
}

// Operation describes one entry of the toolkit.
type Operation struct {
	Name        string
	Description string
}

// operations is kept in declaration order; Tools() preserves it.
var operations = []Operation{
	{Name: ModeGetTask, Description: getTaskPrompt},
	{Name: ModeGetTaskAttribute, Description: getTaskAttributePrompt},
	{Name: ModeGetTeams, Description: getAllTeamsPrompt},
	{Name: ModeCreateTask, Description: createTaskPrompt},
	{Name: ModeCreateList, Description: createListPrompt},
	{Name: ModeCreateFolder, Description: createFolderPrompt},
	{Name: ModeGetList, Description: getListPrompt},
	{Name: ModeGetFolders, Description: getFoldersPrompt},
	{Name: ModeGetSpaces, Description: getSpacesPrompt},
	{Name: ModeUpdateTask, Description: updateTaskPrompt},
	{Name: ModeUpdateTaskAssignees, Description: updateTaskAssigneesPrompt},
}

// Operations returns a copy of the operation table.
func Operations() []Operation {
	out := make([]Operation, len(operations))
	copy(out, operations)
	return out
}

// Names returns the operation names in declaration order.
func Names() []string {
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = op.Name
	}
	return names
}

// Action is a single invocable operation bound to a shared wrapper.
type Action struct {
	Name        string
	Description string
	Mode        string

	wrapper APIWrapper
}

// Run executes the action by passing its mode and the instructions to the wrapper.
func (a *Action) Run(ctx context.Context, instructions string) (string, error) {
	if a.wrapper == nil {
		return "", ErrNoWrapper
	}
	return a.wrapper.Run(ctx, a.Mode, instructions)
}

// APIWrapper returns the wrapper the action dispatches to.
func (a *Action) APIWrapper() APIWrapper {
	return a.wrapper
}

// ReadOnly reports whether the action only reads remote state.
func (a *Action) ReadOnly() bool {
	return strings.HasPrefix(a.Mode, "get_")
}

// Toolkit is the ordered, immutable set of actions built from one wrapper.
type Toolkit struct {
	tools  []*Action
	byName map[string]*Action
}

// FromAPIWrapper builds one action per operation, all sharing w.
// The wrapper is not inspected; problems with it show up when an action runs.
func FromAPIWrapper(w APIWrapper) *Toolkit {
	tk := &Toolkit{
		tools:  make([]*Action, 0, len(operations)),
		byName: make(map[string]*Action, len(operations)),
	}
	for _, op := range operations {
		action := &Action{
			Name:        op.Name,
			Description: op.Description,
			Mode:        op.Name,
			wrapper:     w,
		}
		tk.tools = append(tk.tools, action)
		tk.byName[action.Name] = action
	}
	return tk
}

// Tools returns the actions in declaration order. The slice is a copy; the
// actions are shared.
func (t *Toolkit) Tools() []*Action {
	out := make([]*Action, len(t.tools))
	copy(out, t.tools)
	return out
}

// Lookup returns the action with the given name.
func (t *Toolkit) Lookup(name string) (*Action, bool) {
	a, ok := t.byName[name]
	return a, ok
}
