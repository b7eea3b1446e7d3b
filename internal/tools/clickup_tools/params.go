package clickup_tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/clickup-mcp/internal/toolkit"
)

type paramKind int

const (
	kindString paramKind = iota
	kindNumber
	kindBool
	// kindIntList accepts "1,2,3" or a JSON array and is sent as an array of
	// integers.
	kindIntList
	// kindStringList accepts "a,b" or a JSON array and is sent as an array of
	// strings.
	kindStringList
	// kindJSON accepts a JSON object, array or quoted string encoded as
	// string. Anything else is sent as a plain string.
	kindJSON
)

type param struct {
	name        string
	description string
	kind        paramKind
	enum        []string
}

const (
	argAccount      = "account"
	argInstructions = "instructions"
)

var (
	taskIDParam = param{name: "task_id", description: "ID of the task. Custom task ids are accepted when the workspace is known."}
	listIDParam = param{name: "list_id", description: "ID of the list. Defaults to the list selected for this session."}
	folderParam = param{name: "folder_id", description: "ID of the folder. Defaults to the folder selected for this session."}
	spaceParam  = param{name: "space_id", description: "ID of the space. Defaults to the space selected for this session."}
)

// operationParams lists the typed parameters each operation exposes besides
// instructions and account.
var operationParams = map[string][]param{
	toolkit.ModeGetTask: {taskIDParam},
	toolkit.ModeGetTaskAttribute: {
		taskIDParam,
		{name: "attribute_name", description: "Name of the task attribute to return, e.g. status, due_date or assignees."},
	},
	toolkit.ModeGetTeams: nil,
	toolkit.ModeCreateTask: {
		{name: "name", description: "Name of the new task."},
		listIDParam,
		{name: "description", description: "Plain text description."},
		{name: "markdown_description", description: "Markdown description. Takes precedence over description."},
		{name: "status", description: "Status name, must exist in the list."},
		{name: "priority", description: "Priority from 1 (urgent) to 4 (low).", kind: kindNumber},
		{name: "due_date", description: "Due date as Unix time in milliseconds.", kind: kindNumber},
		{name: "start_date", description: "Start date as Unix time in milliseconds.", kind: kindNumber},
		{name: "time_estimate", description: "Time estimate in milliseconds.", kind: kindNumber},
		{name: "assignees", description: "Comma-separated user ids to assign.", kind: kindIntList},
		{name: "tags", description: "Comma-separated tag names.", kind: kindStringList},
		{name: "parent", description: "ID of the parent task to create a subtask."},
		{name: "notify_all", description: "Notify all assignees and watchers.", kind: kindBool},
	},
	toolkit.ModeCreateList: {
		{name: "name", description: "Name of the new list."},
		folderParam,
		spaceParam,
		{name: "content", description: "Description of the list."},
		{name: "status", description: "Status of the list."},
		{name: "priority", description: "Priority from 1 (urgent) to 4 (low).", kind: kindNumber},
		{name: "due_date", description: "Due date as Unix time in milliseconds.", kind: kindNumber},
		{name: "assignee", description: "User id of the list owner.", kind: kindNumber},
	},
	toolkit.ModeCreateFolder: {
		{name: "name", description: "Name of the new folder."},
		spaceParam,
	},
	toolkit.ModeGetList: {
		listIDParam,
		folderParam,
		spaceParam,
	},
	toolkit.ModeGetFolders: {
		folderParam,
		spaceParam,
	},
	toolkit.ModeGetSpaces: {
		{name: "team_id", description: "ID of the workspace. Defaults to the workspace selected for this session."},
	},
	toolkit.ModeUpdateTask: {
		taskIDParam,
		{name: "attribute_name", description: "Task attribute to update, e.g. name, status, priority or due_date."},
		{name: "value", description: "New value. Objects and arrays are given as JSON, e.g. {\"add\": [\"tag\"]}; numeric and boolean attributes such as priority or due_date are converted; anything else is sent as text.", kind: kindJSON},
	},
	toolkit.ModeUpdateTaskAssignees: {
		taskIDParam,
		{name: "operation", description: "Whether to add or remove the users.", enum: []string{"add", "rem"}},
		{name: "users", description: "Comma-separated user ids.", kind: kindIntList},
	},
}

// toolOptions builds the MCP parameter schema of an operation.
func toolOptions(mode, description string) []mcp.ToolOption {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}

	for _, p := range operationParams[mode] {
		propOpts := []mcp.PropertyOption{mcp.Description(p.description)}
		if len(p.enum) > 0 {
			propOpts = append(propOpts, mcp.Enum(p.enum...))
		}
		switch p.kind {
		case kindNumber:
			opts = append(opts, mcp.WithNumber(p.name, propOpts...))
		case kindBool:
			opts = append(opts, mcp.WithBoolean(p.name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(p.name, propOpts...))
		}
	}

	if mode != toolkit.ModeGetTeams {
		opts = append(opts, mcp.WithString(argInstructions,
			mcp.Description("Raw JSON query for the operation. When set, all other parameters except account are ignored."),
		))
	}
	opts = append(opts, mcp.WithString(argAccount,
		mcp.Description("Account name (default: 'default'). Used to manage multiple ClickUp accounts."),
	))
	return opts
}

// buildQuery returns the JSON query for an operation. Explicit instructions
// win; otherwise the remaining arguments are encoded, with typed parameters
// converted to the shapes ClickUp expects.
func buildQuery(mode string, args map[string]interface{}) (string, error) {
	if instructions, ok := args[argInstructions].(string); ok && strings.TrimSpace(instructions) != "" {
		return instructions, nil
	}

	kinds := make(map[string]paramKind)
	for _, p := range operationParams[mode] {
		kinds[p.name] = p.kind
	}

	query := make(map[string]interface{}, len(args))
	for name, value := range args {
		if name == argAccount || name == argInstructions {
			continue
		}
		converted, err := convert(name, kinds[name], value)
		if err != nil {
			return "", err
		}
		if mode == toolkit.ModeUpdateTask && name == "value" {
			attribute, _ := args["attribute_name"].(string)
			converted = typedAttributeValue(attribute, converted)
		}
		query[name] = converted
	}

	b, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments: %w", err)
	}
	return string(b), nil
}

func convert(name string, kind paramKind, value interface{}) (interface{}, error) {
	s, isString := value.(string)
	if !isString {
		return value, nil
	}

	if kind == kindIntList || kind == kindStringList {
		if trimmed := strings.TrimSpace(s); strings.HasPrefix(trimmed, "[") && json.Valid([]byte(trimmed)) {
			return json.RawMessage(trimmed), nil
		}
	}

	switch kind {
	case kindIntList:
		ids := []int64{}
		for _, part := range splitList(s) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a comma-separated list of integers, got %q", name, part)
			}
			ids = append(ids, id)
		}
		return ids, nil
	case kindStringList:
		return splitList(s), nil
	case kindJSON:
		trimmed := strings.TrimSpace(s)
		if trimmed != "" && strings.ContainsRune("{[\"", rune(trimmed[0])) && json.Valid([]byte(trimmed)) {
			return json.RawMessage(trimmed), nil
		}
		return s, nil
	case kindNumber:
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, nil
		}
		return s, nil
	default:
		return s, nil
	}
}

// Task attributes whose update value is a number or a boolean.
var (
	numericAttributes = map[string]bool{
		"priority": true, "due_date": true, "start_date": true, "time_estimate": true, "points": true,
	}
	booleanAttributes = map[string]bool{
		"due_date_time": true, "start_date_time": true, "archived": true,
	}
)

// typedAttributeValue converts a plain string update value to the type of
// the attribute it is written to. Other values are returned unchanged.
func typedAttributeValue(attribute string, value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	attribute = strings.TrimSpace(attribute)
	switch {
	case numericAttributes[attribute]:
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	case booleanAttributes[attribute]:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return s
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
