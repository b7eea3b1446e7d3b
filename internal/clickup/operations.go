package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/teemow/clickup-mcp/internal/logging"
	"github.com/teemow/clickup-mcp/internal/toolkit"
)

// normalize converts a payload with conv. When the payload does not have the
// expected shape it is logged and returned unparsed.
func normalize[T any](c *Client, mode string, r gjson.Result, conv func(gjson.Result) (T, bool)) interface{} {
	if v, ok := conv(r); ok {
		return v
	}
	c.logger.Warn("unexpected ClickUp payload, returning it unparsed", logging.KeyMode, mode)
	if r.Raw == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}

// collect converts the array under key into {key: [...]}.
func collect[T any](key string, conv func(gjson.Result) (T, bool)) func(gjson.Result) (map[string][]T, bool) {
	return func(r gjson.Result) (map[string][]T, bool) {
		arr := r.Get(key)
		if !arr.IsArray() {
			return nil, false
		}
		items := make([]T, 0)
		ok := true
		arr.ForEach(func(_, v gjson.Result) bool {
			item, good := conv(v)
			if !good {
				ok = false
				return false
			}
			items = append(items, item)
			return true
		})
		if !ok {
			return nil, false
		}
		return map[string][]T{key: items}, true
	}
}

func teamOf(r gjson.Result) (Team, bool)   { return toTeam(r), r.IsObject() }
func spaceOf(r gjson.Result) (Space, bool) { return toSpace(r), r.IsObject() }

// taskParams are the query parameters ClickUp needs to resolve custom task
// ids, which are only valid together with a team id.
func (c *Client) taskParams(includeSubtasks bool) url.Values {
	params := url.Values{}
	if team := c.TeamID(); team != "" {
		params.Set("custom_task_ids", "true")
		params.Set("team_id", team)
	}
	if includeSubtasks {
		params.Set("include_subtasks", "true")
	}
	return params
}

func (c *Client) getTeams(ctx context.Context) (interface{}, error) {
	r, err := c.do(ctx, request{mode: toolkit.ModeGetTeams, method: http.MethodGet, path: "/team"})
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	return normalize(c, toolkit.ModeGetTeams, r, collect("teams", teamOf)), nil
}

func (c *Client) fetchTask(ctx context.Context, q *query) (gjson.Result, error) {
	taskID, err := q.id("task_id")
	if err != nil {
		return gjson.Result{}, err
	}
	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodGet,
		path:   "/task/" + url.PathEscape(taskID),
		params: c.taskParams(true),
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	return r, nil
}

func (c *Client) getTask(ctx context.Context, q *query) (interface{}, error) {
	r, err := c.fetchTask(ctx, q)
	if err != nil {
		return nil, err
	}
	return normalize(c, q.mode, r, toTask), nil
}

// getTaskAttribute returns {attribute_name: value}. Normalised task fields
// take precedence over the raw payload.
func (c *Client) getTaskAttribute(ctx context.Context, q *query) (interface{}, error) {
	name, err := q.str("attribute_name")
	if err != nil {
		return nil, err
	}
	r, err := c.fetchTask(ctx, q)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if task, ok := toTask(r); ok {
		encoded, err := json.Marshal(task)
		if err != nil {
			return nil, fmt.Errorf("failed to encode task: %w", err)
		}
		if err := json.Unmarshal(encoded, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
	}

	if v, ok := fields[name]; ok {
		return map[string]json.RawMessage{name: v}, nil
	}
	if v := r.Get(gjson.Escape(name)); v.Exists() {
		return map[string]json.RawMessage{name: json.RawMessage(v.Raw)}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return errorResult(fmt.Sprintf(
		"attribute_name = %s was not found in task keys %v. Please call again with one of the key names.",
		name, keys)), nil
}

func (c *Client) createTask(ctx context.Context, q *query) (interface{}, error) {
	if _, err := q.str("name"); err != nil {
		return nil, err
	}
	listID, err := q.optionalID("list_id")
	if err != nil {
		return nil, err
	}
	if listID == "" {
		listID = c.ListID()
	}
	if listID == "" {
		return nil, &QueryError{Mode: q.mode, Field: "list_id", Reason: "no list selected; pass list_id or create a list first"}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodPost,
		path:   "/list/" + url.PathEscape(listID) + "/task",
		params: c.taskParams(false),
		body:   q.pick(taskCreateFields),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return normalize(c, q.mode, r, toTask), nil
}

// createList creates a list in the current folder, or directly in the space
// when there is none, and makes it the current list.
func (c *Client) createList(ctx context.Context, q *query) (interface{}, error) {
	if _, err := q.str("name"); err != nil {
		return nil, err
	}
	folderID, err := q.optionalID("folder_id")
	if err != nil {
		return nil, err
	}
	spaceID, err := q.optionalID("space_id")
	if err != nil {
		return nil, err
	}

	var path string
	switch {
	case folderID != "":
		path = "/folder/" + url.PathEscape(folderID) + "/list"
	case spaceID != "":
		path = "/space/" + url.PathEscape(spaceID) + "/list"
	case c.FolderID() != "":
		path = "/folder/" + url.PathEscape(c.FolderID()) + "/list"
	case c.SpaceID() != "":
		path = "/space/" + url.PathEscape(c.SpaceID()) + "/list"
	default:
		return nil, &QueryError{Mode: q.mode, Field: "folder_id", Reason: "no folder or space selected"}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodPost,
		path:   path,
		body:   q.pick(listCreateFields),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	if id := r.Get("id").String(); id != "" {
		c.setListID(id)
	}
	return normalize(c, q.mode, r, toList), nil
}

// createFolder creates a folder in the current space and makes it the
// current folder.
func (c *Client) createFolder(ctx context.Context, q *query) (interface{}, error) {
	name, err := q.str("name")
	if err != nil {
		return nil, err
	}
	spaceID, err := q.optionalID("space_id")
	if err != nil {
		return nil, err
	}
	if spaceID == "" {
		spaceID = c.SpaceID()
	}
	if spaceID == "" {
		return nil, &QueryError{Mode: q.mode, Field: "space_id", Reason: "no space selected"}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodPost,
		path:   "/space/" + url.PathEscape(spaceID) + "/folder",
		body:   map[string]string{"name": name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	if id := r.Get("id").String(); id != "" {
		c.setFolderID(id)
	}
	return normalize(c, q.mode, r, toFolder), nil
}

// getLists returns one list when list_id is given, otherwise the lists of
// the current folder (or space when there is no folder).
func (c *Client) getLists(ctx context.Context, q *query) (interface{}, error) {
	listID, err := q.optionalID("list_id")
	if err != nil {
		return nil, err
	}
	if listID != "" {
		r, err := c.do(ctx, request{mode: q.mode, method: http.MethodGet, path: "/list/" + url.PathEscape(listID)})
		if err != nil {
			return nil, fmt.Errorf("failed to get list %s: %w", listID, err)
		}
		return normalize(c, q.mode, r, toList), nil
	}

	folderID, err := q.optionalID("folder_id")
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		folderID = c.FolderID()
	}

	var path string
	switch {
	case folderID != "":
		path = "/folder/" + url.PathEscape(folderID) + "/list"
	case c.SpaceID() != "":
		path = "/space/" + url.PathEscape(c.SpaceID()) + "/list"
	default:
		return nil, &QueryError{Mode: q.mode, Field: "list_id", Reason: "no list, folder or space selected"}
	}

	r, err := c.do(ctx, request{mode: q.mode, method: http.MethodGet, path: path, params: defaultParams()})
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	return normalize(c, q.mode, r, collect("lists", toList)), nil
}

// getFolders returns one folder when folder_id is given, otherwise the
// folders of the current space.
func (c *Client) getFolders(ctx context.Context, q *query) (interface{}, error) {
	folderID, err := q.optionalID("folder_id")
	if err != nil {
		return nil, err
	}
	if folderID != "" {
		r, err := c.do(ctx, request{mode: q.mode, method: http.MethodGet, path: "/folder/" + url.PathEscape(folderID)})
		if err != nil {
			return nil, fmt.Errorf("failed to get folder %s: %w", folderID, err)
		}
		return normalize(c, q.mode, r, toFolder), nil
	}

	spaceID, err := q.optionalID("space_id")
	if err != nil {
		return nil, err
	}
	if spaceID == "" {
		spaceID = c.SpaceID()
	}
	if spaceID == "" {
		return nil, &QueryError{Mode: q.mode, Field: "space_id", Reason: "no space selected"}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodGet,
		path:   "/space/" + url.PathEscape(spaceID) + "/folder",
		params: defaultParams(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get folders: %w", err)
	}
	return normalize(c, q.mode, r, collect("folders", toFolder)), nil
}

func (c *Client) getSpaces(ctx context.Context, q *query) (interface{}, error) {
	teamID, err := q.optionalID("team_id")
	if err != nil {
		return nil, err
	}
	if teamID == "" {
		teamID = c.TeamID()
	}
	if teamID == "" {
		return nil, &QueryError{Mode: q.mode, Field: "team_id", Reason: "no team selected"}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodGet,
		path:   "/team/" + url.PathEscape(teamID) + "/space",
		params: defaultParams(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spaces: %w", err)
	}
	return normalize(c, q.mode, r, collect("spaces", spaceOf)), nil
}

// updateTask sets a single attribute: {attribute_name: value}.
func (c *Client) updateTask(ctx context.Context, q *query) (interface{}, error) {
	taskID, err := q.id("task_id")
	if err != nil {
		return nil, err
	}
	attr, err := q.str("attribute_name")
	if err != nil {
		return nil, err
	}
	value, err := q.rawValue("value")
	if err != nil {
		return nil, err
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodPut,
		path:   "/task/" + url.PathEscape(taskID),
		params: c.taskParams(true),
		body:   map[string]json.RawMessage{attr: value},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return normalize(c, q.mode, r, toTask), nil
}

// updateTaskAssignees adds or removes (operation "add" or "rem") integer user
// ids from a task.
func (c *Client) updateTaskAssignees(ctx context.Context, q *query) (interface{}, error) {
	taskID, err := q.id("task_id")
	if err != nil {
		return nil, err
	}
	users, err := q.userIDs("users")
	if err != nil {
		return nil, err
	}
	op, err := q.str("operation")
	if err != nil {
		return nil, err
	}

	assignees := map[string][]int64{"add": {}, "rem": {}}
	switch op {
	case "add", "rem":
		assignees[op] = users
	default:
		return nil, &QueryError{Mode: q.mode, Field: "operation",
			Reason: fmt.Sprintf("invalid operation (%s). Valid options ['add', 'rem']", op)}
	}

	r, err := c.do(ctx, request{
		mode:   q.mode,
		method: http.MethodPut,
		path:   "/task/" + url.PathEscape(taskID),
		params: c.taskParams(true),
		body:   map[string]interface{}{"assignees": assignees},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update assignees of task %s: %w", taskID, err)
	}
	return normalize(c, q.mode, r, toTask), nil
}
