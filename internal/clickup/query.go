package clickup

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// query is a parsed set of instructions.
type query struct {
	mode string
	raw  gjson.Result
}

// invalidQuery is a fault-tolerant parse failure. Run reports it as an
// {"Error": ...} result instead of a Go error so the caller can reformat
// and retry.
type invalidQuery struct {
	message string
}

// parseQuery parses JSON instructions, tolerating a surrounding markdown code
// fence. An empty string is treated as an empty object.
func parseQuery(mode, s string) (*query, *invalidQuery) {
	s = stripCodeFence(s)
	if s == "" {
		s = "{}"
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, &invalidQuery{message: fmt.Sprintf(
			"Input must be a valid JSON. Got the following error: %s. Please reformat and try again.", err)}
	}
	if _, ok := decoded.(map[string]interface{}); !ok {
		return nil, &invalidQuery{message: "Input must be a JSON object. Please reformat and try again."}
	}
	return &query{mode: mode, raw: gjson.Parse(s)}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an optional language tag on the opening line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		if tag := strings.TrimSpace(s[:i]); tag == "" || !strings.ContainsAny(tag, "{[") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func (q *query) get(key string) gjson.Result {
	return q.raw.Get(gjson.Escape(key))
}

func (q *query) has(key string) bool {
	return q.get(key).Exists()
}

// id returns a required identifier. Numbers are accepted since ClickUp ids
// are often numeric.
func (q *query) id(key string) (string, error) {
	v := q.get(key)
	switch v.Type {
	case gjson.String, gjson.Number:
		if s := strings.TrimSpace(v.String()); s != "" {
			return s, nil
		}
	}
	if !v.Exists() {
		return "", &QueryError{Mode: q.mode, Field: key, Reason: "is required"}
	}
	return "", &QueryError{Mode: q.mode, Field: key, Reason: "must be a non-empty string or number"}
}

// optionalID is like id but returns "" when the key is absent.
func (q *query) optionalID(key string) (string, error) {
	if !q.has(key) {
		return "", nil
	}
	return q.id(key)
}

// str returns a required non-empty string.
func (q *query) str(key string) (string, error) {
	v := q.get(key)
	if !v.Exists() {
		return "", &QueryError{Mode: q.mode, Field: key, Reason: "is required"}
	}
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return "", &QueryError{Mode: q.mode, Field: key, Reason: "must be a non-empty string"}
	}
	return v.Str, nil
}

// rawValue returns the raw JSON of a required key of any type.
func (q *query) rawValue(key string) (json.RawMessage, error) {
	v := q.get(key)
	if !v.Exists() {
		return nil, &QueryError{Mode: q.mode, Field: key, Reason: "is required"}
	}
	return json.RawMessage(v.Raw), nil
}

// userIDs returns the "users" array, which must hold integers only.
func (q *query) userIDs(key string) ([]int64, error) {
	v := q.get(key)
	if !v.Exists() {
		return nil, &QueryError{Mode: q.mode, Field: key, Reason: "is required"}
	}
	if !v.IsArray() {
		return nil, &QueryError{Mode: q.mode, Field: key, Reason: "must be an array of user ids"}
	}

	ids := []int64{}
	var bad *QueryError
	v.ForEach(func(_, u gjson.Result) bool {
		if u.Type != gjson.Number || u.Num != math.Trunc(u.Num) {
			bad = &QueryError{Mode: q.mode, Field: key, Reason: fmt.Sprintf(
				"all users must be integers, not strings! Got user %s of type %s", u.Raw, u.Type)}
			return false
		}
		ids = append(ids, u.Int())
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return ids, nil
}

// pick copies the allowed keys present in the query into a request body,
// preserving their raw JSON values.
func (q *query) pick(allowed []string) map[string]json.RawMessage {
	body := make(map[string]json.RawMessage)
	for _, key := range allowed {
		if v := q.get(key); v.Exists() {
			body[key] = json.RawMessage(v.Raw)
		}
	}
	return body
}

// taskCreateFields are the body fields accepted by POST /list/{id}/task.
var taskCreateFields = []string{
	"name", "description", "markdown_description", "text_content",
	"assignees", "tags", "status", "priority",
	"due_date", "due_date_time", "time_estimate",
	"start_date", "start_date_time", "points",
	"notify_all", "parent", "links_to", "custom_fields",
}

// listCreateFields are the body fields accepted by the list create endpoints.
var listCreateFields = []string{
	"name", "content", "markdown_content",
	"due_date", "due_date_time", "priority", "assignee", "status",
}
