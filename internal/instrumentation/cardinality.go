package instrumentation

import "strconv"

// Label reducers. Metric labels must come from small closed sets; anything
// user-controlled is folded into a bucket before it is recorded.

// knownModes is the closed label set for the mode attribute: the toolkit
// operations plus the client's internal calls.
var knownModes = map[string]bool{
	"get_task":              true,
	"get_task_attribute":    true,
	"get_teams":             true,
	"create_task":           true,
	"create_list":           true,
	"create_folder":         true,
	"get_list":              true,
	"get_folders":           true,
	"get_spaces":            true,
	"update_task":           true,
	"update_task_assignees": true,
	"discover":              true,
	"oauth_token":           true,
}

// ModeLabel returns mode if it is a known dispatch mode and "unknown" otherwise.
//
//	ModeLabel("get_task")   // "get_task"
//	ModeLabel("drop_table") // "unknown"
func ModeLabel(mode string) string {
	if knownModes[mode] {
		return mode
	}
	return StatusUnknown
}

// StatusClass folds an HTTP status code into its class.
//
//	StatusClass(200) // "2xx"
//	StatusClass(429) // "4xx"
//	StatusClass(0)   // "unknown"
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return StatusUnknown
	}
	return strconv.Itoa(code/100) + "xx"
}

// AccountLabel keeps the default account distinguishable without exposing
// named accounts, which are often email addresses.
func AccountLabel(account string) string {
	switch account {
	case "", "default":
		return "default"
	default:
		return "named"
	}
}
