// Package resources provides MCP resources describing the ClickUp context of
// the current session.
//
// Resources:
//   - clickup://workspace: the team, space, folder and list operations use
//     when a query does not name one
//   - clickup://accounts: accounts with a stored token
package resources
