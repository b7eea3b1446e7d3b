// Package clickup_tools exposes the ClickUp toolkit as MCP tools.
//
// # Available Tools
//
// Read operations (always available):
//   - clickup_get_task: Get a task with its normalised fields
//   - clickup_get_task_attribute: Get a single attribute of a task
//   - clickup_get_teams: List the workspaces and their members
//   - clickup_get_list: Get a list, or the lists of a folder or space
//   - clickup_get_folders: Get a folder, or the folders of a space
//   - clickup_get_spaces: List the spaces of a workspace
//   - clickup_get_tasks: Get several tasks at once
//
// Write operations (only with --yolo):
//   - clickup_create_task, clickup_create_list, clickup_create_folder
//   - clickup_update_task, clickup_update_task_assignees
//
// Every operation tool takes typed parameters and an optional 'instructions'
// argument carrying the raw JSON query; instructions win when both are given.
//
// # Multi-Account Support
//
// All tools accept an optional 'account' parameter. Without it the account
// selected by the HTTP transport is used, and 'default' otherwise.
package clickup_tools
