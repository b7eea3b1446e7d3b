// Package tokenstore persists ClickUp access tokens per account.
//
// Two backends are available: FileStore writes one owner-only file per
// account under the user cache directory, and SQLiteStore keeps all tokens in
// one SQLite database. Open selects a backend by name.
package tokenstore
