// Package clickup implements the ClickUp API v2 wrapper behind the toolkit's
// actions.
//
// A Client is bound to one access token and tracks a current location
// (team, space, folder, list) that operations default to. Missing ids are
// discovered when the client is created:
//
//	client, err := clickup.NewClient(ctx, clickup.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	out, err := client.Run(ctx, toolkit.ModeGetTask, `{"task_id": "86a0t44tq"}`)
//
// Run accepts the JSON instructions produced by an agent and returns JSON.
// Requests are rate limited to ClickUp's per-token budget and retried on 429
// and 5xx responses. Every request is traced and counted through
// internal/instrumentation.
//
// OAuthApp covers the authorization code flow for ClickUp OAuth apps;
// personal tokens (pk_...) can be used directly.
package clickup
