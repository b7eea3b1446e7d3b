// Package toolkit defines the fixed catalog of ClickUp operations and builds
// invocable actions for them.
//
// A Toolkit is created once from an APIWrapper with FromAPIWrapper. Every
// action shares that wrapper and carries a Mode equal to its Name, which the
// wrapper uses to select the remote call:
//
//	tk := toolkit.FromAPIWrapper(client)
//	for _, a := range tk.Tools() {
//	    fmt.Println(a.Name)
//	}
//	out, err := tk.Tools()[0].Run(ctx, `{"task_id": "86a0t44tq"}`)
//
// The package performs no I/O. Transport, authentication and response parsing
// belong to the wrapper implementation in internal/clickup.
package toolkit
