package toolkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWrapper struct {
	calls []stubCall
}

type stubCall struct {
	mode  string
	query string
}

func (s *stubWrapper) Run(_ context.Context, mode, query string) (string, error) {
	s.calls = append(s.calls, stubCall{mode: mode, query: query})
	return `{"mode":"` + mode + `"}`, nil
}

var expectedNames = []string{
	"get_task",
	"get_task_attribute",
	"get_teams",
	"create_task",
	"create_list",
	"create_folder",
	"get_list",
	"get_folders",
	"get_spaces",
	"update_task",
	"update_task_assignees",
}

func TestFromAPIWrapper_Scenario(t *testing.T) {
	tk := FromAPIWrapper(&stubWrapper{})
	tools := tk.Tools()

	require.Len(t, tools, 11)
	assert.Equal(t, "get_task", tools[0].Name)
	assert.Equal(t, "update_task_assignees", tools[len(tools)-1].Name)
}

func TestFromAPIWrapper_Names(t *testing.T) {
	tools := FromAPIWrapper(&stubWrapper{}).Tools()

	got := make([]string, 0, len(tools))
	seen := make(map[string]bool)
	for _, a := range tools {
		got = append(got, a.Name)
		assert.False(t, seen[a.Name], "duplicate name %q", a.Name)
		seen[a.Name] = true
	}
	assert.Equal(t, expectedNames, got)
	assert.Equal(t, expectedNames, Names())
}

func TestFromAPIWrapper_ModeEqualsName(t *testing.T) {
	for _, a := range FromAPIWrapper(&stubWrapper{}).Tools() {
		assert.Equal(t, a.Name, a.Mode)
	}
}

func TestFromAPIWrapper_Descriptions(t *testing.T) {
	for _, a := range FromAPIWrapper(&stubWrapper{}).Tools() {
		assert.NotEmpty(t, a.Description, "action %s has no description", a.Name)
	}
}

func TestFromAPIWrapper_SharedWrapper(t *testing.T) {
	w := &stubWrapper{}
	for _, a := range FromAPIWrapper(w).Tools() {
		got, ok := a.APIWrapper().(*stubWrapper)
		require.True(t, ok)
		assert.Same(t, w, got)
	}
}

func TestTools_Idempotent(t *testing.T) {
	tk := FromAPIWrapper(&stubWrapper{})
	first := tk.Tools()
	second := tk.Tools()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}

	// mutating the returned slice must not reorder the toolkit
	first[0], first[1] = first[1], first[0]
	assert.Equal(t, "get_task", tk.Tools()[0].Name)
}

func TestAction_Run(t *testing.T) {
	w := &stubWrapper{}
	tk := FromAPIWrapper(w)

	a, ok := tk.Lookup("get_spaces")
	require.True(t, ok)

	out, err := a.Run(context.Background(), `{"team_id": "90130119692"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"mode":"get_spaces"}`, out)
	require.Len(t, w.calls, 1)
	assert.Equal(t, "get_spaces", w.calls[0].mode)
	assert.Equal(t, `{"team_id": "90130119692"}`, w.calls[0].query)
}

func TestAction_RunWithoutWrapper(t *testing.T) {
	// building never fails; the missing wrapper surfaces at invocation
	tk := FromAPIWrapper(nil)
	require.Len(t, tk.Tools(), 11)

	_, err := tk.Tools()[0].Run(context.Background(), "{}")
	assert.ErrorIs(t, err, ErrNoWrapper)
}

func TestLookup(t *testing.T) {
	tk := FromAPIWrapper(&stubWrapper{})

	for _, name := range expectedNames {
		a, ok := tk.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, a.Name)
	}

	_, ok := tk.Lookup("delete_task")
	assert.False(t, ok)
}

func TestAction_ReadOnly(t *testing.T) {
	readOnly := map[string]bool{
		"get_task":           true,
		"get_task_attribute": true,
		"get_teams":          true,
		"get_list":           true,
		"get_folders":        true,
		"get_spaces":         true,
	}
	for _, a := range FromAPIWrapper(&stubWrapper{}).Tools() {
		assert.Equal(t, readOnly[a.Name], a.ReadOnly(), a.Name)
	}
}

func TestOperations_ReturnsCopy(t *testing.T) {
	ops := Operations()
	require.Len(t, ops, 11)
	ops[0].Name = "changed"
	assert.Equal(t, "get_task", Operations()[0].Name)
}
