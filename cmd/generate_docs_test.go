package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/clickup-mcp/internal/resources"
)

func TestToolCategory(t *testing.T) {
	assert.Equal(t, categoryRead, toolCategory("clickup_get_task"))
	assert.Equal(t, categoryRead, toolCategory("clickup_get_tasks"))
	assert.Equal(t, categoryWrite, toolCategory("clickup_create_task"))
	assert.Equal(t, categoryWrite, toolCategory("clickup_update_task_assignees"))
	assert.Equal(t, categoryOther, toolCategory("clickup_delete_task"))
	assert.Equal(t, categoryOther, toolCategory("list_emails"))
}

func TestWriteDocs(t *testing.T) {
	tools, err := registeredTools()
	require.NoError(t, err)
	assert.Len(t, tools, 12)

	var buf bytes.Buffer
	require.NoError(t, writeDocs(&buf, tools, resources.Definitions()))
	md := buf.String()

	assert.True(t, strings.HasPrefix(md, "# MCP Tools Reference"))
	assert.Contains(t, md, "### clickup_update_task_assignees")
	assert.Contains(t, md, "- `task_ids` (string, required): ")
	assert.Contains(t, md, "### clickup://workspace")
	assert.NotContains(t, md, "## Other")
	assert.Less(t, strings.Index(md, "## Read Tools"), strings.Index(md, "## Write Tools"))
	assert.Less(t, strings.Index(md, "## Write Tools"), strings.Index(md, "## Resources"))
}

func TestGenerateDocsCommand_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tools.md")

	cmd := newGenerateDocsCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"-o", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Write Tools")
	assert.Contains(t, stderr.String(), out)
}
