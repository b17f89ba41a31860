package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasks/internal/models"
)

func TestOutputFormatter_Success(t *testing.T) {
	task := models.Task{ID: "id-12345", Title: "Hello"}

	t.Run("human", func(t *testing.T) {
		var out bytes.Buffer
		f := &OutputFormatter{Out: &out}
		require.NoError(t, f.Success("Created Hello", task))
		assert.Equal(t, "Created Hello\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		f := &OutputFormatter{JSON: true, Out: &out}
		require.NoError(t, f.Success("Created Hello", task))
		assert.JSONEq(t, `{"success":true,"data":{"_id":"id-12345","title":"Hello","done":false,"deleted":false}}`, out.String())
	})

	t.Run("quiet prints id", func(t *testing.T) {
		var out bytes.Buffer
		f := &OutputFormatter{Quiet: true, Out: &out}
		require.NoError(t, f.Success("Created Hello", task))
		assert.Equal(t, "id-12345\n", out.String())
	})

	t.Run("quiet without id prints nothing", func(t *testing.T) {
		var out bytes.Buffer
		f := &OutputFormatter{Quiet: true, Out: &out}
		require.NoError(t, f.Success("Evicted", map[string]any{"evicted": true}))
		assert.Empty(t, out.String())
	})
}

func TestOutputFormatter_Error(t *testing.T) {
	t.Run("human goes to stderr", func(t *testing.T) {
		var out, errOut bytes.Buffer
		f := &OutputFormatter{Quiet: true, Out: &out, Err: &errOut}
		require.NoError(t, f.ErrorWithSuggestion("NOT_FOUND", "delete abcde: no tasks found", "try --list-all"))
		assert.Empty(t, out.String())
		assert.Equal(t, "error: delete abcde: no tasks found\nhint: try --list-all\n", errOut.String())
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		f := &OutputFormatter{JSON: true, Out: &out}
		require.NoError(t, f.Error("AMBIGUOUS", "more than one task found"))
		assert.JSONEq(t, `{"success":false,"error":{"code":"AMBIGUOUS","message":"more than one task found"}}`, out.String())
	})
}

func TestOutputFormatter_Println(t *testing.T) {
	var out bytes.Buffer
	(&OutputFormatter{Out: &out}).Println("shown")
	(&OutputFormatter{Quiet: true, Out: &out}).Println("hidden")
	(&OutputFormatter{JSON: true, Out: &out}).Println("hidden")
	assert.Equal(t, "shown\n", out.String())
}
