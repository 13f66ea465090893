package translations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NullTranslationHelper(t *testing.T) {
	assert.Equal(t, "default text", NullTranslationHelper("SOME_KEY", "default text"))
}

func Test_TranslationHelper(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("returns the default when no override exists", func(t *testing.T) {
		translate, _ := TranslationHelper()
		assert.Equal(t, "List failed runs", translate("TOOL_GET_FAILED_WORKFLOW_RUNS_DESCRIPTION", "List failed runs"))
	})

	t.Run("environment overrides the default", func(t *testing.T) {
		t.Setenv("ACTIONS_TRIAGE_TOOL_GET_FAILED_WORKFLOW_RUNS_DESCRIPTION", "Overridden")
		translate, _ := TranslationHelper()
		assert.Equal(t, "Overridden", translate("TOOL_GET_FAILED_WORKFLOW_RUNS_DESCRIPTION", "List failed runs"))
	})

	t.Run("first resolution wins for a key", func(t *testing.T) {
		translate, _ := TranslationHelper()
		assert.Equal(t, "first", translate("SOME_KEY", "first"))
		assert.Equal(t, "first", translate("SOME_KEY", "second"))
	})

	t.Run("dump writes the collected keys", func(t *testing.T) {
		translate, dump := TranslationHelper()
		translate("A_KEY", "a value")
		dump()
		assert.FileExists(t, "actions-triage-mcp-server-config.json")
	})
}
