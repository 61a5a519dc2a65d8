package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_NoRetriesAndDisabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 20000, cfg.Tasks[TaskTurn].TimeoutMs)
}

func TestLoadConfig_TaskTimeoutOverrides(t *testing.T) {
	t.Setenv("ELICIT_LLM_TIMEOUT_MS", "9000")
	t.Setenv("ELICIT_LLM_TURN_TIMEOUT_MS", "15000")
	t.Setenv("ELICIT_LLM_GREETING_TIMEOUT_MS", "7000")

	cfg := LoadConfig()

	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 15000, cfg.TaskTimeout(TaskTurn))
	assert.Equal(t, 7000, cfg.TaskTimeout(TaskGreeting))
	assert.Equal(t, 30000, cfg.TaskTimeout(TaskFollowup))
}

func TestLoadConfig_InvalidTaskTimeoutOverrideIgnored(t *testing.T) {
	t.Setenv("ELICIT_LLM_TURN_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 20000, cfg.TaskTimeout(TaskTurn))
}

func TestLoadConfig_EnabledAndModel(t *testing.T) {
	t.Setenv("ELICIT_LLM_ENABLED", "true")
	t.Setenv("ELICIT_LLM_MODEL", "qwen2.5")
	t.Setenv("ELICIT_LLM_MAX_RETRIES", "2")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "qwen2.5", cfg.Model)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 1234
	assert.Equal(t, 1234, cfg.TaskTimeout(TaskType("unknown")))
}
