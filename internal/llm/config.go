package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskTurn               TaskType = "turn"
	TaskGreeting           TaskType = "greeting"
	TaskSessionSynthesis   TaskType = "session_synthesis"
	TaskAggregateSynthesis TaskType = "aggregate_synthesis"
	TaskFollowup           TaskType = "followup"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default. Interview turns are not retried: a failed turn
// degrades to the fallback reply instead.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  20000,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			TaskTurn:               {Temperature: 0.6, MaxTokens: 1024, TimeoutMs: 20000},
			TaskGreeting:           {Temperature: 0.7, MaxTokens: 256, TimeoutMs: 10000},
			TaskSessionSynthesis:   {Temperature: 0.2, MaxTokens: 2048, TimeoutMs: 60000},
			TaskAggregateSynthesis: {Temperature: 0.2, MaxTokens: 4096, TimeoutMs: 90000},
			TaskFollowup:           {Temperature: 0.4, MaxTokens: 1024, TimeoutMs: 30000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("ELICIT_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ELICIT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ELICIT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("ELICIT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ELICIT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("ELICIT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskTurn, "ELICIT_LLM_TURN_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskGreeting, "ELICIT_LLM_GREETING_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskSessionSynthesis, "ELICIT_LLM_SESSION_SYNTHESIS_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskAggregateSynthesis, "ELICIT_LLM_AGGREGATE_SYNTHESIS_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskFollowup, "ELICIT_LLM_FOLLOWUP_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
