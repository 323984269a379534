// Package config loads the policy configuration for one invocation. Loading
// never fails: a missing file, invalid syntax, or a partial structure each
// resolve to the built-in defaults for the missing portion, merged
// field-by-field with whatever valid portions are present.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the project configuration artifact inside the state directory.
const FileName = "config.json"

// Rule pairs a regular expression with the label reported when it matches.
type Rule struct {
	Pattern string `json:"pattern"`
	Label   string `json:"label"`
}

// RuleSet holds one policy domain's ordered pattern lists. Dangerous
// patterns block on first match; warn patterns allow with a cautionary
// message.
type RuleSet struct {
	Dangerous []Rule `json:"dangerous"`
	Warn      []Rule `json:"warn"`
}

// SubagentCheck configures the quality gate applied when a subagent stops.
type SubagentCheck struct {
	Enabled bool `json:"enabled"`
	// MinOutputLength is the shortest final report that counts as real work.
	MinOutputLength int `json:"min_output_length"`
	// ErrorKeywords mark a report as a failure unless it also mentions
	// success.
	ErrorKeywords []string `json:"error_keywords"`
}

// Config is the resolved policy configuration, read-only after load.
type Config struct {
	Command   RuleSet `json:"command"`
	FileWrite RuleSet `json:"file_write"`

	// Subagent gates subagent-stop events on output quality.
	Subagent SubagentCheck `json:"subagent"`

	// EnforceTaskCompletion makes stop-request events force continuation
	// while incomplete tasks remain.
	EnforceTaskCompletion bool `json:"enforce_task_completion"`
	// InjectSessionContext emits pending tasks and recent planning notes as
	// additional context on session start.
	InjectSessionContext bool `json:"inject_session_context"`
	// EnhancePrompts injects the current task list as context on every user
	// prompt that does not already ask about tasks.
	EnhancePrompts bool `json:"enhance_prompts"`
	// LogActivity enables the append-only activity log.
	LogActivity bool `json:"log_activity"`
}

// fileConfig mirrors Config with optional fields so absent keys can be told
// apart from explicit values during the merge.
type fileConfig struct {
	Command               *RuleSet       `json:"command"`
	FileWrite             *RuleSet       `json:"file_write"`
	Subagent              *SubagentCheck `json:"subagent"`
	EnforceTaskCompletion *bool          `json:"enforce_task_completion"`
	InjectSessionContext  *bool          `json:"inject_session_context"`
	EnhancePrompts        *bool          `json:"enhance_prompts"`
	LogActivity           *bool          `json:"log_activity"`
}

// Load resolves the configuration for the given state directory
// (e.g. <workdir>/.warden). Global values from ~/.config/warden/config.json
// apply first, project values override them, and built-in defaults fill
// everything else. The returned warnings describe fragments that were
// ignored as invalid; they are diagnostics, never failures.
func Load(stateDir string) (Config, []string) {
	cfg := Defaults()
	var warnings []string

	global, warn := loadFile(globalPath())
	if warn != "" {
		warnings = append(warnings, warn)
	}
	project, warn := loadFile(filepath.Join(stateDir, FileName))
	if warn != "" {
		warnings = append(warnings, warn)
	}

	merge(&cfg, global)
	merge(&cfg, project)
	return cfg, warnings
}

// globalPath returns the user-level configuration file location.
func globalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "warden", FileName)
}

// loadFile parses one configuration file. Absence is silent; a parse failure
// is reported as a warning and the file is ignored.
func loadFile(path string) (*fileConfig, string) {
	if path == "" {
		return nil, ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ""
		}
		return nil, fmt.Sprintf("config %s unreadable: %v", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Sprintf("config %s ignored: %v", path, err)
	}
	return &fc, ""
}

// merge applies the file's present fields over cfg. A present-but-empty rule
// set is an explicit choice and wins over the defaults.
func merge(cfg *Config, fc *fileConfig) {
	if fc == nil {
		return
	}
	if fc.Command != nil {
		cfg.Command = *fc.Command
	}
	if fc.FileWrite != nil {
		cfg.FileWrite = *fc.FileWrite
	}
	if fc.Subagent != nil {
		cfg.Subagent = *fc.Subagent
	}
	if fc.EnforceTaskCompletion != nil {
		cfg.EnforceTaskCompletion = *fc.EnforceTaskCompletion
	}
	if fc.InjectSessionContext != nil {
		cfg.InjectSessionContext = *fc.InjectSessionContext
	}
	if fc.EnhancePrompts != nil {
		cfg.EnhancePrompts = *fc.EnhancePrompts
	}
	if fc.LogActivity != nil {
		cfg.LogActivity = *fc.LogActivity
	}
}
