package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readSettings(t *testing.T, path string) (map[string]json.RawMessage, map[string][]hookMatcher) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	settings := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}
	hooks := map[string][]hookMatcher{}
	if err := json.Unmarshal(settings["hooks"], &hooks); err != nil {
		t.Fatalf("hooks section not valid: %v", err)
	}
	return settings, hooks
}

func matchersContain(matchers []hookMatcher, command string) bool {
	for _, m := range matchers {
		for _, h := range m.Hooks {
			if h.Command == command {
				return true
			}
		}
	}
	return false
}

func TestInstallRegistersEveryEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")
	if err := installHooks(path); err != nil {
		t.Fatalf("installHooks: %v", err)
	}

	_, hooks := readSettings(t, path)
	for _, h := range hookEvents {
		if !matchersContain(hooks[string(h.kind)], "warden hook "+h.use) {
			t.Errorf("event %s not registered", h.kind)
		}
	}
}

func TestInstallPreservesExistingSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".claude", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	existing := `{
  "model": "opus",
  "hooks": {
    "PreToolUse": [
      {"matcher": "Bash", "hooks": [{"type": "command", "command": "other-tool check"}]}
    ]
  }
}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := installHooks(path); err != nil {
		t.Fatalf("installHooks: %v", err)
	}

	settings, hooks := readSettings(t, path)
	var model string
	if err := json.Unmarshal(settings["model"], &model); err != nil || model != "opus" {
		t.Errorf("unrelated setting lost: %s", settings["model"])
	}
	if !matchersContain(hooks["PreToolUse"], "other-tool check") {
		t.Error("existing registration lost")
	}
	if !matchersContain(hooks["PreToolUse"], "warden hook pre-tool-use") {
		t.Error("warden registration missing")
	}
}

func TestInstallKeepsUnknownRegistrationFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".claude", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	existing := `{
  "hooks": {
    "PreToolUse": [
      {"matcher": "Bash", "hooks": [{"type": "command", "command": "other-tool check", "timeout": 30}]}
    ]
  }
}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := installHooks(path); err != nil {
		t.Fatalf("installHooks: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var settings struct {
		Hooks map[string][]struct {
			Matcher string `json:"matcher"`
			Hooks   []struct {
				Command string `json:"command"`
				Timeout int    `json:"timeout"`
			} `json:"hooks"`
		} `json:"hooks"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("settings not valid JSON: %v", err)
	}

	var found bool
	for _, m := range settings.Hooks["PreToolUse"] {
		for _, h := range m.Hooks {
			if h.Command == "other-tool check" {
				found = true
				if h.Timeout != 30 {
					t.Errorf("timeout field lost: got %d, want 30", h.Timeout)
				}
				if m.Matcher != "Bash" {
					t.Errorf("matcher field lost: got %q", m.Matcher)
				}
			}
		}
	}
	if !found {
		t.Fatal("existing registration lost")
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")
	if err := installHooks(path); err != nil {
		t.Fatalf("first install: %v", err)
	}
	if err := installHooks(path); err != nil {
		t.Fatalf("second install: %v", err)
	}

	_, hooks := readSettings(t, path)
	for _, h := range hookEvents {
		if got := len(hooks[string(h.kind)]); got != 1 {
			t.Errorf("event %s registered %d times, want 1", h.kind, got)
		}
	}
}
