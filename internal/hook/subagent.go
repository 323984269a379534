package hook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/awendt/warden/internal/config"
	"github.com/awendt/warden/internal/decision"
	"github.com/awendt/warden/internal/event"
)

// placeholderOutputs are final reports that carry no actual work product.
var placeholderOutputs = map[string]bool{
	"":                true,
	"None":            true,
	"N/A":             true,
	"TODO":            true,
	"Not implemented": true,
}

// subagentWork is what the quality gate derives from the session history:
// the last delegated task and the subagent's final report.
type subagentWork struct {
	description string
	hasTask     bool
	output      string
}

// subagentStop gates a finishing subagent on the quality of its final report.
// Every failure to derive anything from the history is permissive: the gate
// only blocks when it has positive evidence of a bad report.
func (r *Runner) subagentStop(p *event.Payload) decision.Decision {
	if p.StopHookActive || !r.cfg.Subagent.Enabled || p.TranscriptPath == "" {
		return decision.Allowed()
	}

	work := readSubagentWork(p.TranscriptPath)
	if !work.hasTask {
		return decision.Allowed()
	}

	if reason := reviewSubagentOutput(work, r.cfg.Subagent); reason != "" {
		r.log.Event("subagent", "QA failed", "session", p.SessionID,
			"task", work.description, "reason", reason)
		return decision.Decision{Verdict: decision.Block, Reason: reason}
	}
	r.log.Event("subagent", "QA passed", "session", p.SessionID, "task", work.description)
	return decision.Allowed()
}

// historyLine is the subset of a session-history line the gate needs.
type historyLine struct {
	Type    string `json:"type"`
	Message struct {
		Content []struct {
			Type  string          `json:"type"`
			Name  string          `json:"name"`
			Text  string          `json:"text"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
	} `json:"message"`
}

// readSubagentWork scans the session history backwards for the most recent
// Task delegation and the last user-role text block, which carries the
// subagent's report back to the parent session. Best-effort: missing or
// malformed history yields an empty result.
func readSubagentWork(transcriptPath string) subagentWork {
	var work subagentWork

	f, err := os.Open(transcriptPath)
	if err != nil {
		return work
	}
	defer f.Close()

	var lines []historyLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		var l historyLine
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			continue
		}
		lines = append(lines, l)
	}

	for i := len(lines) - 1; i >= 0 && !work.hasTask; i-- {
		if lines[i].Type != "assistant" {
			continue
		}
		for _, c := range lines[i].Message.Content {
			if c.Type != "tool_use" || c.Name != "Task" {
				continue
			}
			var in struct {
				Description string `json:"description"`
			}
			if err := json.Unmarshal(c.Input, &in); err == nil {
				work.description = in.Description
				work.hasTask = true
				break
			}
		}
	}
	for i := len(lines) - 1; i >= 0 && work.output == ""; i-- {
		if lines[i].Type != "user" {
			continue
		}
		for _, c := range lines[i].Message.Content {
			if c.Type == "text" && c.Text != "" {
				work.output = c.Text
				break
			}
		}
	}
	return work
}

// reviewSubagentOutput returns a non-empty feedback message when the report
// fails a quality check, in check order: placeholder responses, minimum
// length, then error keywords (unless the report also claims success).
func reviewSubagentOutput(work subagentWork, check config.SubagentCheck) string {
	out := strings.TrimSpace(work.output)
	if placeholderOutputs[out] {
		return fmt.Sprintf("subagent returned a placeholder response for: %s", work.description)
	}
	if len(out) < check.MinOutputLength {
		return fmt.Sprintf("subagent output too short (%d chars); task was: %s", len(out), work.description)
	}
	lower := strings.ToLower(out)
	if !strings.Contains(lower, "success") {
		for _, kw := range check.ErrorKeywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("subagent appears to have failed (found %q); review its output and retry if needed", kw)
			}
		}
	}
	return ""
}
