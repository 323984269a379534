package snapshot

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// maxNotes caps how many planning notes a single snapshot carries.
const maxNotes = 20

// maxNoteLen truncates individual notes so one giant plan cannot bloat the
// snapshot log.
const maxNoteLen = 2000

// maxTextNoteLen truncates notes drawn from free conversation text, which is
// noisier than an explicit plan.
const maxTextNoteLen = 200

// planningKeywords mark a conversation turn as planning-related.
var planningKeywords = []string{"plan", "strategy", "approach", "design", "architecture", "decision"}

// transcriptLine is the subset of a session-history line the note scan needs.
type transcriptLine struct {
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

// ExtractPlanningNotes scans the session history for planning-related turns:
// plan-mode exits, the subjects of task-list updates, and user or assistant
// text mentioning a planning keyword. The scan is best-effort and degrades to
// an empty note set when the history is missing, unreadable, or malformed.
func ExtractPlanningNotes(transcriptPath string) []string {
	if transcriptPath == "" {
		return nil
	}
	f, err := os.Open(transcriptPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var notes []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		var line transcriptLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		for _, c := range line.Message.Content {
			var note string
			limit := maxNoteLen

			switch c.Type {
			case "text":
				if (line.Type == "user" || line.Type == "assistant") && mentionsPlanning(c.Text) {
					note = c.Text
					limit = maxTextNoteLen
				}
			case "tool_use":
				switch c.Name {
				case "ExitPlanMode":
					var in struct {
						Plan string `json:"plan"`
					}
					if err := json.Unmarshal(c.Input, &in); err == nil {
						note = in.Plan
					}
				case "TodoWrite":
					var in struct {
						Todos []struct {
							Content string `json:"content"`
						} `json:"todos"`
					}
					if err := json.Unmarshal(c.Input, &in); err == nil {
						var subjects []string
						for _, t := range in.Todos {
							if t.Content != "" {
								subjects = append(subjects, t.Content)
							}
						}
						note = strings.Join(subjects, "; ")
					}
				}
			}

			if len(note) > limit {
				note = note[:limit]
			}
			note = strings.TrimSpace(note)
			if note == "" || seen[note] {
				continue
			}
			seen[note] = true
			notes = append(notes, note)
		}
	}
	// Scanner errors mean a truncated or binary history; keep what was
	// already collected.

	if len(notes) > maxNotes {
		notes = notes[len(notes)-maxNotes:]
	}
	return notes
}

// mentionsPlanning reports whether a conversation turn touches on planning.
func mentionsPlanning(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range planningKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
