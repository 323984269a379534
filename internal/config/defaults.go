package config

// Defaults returns the built-in rule sets and toggles used when no
// configuration file is present. Patterns are deliberately narrow: an
// overly broad unanchored pattern is a configuration error, so the defaults
// only match command shapes that are destructive on their own.
func Defaults() Config {
	return Config{
		Command: RuleSet{
			Dangerous: []Rule{
				{Pattern: `rm\s+(-[a-zA-Z]*\s+)*-[a-zA-Z]*([rR][a-zA-Z]*f|f[a-zA-Z]*[rR])[a-zA-Z]*\s+(/|~|\$HOME)(\s|$)`, Label: "recursive force delete of filesystem root or home"},
				{Pattern: `mkfs(\.\w+)?\s`, Label: "filesystem format command"},
				{Pattern: `dd\s+[^|;]*of=/dev/(sd|nvme|hd|disk)`, Label: "raw write to block device"},
				{Pattern: `:\(\)\s*\{\s*:\|:&\s*\};:`, Label: "fork bomb"},
				{Pattern: `>\s*/dev/(sd|nvme|hd|disk)`, Label: "redirect onto block device"},
				{Pattern: `chmod\s+(-[a-zA-Z]*\s+)*777\s+/(\s|$)`, Label: "world-writable filesystem root"},
			},
			Warn: []Rule{
				{Pattern: `\bsudo\b`, Label: "privilege escalation"},
				{Pattern: `git\s+push\s+[^|;]*(--force|-f)\b`, Label: "force push"},
				{Pattern: `git\s+checkout\s+--\s`, Label: "checkout discards local changes"},
				{Pattern: `git\s+reset\s+--hard`, Label: "hard reset discards local changes"},
			},
		},
		FileWrite: RuleSet{
			Dangerous: []Rule{
				{Pattern: `(^|/)\.env(\.|$)`, Label: "environment secrets file"},
				{Pattern: `(^|/)id_(rsa|ed25519|ecdsa)(\.pub)?$`, Label: "ssh key material"},
				{Pattern: `(^|/)\.aws/credentials$`, Label: "cloud credentials file"},
				{Pattern: `(^|/)\.ssh/authorized_keys$`, Label: "ssh authorized keys"},
			},
			Warn: []Rule{
				{Pattern: `(^|/)\.git/`, Label: "direct write into .git"},
				{Pattern: `(^|/)go\.sum$`, Label: "dependency checksum file"},
			},
		},
		Subagent: SubagentCheck{
			Enabled:         true,
			MinOutputLength: 50,
			ErrorKeywords:   []string{"error", "failed", "could not", "unable to", "not found"},
		},
		EnforceTaskCompletion: true,
		InjectSessionContext:  true,
		EnhancePrompts:        true,
		LogActivity:           true,
	}
}
