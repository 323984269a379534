// Package policy evaluates free text (commands, file paths) against the
// configured dangerous and warning pattern lists.
package policy

import (
	"regexp"

	"github.com/awendt/warden/internal/config"
	"github.com/awendt/warden/internal/decision"
)

// CompiledRule tags a configured rule with its compiled form or its
// compilation error. Patterns come from user-editable configuration, so each
// one compiles independently: one malformed rule never disables the rest.
type CompiledRule struct {
	Rule config.Rule
	Re   *regexp.Regexp
	Err  error
}

// Engine evaluates subjects against one policy domain's rule sets in
// configured order.
type Engine struct {
	dangerous []CompiledRule
	warn      []CompiledRule
}

// Compile builds an Engine from a rule set. It never fails; malformed rules
// are retained with their error so callers can report them.
func Compile(rs config.RuleSet) *Engine {
	return &Engine{
		dangerous: compileAll(rs.Dangerous),
		warn:      compileAll(rs.Warn),
	}
}

func compileAll(rules []config.Rule) []CompiledRule {
	out := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		out = append(out, CompiledRule{Rule: r, Re: re, Err: err})
	}
	return out
}

// BadRules returns the rules that failed to compile, for diagnostics.
func (e *Engine) BadRules() []CompiledRule {
	var bad []CompiledRule
	for _, list := range [][]CompiledRule{e.dangerous, e.warn} {
		for _, cr := range list {
			if cr.Err != nil {
				bad = append(bad, cr)
			}
		}
	}
	return bad
}

// Evaluate checks subject against the dangerous list first, then the warning
// list, in configured order, returning on the first match. Matching uses
// search semantics: a pattern anchors itself explicitly or not at all. An
// empty subject is trivially allowed.
func (e *Engine) Evaluate(subject string) decision.Decision {
	if subject == "" {
		return decision.Allowed()
	}
	for _, cr := range e.dangerous {
		if cr.Err != nil {
			continue
		}
		if cr.Re.MatchString(subject) {
			return decision.Decision{Verdict: decision.Block, Reason: cr.Rule.Label}
		}
	}
	for _, cr := range e.warn {
		if cr.Err != nil {
			continue
		}
		if cr.Re.MatchString(subject) {
			return decision.Decision{Verdict: decision.Warn, Reason: cr.Rule.Label}
		}
	}
	return decision.Allowed()
}
