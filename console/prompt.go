package console

import "regexp"

// Pattern is a named, case-insensitive regular expression matched anywhere in
// the accumulated buffer. Device output interleaves banners, echoed input and
// prompts, so full-buffer anchoring is never used.
type Pattern struct {
	Name string
	RE   *regexp.Regexp
}

// PromptSet is an ordered set of patterns. When several patterns match the
// same buffer, the first one in set order decides which label is reported;
// order has no other effect.
type PromptSet []Pattern

func MustPattern(name, expr string) Pattern {
	return Pattern{Name: name, RE: regexp.MustCompile(`(?i)` + expr)}
}

// Match tests buffer against set and returns the label of the first matching
// pattern. It is a pure function: no I/O, no mutation.
func Match(buffer string, set PromptSet) (label string, ok bool) {
	for _, p := range set {
		if p.RE.MatchString(buffer) {
			return p.Name, true
		}
	}
	return "", false
}

// ShellPrompts is the default prompt family: a privileged (#) or unprivileged
// (>) prompt at the end of the buffer, trailing whitespace allowed.
var ShellPrompts = PromptSet{
	MustPattern("privileged", `#\s*$`),
	MustPattern("unprivileged", `>\s*$`),
}

// ConfigPrompt matches the configuration-mode prompt, e.g. "R1(config)#" or
// "R1(config-if)#".
var ConfigPrompt = PromptSet{
	MustPattern("config", `\(config[^)]*\)#\s*$`),
}
