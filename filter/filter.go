// Package filter turns free-text operator input into the channel and
// author admit sets applied to every exported or recorded message.
package filter

import (
	"regexp"
	"strings"
)

var (
	mentionRe = regexp.MustCompile(`^<@!?(\d+)>$`)
	splitRe   = regexp.MustCompile(`[,\s]+`)
)

// Tokens splits a raw operator line on runs of commas and whitespace,
// dropping empty tokens.
func Tokens(s string) []string {
	var out []string
	for _, t := range splitRe.Split(s, -1) {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NormalizeUser unwraps a Discord mention (<@id> or <@!id>) to the bare
// id. Anything that is not an exact mention passes through unchanged.
func NormalizeUser(t string) string {
	t = strings.TrimSpace(t)
	if m := mentionRe.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	return t
}

// IsDigits reports whether s is non-empty and consists of ASCII digits
// only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
