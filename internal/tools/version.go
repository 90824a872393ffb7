package tools

import (
	"regexp"
	"strings"
)

var verRe = regexp.MustCompile(`(?i)\bv?(\d+\.\d+\.\d+(?:-[\w.]+)?)\b`)

// ParseVersion extracts a semantic version from raw command output.
//
// Accepted shapes:
//
//	"2.0.61"                -> "2.0.61"
//	"v1.2.3"                -> "1.2.3"
//	"2.0.61 (Claude Code)"  -> "2.0.61"
//	"codex-cli 0.65.0"      -> "0.65.0"
//	"1.2.3-beta.1"          -> "1.2.3-beta.1"
func ParseVersion(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := verRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	// Bracket suffix: "2.0.61 (whatever)"
	if idx := strings.IndexByte(s, '('); idx > 0 {
		if before := strings.TrimSpace(s[:idx]); before != "" {
			return strings.TrimPrefix(before, "v")
		}
	}
	// Space separated: take the first field that starts with a digit.
	if fields := strings.Fields(s); len(fields) > 1 {
		for _, f := range fields {
			if f != "" && f[0] >= '0' && f[0] <= '9' {
				return strings.TrimPrefix(f, "v")
			}
		}
	}
	return strings.TrimPrefix(s, "v")
}

// NormalizeVersion trims whitespace and a leading "v".
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// VersionLess compares two semantic versions (best-effort).
// Returns true if a < b. Unparseable input compares as not-less.
func VersionLess(a, b string) bool {
	a = NormalizeVersion(a)
	b = NormalizeVersion(b)
	if a == "" || b == "" {
		return false
	}
	as := strings.SplitN(a, "-", 2)[0]
	bs := strings.SplitN(b, "-", 2)[0]
	ap := strings.Split(as, ".")
	bp := strings.Split(bs, ".")
	for len(ap) < 3 {
		ap = append(ap, "0")
	}
	for len(bp) < 3 {
		bp = append(bp, "0")
	}
	for i := 0; i < 3; i++ {
		av := atoiSafe(ap[i])
		bv := atoiSafe(bp[i])
		if av < bv {
			return true
		}
		if av > bv {
			return false
		}
	}
	// Equal numeric parts: a pre-release sorts below the release.
	return strings.Contains(a, "-") && !strings.Contains(b, "-")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
