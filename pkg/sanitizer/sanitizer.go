package sanitizer

import (
	"regexp"
	"strings"
	"time"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonSlugChars  = regexp.MustCompile(`[^0-9\p{L}]+`)
	reMultiHyphen   = regexp.MustCompile(`-+`)
	reValidTimeZone = regexp.MustCompile(`^[A-Za-z0-9_\-/+]+$`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseHyphens(s string) string {
	s = reMultiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeSlug turns a free-form label into a URL-safe identifier,
// e.g. "Intro Call (30 min)" becomes "intro-call-30-min".
func SanitizeSlug(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reNonSlugChars.ReplaceAllString(s, "-") },
		collapseHyphens,
	}
	return p.Apply(input)
}

// SanitizeTimeZone canonicalizes an IANA zone name, e.g. "america/new_york"
// becomes "America/New_York". Returns "" for names the zone database rejects.
func SanitizeTimeZone(input string) string {
	s := strings.TrimSpace(input)
	if s == "" || !reValidTimeZone.MatchString(s) {
		return ""
	}

	if loc, err := time.LoadLocation(s); err == nil {
		return loc.String()
	}

	// Retry with each path segment title-cased
	segments := strings.Split(s, "/")
	for i, seg := range segments {
		parts := strings.Split(seg, "_")
		for j, part := range parts {
			if part == "" {
				continue
			}
			parts[j] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
		segments[i] = strings.Join(parts, "_")
	}

	candidate := strings.Join(segments, "/")
	if loc, err := time.LoadLocation(candidate); err == nil {
		return loc.String()
	}
	return ""
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SanitizeWeekdays canonicalizes weekday names ("MONDAY" becomes "Monday")
// and dedupes them, preserving order.
func SanitizeWeekdays(days []string) []string {
	return SanitizeSlice(days, func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return ""
		}
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	})
}
