// Package msgtpl renders owner-configurable reply templates. Templates
// use {placeholder} markers; unknown placeholders render as empty, and
// a template with broken braces falls back to the default template so a
// typo in an owner's template never breaks delivery.
package msgtpl

import (
	"fmt"
	"strings"
)

// DefaultTemplate is used when the owner has not configured one or the
// configured template is blank.
const DefaultTemplate = "✅ Ваш код: {code}\n📊 Осталось: {left}/{total}"

// Unlimited is the placeholder value shown when a quantity has no cap.
const Unlimited = "∞"

// Render substitutes {key} markers from vars into tpl. A blank template
// falls back to DefaultTemplate. Markers without a matching key render
// as the empty string; a template whose braces do not pair up is
// discarded and DefaultTemplate is rendered instead.
func Render(tpl string, vars map[string]string) string {
	tpl = strings.TrimSpace(tpl)
	if tpl == "" {
		tpl = DefaultTemplate
	}

	out, ok := substitute(tpl, vars)
	if !ok {
		out, _ = substitute(DefaultTemplate, vars)
	}
	return out
}

// substitute reports false when tpl has an unclosed '{', a stray '}',
// or a nested '{' inside a marker.
func substitute(tpl string, vars map[string]string) (string, bool) {
	var b strings.Builder
	b.Grow(len(tpl))
	for {
		open := strings.IndexByte(tpl, '{')
		stray := strings.IndexByte(tpl, '}')
		if open < 0 {
			if stray >= 0 {
				return "", false
			}
			b.WriteString(tpl)
			return b.String(), true
		}
		if stray >= 0 && stray < open {
			return "", false
		}

		closing := strings.IndexByte(tpl[open+1:], '}')
		if closing < 0 {
			return "", false
		}
		key := tpl[open+1 : open+1+closing]
		if strings.IndexByte(key, '{') >= 0 {
			return "", false
		}

		b.WriteString(tpl[:open])
		b.WriteString(vars[key])
		tpl = tpl[open+1+closing+1:]
	}
}

// LimitText describes an account's quota in human terms. A nil limit
// means no cap at all, a nil period means the cap never resets.
func LimitText(limit, periodHours *int64) string {
	switch {
	case limit == nil:
		return "без ограничений"
	case periodHours == nil:
		return fmt.Sprintf("%d навсегда", *limit)
	default:
		return fmt.Sprintf("%d за %dч", *limit, *periodHours)
	}
}

// FormatTimeLeft renders a wait duration the way buyers expect to read
// it: hours and minutes, just minutes, or just seconds.
func FormatTimeLeft(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	m, s := seconds/60, seconds%60
	h, m := m/60, m%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dч %dм", h, m)
	case m > 0:
		return fmt.Sprintf("%dм", m)
	default:
		return fmt.Sprintf("%dс", s)
	}
}
