// Package trigger normalizes chat trigger phrases so that visually
// identical inputs map to the same key. Chat clients routinely smuggle
// zero-width characters, bidi controls and exotic whitespace into
// copied text, and all of those must collapse away before matching.
package trigger

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// invisible lists format characters that survive NFKC but must never
// participate in matching: zero-width spaces/joiners, bidi controls,
// variation selectors and the soft hyphen.
var invisible = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00AD, Hi: 0x00AD, Stride: 1},
		{Lo: 0x200B, Hi: 0x200F, Stride: 1},
		{Lo: 0x202A, Hi: 0x202E, Stride: 1},
		{Lo: 0x2060, Hi: 0x206F, Stride: 1},
		{Lo: 0xFE0E, Hi: 0xFE0F, Stride: 1},
	},
}

// Normalize canonicalizes a trigger phrase: NFKC folding, removal of
// control/format/invisible characters, removal of all whitespace, and
// lowercasing. The result is the storage and matching key.
func Normalize(raw string) string {
	folded := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == ' ' {
			continue
		}
		if unicode.Is(invisible, r) || unicode.In(r, unicode.Cc, unicode.Cf) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// reserved phrases collide with the bot's own command surface and can
// never be registered as triggers.
var reserved = map[string]struct{}{
	"guard_menu":  {},
	"/guard_menu": {},
}

// Reserved reports whether the normalized phrase is claimed by the
// command surface and therefore unusable as a trigger. Leading slashes
// do not disguise a reserved phrase.
func Reserved(normalized string) bool {
	if _, ok := reserved[normalized]; ok {
		return true
	}
	_, ok := reserved[strings.TrimLeft(normalized, "/")]
	return ok
}
