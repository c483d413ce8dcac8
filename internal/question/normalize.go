// Package question holds the pure, deterministic normalization
// functions used both as exact cache keys and as matcher inputs.
//
// Ported from the original service's database/utils.py normalize_text /
// normalize_options: lowercase, strip everything that isn't a letter,
// digit, or CJK ideograph, then drop whitespace entirely (not just
// collapse it — the original regex pass removes all \s+ after the
// punctuation strip, so two questions differing only by layout
// whitespace normalize identically).
package question

import (
	"sort"
	"strings"
	"unicode"
)

// NormalizeText lowercases s, strips every codepoint that is not a
// letter, digit, or CJK ideograph, and removes remaining whitespace.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if isKeepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isKeepRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return isCJKIdeograph(r)
}

// isCJKIdeograph reports whether r falls in the CJK Unified Ideographs
// block (U+4E00–U+9FFF), matching the original's 一-鿿 range.
func isCJKIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// NormalizeOptions normalizes each option with NormalizeText, then sorts
// the result lexicographically (byte-wise, which for normalized
// lowercase+CJK text is a stable, locale-independent ordering). Returns
// nil when opts is empty or nil — "absent" is a first-class value
// because exact cache matching must distinguish "no options" from
// "options present" (§4.3).
func NormalizeOptions(opts []string) []string {
	if len(opts) == 0 {
		return nil
	}

	normalized := make([]string, len(opts))
	for i, opt := range opts {
		normalized[i] = NormalizeText(opt)
	}
	sort.Strings(normalized)
	return normalized
}

// OptionsEqual reports whether two already-normalized option slices are
// identical, treating nil/empty as equal to each other but distinct from
// any non-empty slice. Used by approximate cache lookup for the "both
// absent, or both present with equal options" rule; exact lookup compares
// the stored jsonb column instead.
func OptionsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OptionKey returns the single uppercase letter for a zero-based option
// index, e.g. 0 -> "A", 1 -> "B". Callers must ensure idx is within the
// supported range (spec requires support for at least 14 options).
func OptionKey(idx int) string {
	return string(rune('A' + idx))
}

// OptionIndex inverts OptionKey: a single uppercase letter -> its
// zero-based position, or -1 if key is not a single A-Z letter.
func OptionIndex(key string) int {
	if len(key) != 1 {
		return -1
	}
	c := key[0]
	if c < 'A' || c > 'Z' {
		return -1
	}
	return int(c - 'A')
}
