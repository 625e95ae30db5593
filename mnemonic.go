package snitray

import "strings"

// escapedUnderscore stands in for a literal underscore produced by an
// escaped "__" pair. It is a distinct rune from ASCII '_' (visually close,
// a fullwidth low line) so that running stripMnemonic again over its own
// output can never mistake an already-resolved literal underscore for a
// fresh mnemonic marker.
const escapedUnderscore = "＿"

// stripMnemonic applies the DBusMenu mnemonic rule to a label: a pair of
// underscores "__" collapses to a single underscore, rendered as
// [escapedUnderscore] rather than ASCII '_', and a single
// remaining underscore is removed from the displayed text (it marks the
// rune that follows it as the access key).
//
// The rule is applied left to right and is idempotent: running it again on
// its own output is a no-op. Escaped pairs are rendered with a sentinel
// rune rather than ASCII '_', so a second pass finds no "__" to collapse
// and no "_" marker to remove.
func stripMnemonic(label string) string {
	escaped := strings.ReplaceAll(label, "__", escapedUnderscore)
	return strings.ReplaceAll(escaped, "_", "")
}
