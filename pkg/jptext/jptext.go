// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

// Package jptext normalizes Unicode strings for title comparison.
//
// # Usage
//
// Japanese book metadata mixes full-width and half-width forms of the same
// characters ("ＯＮＥ ＰＩＥＣＥ" vs "ONE PIECE"), so raw string equality is
// useless for deduplicating search candidates. This package produces a
// canonical comparison key.
package jptext

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key converts an arbitrary Unicode string into a canonical comparison key.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKC (folds full-width/half-width variants and
// compatibility characters: Ｆ → F, ﾃﾞ → デ, ① → 1).
// 2. Converts to lowercase.
// 3. Collapses all runs of whitespace into a single space and trims.
func Key(s string) string {
	// 1. Compatibility normalization
	result := norm.NFKC.String(s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Collapse whitespace
	return strings.Join(strings.Fields(result), " ")
}

// Equal reports whether two strings normalize to the same comparison key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
