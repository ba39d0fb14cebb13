// Package text classifies recognized text by script and the page it came
// from by writing orientation.
//
// The reading order pipeline assumes vertical CJK text. The checks here let
// callers flag pages that do not fit that assumption, such as a horizontal
// modern preface or a page of Latin marginalia, before trusting the order.
//
// # Script
//
// ClassifyRune maps a rune to its script class. Digits, punctuation, spaces
// and symbols are Neutral and never count toward a script:
//
//	text.ClassifyRune('天') // Han
//	text.ClassifyRune('あ') // Kana
//	text.ClassifyRune('、') // Neutral
//
// CJKRatio reports the share of strong runes that are Han, Kana or Hangul.
//
// # Orientation
//
// DetectOrientation votes over element boxes: a multi-glyph element that is
// clearly taller than wide votes vertical, one clearly wider than tall votes
// horizontal. Single glyphs are square-ish and do not vote.
package text
