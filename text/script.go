package text

import (
	"unicode"
)

// Script is the broad script class of a rune.
type Script int

const (
	// Neutral covers digits, punctuation, spaces and symbols.
	Neutral Script = iota
	Han
	Kana
	Hangul
	Latin
	Other
)

// String returns the lower-case script name.
func (s Script) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Han:
		return "han"
	case Kana:
		return "kana"
	case Hangul:
		return "hangul"
	case Latin:
		return "latin"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// IsCJK reports whether s is one of the scripts of vertical CJK writing.
func (s Script) IsCJK() bool {
	return s == Han || s == Kana || s == Hangul
}

// ClassifyRune returns the script class of r. The iteration mark 々 and the
// prolonged sound mark ー count as Han and Kana respectively, since they only
// occur in running CJK text.
func ClassifyRune(r rune) Script {
	switch {
	case r == '々' || r == '〆' || unicode.Is(unicode.Han, r):
		return Han
	case r == 'ー' || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
		return Kana
	case unicode.Is(unicode.Hangul, r):
		return Hangul
	case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r):
		return Neutral
	case unicode.Is(unicode.Latin, r):
		return Latin
	default:
		return Other
	}
}

// ScriptCounts tallies the strong runes of a text per script. Neutral runes
// are not counted.
type ScriptCounts map[Script]int

// CountScripts tallies the strong runes of s.
func CountScripts(s string) ScriptCounts {
	counts := make(ScriptCounts)
	for _, r := range s {
		if sc := ClassifyRune(r); sc != Neutral {
			counts[sc]++
		}
	}
	return counts
}

// Total returns the number of strong runes.
func (c ScriptCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Dominant returns the most frequent script, Neutral when c is empty. Ties
// go to the script declared first.
func (c ScriptCounts) Dominant() Script {
	best, bestN := Neutral, 0
	for sc := Han; sc <= Other; sc++ {
		if c[sc] > bestN {
			best, bestN = sc, c[sc]
		}
	}
	return best
}

// CJKRatio returns the share of strong runes in s that are CJK. ok is false
// when s has no strong runes at all.
func CJKRatio(s string) (ratio float64, ok bool) {
	counts := CountScripts(s)
	total := counts.Total()
	if total == 0 {
		return 0, false
	}
	cjk := counts[Han] + counts[Kana] + counts[Hangul]
	return float64(cjk) / float64(total), true
}
