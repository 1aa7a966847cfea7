package breaker

import (
	"strings"
	"unicode/utf8"
)

// Dictionary is the hyphenation pattern/exceptions port the core consumes.
// Loading dictionary data (pattern files, exception lists, language
// selection) is explicitly a host concern, not core domain logic; only the
// trie-matching algorithm below belongs to package breaker.
type Dictionary interface {
	// Patterns returns the raw TeX-style hyphenation patterns for one
	// language, e.g. "hy3ph".
	Patterns() []string
	// Exception returns a pre-hyphenated form ("as-so-ciate") for a word
	// that the generic pattern algorithm would get wrong, if one exists.
	Exception(word string) (string, bool)
}

// Hyphenator applies a Dictionary's patterns to words, grounded on
// convert/text/hyphenator.go's trie-substring algorithm.
type Hyphenator struct {
	patterns *trie
	dict     Dictionary
}

// NewHyphenator builds the pattern trie once from dict; a nil dict yields a
// Hyphenator that never proposes a hyphenation point (used when no
// dictionary is available for the paragraph's language).
func NewHyphenator(dict Dictionary) *Hyphenator {
	if dict == nil {
		return nil
	}
	t := newTrie()
	for _, p := range dict.Patterns() {
		t.addPatternString(p)
	}
	return &Hyphenator{patterns: t, dict: dict}
}

// Points returns the legal hyphenation-point byte offsets within word
// (offsets at which a break may be taken, inserting a hyphen), excluding
// the first two and last two characters per convention.
func (h *Hyphenator) Points(word string) []int {
	if h == nil {
		return nil
	}
	if exc, ok := h.dict.Exception(strings.ToLower(word)); ok {
		return exceptionPoints(word, exc)
	}
	return h.patternPoints(word)
}

func (h *Hyphenator) patternPoints(word string) []int {
	lower := strings.ToLower(word)
	testStr := "." + lower + "."
	runeCount := utf8.RuneCountInString(testStr)
	v := make([]int, runeCount)

	vIndex := 0
	for pos := range testStr {
		t := testStr[pos:]
		strs, values := h.patterns.allSubstringsAndValues(t)
		for i := range values {
			str := strs[i]
			val := values[i].([]int)
			diff := len(val) - utf8.RuneCountInString(str)
			vs := v[vIndex-diff:]
			for j := range val {
				if val[j] > vs[j] {
					vs[j] = val[j]
				}
			}
		}
		vIndex++
	}

	markers := v[1 : len(v)-1]
	var points []int
	byteOffset := 0
	runeIdx := 0
	for _, r := range word {
		// markers[runeIdx] is the value after this rune, so the break it
		// marks sits at the byte offset just past it.
		byteOffset += utf8.RuneLen(r)
		if 1 <= runeIdx && runeIdx < len(markers)-2 {
			if markers[runeIdx]%2 != 0 {
				points = append(points, byteOffset)
			}
		}
		runeIdx++
	}
	return points
}

// exceptionPoints maps a dash-annotated exception form ("as-so-ciate") back
// to byte offsets in the original word.
func exceptionPoints(word, exception string) []int {
	var points []int
	byteOffset := 0
	for _, r := range exception {
		if r == '-' {
			points = append(points, byteOffset)
			continue
		}
		byteOffset += utf8.RuneLen(r)
	}
	if byteOffset != len(word) {
		// exception form doesn't correspond to the word; don't guess.
		return nil
	}
	return points
}
