package breaker

// trie is a prefix tree over TeX-style hyphenation pattern strings, e.g.
// "hy3ph" (letters "hyph", value 3 before the 'p'). Absent from the
// extraction of convert/text/ (hyphenator.go and trie_test.go survived,
// trie.go did not) — authored here from hyphenator.go's call sites
// (newTrie, addPatternString, allSubstringsAndValues, size).
type trie struct {
	root  *trieNode
	count int
}

type trieNode struct {
	children map[rune]*trieNode
	value    []int
	hasValue bool
}

func newTrie() *trie {
	return &trie{root: &trieNode{children: map[rune]*trieNode{}}}
}

func (t *trie) size() int { return t.count }

// addPatternString parses one TeX pattern (letters interleaved with single
// digits) and inserts it keyed by the letters-only substring.
func (t *trie) addPatternString(s string) {
	letters, values := parsePattern(s)
	node := t.root
	for _, r := range letters {
		child, ok := node.children[r]
		if !ok {
			child = &trieNode{children: map[rune]*trieNode{}}
			node.children[r] = child
		}
		node = child
	}
	node.value = values
	node.hasValue = true
	t.count++
}

// parsePattern splits a pattern like ".hy3ph1." into its letters ".hyph."
// and a value array one longer than the letters, values[i] being the digit
// immediately preceding letters[i] (0 if none was written).
func parsePattern(s string) (string, []int) {
	var letters []rune
	values := []int{0}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			values[len(values)-1] = int(r - '0')
		} else {
			letters = append(letters, r)
			values = append(values, 0)
		}
	}
	return string(letters), values
}

// allSubstringsAndValues walks s from its start, returning every prefix of
// s that matches a stored pattern together with its value array.
func (t *trie) allSubstringsAndValues(s string) ([]string, []interface{}) {
	var strs []string
	var values []interface{}

	node := t.root
	runes := []rune(s)
	for i, r := range runes {
		child, ok := node.children[r]
		if !ok {
			break
		}
		node = child
		if node.hasValue {
			strs = append(strs, string(runes[:i+1]))
			values = append(values, node.value)
		}
	}
	return strs, values
}
