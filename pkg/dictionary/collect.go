package dictionary

import "sort"

// Entry is one terminal node as seen by Walk.
type Entry struct {
	Word      string
	Frequency int
	IsWord    bool
	Shortcuts []WeightedString
}

type collectItem struct {
	prefix string
	node   *PtNode
}

// readNodeArray decodes every sibling of the node array at pos.
func readNodeArray(buf []byte, pos int) ([]*PtNode, error) {
	count, p, err := readNodeCount(buf, pos)
	if err != nil {
		return nil, err
	}
	nodes := make([]*PtNode, 0, count)
	for i := 0; i < count; i++ {
		n, err := readPtNode(buf, p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		p = n.EndPosition
	}
	return nodes, nil
}

// pushChildren adds nodes in reverse so they pop in sibling order.
func pushChildren(stack []collectItem, prefix string, nodes []*PtNode) []collectItem {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, collectItem{prefix: prefix, node: nodes[i]})
	}
	return stack
}

// boostedShortcuts rates the shortcuts of a terminal node relative to the
// node's own frequency, so shortcuts of frequent words outrank rare ones.
func boostedShortcuts(n *PtNode) []WeightedString {
	out := make([]WeightedString, 0, len(n.Shortcuts))
	for _, s := range n.Shortcuts {
		out = append(out, WeightedString{
			Word:      s.Word,
			Frequency: min(MaxTerminalFrequency, n.Frequency+MaxShortcutFrequency-s.Frequency),
		})
	}
	return out
}

// collectWords gathers every word below node in pre-order. A node carrying
// cached suggestions contributes the cache in place of its whole sub-tree.
func collectWords(buf []byte, prefix string, node *PtNode) ([]WeightedString, error) {
	var words []WeightedString
	stack := []collectItem{{prefix: prefix, node: node}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := it.node

		if n.HasCachedSuggestions() && len(n.CachedSuggestions) > 0 {
			words = append(words, n.CachedSuggestions...)
			continue
		}

		word := it.prefix + string(n.Chars)
		if n.IsTerminal() {
			if n.IsWord() {
				words = append(words, WeightedString{Word: word, Frequency: n.Frequency})
			} else if n.HasShortcuts() && len(n.Shortcuts) > 0 {
				words = append(words, boostedShortcuts(n)...)
			}
		}

		if !n.HasChildren() {
			continue
		}
		children, err := readNodeArray(buf, n.ChildrenPosition)
		if err != nil {
			return words, err
		}
		stack = pushChildren(stack, word, children)
	}
	return words, nil
}

// rankWords sorts by descending frequency. Equal frequencies keep their
// decode order.
func rankWords(words []WeightedString) {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Frequency > words[j].Frequency
	})
}

// mergeWords concatenates lists, drops repeated values, ranks and caps the
// result at MaxSuggestions.
func mergeWords(lists ...[]WeightedString) []WeightedString {
	seen := make(map[WeightedString]bool)
	merged := make([]WeightedString, 0, MaxSuggestions)
	for _, list := range lists {
		for _, w := range list {
			if seen[w] {
				continue
			}
			seen[w] = true
			merged = append(merged, w)
		}
	}
	rankWords(merged)
	if len(merged) > MaxSuggestions {
		merged = merged[:MaxSuggestions]
	}
	return merged
}

// Walk calls fn for every terminal node in trie order, ignoring cached
// suggestion lists. A non-nil error from fn stops the walk and is returned.
func (d *Dictionary) Walk(fn func(Entry) error) error {
	roots, err := readNodeArray(d.data, HeaderSize)
	if err != nil {
		return err
	}
	stack := pushChildren(nil, "", roots)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := it.node
		word := it.prefix + string(n.Chars)

		if n.IsTerminal() {
			if err := fn(Entry{
				Word:      word,
				Frequency: n.Frequency,
				IsWord:    n.IsWord(),
				Shortcuts: n.Shortcuts,
			}); err != nil {
				return err
			}
		}
		if !n.HasChildren() {
			continue
		}
		children, err := readNodeArray(d.data, n.ChildrenPosition)
		if err != nil {
			return err
		}
		stack = pushChildren(stack, word, children)
	}
	return nil
}

// WordCount returns the number of terminal nodes marked as real words.
func (d *Dictionary) WordCount() (int, error) {
	count := 0
	err := d.Walk(func(e Entry) error {
		if e.IsWord {
			count++
		}
		return nil
	})
	return count, err
}
