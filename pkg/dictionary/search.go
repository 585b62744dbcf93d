package dictionary

// searchPtNode walks from the node array at pos towards codes and returns the
// node where the query ends, together with the characters of every node
// passed on the way down.
//
// Siblings are only compared on their first character. Once one agrees, the
// search is committed to it: a later mismatch inside its run ends the search
// without trying the remaining siblings.
func searchPtNode(buf []byte, pos int, codes []rune) (*PtNode, []rune, error) {
	if len(codes) == 0 {
		return nil, nil, nil
	}

	var prefix []rune
	cp := 0
	for {
		count, p, err := readNodeCount(buf, pos)
		if err != nil {
			return nil, nil, err
		}

		var node *PtNode
		for i := 0; i < count; i++ {
			n, err := readPtNode(buf, p)
			if err != nil {
				return nil, nil, err
			}
			if n.Chars[0] == codes[cp] {
				node = n
				break
			}
			p = n.EndPosition
		}
		if node == nil {
			return nil, nil, nil
		}

		ni := 0
		for ni < len(node.Chars) && cp < len(codes) && node.Chars[ni] == codes[cp] {
			ni++
			cp++
		}
		switch {
		case ni < len(node.Chars) && cp < len(codes):
			return nil, nil, nil
		case cp == len(codes):
			return node, prefix, nil
		case !node.HasChildren():
			return nil, nil, nil
		}

		prefix = append(prefix, node.Chars...)
		pos = node.ChildrenPosition
	}
}
