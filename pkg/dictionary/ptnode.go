package dictionary

import "fmt"

// NoChildren marks a PtNode without a child array.
const NoChildren = -1

// WeightedString is a word with a frequency. It is comparable, so equal words
// with equal frequencies are the same value and can key a map.
type WeightedString struct {
	Word      string `msgpack:"w" json:"word"`
	Frequency int    `msgpack:"f" json:"frequency"`
}

// PtNode is one decoded edge of the packed trie. Nodes are rebuilt on every
// read and never cached.
type PtNode struct {
	Position         int
	Flags            byte
	Chars            []rune
	Frequency        int
	ChildrenPosition int
	EndPosition      int

	Shortcuts         []WeightedString
	CachedSuggestions []WeightedString
}

func (n *PtNode) IsTerminal() bool           { return n.Flags&FlagIsTerminal != 0 }
func (n *PtNode) IsWord() bool               { return n.Flags&FlagIsNotAWord == 0 }
func (n *PtNode) HasShortcuts() bool         { return n.Flags&FlagHasShortcuts != 0 }
func (n *PtNode) HasCachedSuggestions() bool { return n.Flags&FlagHasCachedSuggestions != 0 }
func (n *PtNode) HasMultipleChars() bool     { return n.Flags&FlagHasMultipleChars != 0 }
func (n *PtNode) HasChildren() bool          { return n.ChildrenPosition != NoChildren }

// readPtNode decodes the node whose flag byte sits at pos.
func readPtNode(buf []byte, pos int) (*PtNode, error) {
	flags, err := readUint8(buf, pos)
	if err != nil {
		return nil, err
	}
	node := &PtNode{Position: pos, Flags: byte(flags)}
	pos++

	c, next, err := readChar(buf, pos)
	if err != nil {
		return nil, err
	}
	pos = next
	if node.HasMultipleChars() {
		for c != noChar {
			node.Chars = append(node.Chars, c)
			if c, pos, err = readChar(buf, pos); err != nil {
				return nil, err
			}
		}
	} else if c != noChar {
		node.Chars = []rune{c}
	}
	if len(node.Chars) == 0 {
		return nil, fmt.Errorf("ptnode at %d: %w", node.Position, ErrEmptyCharRun)
	}

	if node.IsTerminal() {
		if node.Frequency, err = readUint8(buf, pos); err != nil {
			return nil, err
		}
		pos++
	}

	width := childrenAddressWidth(node.Flags)
	if node.ChildrenPosition, err = readChildrenAddress(buf, pos, width); err != nil {
		return nil, fmt.Errorf("ptnode at %d: %w", node.Position, err)
	}
	pos += width

	if node.HasCachedSuggestions() {
		if node.CachedSuggestions, pos, err = readWeightedList(buf, pos); err != nil {
			return nil, fmt.Errorf("ptnode at %d cached suggestions: %w", node.Position, err)
		}
	}
	if node.IsTerminal() && node.HasShortcuts() {
		if node.Shortcuts, pos, err = readWeightedList(buf, pos); err != nil {
			return nil, fmt.Errorf("ptnode at %d shortcuts: %w", node.Position, err)
		}
	}

	node.EndPosition = pos
	return node, nil
}

func childrenAddressWidth(flags byte) int {
	switch flags & maskChildrenAddressType {
	case addressTypeOneByte:
		return 1
	case addressTypeTwoBytes:
		return 2
	case addressTypeThreeBytes:
		return 3
	default:
		return 0
	}
}

// readChildrenAddress resolves an address field relative to its own offset.
func readChildrenAddress(buf []byte, pos, width int) (int, error) {
	var (
		offset int
		err    error
	)
	switch width {
	case 0:
		return NoChildren, nil
	case 1:
		offset, err = readUint8(buf, pos)
	case 2:
		offset, err = readUint16(buf, pos)
	case 3:
		offset, err = readUint24(buf, pos)
	default:
		return NoChildren, fmt.Errorf("%w: address width %d", ErrMalformedAddress, width)
	}
	if err != nil {
		return NoChildren, err
	}
	target := pos + offset
	if offset == 0 || target >= len(buf) {
		return NoChildren, fmt.Errorf("%w: field at %d points to %d, buffer has %d bytes",
			ErrMalformedAddress, pos, target, len(buf))
	}
	return target, nil
}

// readWeightedList reads a size-prefixed list of attribute entries as used by
// both shortcuts and cached suggestions.
func readWeightedList(buf []byte, pos int) ([]WeightedString, int, error) {
	declared, err := readUint16(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	pos += listSizeFieldSize

	var list []WeightedString
	for hasNext := true; hasNext; {
		attr, err := readUint8(buf, pos)
		if err != nil {
			return nil, pos, err
		}
		pos++
		hasNext = attr&FlagAttrHasNext != 0

		word, next, err := readString(buf, pos)
		if err != nil {
			return nil, pos, err
		}
		pos = next
		list = append(list, WeightedString{Word: word, Frequency: attr & MaskAttrFrequency})
	}

	if declared != len(list) {
		return nil, pos, fmt.Errorf("%w: declared %d, decoded %d", ErrSizeMismatch, declared, len(list))
	}
	return list, pos, nil
}
