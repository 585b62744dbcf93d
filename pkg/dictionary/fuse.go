package dictionary

import "context"

// editMode records which single edit a fuzzy path has spent. A transposition
// takes two steps: editInter when the swapped pair is first seen and
// editIntered once its second half has been consumed.
type editMode int

const (
	editNone     editMode = 0x00
	editDeleted  editMode = 0x01
	editInserted editMode = 0x02
	editReplaced editMode = 0x04
	editInter    editMode = 0x08
	editIntered  editMode = 0x10
)

type fuseState struct {
	ni   int // index into the node's chars
	cp   int // index into the query
	mode editMode
}

// fuseCandidate is a node reached within one edit. prefix holds the
// characters of its ancestors so words below it can be rebuilt later.
type fuseCandidate struct {
	prefix string
	node   *PtNode
}

// fuseFrame walks one node array. The sibling being explored owns the queue;
// when a state runs past the end of its chars a child frame is pushed and the
// queue resumes once the child array is exhausted.
type fuseFrame struct {
	prefix    string
	cp        int
	mode      editMode
	remaining int
	next      int
	node      *PtNode
	queue     []fuseState
}

func newFuseFrame(buf []byte, pos int, prefix string, cp int, mode editMode) (*fuseFrame, error) {
	count, next, err := readNodeCount(buf, pos)
	if err != nil {
		return nil, err
	}
	return &fuseFrame{prefix: prefix, cp: cp, mode: mode, remaining: count, next: next}, nil
}

// fuseSearch collects the nodes under the array at pos that the query reaches
// with at most one substitution, deletion, insertion or adjacent swap. Nodes
// come back in discovery order, each once. The candidates found before ctx
// was cancelled are returned along with its error.
func fuseSearch(ctx context.Context, buf []byte, pos int, codes []rune) ([]fuseCandidate, error) {
	var found []fuseCandidate
	if len(codes) == 0 {
		return nil, nil
	}
	seen := make(map[int]bool)
	collect := func(prefix string, n *PtNode) {
		if seen[n.Position] {
			return
		}
		seen[n.Position] = true
		found = append(found, fuseCandidate{prefix: prefix, node: n})
	}

	root, err := newFuseFrame(buf, pos, "", 0, editNone)
	if err != nil {
		return nil, err
	}
	stack := []*fuseFrame{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return found, err
		}

		f := stack[len(stack)-1]
		if len(f.queue) == 0 {
			if f.remaining == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			n, err := readPtNode(buf, f.next)
			if err != nil {
				return found, err
			}
			f.node = n
			f.next = n.EndPosition
			f.remaining--
			f.queue = append(f.queue[:0], fuseState{ni: 0, cp: f.cp, mode: f.mode})
			continue
		}

		st := f.queue[0]
		f.queue = f.queue[1:]
		node := f.node
		ni, cp := st.ni, st.cp
		for ni < len(node.Chars) && cp < len(codes) && node.Chars[ni] == codes[cp] {
			ni++
			cp++
		}

		if ni < len(node.Chars) && cp < len(codes) {
			switch {
			case st.mode == editInter:
				if cp > 0 && node.Chars[ni] == codes[cp-1] {
					f.queue = append(f.queue, fuseState{ni + 1, cp + 1, editIntered})
				}
			case st.mode != editNone:
				// edit already spent
			case cp+1 == len(codes):
				// only the last typed character differs
				collect(f.prefix, node)
			default:
				f.queue = append(f.queue,
					fuseState{ni + 1, cp + 1, editReplaced},
					fuseState{ni, cp + 1, editDeleted},
					fuseState{ni + 1, cp, editInserted},
				)
				if codes[cp+1] == node.Chars[ni] {
					f.queue = append(f.queue, fuseState{ni + 1, cp + 1, editInter})
				}
			}
			continue
		}

		if cp == len(codes) {
			collect(f.prefix, node)
			f.queue = f.queue[:0]
			continue
		}

		if !node.HasChildren() {
			continue
		}
		child, err := newFuseFrame(buf, node.ChildrenPosition, f.prefix+string(node.Chars), cp, st.mode)
		if err != nil {
			return found, err
		}
		stack = append(stack, child)
	}
	return found, nil
}
