// Package dicttest builds packed-trie dictionary buffers for tests.
package dicttest

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const (
	magic      = 0x9BC13AFE
	version    = 100
	headerSize = 12
	terminator = 0x1F

	flagMultipleChars   = 0x20
	flagTerminal        = 0x10
	flagShortcuts       = 0x08
	flagNotAWord        = 0x02
	flagCachedSuggested = 0x01
	attrHasNext         = 0x80
	attrFrequency       = 0x0F
)

// Entry is a word with a frequency as stored in shortcut and cached
// suggestion lists.
type Entry struct {
	Word string
	Freq int
}

type trieNode struct {
	children  map[rune]*trieNode
	terminal  bool
	notAWord  bool
	frequency int
	shortcuts []Entry
	cached    []Entry
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Builder accumulates words and writes them as a dictionary buffer. Chains
// of single-child nodes become multi-char runs; a run always ends at a
// terminal node or a node carrying cached suggestions.
type Builder struct {
	root    *trieNode
	width   int
	version int
}

// Option configures a Builder.
type Option func(*Builder)

// WithAddressWidth fixes the size of every children address field to 1, 2 or
// 3 bytes. The default is 3.
func WithAddressWidth(width int) Option {
	return func(b *Builder) { b.width = width }
}

// WithVersion overrides the format version written to the header.
func WithVersion(v int) Option {
	return func(b *Builder) { b.version = v }
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{root: newTrieNode(), width: 3, version: version}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) path(word string) *trieNode {
	n := b.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newTrieNode()
			n.children[r] = child
		}
		n = child
	}
	return n
}

// AddWord stores word as a real word.
func (b *Builder) AddWord(word string, freq int) *Builder {
	n := b.path(word)
	n.terminal = true
	n.notAWord = false
	n.frequency = freq
	return b
}

// AddNotAWord stores word as a terminal that only exists to carry shortcuts.
func (b *Builder) AddNotAWord(word string, freq int) *Builder {
	n := b.path(word)
	n.terminal = true
	n.notAWord = true
	n.frequency = freq
	return b
}

// AddShortcut attaches target to the terminal word. The word must be added
// with AddWord or AddNotAWord for the shortcut to be written.
func (b *Builder) AddShortcut(word, target string, freq int) *Builder {
	n := b.path(word)
	n.shortcuts = append(n.shortcuts, Entry{Word: target, Freq: freq})
	return b
}

// SetCachedSuggestions stores a precomputed list on the node ending prefix.
func (b *Builder) SetCachedSuggestions(prefix string, entries ...Entry) *Builder {
	n := b.path(prefix)
	n.cached = append([]Entry(nil), entries...)
	return b
}

type run struct {
	chars []rune
	end   *trieNode
}

func sortedKeys(n *trieNode) []rune {
	keys := make([]rune, 0, len(n.children))
	for r := range n.children {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func runsOf(parent *trieNode) []run {
	var runs []run
	for _, r := range sortedKeys(parent) {
		chars := []rune{r}
		cur := parent.children[r]
		for !cur.terminal && len(cur.cached) == 0 && len(cur.children) == 1 {
			next := sortedKeys(cur)[0]
			chars = append(chars, next)
			cur = cur.children[next]
		}
		runs = append(runs, run{chars: chars, end: cur})
	}
	return runs
}

// Bytes writes the dictionary. Child arrays follow the array of their parent.
func (b *Builder) Bytes() ([]byte, error) {
	if b.width < 1 || b.width > 3 {
		return nil, fmt.Errorf("address width %d not in 1..3", b.width)
	}
	out := Header(b.version)
	return b.writeArray(out, b.root)
}

// Build is Bytes for tests.
func (b *Builder) Build(t testing.TB) []byte {
	t.Helper()
	data, err := b.Bytes()
	if err != nil {
		t.Fatalf("building dictionary: %v", err)
	}
	return data
}

func (b *Builder) writeArray(out []byte, parent *trieNode) ([]byte, error) {
	runs := runsOf(parent)
	out = AppendCount(out, len(runs))

	type pending struct {
		field int
		end   *trieNode
	}
	var todo []pending
	for _, r := range runs {
		n := r.end
		var flags byte
		if len(r.chars) > 1 {
			flags |= flagMultipleChars
		}
		if n.terminal {
			flags |= flagTerminal
			if n.notAWord {
				flags |= flagNotAWord
			}
			if len(n.shortcuts) > 0 {
				flags |= flagShortcuts
			}
		}
		if len(n.cached) > 0 {
			flags |= flagCachedSuggested
		}
		if len(n.children) > 0 {
			flags |= byte(b.width) << 6
		}
		out = append(out, flags)

		for _, c := range r.chars {
			out = AppendChar(out, c)
		}
		if len(r.chars) > 1 {
			out = append(out, terminator)
		}
		if n.terminal {
			out = append(out, byte(n.frequency))
		}
		if len(n.children) > 0 {
			todo = append(todo, pending{field: len(out), end: n})
			out = append(out, make([]byte, b.width)...)
		}
		if len(n.cached) > 0 {
			out = AppendList(out, len(n.cached), n.cached)
		}
		if n.terminal && len(n.shortcuts) > 0 {
			out = AppendList(out, len(n.shortcuts), n.shortcuts)
		}
	}

	for _, p := range todo {
		offset := len(out) - p.field
		if offset >= 1<<(8*b.width) {
			return nil, fmt.Errorf("offset %d does not fit %d byte address", offset, b.width)
		}
		for i := 0; i < b.width; i++ {
			out[p.field+i] = byte(offset >> (8 * (b.width - 1 - i)))
		}
		var err error
		if out, err = b.writeArray(out, p.end); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Header returns a 12 byte header carrying the given version.
func Header(v int) []byte {
	h := make([]byte, headerSize)
	binary.BigEndian.PutUint32(h[0:], magic)
	binary.BigEndian.PutUint16(h[4:], uint16(v))
	binary.BigEndian.PutUint32(h[8:], headerSize)
	return h
}

// AppendCount appends a node array count.
func AppendCount(out []byte, count int) []byte {
	if count <= 0x7F {
		return append(out, byte(count))
	}
	return append(out, byte(0x80|count>>8), byte(count))
}

// AppendChar appends one character in its one or three byte form.
func AppendChar(out []byte, c rune) []byte {
	if c >= 0x20 && c <= 0xFF {
		return append(out, byte(c))
	}
	return append(out, byte(c>>16), byte(c>>8), byte(c))
}

// AppendString appends s followed by the terminator.
func AppendString(out []byte, s string) []byte {
	for _, c := range s {
		out = AppendChar(out, c)
	}
	return append(out, terminator)
}

// AppendList appends a weighted list with the given declared size, which
// tests may set to disagree with len(entries).
func AppendList(out []byte, declared int, entries []Entry) []byte {
	out = binary.BigEndian.AppendUint16(out, uint16(declared))
	for i, e := range entries {
		attr := byte(e.Freq & attrFrequency)
		if i < len(entries)-1 {
			attr |= attrHasNext
		}
		out = append(out, attr)
		out = AppendString(out, e.Word)
	}
	return out
}

// WriteFile stores data as name inside a temporary directory and returns the
// full path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
