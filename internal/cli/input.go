// Package cli provides a simple CLI input handler for debugging in real-time and the completion functionality
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordpack/internal/utils"
	"github.com/bastiangx/wordpack/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/shlex"
)

// InputHandler reads lines from stdin and prints suggestions for each.
// Lines starting with ':' are commands, see printHelp.
type InputHandler struct {
	completer       suggest.ICompleter
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool // If true, bypasses all input filtering for debugging
	requestCount    int

	in   io.Reader
	term *terminal
}

// NewInputHandler creates a new CLI input handler
func NewInputHandler(completer suggest.ICompleter, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
		in:              os.Stdin,
		term:            newTerminal(os.Stdout),
	}
}

// SetIO replaces stdin and stdout.
func (h *InputHandler) SetIO(r io.Reader, w io.Writer) {
	h.in = r
	h.term = newTerminal(w)
}

// Start begins the CLI input loop. It returns nil when the input ends or
// on ':q'.
func (h *InputHandler) Start() error {
	h.term.banner()
	reader := bufio.NewReader(h.in)

	for {
		h.term.prompt()
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := h.handleCommand(line); quit {
				return nil
			}
			continue
		}
		h.handleInput(line)
	}
}

// handleCommand runs a ':' command. Arguments are split shell style, so
// a quoted argument may hold spaces.
func (h *InputHandler) handleCommand(line string) bool {
	fields, err := shlex.Split(line)
	if err != nil || len(fields) == 0 {
		log.Errorf("Cannot parse command %q: %v", line, err)
		return false
	}
	cmd, arg := fields[0], strings.Join(fields[1:], " ")

	switch cmd {
	case ":q", ":quit":
		return true
	case ":l", ":lookup":
		if !h.validPrefix(arg) {
			return false
		}
		start := time.Now()
		res := h.completer.Lookup(arg)
		h.term.printLookup(arg, res, time.Since(start))
	case ":c", ":cand":
		if !h.validPrefix(arg) {
			return false
		}
		start := time.Now()
		list := h.completer.Candidates(arg, h.suggestLimit)
		h.term.printSuggestions(arg, list, time.Since(start))
	case ":s", ":stats":
		h.term.printStats(h.completer.Stats())
	case ":r", ":reload":
		if err := h.completer.Reload(); err != nil {
			log.Errorf("Reload failed: %v", err)
			return false
		}
		h.term.println("dictionary reloaded")
	case ":h", ":help":
		h.term.printHelp()
	default:
		log.Warnf("Unknown command %s, try :help", cmd)
	}
	return false
}

// validPrefix checks length limits in characters.
func (h *InputHandler) validPrefix(prefix string) bool {
	n := utf8.RuneCountInString(prefix)
	if n == 0 || n < h.minPrefixLength {
		log.Errorf("Prefix too short: '%s'", prefix)
		return false
	}
	if n > h.maxPrefixLength {
		log.Errorf("Prefix too long: '%s'", prefix)
		return false
	}
	return true
}

// handleInput processes user input and displays completions
func (h *InputHandler) handleInput(prefix string) {
	h.requestCount++
	if !h.validPrefix(prefix) {
		return
	}

	if !h.noFilter {
		if !utils.IsValidInput(prefix) {
			log.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
			return
		}
	} else {
		log.Debug("Input filtering disabled - allowing all inputs")
	}

	log.Debug("Processing completion request", "prefix", prefix, "n", h.requestCount)
	start := time.Now()
	suggestions := h.completer.Complete(prefix, h.suggestLimit)
	elapsed := time.Since(start)
	log.Debugf("Took %v for prefix '%s'", elapsed, prefix)

	if len(suggestions) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}
	h.term.printSuggestions(prefix, suggestions, elapsed)
}
