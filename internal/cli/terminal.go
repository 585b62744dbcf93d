package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/bastiangx/wordpack/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// terminal renders results. Colours are used only when out is a terminal.
type terminal struct {
	out   io.Writer
	color bool

	title     lipgloss.Style
	word      lipgloss.Style
	corrected lipgloss.Style
	dim       lipgloss.Style
	valid     lipgloss.Style
	invalid   lipgloss.Style
}

func newTerminal(out io.Writer) *terminal {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &terminal{
		out:       out,
		color:     color,
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f4b8e4")),
		word:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		corrected: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		valid:     lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		invalid:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

func (t *terminal) render(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}

func (t *terminal) println(text string) {
	fmt.Fprintln(t.out, text)
}

func (t *terminal) banner() {
	t.println(t.render(t.title, "WordPack CLI"))
	t.println("type something, press enter to see the suggestions (:help for commands, Ctrl+C to exit)")
}

func (t *terminal) prompt() {
	fmt.Fprint(t.out, "> ")
}

func (t *terminal) printHelp() {
	t.println(`  <prefix>        complete a prefix
  :l <word>       lookup, shows validity and raw suggestions
  :c <word>       candidate strip for a typed word
  :s              dictionary and cache stats
  :r              reload the dictionary file
  :q              quit`)
}

func (t *terminal) printSuggestions(prefix string, suggestions []suggest.Suggestion, elapsed time.Duration) {
	fmt.Fprintf(t.out, "Found %d suggestions for '%s' %s\n", len(suggestions), prefix, t.render(t.dim, "("+elapsed.String()+")"))
	for i, s := range suggestions {
		style := t.word
		mark := ""
		if s.WasCorrected {
			style = t.corrected
			mark = " ~"
		}
		fmt.Fprintf(t.out, "%2d. %s (freq: %8s)%s\n", i+1, t.render(style, fmt.Sprintf("%-24s", s.Word)), formatWithCommas(s.Frequency), mark)
	}
}

func (t *terminal) printLookup(word string, res *dictionary.QueryResult, elapsed time.Duration) {
	took := t.render(t.dim, "("+elapsed.String()+")")
	if res == nil {
		fmt.Fprintf(t.out, "'%s' not found %s\n", word, took)
		return
	}
	status := t.render(t.invalid, "not a word")
	if res.Valid {
		status = t.render(t.valid, "valid, freq "+strconv.Itoa(res.Frequency))
	}
	fmt.Fprintf(t.out, "'%s': %s %s\n", res.Word, status, took)
	for i, s := range res.Suggestions {
		fmt.Fprintf(t.out, "%2d. %s (freq: %8s)\n", i+1, t.render(t.word, fmt.Sprintf("%-24s", s.Word)), formatWithCommas(s.Frequency))
	}
}

func (t *terminal) printStats(stats map[string]int) {
	for _, key := range slices.Sorted(maps.Keys(stats)) {
		fmt.Fprintf(t.out, "  %-16s %s\n", key, formatWithCommas(stats[key]))
	}
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	if n < 0 {
		return "-" + formatWithCommas(-n)
	}
	str := strconv.Itoa(n)
	if n < 1000 {
		return str
	}
	result := make([]byte, 0, len(str)+len(str)/3)
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return string(result)
}
