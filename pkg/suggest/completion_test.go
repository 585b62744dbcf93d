package suggest

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/bastiangx/wordpack/internal/dicttest"
	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func testBuilder() *dicttest.Builder {
	return dicttest.NewBuilder().
		AddWord("he", 250).
		AddWord("hello", 200).
		AddWord("help", 180).
		AddWord("helmet", 90).
		AddWord("helium", 40).
		AddWord("world", 100).
		AddWord("word", 120)
}

func newTestCompleter(t *testing.T, opts Options) (*Completer, string) {
	t.Helper()
	path := dicttest.WriteFile(t, "test.dict", testBuilder().Build(t))
	c, err := NewCompleterFromFile(path, opts)
	require.NoError(t, err)
	return c, path
}

func weightedWords(list []dictionary.WeightedString) []string {
	out := make([]string, 0, len(list))
	for _, ws := range list {
		out = append(out, ws.Word)
	}
	return out
}

func suggestionWords(list []Suggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Word)
	}
	return out
}

func TestComplete(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"prefix", "hel", 10, []string{"hello", "help", "helmet", "helium"}},
		{"limit", "hel", 2, []string{"hello", "help"}},
		{"no limit", "hel", 0, []string{"hello", "help", "helmet", "helium"}},
		{"capitalised", "Hel", 3, []string{"Hello", "Help", "Helmet"}},
		{"all caps", "HEL", 10, []string{"HELlo", "HELp", "HELmet", "HELium"}},
		{"all caps limit", "HEL", 2, []string{"HELlo", "HELp"}},
		{"unknown", "xyzzy", 10, []string{}},
		{"empty", "", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Complete(tt.prefix, tt.limit)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, suggestionWords(got))
			for _, s := range got {
				assert.False(t, s.WasCorrected, s.Word)
			}
		})
	}
}

func TestComplete_MixedCase(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	got := suggestionWords(c.Complete("hELm", 10))
	assert.Contains(t, got, "hELmet")

	got = suggestionWords(c.Complete("HELP", 10))
	assert.Contains(t, got, "HELlo")
	assert.NotContains(t, got, "HELP")

	corrected := c.Complete("Helo", 10)
	require.NotEmpty(t, corrected)
	assert.Contains(t, suggestionWords(corrected), "Hello")
	for _, s := range corrected {
		if s.Word == "Hello" {
			assert.True(t, s.WasCorrected)
		}
	}
}

func TestLookup_MixedCase(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	res := c.Lookup("HEL")
	require.NotNil(t, res)
	assert.Equal(t, []string{"hello", "help", "helmet", "helium"}, weightedWords(res.Suggestions))

	got := c.Candidates("HEL", 3)
	assert.Equal(t, []string{"HEL", "hello", "help"}, suggestionWords(got))
}

func TestMergeResults(t *testing.T) {
	primary := &dictionary.QueryResult{
		Word:  "Abc",
		Valid: true,
		Suggestions: []dictionary.WeightedString{
			{Word: "abd", Frequency: 10},
			{Word: "abe", Frequency: 50},
		},
	}
	secondary := &dictionary.QueryResult{
		Word: "abc",
		Suggestions: []dictionary.WeightedString{
			{Word: "abe", Frequency: 50},
			{Word: "abf", Frequency: 10},
			{Word: "abg", Frequency: 90},
		},
	}

	got := mergeResults(primary, secondary)
	assert.Equal(t, "Abc", got.Word)
	assert.True(t, got.Valid)
	assert.Equal(t, []string{"abg", "abe", "abd", "abf"}, weightedWords(got.Suggestions))
	assert.Len(t, primary.Suggestions, 2, "inputs are left alone")

	many := &dictionary.QueryResult{}
	for i := 0; i < 2*dictionary.MaxSuggestions; i++ {
		many.Suggestions = append(many.Suggestions, dictionary.WeightedString{Word: fmt.Sprintf("w%02d", i), Frequency: i})
	}
	assert.Len(t, mergeResults(&dictionary.QueryResult{}, many).Suggestions, dictionary.MaxSuggestions)
}

func TestComplete_ExcludesInput(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	got := suggestionWords(c.Complete("help", 10))
	assert.NotContains(t, got, "help")
	assert.Contains(t, got, "hello")

	got = suggestionWords(c.Complete("Help", 10))
	assert.NotContains(t, got, "Help")
	assert.NotContains(t, got, "help")
}

func TestComplete_Corrections(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	got := c.Complete("wrold", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, "world", got[0].Word)
	assert.True(t, got[0].WasCorrected)
}

func TestComplete_MinFrequency(t *testing.T) {
	opts := DefaultOptions()
	opts.MinFrequency = 100
	c, _ := newTestCompleter(t, opts)

	assert.Equal(t, []string{"hello", "help"}, suggestionWords(c.Complete("hel", 10)))

	c.SetMinFrequency(0)
	assert.Len(t, c.Complete("hel", 10), 4)
}

func TestCandidates(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	got := c.Candidates("hello", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, Suggestion{Word: "hello", Frequency: 200}, got[0])
	assert.NotContains(t, suggestionWords(got[1:]), "hello")

	got = c.Candidates("helo", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, Suggestion{Word: "helo"}, got[0], "typed word comes first even when unknown")
	assert.Contains(t, suggestionWords(got), "hello")

	got = c.Candidates("hel", 3)
	assert.Equal(t, []string{"hel", "hello", "help"}, suggestionWords(got))

	got = c.Candidates("qqqq", 10)
	assert.Equal(t, []Suggestion{{Word: "qqqq"}}, got)

	assert.Empty(t, c.Candidates("  ", 10))
}

func TestLookup(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	res := c.Lookup("help")
	require.NotNil(t, res)
	assert.True(t, res.Valid)
	assert.Equal(t, 180, res.Frequency)

	// the copy must not leak into the cache
	assert.Equal(t, "hello", res.Suggestions[0].Word)
	res.Suggestions[0].Word = "mangled"
	again := c.Lookup("help")
	require.NotNil(t, again)
	assert.Equal(t, "hello", again.Suggestions[0].Word)

	assert.Nil(t, c.Lookup("zzzzzz"))
	assert.Nil(t, c.Lookup(""))
}

func TestCompleter_CachesResults(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	first := c.Complete("hel", 10)
	second := c.Complete("hel", 10)
	assert.Equal(t, first, second)

	stats := c.Stats()
	assert.Equal(t, 1, stats["hotCacheWords"])
	assert.Equal(t, 1, stats["hotCacheHits"])
	assert.Equal(t, 1, stats["loaded"])
	assert.Equal(t, 7, stats["totalWords"])
	assert.Equal(t, dictionary.Version100, stats["dictVersion"])
}

func TestCompleter_CacheDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.HotCacheSize = 0
	c, _ := newTestCompleter(t, opts)

	assert.Equal(t, c.Complete("hel", 10), c.Complete("hel", 10))
	assert.Equal(t, 0, c.Stats()["hotCacheWords"])
}

func TestCompleter_Reload(t *testing.T) {
	c, path := newTestCompleter(t, DefaultOptions())
	assert.Empty(t, c.Complete("zebra", 10))

	updated := testBuilder().AddWord("zebra", 60).AddWord("zebras", 30).Build(t)
	require.NoError(t, os.WriteFile(path, updated, 0o644))
	require.NoError(t, c.Reload())

	assert.Equal(t, []string{"zebras"}, suggestionWords(c.Complete("zebra", 10)))
	stats := c.Stats()
	assert.Equal(t, 1, stats["reloads"])
	assert.Equal(t, 9, stats["totalWords"])

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	assert.Error(t, c.Reload())
	assert.Equal(t, []string{"zebras"}, suggestionWords(c.Complete("zebra", 10)),
		"failed reload keeps the old dictionary")
}

func TestCompleter_SwapThroughLoader(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())
	assert.NotEmpty(t, c.Complete("hel", 10))

	other, err := dictionary.Load(dicttest.NewBuilder().AddWord("other", 5).Build(t))
	require.NoError(t, err)
	c.Loader().Set(other, "memory")

	assert.Empty(t, c.Complete("hel", 10), "cache filled from the old dictionary is dropped")
}

func TestCompleter_SwapWhileCompleting(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())
	first := c.Loader().Current()
	second, err := dictionary.Load(dicttest.NewBuilder().AddWord("helix", 70).AddWord("helot", 20).Build(t))
	require.NoError(t, err)

	fromFirst := []string{"hello", "help", "helmet", "helium"}
	fromSecond := []string{"helix", "helot"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				c.Loader().Set(second, "second")
			} else {
				c.Loader().Set(first, "first")
			}
		}
		c.Loader().Set(second, "second")
	}()
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got := suggestionWords(c.Complete("hel", 10))
				if len(got) == 0 {
					continue
				}
				assert.True(t, assert.ObjectsAreEqual(fromFirst, got) || assert.ObjectsAreEqual(fromSecond, got), got)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, fromSecond, suggestionWords(c.Complete("hel", 10)), "no result of the old dictionary survives the last swap")
}

func TestCompleter_NoDictionary(t *testing.T) {
	c := NewCompleter(dictionary.NewRuntimeLoader(), DefaultOptions())

	assert.Empty(t, c.Complete("hel", 10))
	assert.Nil(t, c.Lookup("hel"))
	assert.Equal(t, []Suggestion{{Word: "hel"}}, c.Candidates("hel", 10))
	assert.Equal(t, 0, c.Stats()["loaded"])
	assert.Error(t, c.Reload())
}

var testPrefixes = []string{
	"h", "he", "hel", "hell", "hello",
	"w", "wo", "wor", "worl", "world",
	"Hel", "WOR", "wrod", "hlep",
}

func TestCompleter_Concurrent(t *testing.T) {
	c, _ := newTestCompleter(t, DefaultOptions())

	want := make(map[string][]Suggestion, len(testPrefixes))
	for _, p := range testPrefixes {
		want[p] = c.Complete(p, 5)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				p := testPrefixes[(worker+i)%len(testPrefixes)]
				assert.Equal(t, want[p], c.Complete(p, 5), fmt.Sprintf("worker %d prefix %q", worker, p))
			}
		}(w)
	}
	wg.Wait()
}
