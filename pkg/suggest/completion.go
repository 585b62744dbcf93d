package suggest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/wordpack/internal/utils"
	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/charmbracelet/log"
)

// Suggestion is one completion offered to the user.
type Suggestion struct {
	Word      string
	Frequency int
	// WasCorrected is set when the word does not start with the typed text,
	// meaning it was found through a typo correction.
	WasCorrected bool `json:",omitempty"`
}

var _ ICompleter = (*Completer)(nil)

// foldThreshold is the suggestion count below which a word with capitals is
// also looked up in lower case.
const foldThreshold = 3

// Options tune a Completer.
type Options struct {
	// HotCacheSize is the number of prefixes whose results are remembered.
	HotCacheSize int
	// MinFrequency drops suggestions rated below it.
	MinFrequency int
	// FuseTimeout bounds the typo search of one lookup. Zero means no bound.
	FuseTimeout time.Duration
}

// DefaultOptions returns the options used when no config is given.
func DefaultOptions() Options {
	return Options{
		HotCacheSize: 2000,
		MinFrequency: 0,
		FuseTimeout:  50 * time.Millisecond,
	}
}

// Completer answers completion requests from the dictionary held by a
// RuntimeLoader. It notices when the loader swaps dictionaries and drops its
// cache then.
type Completer struct {
	loader   *dictionary.RuntimeLoader
	hotCache *HotCache

	mu           sync.Mutex
	minFrequency int
	fuseTimeout  time.Duration
	dict         *dictionary.Dictionary
	wordCount    int
}

// NewCompleter creates a completer over loader.
func NewCompleter(loader *dictionary.RuntimeLoader, opts Options) *Completer {
	return &Completer{
		loader:       loader,
		hotCache:     NewHotCache(opts.HotCacheSize),
		minFrequency: opts.MinFrequency,
		fuseTimeout:  opts.FuseTimeout,
		wordCount:    -1,
	}
}

// NewCompleterFromFile loads the dictionary at path and creates a completer
// over it.
func NewCompleterFromFile(path string, opts Options) (*Completer, error) {
	loader := dictionary.NewRuntimeLoader()
	if err := loader.Load(path); err != nil {
		return nil, err
	}
	return NewCompleter(loader, opts), nil
}

// Loader returns the loader the completer reads from.
func (c *Completer) Loader() *dictionary.RuntimeLoader { return c.loader }

// SetMinFrequency changes the frequency threshold for later requests.
func (c *Completer) SetMinFrequency(minFrequency int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minFrequency = minFrequency
}

// SetFuseTimeout changes the typo search bound for later requests. Cached
// results are dropped since they may have been cut short by the old bound.
func (c *Completer) SetFuseTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout != c.fuseTimeout {
		c.fuseTimeout = timeout
		c.hotCache.Reset()
	}
}

// current returns the dictionary in service and resets the cache when it
// differs from the one the cache was filled from.
func (c *Completer) current() *dictionary.Dictionary {
	dict := c.loader.Current()
	c.mu.Lock()
	defer c.mu.Unlock()
	if dict != c.dict {
		c.dict = dict
		c.wordCount = -1
		c.hotCache.Reset()
	}
	return dict
}

// resolve runs the fuse query for word through the hot cache. Failed
// lookups are logged and reported as absent; a lookup cut short by the
// timeout returns what it found but is not cached.
func (c *Completer) resolve(word string) *dictionary.QueryResult {
	dict := c.current()
	if dict == nil {
		log.Warnf("No dictionary loaded, cannot look up '%s'", word)
		return nil
	}
	if res, ok := c.hotCache.Get(word); ok {
		return res
	}

	c.mu.Lock()
	timeout := c.fuseTimeout
	c.mu.Unlock()

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := dict.FuseQuery(ctx, word)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Debugf("Typo search for '%s' stopped after %v, using partial result", word, time.Since(start))
			return res
		}
		log.Errorf("Lookup of '%s' failed: %v", word, err)
		return nil
	}

	c.mu.Lock()
	if c.dict == dict {
		c.hotCache.Put(word, res)
	}
	c.mu.Unlock()
	return res
}

// resolveFolded resolves word as typed and, when it has capitals and that
// finds fewer than foldThreshold suggestions, merges in the result for the
// lower-cased word. Stored words are lower case, so the typed form alone
// only reaches words one typo away.
func (c *Completer) resolveFolded(word string) *dictionary.QueryResult {
	res := c.resolve(word)
	if utils.CapitalPositions(word) == nil || (res != nil && len(res.Suggestions) >= foldThreshold) {
		return res
	}
	lower := c.resolve(strings.ToLower(word))
	if lower == nil {
		return res
	}
	if res == nil {
		return lower
	}
	return mergeResults(res, lower)
}

// mergeResults keeps the word fields of primary and joins both suggestion
// lists: first occurrence wins, stable order by frequency, capped at
// dictionary.MaxSuggestions. Neither input is modified.
func mergeResults(primary, secondary *dictionary.QueryResult) *dictionary.QueryResult {
	out := *primary
	seen := make(map[string]bool, len(primary.Suggestions)+len(secondary.Suggestions))
	merged := make([]dictionary.WeightedString, 0, len(primary.Suggestions)+len(secondary.Suggestions))
	for _, list := range [][]dictionary.WeightedString{primary.Suggestions, secondary.Suggestions} {
		for _, ws := range list {
			if seen[ws.Word] {
				continue
			}
			seen[ws.Word] = true
			merged = append(merged, ws)
		}
	}
	slices.SortStableFunc(merged, func(a, b dictionary.WeightedString) int {
		return b.Frequency - a.Frequency
	})
	if len(merged) > dictionary.MaxSuggestions {
		merged = merged[:dictionary.MaxSuggestions]
	}
	out.Suggestions = merged
	return &out
}

// Complete returns suggestions for a given prefix with a limit
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	if prefix == "" {
		return nil
	}
	res := c.resolveFolded(prefix)
	if res == nil {
		return []Suggestion{}
	}

	c.mu.Lock()
	minFrequency := c.minFrequency
	c.mu.Unlock()

	capitals := utils.CapitalPositions(prefix)
	filter := utils.NewSuggestionFilter(prefix)
	suggestions := make([]Suggestion, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		if s.Frequency < minFrequency {
			continue
		}
		word := utils.ApplyCapitals(s.Word, capitals)
		if !filter.ShouldInclude(word) {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Word:         word,
			Frequency:    s.Frequency,
			WasCorrected: !utils.HasPrefixFold(s.Word, prefix),
		})
		if limit > 0 && len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// Candidates returns the typed word first, then every suggestion that is
// not the typed word itself. The typed word carries its frequency when it
// is a stored word. A limit above zero caps the whole list.
func (c *Completer) Candidates(word string, limit int) []Suggestion {
	if strings.TrimSpace(word) == "" {
		return []Suggestion{}
	}

	typed := Suggestion{Word: word}
	res := c.resolveFolded(word)
	if res != nil && res.Valid && res.Word == word {
		typed.Frequency = res.Frequency
	}
	candidates := []Suggestion{typed}
	if res == nil {
		return candidates
	}

	for _, s := range res.Suggestions {
		if limit > 0 && len(candidates) >= limit {
			break
		}
		if s.Word == word {
			continue
		}
		candidates = append(candidates, Suggestion{
			Word:         s.Word,
			Frequency:    s.Frequency,
			WasCorrected: !utils.HasPrefixFold(s.Word, word),
		})
	}
	return candidates
}

// Lookup returns a copy of the fuse result for word, or nil when nothing
// was found.
func (c *Completer) Lookup(word string) *dictionary.QueryResult {
	if word == "" {
		return nil
	}
	res := c.resolveFolded(word)
	if res == nil {
		return nil
	}
	out := *res
	out.Suggestions = slices.Clone(res.Suggestions)
	return &out
}

// Reload reads the dictionary file again. The cache is dropped on the next
// request, when the new dictionary is first seen.
func (c *Completer) Reload() error {
	start := time.Now()
	if err := c.loader.Reload(); err != nil {
		log.Errorf("Reload failed, keeping current dictionary: %v", err)
		return err
	}
	c.current()
	log.Infof("Dictionary reloaded in %v", time.Since(start))
	return nil
}

// Stats returns statistics about the loaded dictionary and the cache.
func (c *Completer) Stats() map[string]int {
	stats := c.hotCache.Stats()

	loaderStats := c.loader.Stats()
	stats["dictSize"] = loaderStats.Size
	stats["dictVersion"] = loaderStats.Version
	stats["reloads"] = loaderStats.Reloads
	stats["loaded"] = 0
	if loaderStats.Loaded {
		stats["loaded"] = 1
	}

	if dict := c.current(); dict != nil {
		stats["totalWords"] = c.countWords(dict)
	}
	return stats
}

func (c *Completer) countWords(dict *dictionary.Dictionary) int {
	c.mu.Lock()
	if c.dict == dict && c.wordCount >= 0 {
		count := c.wordCount
		c.mu.Unlock()
		return count
	}
	c.mu.Unlock()

	count, err := dict.WordCount()
	if err != nil {
		log.Errorf("Counting words failed: %v", err)
		return 0
	}

	c.mu.Lock()
	if c.dict == dict {
		c.wordCount = count
	}
	c.mu.Unlock()
	return count
}
