package suggest

import (
	"math"
	"sync"

	"github.com/bastiangx/wordpack/pkg/dictionary"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache remembers the fuse results of recently typed prefixes, absent
// results included. Entries live in a patricia trie keyed by the prefix
// exactly as typed, so "Hel" and "hel" are cached separately. Cached results
// are shared and must not be modified.
type HotCache struct {
	hotTrie     *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	misses      int64
	maxWords    int
	mu          sync.Mutex
}

// NewHotCache creates a cache holding at most maxWords prefixes. A size of
// zero or less disables caching.
func NewHotCache(maxWords int) *HotCache {
	return &HotCache{
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, max(maxWords, 0)),
		maxWords:   maxWords,
	}
}

// Get returns the cached result for prefix. The result may be nil when the
// prefix is cached as absent.
func (hc *HotCache) Get(prefix string) (*dictionary.QueryResult, bool) {
	if hc == nil || hc.maxWords <= 0 {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	item := hc.hotTrie.Get(patricia.Prefix(prefix))
	if item == nil {
		hc.misses++
		return nil, false
	}
	hc.hits++
	hc.markAccessed(prefix)
	return item.(*dictionary.QueryResult), true
}

// Put stores res for prefix, evicting the least recently used prefix when
// the cache is full.
func (hc *HotCache) Put(prefix string, res *dictionary.QueryResult) {
	if hc == nil || hc.maxWords <= 0 {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, exists := hc.accessTime[prefix]; !exists && len(hc.accessTime) >= hc.maxWords {
		hc.evictLRU()
	}
	hc.hotTrie.Set(patricia.Prefix(prefix), res)
	hc.markAccessed(prefix)
}

// Reset empties the cache. Counters are kept.
func (hc *HotCache) Reset() {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.hotTrie = patricia.NewTrie()
	clear(hc.accessTime)
	log.Debugf("Hot cache reset")
}

func (hc *HotCache) Len() int {
	if hc == nil {
		return 0
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.accessTime)
}

func (hc *HotCache) Stats() map[string]int {
	if hc == nil {
		return map[string]int{}
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCacheWords":  len(hc.accessTime),
		"maxHotWords":    hc.maxWords,
		"hotCacheHits":   int(hc.hits),
		"hotCacheMisses": int(hc.misses),
	}
}

func (hc *HotCache) markAccessed(word string) {
	hc.accessCount++
	hc.accessTime[word] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestWord string
	var oldestTime int64 = math.MaxInt64

	for word, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestWord = word
		}
	}

	if oldestWord != "" {
		hc.hotTrie.Delete(patricia.Prefix(oldestWord))
		delete(hc.accessTime, oldestWord)
		log.Debugf("Evicted prefix '%s' from hot cache", oldestWord)
	}
}
