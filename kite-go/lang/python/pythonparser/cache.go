package pythonparser

import (
	"sync"
	"time"

	spooky "github.com/dgryski/go-spooky"
	lru "github.com/hashicorp/golang-lru"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
)

const (
	// parseCacheSize specifies the max number of parsed files to cache
	parseCacheSize = 1000
	// staleCutoff specifies when cache entries are considered stale
	staleCutoff = 10 * time.Minute
)

var (
	lock       sync.Mutex
	parseCache = newParseCache()
)

func newParseCache() *lru.Cache {
	c, err := lru.New(parseCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

type cacheKey struct {
	hash uint64
	mode ErrorMode
}

type parseEntry struct {
	lastAccessTs time.Time
	mod          *pythonast.Module
	err          error
}

// PurgeParseCache purges the parse cache
func PurgeParseCache() {
	lock.Lock()
	defer lock.Unlock()
	parseCache.Purge()
}

// --

func getCachedParse(contents []byte, mode ErrorMode) (*parseEntry, bool) {
	key := cacheKey{hash: hashContents(contents), mode: mode}
	lock.Lock()
	defer lock.Unlock()
	v, ok := parseCache.Get(key)
	if !ok {
		return nil, false
	}
	entry := v.(*parseEntry)
	if time.Since(entry.lastAccessTs) > staleCutoff {
		parseCache.Remove(key)
		return nil, false
	}
	entry.lastAccessTs = time.Now()
	return entry, true
}

func cacheParse(contents []byte, mode ErrorMode, mod *pythonast.Module, err error) {
	key := cacheKey{hash: hashContents(contents), mode: mode}
	lock.Lock()
	defer lock.Unlock()
	parseCache.Add(key, &parseEntry{
		lastAccessTs: time.Now(),
		mod:          mod,
		err:          err,
	})
}

// --

func hashContents(contents []byte) uint64 {
	return spooky.Hash64(contents)
}
