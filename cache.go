package rabbit

import (
	"github.com/dgraph-io/ristretto"
)

// ProgramCache memoizes built programs keyed by source text so repeat
// executions of the same script skip the lexer and parser. Programs
// are immutable after Parse, which makes shared cache hits safe across
// goroutines. Each entry costs one unit; capacity is the entry count.
type ProgramCache struct {
	cache *ristretto.Cache
}

func NewProgramCache(entries int64) (*ProgramCache, error) {
	if entries <= 0 {
		entries = GetRuntimeConfig().CacheEntries
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: entries * 10,
		MaxCost:     entries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, &Error{Code: ErrCodeInput, Message: "creating program cache", Cause: err}
	}
	return &ProgramCache{cache: cache}, nil
}

func (pc *ProgramCache) Get(source string) (*Program, bool) {
	if pc == nil || pc.cache == nil {
		return nil, false
	}
	val, ok := pc.cache.Get(source)
	if !ok {
		return nil, false
	}
	program, ok := val.(*Program)
	return program, ok
}

func (pc *ProgramCache) Set(source string, program *Program) {
	if pc == nil || pc.cache == nil || program == nil {
		return
	}
	pc.cache.Set(source, program, 1)
}

// Wait blocks until pending writes are visible to Get. Mostly useful
// in tests; hot paths never need it.
func (pc *ProgramCache) Wait() {
	if pc != nil && pc.cache != nil {
		pc.cache.Wait()
	}
}

func (pc *ProgramCache) Close() {
	if pc != nil && pc.cache != nil {
		pc.cache.Close()
	}
}
