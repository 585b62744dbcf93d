package dictionary

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// RuntimeLoader holds the dictionary currently in service and swaps it for a
// freshly loaded one on request. Queries keep using the Dictionary they
// obtained from Current, so a swap never disturbs a query in flight.
type RuntimeLoader struct {
	dict     *Dictionary
	path     string
	loadedAt time.Time
	reloads  int
	mu       sync.RWMutex
}

// LoaderStats describes the dictionary in service.
type LoaderStats struct {
	Path     string
	Size     int
	Version  int
	LoadedAt time.Time
	Reloads  int
	Loaded   bool
}

// NewRuntimeLoader creates a loader with no dictionary in service.
func NewRuntimeLoader() *RuntimeLoader {
	return &RuntimeLoader{}
}

// Load validates and reads the file at path and puts it in service. On error
// the previous dictionary stays in place.
func (rl *RuntimeLoader) Load(path string) error {
	if _, err := ValidateFile(path); err != nil {
		return err
	}
	dict, err := LoadFile(path)
	if err != nil {
		return err
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.dict != nil {
		rl.reloads++
	}
	rl.dict = dict
	rl.path = path
	rl.loadedAt = time.Now()
	log.Debugf("Dictionary in service: %s (%d bytes)", path, dict.Size())
	return nil
}

// Set puts an already loaded dictionary in service.
func (rl *RuntimeLoader) Set(dict *Dictionary, path string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.dict != nil {
		rl.reloads++
	}
	rl.dict = dict
	rl.path = path
	rl.loadedAt = time.Now()
}

// Reload reads the current path again.
func (rl *RuntimeLoader) Reload() error {
	rl.mu.RLock()
	path := rl.path
	rl.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("no dictionary file to reload")
	}
	return rl.Load(path)
}

// Current returns the dictionary in service, or nil.
func (rl *RuntimeLoader) Current() *Dictionary {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.dict
}

// Stats returns information about the dictionary in service.
func (rl *RuntimeLoader) Stats() LoaderStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	stats := LoaderStats{
		Path:     rl.path,
		LoadedAt: rl.loadedAt,
		Reloads:  rl.reloads,
		Loaded:   rl.dict != nil,
	}
	if rl.dict != nil {
		stats.Size = rl.dict.Size()
		stats.Version = rl.dict.header.Version
	}
	return stats
}
