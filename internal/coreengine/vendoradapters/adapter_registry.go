package vendoradapters

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps provider names to recognizers. An unknown name is an
// error at lookup time so a pipeline can be constructed before every
// provider is configured.
type Registry struct {
	mu          sync.RWMutex
	recognizers map[string]SpeechRecognizer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{recognizers: make(map[string]SpeechRecognizer)}
}

// Register adds or replaces the recognizer for name.
func (r *Registry) Register(name string, rec SpeechRecognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizers[name] = rec
}

// Get returns the recognizer registered under name.
func (r *Registry) Get(name string) (SpeechRecognizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recognizers[name]
	if !ok {
		return nil, fmt.Errorf("no speech recognizer registered for provider %q (have %v)", name, r.names())
	}
	return rec, nil
}

// Names lists the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.recognizers))
	for name := range r.recognizers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
