// Package engine defines the contract between the annotation bridge and a
// linguistic annotation engine (tokenizer, tagger, lemmatizer).
//
// An engine turns raw text into a sequence of Units. Concatenating every
// unit's Text followed by its Whitespace must reproduce the input exactly;
// the bridge verifies this and rejects output that does not.
//
// Engines are typically expensive to construct and not safe for concurrent
// use. The bridge therefore builds one engine per worker through a Factory
// and never shares an instance between workers.
//
// Concrete engines live in subpackages and register themselves by kind:
//
//	import _ "github.com/FocuswithJustin/wikiwsd/core/engine/rules"
//
//	factory, err := engine.NewFactory(cfg)
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/FocuswithJustin/wikiwsd/core/errors"
)

// Unit is one linguistic unit produced by an engine.
type Unit struct {
	// Text is the surface form as it appears in the input.
	Text string `json:"text"`

	// Lemma is the base form.
	Lemma string `json:"lemma"`

	// POS is the part-of-speech tag.
	POS string `json:"pos"`

	// Whitespace is the separator between this unit and the next one.
	Whitespace string `json:"whitespace"`
}

// Engine annotates text.
type Engine interface {
	// Annotate returns the units of text in textual order.
	Annotate(text string) ([]Unit, error)

	// Close releases resources held by the engine.
	Close() error
}

// Factory builds a new, independent Engine instance.
type Factory func() (Engine, error)

// Constructor builds an engine from configuration.
type Constructor func(cfg Config) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register makes an engine kind available to NewFactory.
// It panics if kind is empty or registered twice.
func Register(kind string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if kind == "" || ctor == nil {
		panic("engine: Register with empty kind or nil constructor")
	}
	if _, dup := registry[kind]; dup {
		panic("engine: Register called twice for kind " + kind)
	}
	registry[kind] = ctor
}

// Kinds returns the registered engine kinds in sorted order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NewFactory returns a Factory for the engine kind named in cfg.
func NewFactory(cfg Config) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	ctor, ok := registry[cfg.Kind]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NewUnsupported("engine kind "+cfg.Kind, fmt.Sprintf("registered kinds: %v", Kinds()))
	}

	return func() (Engine, error) {
		return ctor(cfg)
	}, nil
}

// Func adapts a plain function to the Engine interface. Close is a no-op.
type Func func(text string) ([]Unit, error)

// Annotate calls f(text).
func (f Func) Annotate(text string) ([]Unit, error) {
	return f(text)
}

// Close does nothing.
func (f Func) Close() error {
	return nil
}
