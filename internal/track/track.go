// Package track records which definitions a generation run has used.
//
// Every generated artifact is claimed once; claiming it again means two code
// paths produced the same output with possibly different filters. At the end
// of a run the tracker reports definitions nobody looked at, which usually
// means a new entity or enum was added without wiring it into a generator.
package track

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDoubleGeneration is returned when an artifact is claimed twice.
	ErrDoubleGeneration = errors.New("generated twice")
	// ErrUnconsumed is returned when definitions were never used.
	ErrUnconsumed = errors.New("definitions never used")
)

// Kind separates the namespaces of tracked names.
type Kind string

const (
	Entity   Kind = "entity"
	Enum     Kind = "enum"
	Artifact Kind = "artifact" // generated file, by basename
)

type key struct {
	kind Kind
	name string
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	claimed  map[key]bool
	consumed map[key]bool
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		claimed:  make(map[key]bool),
		consumed: make(map[key]bool),
	}
}

// Claim marks name as generated. It also counts as consuming it.
func (t *Tracker) Claim(kind Kind, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{kind, name}
	if t.claimed[k] {
		return fmt.Errorf("%w: %s %s", ErrDoubleGeneration, kind, name)
	}
	t.claimed[k] = true
	t.consumed[k] = true
	return nil
}

// Touch marks name as consumed without claiming it. Touching is idempotent.
func (t *Tracker) Touch(kind Kind, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consumed[key{kind, name}] = true
}

// Consumed reports whether name was claimed or touched.
func (t *Tracker) Consumed(kind Kind, name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consumed[key{kind, name}]
}

// Unconsumed returns the names that were never claimed or touched, sorted.
func (t *Tracker) Unconsumed(kind Kind, names []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var missing []string
	for _, name := range names {
		if !t.consumed[key{kind, name}] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Check fails with ErrUnconsumed if any of names was never used.
func (t *Tracker) Check(kind Kind, names []string) error {
	missing := t.Unconsumed(kind, names)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s %s", ErrUnconsumed, kind, strings.Join(missing, ", "))
}
