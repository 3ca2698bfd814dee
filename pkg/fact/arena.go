// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import "fmt"

// Arena is the contiguous, append-only home of all facts for one evaluation
// run. An arena is immutable once built; indices store IDs into it, and
// sharing it across goroutines requires no locking.
type Arena struct {
	facts []Fact
}

// Len returns the number of facts in the arena.
func (a *Arena) Len() int { return len(a.facts) }

// Get returns the fact with the given identifier.
// The second return is false when the identifier is out of range.
func (a *Arena) Get(id ID) (*Fact, bool) {
	if int(id) >= len(a.facts) {
		return nil, false
	}
	return &a.facts[id], true
}

// Each calls fn for every fact in identifier order, stopping early when fn
// returns false.
func (a *Arena) Each(fn func(f *Fact) bool) {
	for i := range a.facts {
		if !fn(&a.facts[i]) {
			return
		}
	}
}

// Option customizes a fact added through a Builder.
type Option func(*Fact)

// WithLocation attaches a source location. The location is validated by
// Builder.Add.
func WithLocation(loc Location) Option {
	return func(f *Fact) {
		l := loc
		f.loc = &l
	}
}

// WithConfidence sets the extractor's confidence score.
// The default is 1.0.
func WithConfidence(c float64) Option {
	return func(f *Fact) { f.confidence = c }
}

// WithFlowID attaches the data-flow correlation key.
func WithFlowID(id string) Option {
	return func(f *Fact) { f.flowID = id }
}

// WithProvenance attaches the producing extractor's metadata.
func WithProvenance(p Provenance) Option {
	return func(f *Fact) { f.prov = p }
}

// Builder accumulates facts and assigns dense identifiers in insertion
// order. It is single-use: Build finalizes the arena and the builder must
// not be reused afterward.
type Builder struct {
	facts []Fact
	built bool
}

// NewBuilder returns an empty arena builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends one fact and returns its assigned identifier.
// Validation failures (bad confidence, malformed location, nil payload)
// reject the fact without consuming an identifier.
func (b *Builder) Add(p Payload, opts ...Option) (ID, error) {
	if b.built {
		return 0, fmt.Errorf("arena builder already finalized")
	}
	if p == nil {
		return 0, fmt.Errorf("fact payload is nil")
	}
	if p.Category() == CategoryInvalid {
		return 0, fmt.Errorf("fact payload has invalid category")
	}

	f := Fact{
		id:         ID(len(b.facts)),
		payload:    p,
		confidence: 1.0,
	}
	for _, opt := range opts {
		opt(&f)
	}

	if err := validConfidence(f.confidence); err != nil {
		return 0, fmt.Errorf("fact %d: %w", f.id, err)
	}
	if f.loc != nil {
		if err := f.loc.Validate(); err != nil {
			return 0, fmt.Errorf("fact %d: %w", f.id, err)
		}
	}

	b.facts = append(b.facts, f)
	return f.id, nil
}

// Len returns the number of facts added so far.
func (b *Builder) Len() int { return len(b.facts) }

// Build finalizes the arena. The builder must not be used again.
func (b *Builder) Build() *Arena {
	b.built = true
	return &Arena{facts: b.facts}
}
