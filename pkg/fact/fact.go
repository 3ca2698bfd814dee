// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import (
	"fmt"
	"math"
	"time"
)

// ID is the dense integer identifier of a fact within one arena.
// Identifiers start at zero, are assigned in insertion order by the arena
// builder, and are never reused or mutated.
type ID uint32

// Location is a source position. All coordinates are 1-based; zero is
// rejected at construction time.
type Location struct {
	// File is the path as reported by the extractor.
	File string

	// StartLine and EndLine bound the observation, inclusive.
	StartLine int
	EndLine   int

	// StartCol and EndCol bound the observation on its lines, inclusive.
	StartCol int
	EndCol   int
}

// Validate checks the 1-based coordinate invariants.
func (l Location) Validate() error {
	if l.File == "" {
		return fmt.Errorf("location: empty file path")
	}
	if l.StartLine < 1 || l.EndLine < 1 || l.StartCol < 1 || l.EndCol < 1 {
		return fmt.Errorf("location %s: coordinates are 1-based, got lines %d-%d cols %d-%d",
			l.File, l.StartLine, l.EndLine, l.StartCol, l.EndCol)
	}
	if l.EndLine < l.StartLine {
		return fmt.Errorf("location %s: end line %d before start line %d", l.File, l.EndLine, l.StartLine)
	}
	if l.EndLine == l.StartLine && l.EndCol < l.StartCol {
		return fmt.Errorf("location %s:%d: end column %d before start column %d", l.File, l.StartLine, l.EndCol, l.StartCol)
	}
	return nil
}

// String renders the location as file:line for messages.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.StartLine)
}

// Provenance records which extractor produced a fact and when.
type Provenance struct {
	// Extractor is the producing extractor's identity, e.g. "taint-go".
	Extractor string

	// Version is the extractor's version string.
	Version string

	// ExtractedAt is the extraction timestamp.
	ExtractedAt time.Time
}

// Fact is an atomic, immutable observation. Construct facts through a
// Builder; all fields are private and exposed through getters only.
type Fact struct {
	id         ID
	payload    Payload
	loc        *Location
	confidence float64
	flowID     string
	prov       Provenance
}

// ID returns the fact's arena identifier.
func (f *Fact) ID() ID { return f.id }

// Category returns the fact's category tag.
func (f *Fact) Category() Category { return f.payload.Category() }

// Payload returns the category-specific payload.
func (f *Fact) Payload() Payload { return f.payload }

// Location returns the source location, if the fact carries one.
func (f *Fact) Location() (Location, bool) {
	if f.loc == nil {
		return Location{}, false
	}
	return *f.loc, true
}

// Confidence returns the extractor's confidence in [0.0, 1.0].
func (f *Fact) Confidence() float64 { return f.confidence }

// FlowID returns the data-flow correlation key, if the fact carries one.
func (f *Fact) FlowID() (string, bool) {
	return f.flowID, f.flowID != ""
}

// Provenance returns the producing extractor's metadata.
func (f *Fact) Provenance() Provenance { return f.prov }

// Field resolves a top-level field by wire name: the common fields shared by
// every category (category, confidence, flow_id) and the category-specific
// payload fields. Location sub-fields are addressed through the location
// segment by the path resolver, not here.
func (f *Fact) Field(name string) (Value, bool) {
	switch name {
	case "category":
		return StringValue(f.Category().String()), true
	case "confidence":
		return FloatValue(f.confidence), true
	case "flow_id":
		return StringValue(f.flowID), true
	}
	return f.payload.Field(name)
}

// LocationField resolves a location sub-field by wire name.
// Returns false when the fact has no location or the name is unknown.
func (f *Fact) LocationField(name string) (Value, bool) {
	if f.loc == nil {
		return Value{}, false
	}
	switch name {
	case "file":
		return StringValue(f.loc.File), true
	case "start_line":
		return IntValue(int64(f.loc.StartLine)), true
	case "end_line":
		return IntValue(int64(f.loc.EndLine)), true
	case "start_col":
		return IntValue(int64(f.loc.StartCol)), true
	case "end_col":
		return IntValue(int64(f.loc.EndCol)), true
	}
	return Value{}, false
}

// validConfidence rejects non-finite scores and scores outside [0.0, 1.0].
func validConfidence(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("confidence must be finite, got %v", c)
	}
	if c < 0.0 || c > 1.0 {
		return fmt.Errorf("confidence must be within [0.0, 1.0], got %v", c)
	}
	return nil
}
