// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// factDocument is the top-level JSON exchange format produced by extractors.
//
// Flow edges reference other facts by label rather than by arena identifier,
// because identifiers do not exist until the arena is built. Decoding is
// two-pass: labeled facts first, then edges with labels resolved.
type factDocument struct {
	Extractor extractorRecord `json:"extractor"`
	Facts     []factRecord    `json:"facts"`
}

type extractorRecord struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	ExtractedAt time.Time `json:"extracted_at"`
}

type factRecord struct {
	Label      string          `json:"label,omitempty"`
	Category   string          `json:"category"`
	Location   *locationRecord `json:"location,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	FlowID     string          `json:"flow_id,omitempty"`

	// taint_source / taint_sink
	Kind       string `json:"kind,omitempty"`
	Expression string `json:"expression,omitempty"`
	CallSite   string `json:"call_site,omitempty"`

	// uncovered_line
	Hits int64 `json:"hits,omitempty"`

	// dependency
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Direct  bool   `json:"direct,omitempty"`

	// vulnerability
	Advisory string  `json:"advisory,omitempty"`
	Package  string  `json:"package,omitempty"`
	Severity string  `json:"severity,omitempty"`
	CVSS     float64 `json:"cvss,omitempty"`

	// flow_edge
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type locationRecord struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	StartCol  int    `json:"start_col"`
	EndCol    int    `json:"end_col"`
}

// Decode reads the extractor exchange format and builds an arena.
//
// Facts appear in the arena in document order. Flow edges may reference
// labels of facts that appear later in the document; resolution happens
// after all labeled facts are assigned identifiers.
func Decode(r io.Reader) (*Arena, error) {
	var doc factDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode fact document: %w", err)
	}

	prov := Provenance{
		Extractor:   doc.Extractor.Name,
		Version:     doc.Extractor.Version,
		ExtractedAt: doc.Extractor.ExtractedAt,
	}

	b := NewBuilder()
	labels := make(map[string]ID, len(doc.Facts))

	// Pass 1: assign identifiers. Flow edges get placeholder endpoints and
	// remember their position for pass 2.
	type pendingEdge struct {
		index ID
		from  string
		to    string
	}
	var edges []pendingEdge

	for i, rec := range doc.Facts {
		cat, err := ParseCategory(rec.Category)
		if err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}

		var payload Payload
		switch cat {
		case CategoryTaintSource:
			payload = TaintSource{Kind: rec.Kind, Expression: rec.Expression}
		case CategoryTaintSink:
			payload = TaintSink{Kind: rec.Kind, CallSite: rec.CallSite}
		case CategoryUncoveredLine:
			payload = UncoveredLine{Hits: rec.Hits}
		case CategoryDependency:
			payload = Dependency{Name: rec.Name, Version: rec.Version, Direct: rec.Direct}
		case CategoryVulnerability:
			payload = Vulnerability{Advisory: rec.Advisory, Package: rec.Package, Severity: rec.Severity, CVSS: rec.CVSS}
		case CategoryFlowEdge:
			if rec.From == "" || rec.To == "" {
				return nil, fmt.Errorf("fact %d: flow_edge requires from and to labels", i)
			}
			payload = FlowEdge{}
		}

		opts := []Option{WithProvenance(prov)}
		if rec.Confidence != nil {
			opts = append(opts, WithConfidence(*rec.Confidence))
		}
		if rec.FlowID != "" {
			opts = append(opts, WithFlowID(rec.FlowID))
		}
		if rec.Location != nil {
			opts = append(opts, WithLocation(Location{
				File:      rec.Location.File,
				StartLine: rec.Location.StartLine,
				EndLine:   rec.Location.EndLine,
				StartCol:  rec.Location.StartCol,
				EndCol:    rec.Location.EndCol,
			}))
		}

		id, err := b.Add(payload, opts...)
		if err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}

		if rec.Label != "" {
			if _, dup := labels[rec.Label]; dup {
				return nil, fmt.Errorf("fact %d: duplicate label %q", i, rec.Label)
			}
			labels[rec.Label] = id
		}
		if cat == CategoryFlowEdge {
			edges = append(edges, pendingEdge{index: id, from: rec.From, to: rec.To})
		}
	}

	// Pass 2: resolve edge labels to identifiers.
	for _, e := range edges {
		from, ok := labels[e.from]
		if !ok {
			return nil, fmt.Errorf("flow_edge fact %d: unknown label %q", e.index, e.from)
		}
		to, ok := labels[e.to]
		if !ok {
			return nil, fmt.Errorf("flow_edge fact %d: unknown label %q", e.index, e.to)
		}
		b.facts[e.index].payload = FlowEdge{From: from, To: to}
	}

	return b.Build(), nil
}
