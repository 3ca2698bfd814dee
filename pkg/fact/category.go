// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package fact

import "fmt"

// Category identifies one member of the closed, versioned set of fact
// categories. Each category carries its own typed payload struct; the set is
// closed so that field access can be checked exhaustively.
type Category uint8

const (
	// CategoryInvalid is the zero value and never appears in a built arena.
	CategoryInvalid Category = iota

	// CategoryTaintSource marks an expression where untrusted data enters.
	CategoryTaintSource

	// CategoryTaintSink marks a call site where tainted data becomes dangerous.
	CategoryTaintSink

	// CategoryUncoveredLine marks a line not exercised by any test.
	CategoryUncoveredLine

	// CategoryDependency records a declared third-party dependency.
	CategoryDependency

	// CategoryVulnerability records a published advisory against a package.
	CategoryVulnerability

	// CategoryFlowEdge connects two facts that belong to the same data-flow
	// chain. Flow edges are the raw material of the flow index.
	CategoryFlowEdge
)

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case CategoryTaintSource:
		return "taint_source"
	case CategoryTaintSink:
		return "taint_sink"
	case CategoryUncoveredLine:
		return "uncovered_line"
	case CategoryDependency:
		return "dependency"
	case CategoryVulnerability:
		return "vulnerability"
	case CategoryFlowEdge:
		return "flow_edge"
	default:
		return "invalid"
	}
}

// ParseCategory maps a wire name to its Category.
// Returns an error for names outside the closed set.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "taint_source":
		return CategoryTaintSource, nil
	case "taint_sink":
		return CategoryTaintSink, nil
	case "uncovered_line":
		return CategoryUncoveredLine, nil
	case "dependency":
		return CategoryDependency, nil
	case "vulnerability":
		return CategoryVulnerability, nil
	case "flow_edge":
		return CategoryFlowEdge, nil
	default:
		return CategoryInvalid, fmt.Errorf("unknown fact category %q", s)
	}
}

// Categories lists every valid category in declaration order.
// The order is stable and is used for deterministic tie-breaking.
func Categories() []Category {
	return []Category{
		CategoryTaintSource,
		CategoryTaintSink,
		CategoryUncoveredLine,
		CategoryDependency,
		CategoryVulnerability,
		CategoryFlowEdge,
	}
}

// Payload is the category-specific part of a fact. Implementations are the
// closed set of payload structs in this package; external packages cannot add
// members because the interface has an unexported method.
type Payload interface {
	// Category reports which member of the closed set this payload is.
	Category() Category

	// Field resolves a category-specific field by its wire name.
	// The second return is false for fields unknown to the category.
	Field(name string) (Value, bool)

	payload()
}

// TaintSource marks an expression where untrusted data enters the program.
type TaintSource struct {
	// Kind classifies the source, e.g. "user_input", "network", "env".
	Kind string

	// Expression is the source expression as written in the code.
	Expression string
}

// Category implements Payload.
func (TaintSource) Category() Category { return CategoryTaintSource }

// Field implements Payload.
func (p TaintSource) Field(name string) (Value, bool) {
	switch name {
	case "kind":
		return StringValue(p.Kind), true
	case "expression":
		return StringValue(p.Expression), true
	}
	return Value{}, false
}

func (TaintSource) payload() {}

// TaintSink marks a call site where tainted data becomes dangerous.
type TaintSink struct {
	// Kind classifies the sink, e.g. "sql", "exec", "html".
	Kind string

	// CallSite is the callee expression, e.g. "db.Query".
	CallSite string
}

// Category implements Payload.
func (TaintSink) Category() Category { return CategoryTaintSink }

// Field implements Payload.
func (p TaintSink) Field(name string) (Value, bool) {
	switch name {
	case "kind":
		return StringValue(p.Kind), true
	case "call_site":
		return StringValue(p.CallSite), true
	}
	return Value{}, false
}

func (TaintSink) payload() {}

// UncoveredLine marks a line not exercised by any test.
type UncoveredLine struct {
	// Hits is the observed execution count, normally zero.
	Hits int64
}

// Category implements Payload.
func (UncoveredLine) Category() Category { return CategoryUncoveredLine }

// Field implements Payload.
func (p UncoveredLine) Field(name string) (Value, bool) {
	if name == "hits" {
		return IntValue(p.Hits), true
	}
	return Value{}, false
}

func (UncoveredLine) payload() {}

// Dependency records a declared third-party dependency.
type Dependency struct {
	// Name is the module or package name.
	Name string

	// Version is the resolved version string.
	Version string

	// Direct reports whether the dependency is declared directly.
	Direct bool
}

// Category implements Payload.
func (Dependency) Category() Category { return CategoryDependency }

// Field implements Payload.
func (p Dependency) Field(name string) (Value, bool) {
	switch name {
	case "name":
		return StringValue(p.Name), true
	case "version":
		return StringValue(p.Version), true
	case "direct":
		return BoolValue(p.Direct), true
	}
	return Value{}, false
}

func (Dependency) payload() {}

// Vulnerability records a published advisory against a package.
type Vulnerability struct {
	// Advisory is the advisory identifier, e.g. "CVE-2024-12345".
	Advisory string

	// Package is the affected package name.
	Package string

	// Severity is the advisory's own severity label.
	Severity string

	// CVSS is the CVSS base score, 0 when unknown.
	CVSS float64
}

// Category implements Payload.
func (Vulnerability) Category() Category { return CategoryVulnerability }

// Field implements Payload.
func (p Vulnerability) Field(name string) (Value, bool) {
	switch name {
	case "advisory":
		return StringValue(p.Advisory), true
	case "package":
		return StringValue(p.Package), true
	case "severity":
		return StringValue(p.Severity), true
	case "cvss":
		return FloatValue(p.CVSS), true
	}
	return Value{}, false
}

func (Vulnerability) payload() {}

// FlowEdge connects a source fact to a target fact within a data-flow chain.
// The flow index derives its directed graph from these.
type FlowEdge struct {
	// From is the identifier of the upstream fact.
	From ID

	// To is the identifier of the downstream fact.
	To ID
}

// Category implements Payload.
func (FlowEdge) Category() Category { return CategoryFlowEdge }

// Field implements Payload.
func (p FlowEdge) Field(name string) (Value, bool) {
	switch name {
	case "from":
		return FactValue(p.From), true
	case "to":
		return FactValue(p.To), true
	}
	return Value{}, false
}

func (FlowEdge) payload() {}
