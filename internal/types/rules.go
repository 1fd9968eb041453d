// internal/types/rules.go
package types

/*
 * Domain types for segment targeting rules.
 *
 * Provides RuleNode, the tree representation of a segment's targeting
 * expression, plus the closed operator and field enums the builder,
 * validator and compiler operate on. These types are wire-format agnostic:
 * they round-trip the client's JSON unchanged so the validator can inspect
 * exactly what was submitted.
 *
 * Key types:
 *   - RuleNode: tagged union of a comparison leaf or a logical combination
 *   - Op: comparison operator enum (eq, neq, lt, ..., not_contains)
 *   - LogicalOp: combinator enum (AND, OR, NOT)
 *   - Field: customer attribute enum mapped to aggregate columns
 *
 * Dependencies: None (struct tags only)
 */

// NodeType discriminates the two RuleNode variants.
type NodeType string

const (
	NodeComparison NodeType = "comparison"
	NodeLogical    NodeType = "logical"
)

// Op is a comparison operator over a customer attribute.
type Op string

const (
	OpEq          Op = "eq"
	OpNeq         Op = "neq"
	OpLt          Op = "lt"
	OpLte         Op = "lte"
	OpGt          Op = "gt"
	OpGte         Op = "gte"
	OpContains    Op = "contains"
	OpNotContains Op = "not_contains"
)

// LogicalOp combines child predicates.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
	LogicalNot LogicalOp = "NOT"
)

// Field is a customer attribute addressable by rules.
// The compiler maps each field to its aggregate-view column; anything
// outside this set is rejected at the compiler boundary.
type Field string

const (
	FieldTotalSpend       Field = "totalSpend"
	FieldTotalOrders      Field = "totalOrders"
	FieldVisits           Field = "visits"
	FieldLastPurchase     Field = "lastPurchase"
	FieldRegistrationDate Field = "registrationDate"
	FieldAge              Field = "age"
	FieldLocation         Field = "location"
)

// RuleNode represents one node of a segment's targeting tree.
//
// A comparison node populates Field, Operator and Value; a logical node
// populates Operator (AND/OR/NOT) and Children. A nil *RuleNode means
// "no rules": downstream the compiler treats it as matching everyone.
//
// The struct is deliberately a single shape with a type discriminant
// rather than a Go interface: the validator runs against decoded client
// JSON that may be arbitrarily malformed, and it must see missing or
// unknown discriminants as data, not as a decode failure.
type RuleNode struct {
	Type     NodeType    `json:"type,omitempty"`
	Field    string      `json:"field,omitempty"`
	Operator string      `json:"operator,omitempty"`
	Value    any         `json:"value,omitempty"`
	Children []*RuleNode `json:"children,omitempty"`
}

// IsEmpty reports whether the node carries no expression at all.
// Empty trees compile to the match-everything tautology.
func (n *RuleNode) IsEmpty() bool {
	return n == nil || n.Type == ""
}

// Comparison constructs a comparison leaf.
func Comparison(field Field, op Op, value any) *RuleNode {
	return &RuleNode{
		Type:     NodeComparison,
		Field:    string(field),
		Operator: string(op),
		Value:    value,
	}
}

// Logical constructs a logical node over the given children.
func Logical(op LogicalOp, children ...*RuleNode) *RuleNode {
	return &RuleNode{
		Type:     NodeLogical,
		Operator: string(op),
		Children: children,
	}
}
