// internal/rules/labels.go
package rules

import (
	"strings"

	"github.com/reachwell/reachwell/internal/types"
)

/*
 * Operator label normalization.
 *
 * Rule builders in the operator UI submit human-readable operator labels
 * ("Greater than or equal to (>=)"). These are translated to the closed
 * Op/LogicalOp enums at the builder boundary and never stored.
 *
 * Unrecognized labels pass through unchanged: the builder stays lenient so
 * a newer client can submit operators this version does not know about,
 * and the validator rejects them one step later. The leniency lives here
 * and nowhere else.
 */

// comparisonLabels maps UI operator labels to canonical operators.
// Canonical enum values map to themselves so already-normalized input is
// idempotent.
var comparisonLabels = map[string]types.Op{
	"equal to (=)":                  types.OpEq,
	"not equal to (!=)":             types.OpNeq,
	"less than (<)":                 types.OpLt,
	"less than or equal to (<=)":    types.OpLte,
	"greater than (>)":              types.OpGt,
	"greater than or equal to (>=)": types.OpGte,
	"contains":                      types.OpContains,
	"does not contain":              types.OpNotContains,

	"eq":           types.OpEq,
	"neq":          types.OpNeq,
	"lt":           types.OpLt,
	"lte":          types.OpLte,
	"gt":           types.OpGt,
	"gte":          types.OpGte,
	"not_contains": types.OpNotContains,
}

// logicalLabels maps UI combinator labels to canonical logical operators.
var logicalLabels = map[string]types.LogicalOp{
	"all conditions (and)": types.LogicalAnd,
	"any condition (or)":   types.LogicalOr,
	"and":                  types.LogicalAnd,
	"or":                   types.LogicalOr,
	"not":                  types.LogicalNot,
}

// NormalizeOp translates a comparison operator label to its canonical
// form. Unrecognized labels are returned unchanged.
func NormalizeOp(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if op, ok := comparisonLabels[key]; ok {
		return string(op)
	}
	return label
}

// NormalizeLogicalOp translates a combinator label to its canonical form.
// Unrecognized labels are returned unchanged.
func NormalizeLogicalOp(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if op, ok := logicalLabels[key]; ok {
		return string(op)
	}
	return label
}

// knownOp reports whether s is a member of the closed comparison enum.
func knownOp(s string) bool {
	switch types.Op(s) {
	case types.OpEq, types.OpNeq, types.OpLt, types.OpLte,
		types.OpGt, types.OpGte, types.OpContains, types.OpNotContains:
		return true
	}
	return false
}

// knownLogicalOp reports whether s is a member of the closed combinator
// enum.
func knownLogicalOp(s string) bool {
	switch types.LogicalOp(s) {
	case types.LogicalAnd, types.LogicalOr, types.LogicalNot:
		return true
	}
	return false
}
