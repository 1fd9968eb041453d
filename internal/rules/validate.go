// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/reachwell/reachwell/internal/types"
)

/*
 * Structural AST validation.
 *
 * Runs on client-submitted trees before they are trusted by the compiler
 * or persisted, so it never panics and never returns a Go error: malformed
 * shapes are findings, not failures.
 *
 * Validation is exhaustive: every broken node in the tree is reported,
 * each tagged with its position (root, root.children[1], ...), so a
 * caller can surface all problems in one round-trip instead of fixing
 * them one at a time.
 *
 * Operators are checked against the closed enums here. The builder lets
 * unknown labels pass through; this is the boundary that stops them.
 */

// Result is the validator's verdict over an entire tree.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate structurally checks a rule tree.
//
// A nil node is valid: an absent tree compiles to the match-everything
// tautology. A present node must declare a known type discriminant and
// satisfy its variant's shape recursively.
func Validate(node *types.RuleNode) Result {
	if node == nil {
		return Result{Valid: true}
	}

	var errs []string
	walk(node, "root", 0, &errs)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// walk appends every fault found at node and below to errs.
func walk(node *types.RuleNode, path string, depth int, errs *[]string) {
	if node == nil {
		*errs = append(*errs, fmt.Sprintf("%s: node is null", path))
		return
	}
	if depth > types.MaxRuleDepth {
		*errs = append(*errs, fmt.Sprintf("%s: tree exceeds maximum depth %d", path, types.MaxRuleDepth))
		return
	}

	switch node.Type {
	case types.NodeComparison:
		if node.Field == "" {
			*errs = append(*errs, fmt.Sprintf("%s: comparison is missing field", path))
		}
		if node.Operator == "" {
			*errs = append(*errs, fmt.Sprintf("%s: comparison is missing operator", path))
		} else if !knownOp(node.Operator) {
			*errs = append(*errs, fmt.Sprintf("%s: unknown comparison operator %q", path, node.Operator))
		}
		// Empty string is a meaningful value; only absent values are faults.
		if node.Value == nil {
			*errs = append(*errs, fmt.Sprintf("%s: comparison is missing value", path))
		}
	case types.NodeLogical:
		if node.Operator == "" {
			*errs = append(*errs, fmt.Sprintf("%s: logical node is missing operator", path))
		} else if !knownLogicalOp(node.Operator) {
			*errs = append(*errs, fmt.Sprintf("%s: unknown logical operator %q", path, node.Operator))
		}
		if len(node.Children) == 0 {
			*errs = append(*errs, fmt.Sprintf("%s: logical node has no children", path))
		}
		for i, child := range node.Children {
			walk(child, fmt.Sprintf("%s.children[%d]", path, i), depth+1, errs)
		}
	case "":
		*errs = append(*errs, fmt.Sprintf("%s: node is missing type", path))
	default:
		*errs = append(*errs, fmt.Sprintf("%s: unknown node type %q", path, node.Type))
	}
}
