// internal/rules/build.go
package rules

import (
	"strings"

	"github.com/reachwell/reachwell/internal/types"
)

/*
 * AST construction from the flat segment-builder DSL.
 *
 * The segment builder submits an ordered list of entries: "rule-<id>"
 * entries carrying positional {id, field, operatorLabel, value} fields,
 * interleaved "operator"/"operator-<n>" entries carrying a combinator
 * label, and one reserved "operator" entry giving the default combinator
 * for pairs with no interleaved label.
 *
 * The builder folds this flat list into a right-leaning tree:
 *
 *   r1 op1 r2 op2 r3  =>  Logical(op1, [r1, Logical(op2, [r2, r3])])
 *
 * The fold is an index-based recursion over an immutable slice, so the
 * right-leaning shape is an explicit contract rather than an artifact of
 * consumption order. The last-specified operator governs the deepest
 * nesting; the builder does not re-associate mixed AND/OR chains by
 * precedence.
 *
 * Leniency boundary: operator labels are normalized through a fixed table
 * and unrecognized labels pass through unchanged. Structural problems
 * (a rule entry with fewer than two positional fields) are
 * ConfigurationErrors surfaced before any tree is returned; semantic
 * problems (unknown operators) are left for the validator.
 */

// Entry is one ordered element of the flat rule DSL.
// Fields are positional: for rule entries {id, field, operatorLabel,
// value}; for operator entries a single combinator label.
type Entry struct {
	Key    string
	Fields []string
}

const (
	ruleKeyPrefix   = "rule-"
	operatorKey     = "operator"
	operatorPrefix  = "operator-"
	minRuleFields   = 2
	ruleFieldsTotal = 4
)

// BuildAST converts the ordered DSL entries into a RuleNode tree.
//
// Zero rule entries return nil (match everything). A single rule entry
// returns its Comparison node directly, with no Logical wrapper. Two or
// more rules fold right-leaning as documented above.
func BuildAST(entries []Entry) (*types.RuleNode, error) {
	defaultOp := types.LogicalAnd
	var sequence []Entry

	for _, e := range entries {
		switch {
		case e.Key == operatorKey && len(sequence) == 0:
			// Reserved default combinator, only meaningful before any rule.
			if len(e.Fields) > 0 {
				defaultOp = types.LogicalOp(NormalizeLogicalOp(e.Fields[0]))
			}
		case strings.HasPrefix(e.Key, ruleKeyPrefix):
			if len(e.Fields) < minRuleFields {
				return nil, &types.ConfigurationError{
					Entry:  e.Key,
					Reason: "rule entry needs at least id and field",
				}
			}
			sequence = append(sequence, e)
		case e.Key == operatorKey || strings.HasPrefix(e.Key, operatorPrefix):
			sequence = append(sequence, e)
		default:
			return nil, &types.ConfigurationError{
				Entry:  e.Key,
				Reason: "unrecognized entry key",
			}
		}
	}

	if len(sequence) == 0 {
		return nil, nil
	}

	return fold(sequence, defaultOp)
}

// fold recursively consumes the remaining sequence as
// (rule, combinator?, rest...) producing the right-leaning tree.
func fold(seq []Entry, defaultOp types.LogicalOp) (*types.RuleNode, error) {
	head, err := comparisonNode(seq[0])
	if err != nil {
		return nil, err
	}
	if len(seq) == 1 {
		return head, nil
	}

	// Next element is either an interleaved combinator followed by the
	// rest of the chain, or (combinator omitted) the next rule directly.
	op := defaultOp
	rest := seq[1:]
	if !strings.HasPrefix(seq[1].Key, ruleKeyPrefix) {
		if len(seq[1].Fields) > 0 {
			op = types.LogicalOp(NormalizeLogicalOp(seq[1].Fields[0]))
		}
		rest = seq[2:]
		if len(rest) == 0 {
			return nil, &types.ConfigurationError{
				Entry:  seq[1].Key,
				Reason: "combinator entry has no rule following it",
			}
		}
	}

	tail, err := fold(rest, defaultOp)
	if err != nil {
		return nil, err
	}

	return types.Logical(op, head, tail), nil
}

// comparisonNode builds a Comparison leaf from one rule entry.
// Positional fields: {id, field, operatorLabel, value}. The id is only
// used by the client to correlate form rows; it does not survive into the
// tree.
func comparisonNode(e Entry) (*types.RuleNode, error) {
	fields := e.Fields
	if len(fields) < minRuleFields {
		return nil, &types.ConfigurationError{
			Entry:  e.Key,
			Reason: "rule entry needs at least id and field",
		}
	}

	var opLabel, value string
	if len(fields) > 2 {
		opLabel = fields[2]
	}
	if len(fields) > 3 {
		value = fields[3]
	}

	return &types.RuleNode{
		Type:     types.NodeComparison,
		Field:    strings.TrimSpace(fields[1]),
		Operator: NormalizeOp(opLabel),
		Value:    value,
	}, nil
}
