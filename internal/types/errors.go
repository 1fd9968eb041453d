package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule handling.
var (
	// ErrUnknownField indicates a rule references a field outside the
	// aggregate allow-list. Hard rejection: field names substitute into
	// SQL identifier position and must never pass through unvetted.
	ErrUnknownField = errors.New("unknown rule field")

	// ErrUnknownOperator indicates an operator outside the closed enum.
	ErrUnknownOperator = errors.New("unknown rule operator")

	// ErrEmptyRule indicates a logical node with no children.
	ErrEmptyRule = errors.New("logical node has no children")

	// ErrRuleTooDeep indicates a rule tree exceeds MaxRuleDepth.
	ErrRuleTooDeep = errors.New("rule tree exceeds maximum depth")

	// ErrSegmentNotFound indicates a segment id resolved to no row.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrRulesNotFound indicates a segment's rule set resolved to no row.
	ErrRulesNotFound = errors.New("segment rules not found")

	// ErrCampaignNotFound indicates a campaign id resolved to no row.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrValueCoercion indicates a rule value could not be coerced to the
	// field's kind before parameter binding.
	ErrValueCoercion = errors.New("rule value coercion failed")
)

// ConfigurationError reports malformed DSL input to the AST builder.
// Callers must reject the request before any persistence.
type ConfigurationError struct {
	Entry  string // key of the offending entry
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("invalid rule configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid rule configuration at %q: %s", e.Entry, e.Reason)
}

// QueryError reports a SQL execution failure during audience calculation.
// Carries the compiled predicate for diagnostics; never retried
// automatically.
type QueryError struct {
	Predicate string
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("audience query failed (predicate %q): %v", e.Predicate, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
