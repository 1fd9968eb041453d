// internal/rules/compile.go
package rules

import (
	"fmt"
	"strings"

	"github.com/reachwell/reachwell/internal/types"
)

/*
 * Rule-to-SQL predicate compilation.
 *
 * Walks a validated RuleNode and emits a parameterized boolean expression
 * over the per-customer aggregate view. Two hard guarantees:
 *
 *   1. Values are always bound as query parameters, never concatenated
 *      into the predicate string.
 *   2. Field and operator names substitute into identifier position only
 *      through closed lookup tables. Anything outside the allow-list is
 *      rejected, not passed through.
 *
 * Compilation workflow per comparison:
 *   1. Map field through the aggregate-column allow-list
 *   2. Map operator to its SQL fragment
 *   3. Coerce the value to the field's kind, then append it to args
 *
 * Logical nodes compile every child, parenthesize each, and join with the
 * mapped combinator. NOT negates only its first child; trailing children
 * are ignored. This mirrors how the segment builder has always produced
 * NOT nodes (a single negated rule), so the compiler does not invent a
 * meaning for the extra children.
 *
 * An empty tree compiles to the 1=1 tautology: "no rules" means
 * "everyone", never "no one" and never an error.
 *
 * Dialect handling is limited to case-insensitive matching: postgres gets
 * ILIKE, sqlite gets LIKE (already case-insensitive for ASCII).
 */

// Dialect selects driver-specific SQL fragments.
// Values match sqlx driver names so callers can pass db.DriverName().
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Compiled is a parameterized predicate ready to splice into a WHERE
// clause. Predicate uses ? placeholders; rebind for the target driver
// before execution.
type Compiled struct {
	Predicate string
	Args      []any
}

// Tautology is the predicate an empty tree compiles to.
const Tautology = "1=1"

// columns maps allow-listed fields to aggregate-view columns.
// This table is the only path from rule input to identifier position.
var columns = map[types.Field]string{
	types.FieldTotalSpend:       "total_spend",
	types.FieldTotalOrders:      "total_orders",
	types.FieldVisits:           "visits",
	types.FieldLastPurchase:     "last_purchase",
	types.FieldRegistrationDate: "registration_date",
	types.FieldAge:              "age",
	types.FieldLocation:         "location",
}

// comparisonSQL maps non-pattern operators to their SQL fragment.
var comparisonSQL = map[types.Op]string{
	types.OpEq:  "=",
	types.OpNeq: "<>",
	types.OpLt:  "<",
	types.OpLte: "<=",
	types.OpGt:  ">",
	types.OpGte: ">=",
}

// Compile translates a rule tree into a parameterized SQL predicate.
// A nil or empty tree compiles to the tautology.
func Compile(node *types.RuleNode, dialect Dialect) (Compiled, error) {
	if node.IsEmpty() {
		return Compiled{Predicate: Tautology}, nil
	}

	c := &compiler{dialect: dialect}
	pred, err := c.compile(node, 0)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{Predicate: pred, Args: c.args}, nil
}

type compiler struct {
	dialect Dialect
	args    []any
}

func (c *compiler) compile(node *types.RuleNode, depth int) (string, error) {
	if depth > types.MaxRuleDepth {
		return "", types.ErrRuleTooDeep
	}

	switch node.Type {
	case types.NodeComparison:
		return c.comparison(node)
	case types.NodeLogical:
		return c.logical(node, depth)
	default:
		return "", fmt.Errorf("cannot compile node type %q", node.Type)
	}
}

func (c *compiler) comparison(node *types.RuleNode) (string, error) {
	field := types.Field(node.Field)
	column, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrUnknownField, node.Field)
	}

	op := types.Op(node.Operator)
	switch op {
	case types.OpContains, types.OpNotContains:
		// Pattern operators always compare textually.
		text, err := coerceText(node.Value)
		if err != nil {
			return "", fmt.Errorf("%w: field %q", types.ErrValueCoercion, node.Field)
		}
		c.args = append(c.args, "%"+text.(string)+"%")
		like := c.likeOperator()
		if op == types.OpNotContains {
			like = "NOT " + like
		}
		return fmt.Sprintf("%s %s ?", column, like), nil
	default:
		frag, ok := comparisonSQL[op]
		if !ok {
			return "", fmt.Errorf("%w: %q", types.ErrUnknownOperator, node.Operator)
		}
		value, err := coerceValue(node.Value, fieldKinds[field])
		if err != nil {
			return "", fmt.Errorf("%w: field %q", types.ErrValueCoercion, node.Field)
		}
		c.args = append(c.args, value)
		return fmt.Sprintf("%s %s ?", column, frag), nil
	}
}

func (c *compiler) logical(node *types.RuleNode, depth int) (string, error) {
	if len(node.Children) == 0 {
		return "", types.ErrEmptyRule
	}

	op := types.LogicalOp(node.Operator)
	switch op {
	case types.LogicalNot:
		// NOT negates its first child only.
		child, err := c.compile(node.Children[0], depth+1)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", child), nil
	case types.LogicalAnd, types.LogicalOr:
		parts := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			pred, err := c.compile(child, depth+1)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+pred+")")
		}
		if len(parts) == 1 {
			// Single-child group degenerates to the child's predicate.
			return parts[0], nil
		}
		return strings.Join(parts, " "+string(op)+" "), nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownOperator, node.Operator)
	}
}

func (c *compiler) likeOperator() string {
	if c.dialect == DialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}
