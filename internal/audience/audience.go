// Package audience executes compiled segment predicates against the
// per-customer aggregate view.
//
// The aggregate base query lives in the named-query layer
// ("customer-aggregate"); this package splices a compiled predicate onto
// it for both the COUNT and the row-fetch query. Both queries share the
// identical predicate string and bind args, which is what guarantees the
// returned rows are a subset consistent with the reported count.
package audience

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reachwell/reachwell/internal/core/db"
	"github.com/reachwell/reachwell/internal/rules"
	"github.com/reachwell/reachwell/internal/types"
)

// Options controls what a calculation returns beyond the count.
type Options struct {
	// ReturnCustomers requests the matching rows, capped at Limit.
	ReturnCustomers bool
	// Limit bounds the row fetch. Zero means MaxPreviewCustomers.
	Limit int
}

// Result is the outcome of one audience calculation.
type Result struct {
	AudienceSize int
	Customers    []types.Customer
	Predicate    string
}

// Calculator runs audience counts and previews.
type Calculator struct {
	q *db.Queries
}

// NewCalculator creates a Calculator over loaded queries.
func NewCalculator(q *db.Queries) *Calculator {
	return &Calculator{q: q}
}

// Calculate compiles the rule tree and executes it against the aggregate
// view. The count always runs; the row query runs only when rows were
// requested and the count is non-zero. SQL failures surface as QueryError
// carrying the offending predicate.
func (c *Calculator) Calculate(ctx context.Context, node *types.RuleNode, opts Options) (Result, error) {
	conn := c.q.DB()

	compiled, err := rules.Compile(node, rules.Dialect(conn.DriverName()))
	if err != nil {
		return Result{}, err
	}

	base, err := c.q.Raw("customer-aggregate")
	if err != nil {
		return Result{}, err
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (%s) a WHERE %s", base, compiled.Predicate)

	var count int
	if err := conn.GetContext(ctx, &count, conn.Rebind(countSQL), compiled.Args...); err != nil {
		return Result{}, &types.QueryError{Predicate: compiled.Predicate, Err: err}
	}

	result := Result{AudienceSize: count, Predicate: compiled.Predicate}

	if !opts.ReturnCustomers || count == 0 {
		return result, nil
	}

	limit := opts.Limit
	if limit <= 0 || limit > types.MaxPreviewCustomers {
		limit = types.MaxPreviewCustomers
	}

	// Descending spend, customer id as the stable tiebreak.
	rowSQL := fmt.Sprintf(
		"SELECT id, name, email, age, location, registration_date, total_spend, total_orders, visits, last_purchase "+
			"FROM (%s) a WHERE %s ORDER BY total_spend DESC, id ASC LIMIT ?",
		base, compiled.Predicate)

	args := make([]any, 0, len(compiled.Args)+1)
	args = append(args, compiled.Args...)
	args = append(args, limit)

	var raw []customerRow
	if err := conn.SelectContext(ctx, &raw, conn.Rebind(rowSQL), args...); err != nil {
		return Result{}, &types.QueryError{Predicate: compiled.Predicate, Err: err}
	}

	result.Customers = make([]types.Customer, 0, len(raw))
	for _, r := range raw {
		result.Customers = append(result.Customers, r.customer())
	}

	return result, nil
}

// customerRow scans the aggregate view. last_purchase comes out of a MAX()
// aggregate, so SQLite loses the column's declared type and hands back
// text; scanning through a nullable string keeps both drivers happy.
type customerRow struct {
	ID               types.CustomerID `db:"id"`
	Name             string           `db:"name"`
	Email            string           `db:"email"`
	Age              int              `db:"age"`
	Location         string           `db:"location"`
	RegistrationDate time.Time        `db:"registration_date"`
	TotalSpend       float64          `db:"total_spend"`
	TotalOrders      int              `db:"total_orders"`
	Visits           int              `db:"visits"`
	LastPurchase     sql.NullString   `db:"last_purchase"`
}

// timestampLayouts covers the formats the two drivers emit for stored
// time.Time values.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r customerRow) customer() types.Customer {
	c := types.Customer{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Age:              r.Age,
		Location:         r.Location,
		RegistrationDate: r.RegistrationDate,
		TotalSpend:       r.TotalSpend,
		TotalOrders:      r.TotalOrders,
		Visits:           r.Visits,
	}
	if r.LastPurchase.Valid {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, r.LastPurchase.String); err == nil {
				c.LastPurchase = &t
				break
			}
		}
	}
	return c
}
