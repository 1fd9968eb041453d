// internal/rules/compile_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/reachwell/reachwell/internal/types"
)

func TestCompile_EmptyTreeTautology(t *testing.T) {
	for _, node := range []*types.RuleNode{nil, {}} {
		c, err := Compile(node, DialectSQLite)
		if err != nil {
			t.Fatalf("Compile() error = %v, want nil", err)
		}
		if c.Predicate != Tautology {
			t.Errorf("Predicate = %q, want %q", c.Predicate, Tautology)
		}
		if len(c.Args) != 0 {
			t.Errorf("Args = %v, want empty", c.Args)
		}
	}
}

func TestCompile_Comparison(t *testing.T) {
	c, err := Compile(types.Comparison(types.FieldTotalSpend, types.OpGte, "500"), DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "total_spend >= ?" {
		t.Errorf("Predicate = %q, want total_spend >= ?", c.Predicate)
	}
	if len(c.Args) != 1 || c.Args[0] != float64(500) {
		t.Errorf("Args = %v, want [500] coerced to float64", c.Args)
	}
}

func TestCompile_ExampleConjunction(t *testing.T) {
	node := types.Logical(types.LogicalAnd,
		types.Comparison(types.FieldTotalSpend, types.OpGte, "500"),
		types.Comparison(types.FieldTotalOrders, types.OpGte, "3"),
	)

	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	want := "(total_spend >= ?) AND (total_orders >= ?)"
	if c.Predicate != want {
		t.Errorf("Predicate = %q, want %q", c.Predicate, want)
	}
	if len(c.Args) != 2 || c.Args[0] != float64(500) || c.Args[1] != float64(3) {
		t.Errorf("Args = %v, want [500 3]", c.Args)
	}
}

func TestCompile_OperatorFragments(t *testing.T) {
	tests := []struct {
		op   types.Op
		want string
	}{
		{types.OpEq, "age = ?"},
		{types.OpNeq, "age <> ?"},
		{types.OpLt, "age < ?"},
		{types.OpLte, "age <= ?"},
		{types.OpGt, "age > ?"},
		{types.OpGte, "age >= ?"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			c, err := Compile(types.Comparison(types.FieldAge, tt.op, "30"), DialectSQLite)
			if err != nil {
				t.Fatalf("Compile() error = %v, want nil", err)
			}
			if c.Predicate != tt.want {
				t.Errorf("Predicate = %q, want %q", c.Predicate, tt.want)
			}
		})
	}
}

func TestCompile_ContainsDialects(t *testing.T) {
	node := types.Comparison(types.FieldLocation, types.OpContains, "Berlin")

	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "location LIKE ?" {
		t.Errorf("sqlite Predicate = %q, want location LIKE ?", c.Predicate)
	}
	if c.Args[0] != "%Berlin%" {
		t.Errorf("Args[0] = %v, want %%Berlin%%", c.Args[0])
	}

	c, err = Compile(node, DialectPostgres)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "location ILIKE ?" {
		t.Errorf("postgres Predicate = %q, want location ILIKE ?", c.Predicate)
	}

	c, err = Compile(types.Comparison(types.FieldLocation, types.OpNotContains, "Berlin"), DialectPostgres)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "location NOT ILIKE ?" {
		t.Errorf("Predicate = %q, want location NOT ILIKE ?", c.Predicate)
	}
}

func TestCompile_UnknownFieldRejected(t *testing.T) {
	// Field names substitute into identifier position; anything outside
	// the allow-list is a hard error, never a pass-through.
	node := &types.RuleNode{
		Type:     types.NodeComparison,
		Field:    "email; DROP TABLE customers--",
		Operator: "eq",
		Value:    "x",
	}
	_, err := Compile(node, DialectSQLite)
	if !errors.Is(err, types.ErrUnknownField) {
		t.Fatalf("Compile() error = %v, want ErrUnknownField", err)
	}
}

func TestCompile_UnknownOperatorRejected(t *testing.T) {
	node := &types.RuleNode{
		Type:     types.NodeComparison,
		Field:    "age",
		Operator: "between",
		Value:    "21",
	}
	_, err := Compile(node, DialectSQLite)
	if !errors.Is(err, types.ErrUnknownOperator) {
		t.Fatalf("Compile() error = %v, want ErrUnknownOperator", err)
	}

	logical := types.Logical("XOR", types.Comparison(types.FieldAge, types.OpGte, "21"))
	_, err = Compile(logical, DialectSQLite)
	if !errors.Is(err, types.ErrUnknownOperator) {
		t.Fatalf("Compile() logical error = %v, want ErrUnknownOperator", err)
	}
}

func TestCompile_ValueNeverConcatenated(t *testing.T) {
	node := types.Comparison(types.FieldLocation, types.OpEq, "' OR 1=1--")
	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "location = ?" {
		t.Errorf("Predicate = %q; value leaked into SQL text", c.Predicate)
	}
	if c.Args[0] != "' OR 1=1--" {
		t.Errorf("Args[0] = %v, want raw value bound as parameter", c.Args[0])
	}
}

func TestCompile_NotTakesFirstChildOnly(t *testing.T) {
	node := types.Logical(types.LogicalNot,
		types.Comparison(types.FieldVisits, types.OpGt, "10"),
		types.Comparison(types.FieldAge, types.OpLt, "30"),
	)

	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "NOT (visits > ?)" {
		t.Errorf("Predicate = %q, want NOT (visits > ?)", c.Predicate)
	}
	// The ignored second child contributes no binding either.
	if len(c.Args) != 1 {
		t.Errorf("Args = %v, want single arg", c.Args)
	}
}

func TestCompile_SingleChildDegenerates(t *testing.T) {
	node := types.Logical(types.LogicalAnd,
		types.Comparison(types.FieldVisits, types.OpGte, "1"),
	)
	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "(visits >= ?)" {
		t.Errorf("Predicate = %q, want (visits >= ?)", c.Predicate)
	}
}

func TestCompile_NestedTree(t *testing.T) {
	node := types.Logical(types.LogicalAnd,
		types.Comparison(types.FieldTotalSpend, types.OpGte, "100"),
		types.Logical(types.LogicalOr,
			types.Comparison(types.FieldVisits, types.OpGt, "5"),
			types.Comparison(types.FieldAge, types.OpLt, "30"),
		),
	)

	c, err := Compile(node, DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	want := "(total_spend >= ?) AND ((visits > ?) OR (age < ?))"
	if c.Predicate != want {
		t.Errorf("Predicate = %q, want %q", c.Predicate, want)
	}
	if len(c.Args) != 3 {
		t.Errorf("len(Args) = %d, want 3", len(c.Args))
	}
}

func TestCompile_DateCoercion(t *testing.T) {
	c, err := Compile(types.Comparison(types.FieldLastPurchase, types.OpGte, "2026-01-15"), DialectSQLite)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if c.Predicate != "last_purchase >= ?" {
		t.Errorf("Predicate = %q", c.Predicate)
	}
}

func TestCompile_CoercionFailure(t *testing.T) {
	_, err := Compile(types.Comparison(types.FieldTotalSpend, types.OpGte, "lots"), DialectSQLite)
	if !errors.Is(err, types.ErrValueCoercion) {
		t.Fatalf("Compile() error = %v, want ErrValueCoercion", err)
	}
}
