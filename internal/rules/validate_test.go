// internal/rules/validate_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/reachwell/reachwell/internal/types"
)

func TestValidate_NilTree(t *testing.T) {
	v := Validate(nil)
	if !v.Valid {
		t.Fatalf("Validate(nil) = %+v, want valid (absent tree matches everyone)", v)
	}
}

func TestValidate_ValidComparison(t *testing.T) {
	v := Validate(types.Comparison(types.FieldTotalSpend, types.OpGte, "500"))
	if !v.Valid {
		t.Fatalf("Validate() errors = %v, want none", v.Errors)
	}
}

func TestValidate_EmptyStringValueIsValid(t *testing.T) {
	// Empty string is a meaningful comparison value; only absent values
	// are faults.
	v := Validate(types.Comparison(types.FieldLocation, types.OpEq, ""))
	if !v.Valid {
		t.Fatalf("Validate() errors = %v, want none", v.Errors)
	}
}

func TestValidate_ComparisonFaults(t *testing.T) {
	tests := []struct {
		name string
		node *types.RuleNode
		want string
	}{
		{
			name: "missing type",
			node: &types.RuleNode{Field: "age", Operator: "gte", Value: "21"},
			want: "missing type",
		},
		{
			name: "unknown type",
			node: &types.RuleNode{Type: "ternary"},
			want: "unknown node type",
		},
		{
			name: "missing field",
			node: &types.RuleNode{Type: types.NodeComparison, Operator: "gte", Value: "21"},
			want: "missing field",
		},
		{
			name: "missing operator",
			node: &types.RuleNode{Type: types.NodeComparison, Field: "age", Value: "21"},
			want: "missing operator",
		},
		{
			name: "unknown operator",
			node: &types.RuleNode{Type: types.NodeComparison, Field: "age", Operator: "between", Value: "21"},
			want: "unknown comparison operator",
		},
		{
			name: "missing value",
			node: &types.RuleNode{Type: types.NodeComparison, Field: "age", Operator: "gte"},
			want: "missing value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.node)
			if v.Valid {
				t.Fatal("Validate() = valid, want invalid")
			}
			found := false
			for _, e := range v.Errors {
				if strings.Contains(e, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v missing %q", v.Errors, tt.want)
			}
		})
	}
}

func TestValidate_LogicalFaults(t *testing.T) {
	v := Validate(&types.RuleNode{Type: types.NodeLogical, Operator: "AND"})
	if v.Valid {
		t.Fatal("Validate() accepted logical node with no children")
	}

	v = Validate(&types.RuleNode{
		Type:     types.NodeLogical,
		Operator: "XOR",
		Children: []*types.RuleNode{types.Comparison(types.FieldAge, types.OpGte, "21")},
	})
	if v.Valid {
		t.Fatal("Validate() accepted unknown logical operator XOR")
	}
}

func TestValidate_ExhaustiveCollection(t *testing.T) {
	// Three independently broken nodes must yield at least three errors,
	// each tagged with its position.
	tree := types.Logical(types.LogicalAnd,
		&types.RuleNode{Type: types.NodeComparison, Operator: "gte", Value: "1"}, // missing field
		&types.RuleNode{Type: types.NodeComparison, Field: "age", Value: "1"},   // missing operator
		&types.RuleNode{Type: types.NodeLogical, Operator: "OR"},                // no children
	)

	v := Validate(tree)
	if v.Valid {
		t.Fatal("Validate() = valid, want invalid")
	}
	if len(v.Errors) < 3 {
		t.Fatalf("len(Errors) = %d, want >= 3: %v", len(v.Errors), v.Errors)
	}

	for i, wantTag := range []string{"root.children[0]", "root.children[1]", "root.children[2]"} {
		found := false
		for _, e := range v.Errors {
			if strings.HasPrefix(e, wantTag) {
				found = true
			}
		}
		if !found {
			t.Errorf("no error tagged %q (broken node %d): %v", wantTag, i, v.Errors)
		}
	}
}

func TestValidate_NullChild(t *testing.T) {
	tree := &types.RuleNode{
		Type:     types.NodeLogical,
		Operator: "AND",
		Children: []*types.RuleNode{nil},
	}
	v := Validate(tree)
	if v.Valid {
		t.Fatal("Validate() accepted null child")
	}
	if !strings.Contains(v.Errors[0], "root.children[0]") {
		t.Errorf("error %q not tagged to child position", v.Errors[0])
	}
}

func TestValidate_DeepNestingBounded(t *testing.T) {
	node := types.Comparison(types.FieldAge, types.OpGte, "21")
	for i := 0; i < types.MaxRuleDepth+4; i++ {
		node = types.Logical(types.LogicalNot, node)
	}
	v := Validate(node)
	if v.Valid {
		t.Fatal("Validate() accepted tree beyond maximum depth")
	}
}
