package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reachwell/reachwell/internal/audience"
	"github.com/reachwell/reachwell/internal/rules"
	"github.com/reachwell/reachwell/internal/types"
)

var (
	previewRulesFile string
	previewRows      bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute the audience size for a rule tree without storing it",
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewRulesFile, "rules", "", "path to rule tree JSON (omit to match everyone)")
	previewCmd.Flags().BoolVar(&previewRows, "customers", false, "print matching customers")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var node *types.RuleNode
	if previewRulesFile != "" {
		node, err = loadRuleTree(previewRulesFile)
		if err != nil {
			return err
		}
	}

	if v := rules.Validate(node); !v.Valid {
		return fmt.Errorf("rule tree is invalid: %v", v.Errors)
	}

	database, queries, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	calc := audience.NewCalculator(queries)
	res, err := calc.Calculate(ctx, node, audience.Options{
		ReturnCustomers: previewRows,
		Limit:           cfg.PreviewLimit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("audience: %d\npredicate: %s\n", res.AudienceSize, res.Predicate)
	for _, c := range res.Customers {
		fmt.Printf("  %s  %-25s spend=%.2f orders=%d visits=%d\n",
			c.ID, c.Name, c.TotalSpend, c.TotalOrders, c.Visits)
	}
	return nil
}
