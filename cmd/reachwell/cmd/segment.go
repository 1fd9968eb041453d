package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reachwell/reachwell/internal/audience"
	"github.com/reachwell/reachwell/internal/rules"
	"github.com/reachwell/reachwell/internal/store"
	"github.com/reachwell/reachwell/internal/types"
)

var (
	segmentName      string
	segmentRulesFile string
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Manage audience segments",
}

var segmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Validate a rule tree, compute its audience, and store the segment",
	RunE:  runSegmentCreate,
}

var segmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored segments",
	RunE:  runSegmentList,
}

func init() {
	rootCmd.AddCommand(segmentCmd)
	segmentCmd.AddCommand(segmentCreateCmd)
	segmentCmd.AddCommand(segmentListCmd)

	segmentCreateCmd.Flags().StringVar(&segmentName, "name", "", "segment name")
	segmentCreateCmd.Flags().StringVar(&segmentRulesFile, "rules", "", "path to rule tree JSON")
	segmentCreateCmd.MarkFlagRequired("name")
	segmentCreateCmd.MarkFlagRequired("rules")
}

// loadRuleTree reads and decodes a rule tree JSON file.
func loadRuleTree(path string) (*types.RuleNode, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var node types.RuleNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("failed to decode rules file: %w", err)
	}
	return &node, nil
}

func runSegmentCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	node, err := loadRuleTree(segmentRulesFile)
	if err != nil {
		return err
	}

	if v := rules.Validate(node); !v.Valid {
		for _, e := range v.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("rule tree is invalid (%d errors)", len(v.Errors))
	}

	database, queries, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	calc := audience.NewCalculator(queries)
	res, err := calc.Calculate(ctx, node, audience.Options{})
	if err != nil {
		return err
	}

	st := store.New(queries)
	rulesID, err := st.CreateRules(ctx, node)
	if err != nil {
		return err
	}
	seg, err := st.CreateSegment(ctx, segmentName, rulesID, res.AudienceSize)
	if err != nil {
		return err
	}

	fmt.Printf("segment %s created (audience %d)\n", seg.ID, seg.AudienceSize)
	return nil
}

func runSegmentList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, queries, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	segs, err := store.New(queries).ListSegments(ctx)
	if err != nil {
		return err
	}

	for _, s := range segs {
		fmt.Printf("%s  %-30s audience=%d\n", s.ID, s.Name, s.AudienceSize)
	}
	return nil
}
