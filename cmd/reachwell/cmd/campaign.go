package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reachwell/reachwell/internal/audience"
	"github.com/reachwell/reachwell/internal/campaign"
	"github.com/reachwell/reachwell/internal/store"
	"github.com/reachwell/reachwell/internal/types"
)

var (
	campaignSegment string
	campaignName    string
	campaignMessage string
)

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage campaigns",
}

var campaignLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Create a campaign against a segment and dispatch it to completion",
	RunE:  runCampaignLaunch,
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignLaunchCmd)

	campaignLaunchCmd.Flags().StringVar(&campaignSegment, "segment", "", "segment id")
	campaignLaunchCmd.Flags().StringVar(&campaignName, "name", "", "campaign name")
	campaignLaunchCmd.Flags().StringVar(&campaignMessage, "message", "", "message to send")
	campaignLaunchCmd.MarkFlagRequired("segment")
	campaignLaunchCmd.MarkFlagRequired("name")
	campaignLaunchCmd.MarkFlagRequired("message")
}

func runCampaignLaunch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	segmentID, err := types.ParseSegmentID(campaignSegment)
	if err != nil {
		return fmt.Errorf("invalid segment id: %w", err)
	}

	database, queries, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	st := store.New(queries)
	calc := audience.NewCalculator(queries)

	c, err := st.CreateCampaign(ctx, segmentID, campaignName, campaignMessage)
	if err != nil {
		return err
	}

	dispatcher := campaign.NewDispatcher(st, calc, campaign.Config{
		BatchSize:    cfg.BatchSize,
		TickInterval: cfg.TickInterval,
		SuccessRate:  cfg.SuccessRate,
	}, nil, log)

	dispatcher.Start(ctx, c.ID)

	// Interrupt cancels the dispatch task; the row keeps whatever state the
	// last completed tick persisted.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		dispatcher.Stop(c.ID)
	}()

	dispatcher.Wait()

	final, err := st.GetCampaign(ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("campaign %s: %s (sent %d, success %d, failure %d",
		final.ID, final.Status, final.SentCount, final.SuccessCount, final.FailureCount)
	if final.Error != "" {
		fmt.Printf(", error: %s", final.Error)
	}
	fmt.Println(")")
	return nil
}
