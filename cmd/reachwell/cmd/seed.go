package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/reachwell/reachwell/internal/store"
	"github.com/reachwell/reachwell/internal/types"
)

var (
	seedCustomers int
	seedRandom    int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate demo customers, orders and interactions",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 100, "number of customers to generate")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 0, "RNG seed (0 = time-based)")
}

var seedLocations = []string{"Austin", "Berlin", "Lisbon", "Osaka", "Toronto"}

func runSeed(cmd *cobra.Command, args []string) error {
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

	seed := seedRandom
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	st := store.New(queries)
	now := time.Now().UTC()

	for i := 0; i < seedCustomers; i++ {
		id := types.NewCustomerID()
		c := types.Customer{
			ID:               id,
			Name:             fmt.Sprintf("Customer %04d", i+1),
			Email:            fmt.Sprintf("customer%04d@example.com", i+1),
			Age:              18 + rng.Intn(60),
			Location:         seedLocations[rng.Intn(len(seedLocations))],
			RegistrationDate: now.AddDate(0, 0, -rng.Intn(720)),
		}
		if err := st.CreateCustomer(ctx, c); err != nil {
			return err
		}

		for o := rng.Intn(8); o > 0; o-- {
			amount := 5 + rng.Float64()*495
			orderedAt := now.AddDate(0, 0, -rng.Intn(360))
			if err := st.CreateOrder(ctx, id, amount, orderedAt); err != nil {
				return err
			}
		}

		for v := rng.Intn(20); v > 0; v-- {
			occurredAt := now.AddDate(0, 0, -rng.Intn(90))
			if err := st.CreateInteraction(ctx, id, "visit", occurredAt); err != nil {
				return err
			}
		}
	}

	fmt.Printf("seeded %d customers\n", seedCustomers)
	return nil
}
