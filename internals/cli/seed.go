package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	database "leadcrm_backend/internals/databases"
	"leadcrm_backend/internals/seeds"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	var dir string
	var demoClients int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo staff, clients and incentive rules",
		Long:  `Idempotent: rows that already exist are skipped. Safe to run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			rep, err := seeds.RunAllSeeds(db, dir, demoClients)
			if err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			fmt.Printf("%s staff +%d, clients +%d, incentive rules +%d\n",
				okMark, rep.Staff, rep.Clients, rep.IncentiveRules)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "internals/seeds", "directory holding the JSON seed files")
	cmd.Flags().IntVar(&demoClients, "clients", 30, "number of demo clients to ensure")
	return cmd
}
