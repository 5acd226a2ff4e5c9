package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	database "leadcrm_backend/internals/databases"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Printf("%s %d tables migrated\n", okMark, len(database.Models))
			return nil
		},
	}
}
