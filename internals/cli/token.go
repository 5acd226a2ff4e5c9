package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	database "leadcrm_backend/internals/databases"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"
	helperAuth "leadcrm_backend/internals/helpers/auth"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	var staffID int64
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for an existing staff member",
		Long: `Print a bearer token for the given staff id.

Examples:
  leadcrm token --staff 1
  leadcrm token --staff 2 --ttl 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is required to mint tokens")
			}
			var s staffModel.StaffModel
			if err := db.First(&s, "staff_id = ?", staffID).Error; err != nil {
				return fmt.Errorf("staff %d not found: %w", staffID, err)
			}
			if !s.StaffIsActive {
				fmt.Printf("%s staff %d is inactive; the API will reject this token\n", warnMark, staffID)
			}
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}
			tok, err := helperAuth.IssueAccessToken(cfg.JWTSecret, s.StaffID, s.StaffRole, s.StaffName, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&staffID, "staff", 0, "staff id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_TTL)")
	_ = cmd.MarkFlagRequired("staff")
	return cmd
}
