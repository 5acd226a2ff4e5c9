package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	staffModel "leadcrm_backend/internals/features/staff/staffs/model"
	helperAuth "leadcrm_backend/internals/helpers/auth"
)

var errStaffInactive = errors.New("staff is inactive")

func extractBearerToken(c *fiber.Ctx) (string, error) {
	// Authorization header, or the access_token cookie as fallback
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
			log.Println("[DEBUG] Authorization from cookie")
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - No token provided")
	}

	// tolerate repeated spaces and any casing of the scheme
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("unauthorized - Empty token")
	}
	return tok, nil
}

// ensureStaffActive returns the current row so role changes apply without reissuing tokens.
func ensureStaffActive(db *gorm.DB, staffID int64) (*staffModel.StaffModel, error) {
	var s staffModel.StaffModel
	if err := db.Select("staff_id, staff_name, staff_role, staff_is_active").
		First(&s, "staff_id = ?", staffID).Error; err != nil {
		return nil, err
	}
	if !s.StaffIsActive {
		return nil, errStaffInactive
	}
	return &s, nil
}

func storeClaimsToLocals(c *fiber.Ctx, s *staffModel.StaffModel, raw string) {
	c.Locals(helperAuth.LocStaffID, s.StaffID)
	c.Locals(helperAuth.LocRole, s.StaffRole)
	c.Locals(helperAuth.LocName, s.StaffName)
	c.Locals(helperAuth.LocRawToken, raw)
}
