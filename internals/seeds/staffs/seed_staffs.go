package staffs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/features/staff/staffs/model"

	"gorm.io/gorm"
)

type StaffSeed struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// SeedStaffs inserts missing usernames; existing rows are left untouched.
func SeedStaffs(db *gorm.DB, inputs []StaffSeed) (int, error) {
	created := 0
	for _, data := range inputs {
		username := strings.TrimSpace(data.Username)
		if username == "" {
			continue
		}
		if !constants.IsValidRole(data.Role) {
			return created, fmt.Errorf("staff %q: invalid role %q", username, data.Role)
		}

		var existing model.StaffModel
		if err := db.Where("staff_username = ?", username).First(&existing).Error; err == nil {
			log.Printf("ℹ️ staff '%s' already exists, skipped", username)
			continue
		}

		row := model.StaffModel{
			StaffUsername: username,
			StaffName:     data.Name,
			StaffRole:     data.Role,
			StaffIsActive: true,
		}
		if err := db.Create(&row).Error; err != nil {
			return created, fmt.Errorf("insert staff %q: %w", username, err)
		}
		log.Printf("✅ staff '%s' inserted (id=%d, role=%s)", username, row.StaffID, row.StaffRole)
		created++
	}
	return created, nil
}

func SeedStaffsFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Reading staff seed:", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []StaffSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return SeedStaffs(db, inputs)
}
