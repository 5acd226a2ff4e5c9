package clients

import (
	"fmt"
	"log"

	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/features/clients/clients/model"

	"gorm.io/gorm"
)

// SeedDemoClients makes sure demo clients 1..n exist, keyed by contact, all unassigned.
func SeedDemoClients(db *gorm.DB, n int) (int, error) {
	created := 0
	for i := 1; i <= n; i++ {
		contact := fmt.Sprintf("demo-%04d", i)
		var count int64
		if err := db.Model(&model.ClientModel{}).Where("client_contact = ?", contact).Count(&count).Error; err != nil {
			return created, fmt.Errorf("check demo client %s: %w", contact, err)
		}
		if count > 0 {
			continue
		}
		row := model.ClientModel{
			ClientName:    fmt.Sprintf("Demo Client %03d", i),
			ClientContact: contact,
			ClientStatus:  constants.ClientStatusPending,
		}
		if err := db.Create(&row).Error; err != nil {
			return created, fmt.Errorf("insert demo client %s: %w", contact, err)
		}
		created++
	}
	log.Printf("✅ demo clients: %d inserted, %d requested", created, n)
	return created, nil
}
