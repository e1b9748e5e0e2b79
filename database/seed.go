package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecohub-backend/log"
	"ecohub-backend/models"
	"ecohub-backend/utils"
)

func lookupRows() []interface{} {
	return []interface{}{
		&[]models.EventCategory{
			{EventCatID: 1, EventCatDescription: "Recycling"},
			{EventCatID: 2, EventCatDescription: "Conservation"},
			{EventCatID: 3, EventCatDescription: "Community Cleanup"},
			{EventCatID: 4, EventCatDescription: "Education"},
			{EventCatID: 5, EventCatDescription: "Gardening"},
		},
		&[]models.EventType{
			{EventTypeID: 1, EventTypeDescription: "Workshop"},
			{EventTypeID: 2, EventTypeDescription: "Volunteer"},
			{EventTypeID: 3, EventTypeDescription: "Talk"},
			{EventTypeID: 4, EventTypeDescription: "Competition"},
		},
		&[]models.EventLocation{
			{EventLocationID: 1, EventLocationDescription: "North"},
			{EventLocationID: 2, EventLocationDescription: "South"},
			{EventLocationID: 3, EventLocationDescription: "East"},
			{EventLocationID: 4, EventLocationDescription: "West"},
			{EventLocationID: models.LocationOnline, EventLocationDescription: "Online"},
		},
		&[]models.EventStatus{
			{EventStatusID: models.StatusPending, Description: "Pending"},
			{EventStatusID: models.StatusRejected, Description: "Rejected"},
			{EventStatusID: models.StatusActive, Description: "Active"},
		},
		&[]models.RewardsType{
			{RewardsTypeID: 1, RewardsTypeDescription: "Voucher"},
			{RewardsTypeID: 2, RewardsTypeDescription: "Discount"},
			{RewardsTypeID: 3, RewardsTypeDescription: "Merchandise"},
		},
	}
}

// Seed inserts the lookup tables and, when adminEmail is set, an admin
// account. Running it twice changes nothing.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, rows := range lookupRows() {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
				return fmt.Errorf("seed lookups: %w", err)
			}
		}
		if adminEmail == "" {
			return nil
		}
		return seedAdmin(tx, adminEmail, adminPassword)
	})
}

func seedAdmin(tx *gorm.DB, email, password string) error {
	if password == "" {
		return errors.New("admin password is required")
	}
	var existing models.User
	err := tx.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.InfoLog("admin already exists", "email", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		UserTypeID: models.RoleAdmin,
		FirstName:  "Eco",
		LastName:   "Admin",
		Email:      email,
		Username:   "admin",
		Password:   hash,
	}
	if err := tx.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.InfoLog("admin created", "email", email, "id", admin.UserID)
	return nil
}
