package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/internal/models"
)

// Demo account created by Seed.
const (
	SeedCompanyName   = "BTP Démo"
	SeedAdminEmail    = "admin@demo.fr"
	SeedAdminPassword = "admin123"
)

// Seed creates a demo company and its admin when they do not exist yet.
// Running it twice is harmless.
func Seed(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ?", SeedAdminEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		company := models.Company{Name: SeedCompanyName, SubscriptionPlan: models.PlanPro}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		hash, err := auth.HashPassword(SeedAdminPassword)
		if err != nil {
			return err
		}
		admin := models.User{
			Email:          SeedAdminEmail,
			HashedPassword: hash,
			FullName:       "Administrateur",
			Role:           models.RoleAdmin,
			IsActive:       true,
			CompanyID:      &company.ID,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		return nil
	})
}
