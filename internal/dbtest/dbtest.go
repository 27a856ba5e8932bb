// Package dbtest opens throwaway in-memory stores and seeds tenants for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/internal/models"
)

// Open returns a migrated in-memory SQLite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// Tenant is a seeded company with one user.
type Tenant struct {
	Company models.Company
	User    models.User
}

// Identity returns the token identity of the tenant's user.
func (tn Tenant) Identity() auth.Identity {
	return auth.Identity{UserID: tn.User.ID, CompanyID: tn.Company.ID, Role: tn.User.Role}
}

// SeedTenant creates a company and a user with role. The password is "password".
func SeedTenant(t testing.TB, conn *gorm.DB, name, role string) Tenant {
	t.Helper()
	company := models.Company{Name: name, SubscriptionPlan: models.PlanFree}
	if err := conn.Create(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		Email:          strings.ToLower(strings.ReplaceAll(name, " ", "")) + "-" + role + "@test.fr",
		HashedPassword: hash,
		FullName:       name + " " + role,
		Role:           role,
		IsActive:       true,
		CompanyID:      &company.ID,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return Tenant{Company: company, User: user}
}

// SeedChantier inserts a site for company.
func SeedChantier(t testing.TB, conn *gorm.DB, companyID uint, nom string) models.Chantier {
	t.Helper()
	c := models.Chantier{CompanyID: companyID, Nom: nom, StatutPlanning: models.PlanningEnCours, EstActif: true}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("chantier: %v", err)
	}
	return c
}
