package models

import "time"

// Subscription plans.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Company is the tenant. Every other record hangs off one.
type Company struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Name             string    `gorm:"size:255;not null" json:"name"`
	SubscriptionPlan string    `gorm:"size:30;default:free" json:"subscription_plan"`
	ContactEmail     string    `gorm:"size:255" json:"contact_email,omitempty"`
	Phone            string    `gorm:"size:50" json:"phone,omitempty"`
	Address          string    `gorm:"size:500" json:"address,omitempty"`
	Siret            string    `gorm:"size:14" json:"siret,omitempty"`
	LogoURL          string    `gorm:"size:500" json:"logo_url,omitempty"`
}

func (c *Company) GetCompanyID() uint { return c.ID }

// CompanyDocument is a company-wide file reference (insurance, Kbis, certificates).
type CompanyDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"index;not null" json:"company_id"`
	Titre     string    `gorm:"size:255;not null" json:"titre"`
	Type      string    `gorm:"size:50" json:"type,omitempty"`
	URL       string    `gorm:"size:1000;not null" json:"url"`
	DateAjout time.Time `json:"date_ajout"`
}

func (d *CompanyDocument) GetCompanyID() uint { return d.CompanyID }
