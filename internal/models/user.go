package models

import "time"

// Roles. admin manages users and the company; lecteur is read-only.
const (
	RoleAdmin        = "admin"
	RoleConducteur   = "conducteur"
	RoleChefChantier = "chef_chantier"
	RoleLecteur      = "lecteur"
)

// Roles lists the accepted role values.
var Roles = []string{RoleAdmin, RoleConducteur, RoleChefChantier, RoleLecteur}

// User is an authenticated account. HashedPassword always holds a bcrypt hash.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	FullName       string    `gorm:"size:255" json:"full_name,omitempty"`
	Role           string    `gorm:"size:30;not null;default:conducteur" json:"role"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	CompanyID      *uint     `gorm:"index" json:"company_id"`
}

func (u *User) GetCompanyID() uint {
	if u.CompanyID == nil {
		return 0
	}
	return *u.CompanyID
}
