package models

import "time"

// Planning states of a site.
const (
	PlanningPrevu   = "prevu"
	PlanningEnCours = "en_cours"
	PlanningTermine = "termine"
)

var PlanningStates = []string{PlanningPrevu, PlanningEnCours, PlanningTermine}

// Chantier is a construction site. Coordinates are optional and may come from geocoding.
type Chantier struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompanyID      uint       `gorm:"index;not null" json:"company_id"`
	Nom            string     `gorm:"size:255;not null" json:"nom"`
	Adresse        string     `gorm:"size:500" json:"adresse,omitempty"`
	Client         string     `gorm:"size:255" json:"client,omitempty"`
	DateDebut      *time.Time `json:"date_debut"`
	DateFin        *time.Time `json:"date_fin"`
	StatutPlanning string     `gorm:"size:20;not null;default:prevu" json:"statut_planning"`
	EstActif       bool       `gorm:"not null" json:"est_actif"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	CoverURL       string     `gorm:"size:1000" json:"cover_url,omitempty"`
}

func (c *Chantier) GetCompanyID() uint { return c.CompanyID }

// HasCoordinates reports whether both coordinates are set.
func (c *Chantier) HasCoordinates() bool { return c.Latitude != nil && c.Longitude != nil }

// ChantierDocument is a file reference attached to a site.
type ChantierDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChantierID uint      `gorm:"index;not null" json:"chantier_id"`
	Nom        string    `gorm:"size:255;not null" json:"nom"`
	Type       string    `gorm:"size:50" json:"type,omitempty"`
	URL        string    `gorm:"size:1000;not null" json:"url"`
	DateAjout  time.Time `json:"date_ajout"`
}
