package models

import "time"

// DefaultEtat is the condition assigned when none is given.
const DefaultEtat = "Bon"

// Materiel is a piece of equipment subject to the yearly periodic inspection (VGP).
// ChantierID is the current site, nil when in the depot.
type Materiel struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompanyID       uint       `gorm:"index;not null" json:"company_id"`
	ChantierID      *uint      `gorm:"index" json:"chantier_id"`
	Nom             string     `gorm:"size:255;not null" json:"nom"`
	Reference       string     `gorm:"size:100" json:"reference,omitempty"`
	Etat            string     `gorm:"size:50;not null;default:Bon" json:"etat"`
	DateDerniereVGP *time.Time `gorm:"column:date_derniere_vgp" json:"date_derniere_vgp"`
	ImageURL        string     `gorm:"size:1000" json:"image_url,omitempty"`
}

func (m *Materiel) GetCompanyID() uint { return m.CompanyID }

// MaterielView is the API shape: the record plus its derived inspection status.
type MaterielView struct {
	Materiel
	StatutVGP    Compliance `json:"statut_vgp"`
	ProchaineVGP *time.Time `json:"prochaine_vgp"`
}

// View computes the derived fields at now.
func (m Materiel) View(now time.Time) MaterielView {
	v := MaterielView{Materiel: m, StatutVGP: ComplianceStatus(m.DateDerniereVGP, now)}
	if m.DateDerniereVGP != nil {
		next := NextInspection(*m.DateDerniereVGP)
		v.ProchaineVGP = &next
	}
	return v
}
