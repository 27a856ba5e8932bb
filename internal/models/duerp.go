package models

import "time"

// DUERP is a company's yearly occupational risk register.
type DUERP struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	CompanyID      uint         `gorm:"not null;uniqueIndex:idx_duerp_company_annee" json:"company_id"`
	Annee          int          `gorm:"not null;uniqueIndex:idx_duerp_company_annee" json:"annee"`
	DateCreation   time.Time    `json:"date_creation"`
	DateMiseAJour  time.Time    `gorm:"column:date_mise_a_jour" json:"date_mise_a_jour"`
	Lignes         []DUERPLigne `gorm:"foreignKey:DUERPID;constraint:OnDelete:CASCADE" json:"lignes"`
}

func (DUERP) TableName() string { return "duerps" }

func (d *DUERP) GetCompanyID() uint { return d.CompanyID }

// DUERPLigne is one assessed risk. Gravite ranges from 1 (low) to 4 (critical).
type DUERPLigne struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	DUERPID          uint   `gorm:"column:duerp_id;index;not null" json:"duerp_id"`
	Position         int    `gorm:"not null" json:"position"`
	Tache            string `gorm:"size:255;not null" json:"tache"`
	Risque           string `gorm:"size:500;not null" json:"risque"`
	Gravite          int    `gorm:"not null" json:"gravite"`
	MesuresRealisees string `gorm:"type:text" json:"mesures_realisees,omitempty"`
	MesuresARealiser string `gorm:"column:mesures_a_realiser;type:text" json:"mesures_a_realiser,omitempty"`
}

func (DUERPLigne) TableName() string { return "duerp_lignes" }
