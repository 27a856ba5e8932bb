package models

import (
	"time"

	"gorm.io/datatypes"
)

// PPSPS is the site-specific health and safety plan.
type PPSPS struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	ChantierID          uint           `gorm:"index;not null" json:"chantier_id"`
	MaitreOuvrage       string         `gorm:"size:255" json:"maitre_ouvrage,omitempty"`
	MaitreOeuvre        string         `gorm:"size:255" json:"maitre_oeuvre,omitempty"`
	CoordonnateurSPS    string         `gorm:"column:coordonnateur_sps;size:255" json:"coordonnateur_sps,omitempty"`
	ResponsableChantier string         `gorm:"size:255" json:"responsable_chantier,omitempty"`
	NbCompagnons        int            `json:"nb_compagnons"`
	Horaires            string         `gorm:"size:255" json:"horaires,omitempty"`
	DureeTravaux        string         `gorm:"size:255" json:"duree_travaux,omitempty"`
	SecoursData         datatypes.JSON `json:"secours_data"`
	InstallationsData   datatypes.JSON `json:"installations_data"`
	TachesData          datatypes.JSON `json:"taches_data"`
	DateCreation        time.Time      `json:"date_creation"`
}

func (PPSPS) TableName() string { return "ppsps" }

// PlanPrevention is the prevention plan agreed between the host and the outside company.
type PlanPrevention struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	ChantierID             uint           `gorm:"index;not null" json:"chantier_id"`
	EntrepriseUtilisatrice string         `gorm:"size:255" json:"entreprise_utilisatrice,omitempty"`
	EntrepriseExterieure   string         `gorm:"size:255" json:"entreprise_exterieure,omitempty"`
	DateInspectionCommune  *time.Time     `json:"date_inspection_commune"`
	ConsignesSecurite      string         `gorm:"type:text" json:"consignes_securite,omitempty"`
	RisquesInterferents    datatypes.JSON `json:"risques_interferents"`
	SignatureEU            string         `gorm:"column:signature_eu;size:1000" json:"signature_eu,omitempty"`
	SignatureEE            string         `gorm:"column:signature_ee;size:1000" json:"signature_ee,omitempty"`
	DateCreation           time.Time      `json:"date_creation"`
}

func (PlanPrevention) TableName() string { return "plans_prevention" }

// PIC is the site installation plan. There is at most one per site.
type PIC struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ChantierID    uint           `gorm:"uniqueIndex;not null" json:"chantier_id"`
	Acces         string         `gorm:"type:text" json:"acces,omitempty"`
	Clotures      string         `gorm:"type:text" json:"clotures,omitempty"`
	BaseVie       string         `gorm:"type:text" json:"base_vie,omitempty"`
	Stockage      string         `gorm:"type:text" json:"stockage,omitempty"`
	Dechets       string         `gorm:"type:text" json:"dechets,omitempty"`
	Levage        string         `gorm:"type:text" json:"levage,omitempty"`
	BackgroundURL string         `gorm:"size:1000" json:"background_url,omitempty"`
	ElementsData  datatypes.JSON `json:"elements_data"`
	DateUpdate    time.Time      `json:"date_update"`
}

func (PIC) TableName() string { return "pics" }

// PermisFeu is a hot-work permit.
type PermisFeu struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ChantierID         uint      `gorm:"index;not null" json:"chantier_id"`
	Date               time.Time `json:"date"`
	Lieu               string    `gorm:"size:255" json:"lieu,omitempty"`
	Intervenant        string    `gorm:"size:255" json:"intervenant,omitempty"`
	DescriptionTravaux string    `gorm:"type:text" json:"description_travaux,omitempty"`
	ExtincteurPresent  bool      `json:"extincteur_present"`
	ZoneDegagee        bool      `json:"zone_degagee"`
	SurveillanceApres  bool      `json:"surveillance_apres"`
	Signature          string    `gorm:"size:1000" json:"signature,omitempty"`
}

func (PermisFeu) TableName() string { return "permis_feu" }
