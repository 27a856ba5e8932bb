package models

import (
	"time"

	"gorm.io/datatypes"
)

// Report urgency levels.
const (
	UrgenceFaible   = "Faible"
	UrgenceMoyen    = "Moyen"
	UrgenceCritique = "Critique"
)

var UrgenceLevels = []string{UrgenceFaible, UrgenceMoyen, UrgenceCritique}

// Rapport is a field report on a site, optionally geolocated and illustrated.
type Rapport struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ChantierID    uint           `gorm:"index;not null" json:"chantier_id"`
	Titre         string         `gorm:"size:255;not null" json:"titre"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	NiveauUrgence string         `gorm:"size:20;not null;default:Faible" json:"niveau_urgence"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	PhotoURL      string         `gorm:"size:1000" json:"photo_url,omitempty"`
	DateCreation  time.Time      `json:"date_creation"`
	Images        []RapportImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
}

type RapportImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RapportID uint   `gorm:"index;not null" json:"rapport_id"`
	URL       string `gorm:"size:1000;not null" json:"url"`
}

// Inspection is a checklist filled on a site. Data is the client's free-form payload.
type Inspection struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ChantierID   uint           `gorm:"index;not null" json:"chantier_id"`
	Titre        string         `gorm:"size:255;not null" json:"titre"`
	Type         string         `gorm:"size:50" json:"type,omitempty"`
	Data         datatypes.JSON `json:"data"`
	Createur     string         `gorm:"size:255" json:"createur,omitempty"`
	DateCreation time.Time      `json:"date_creation"`
}

// Task statuses.
const (
	TaskTodo    = "TODO"
	TaskEnCours = "EN_COURS"
	TaskDone    = "DONE"
)

var TaskStatuses = []string{TaskTodo, TaskEnCours, TaskDone}

type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	ChantierID   uint       `gorm:"index;not null" json:"chantier_id"`
	Description  string     `gorm:"size:1000;not null" json:"description"`
	Statut       string     `gorm:"size:20;not null;default:TODO" json:"statut"`
	DateEcheance *time.Time `json:"date_echeance"`
}
