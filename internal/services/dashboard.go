package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/models"
)

// Stats is the dashboard payload.
type Stats struct {
	ChantiersActifs       int64           `json:"chantiers_actifs"`
	RapportsTotal         int64           `json:"rapports_total"`
	RapportsCritiques     int64           `json:"rapports_critiques"`
	MaterielsTotal        int64           `json:"materiels_total"`
	MaterielsNonConformes int64           `json:"materiels_non_conformes"`
	MaterielsAPrevoir     int64           `json:"materiels_a_prevoir"`
	TasksTodo             int64           `json:"tasks_todo"`
	Map                   []MapPoint      `json:"map"`
	RecentRapports        []RecentRapport `json:"recent_rapports"`
}

// MapPoint is a geolocated site.
type MapPoint struct {
	ID             uint    `json:"id"`
	Nom            string  `json:"nom"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	StatutPlanning string  `json:"statut_planning"`
}

// RecentRapport is a report with the name of its site.
type RecentRapport struct {
	ID            uint      `json:"id"`
	ChantierID    uint      `json:"chantier_id"`
	ChantierNom   string    `json:"chantier_nom"`
	Titre         string    `json:"titre"`
	NiveauUrgence string    `json:"niveau_urgence"`
	DateCreation  time.Time `json:"date_creation"`
}

// DashboardService aggregates company figures.
type DashboardService struct {
	db  *gorm.DB
	now Clock
}

func NewDashboardService(db *gorm.DB, now Clock) *DashboardService {
	return &DashboardService{db: db, now: orNow(now)}
}

// Stats computes the figures. Equipment status is derived in Go from the stored
// dates with the same rule as the API responses.
func (s *DashboardService) Stats(ctx context.Context, companyID uint) (*Stats, error) {
	db := s.db.WithContext(ctx)
	st := &Stats{Map: []MapPoint{}, RecentRapports: []RecentRapport{}}
	sites := db.Model(&models.Chantier{}).Select("id").Where("company_id = ?", companyID)

	if err := db.Model(&models.Chantier{}).Where("company_id = ? AND est_actif = ?", companyID, true).
		Count(&st.ChantiersActifs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Rapport{}).Where("chantier_id IN (?)", sites).Count(&st.RapportsTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Rapport{}).Where("chantier_id IN (?) AND niveau_urgence = ?", sites, models.UrgenceCritique).
		Count(&st.RapportsCritiques).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("chantier_id IN (?) AND statut = ?", sites, models.TaskTodo).
		Count(&st.TasksTodo).Error; err != nil {
		return nil, err
	}

	var dates []*time.Time
	if err := db.Model(&models.Materiel{}).Where("company_id = ?", companyID).
		Pluck("date_derniere_vgp", &dates).Error; err != nil {
		return nil, err
	}
	now := s.now()
	st.MaterielsTotal = int64(len(dates))
	for _, d := range dates {
		switch models.ComplianceStatus(d, now) {
		case models.ComplianceNonCompliant:
			st.MaterielsNonConformes++
		case models.ComplianceDueSoon:
			st.MaterielsAPrevoir++
		}
	}

	var located []models.Chantier
	if err := db.Where("company_id = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", companyID).
		Order("id ASC").Find(&located).Error; err != nil {
		return nil, err
	}
	for _, c := range located {
		st.Map = append(st.Map, MapPoint{ID: c.ID, Nom: c.Nom, Latitude: *c.Latitude, Longitude: *c.Longitude, StatutPlanning: c.StatutPlanning})
	}

	err := db.Model(&models.Rapport{}).
		Select("rapports.id, rapports.chantier_id, chantiers.nom AS chantier_nom, rapports.titre, rapports.niveau_urgence, rapports.date_creation").
		Joins("JOIN chantiers ON chantiers.id = rapports.chantier_id").
		Where("chantiers.company_id = ?", companyID).
		Order("rapports.date_creation DESC, rapports.id DESC").
		Limit(5).
		Scan(&st.RecentRapports).Error
	if err != nil {
		return nil, err
	}
	return st, nil
}
