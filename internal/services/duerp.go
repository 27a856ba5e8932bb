package services

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// DUERPLigneInput is one assessed risk.
type DUERPLigneInput struct {
	Tache            string `json:"tache"`
	Risque           string `json:"risque"`
	Gravite          int    `json:"gravite"`
	MesuresRealisees string `json:"mesures_realisees"`
	MesuresARealiser string `json:"mesures_a_realiser"`
}

// DUERPInput is a whole yearly register. Lines replace the stored ones in order.
type DUERPInput struct {
	Annee  int               `json:"annee"`
	Lignes []DUERPLigneInput `json:"lignes"`
}

func (in DUERPInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.RangeInt("annee", in.Annee, 2000, 2100, v)
	for i, l := range in.Lignes {
		prefix := "lignes." + strconv.Itoa(i) + "."
		validation.Required(prefix+"tache", l.Tache, v)
		validation.Required(prefix+"risque", l.Risque, v)
		validation.RangeInt(prefix+"gravite", l.Gravite, 1, 4, v)
	}
	return v
}

// DUERPService keeps one risk register per company and year.
type DUERPService struct {
	db  *gorm.DB
	now Clock
}

func NewDUERPService(db *gorm.DB, now Clock) *DUERPService {
	return &DUERPService{db: db, now: orNow(now)}
}

// Years lists the registers of a company without their lines, most recent year first.
func (s *DUERPService) Years(ctx context.Context, companyID uint) ([]models.DUERP, error) {
	out := []models.DUERP{}
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("annee DESC").Find(&out).Error
	return out, err
}

// Get loads the register of a year with its lines ordered by position.
func (s *DUERPService) Get(ctx context.Context, companyID uint, annee int) (*models.DUERP, error) {
	var d models.DUERP
	err := s.db.WithContext(ctx).
		Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("company_id = ? AND annee = ?", companyID, annee).
		First(&d).Error
	if err != nil {
		return nil, notFound(err, "duerp_not_found")
	}
	return &d, nil
}

// Save creates or replaces the register of in.Annee in one transaction.
func (s *DUERPService) Save(ctx context.Context, companyID uint, in DUERPInput) (*models.DUERP, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	now := s.now()
	var d models.DUERP
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("company_id = ? AND annee = ?", companyID, in.Annee).
			Attrs(models.DUERP{CompanyID: companyID, Annee: in.Annee, DateCreation: now}).
			FirstOrInit(&d).Error
		if err != nil {
			return err
		}
		d.DateMiseAJour = now
		if err := tx.Omit("Lignes").Save(&d).Error; err != nil {
			return err
		}
		if err := tx.Where("duerp_id = ?", d.ID).Delete(&models.DUERPLigne{}).Error; err != nil {
			return err
		}
		d.Lignes = make([]models.DUERPLigne, len(in.Lignes))
		for i, l := range in.Lignes {
			d.Lignes[i] = models.DUERPLigne{
				DUERPID: d.ID, Position: i + 1, Tache: l.Tache, Risque: l.Risque, Gravite: l.Gravite,
				MesuresRealisees: l.MesuresRealisees, MesuresARealiser: l.MesuresARealiser,
			}
		}
		if len(d.Lignes) == 0 {
			return nil
		}
		return tx.Create(&d.Lignes).Error
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}
