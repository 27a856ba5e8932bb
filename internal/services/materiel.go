package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// MaterielInput is the create and partial-update payload of equipment.
// Dates are lenient: an unreadable date is stored as absent.
type MaterielInput struct {
	Nom             *string `json:"nom"`
	Reference       *string `json:"reference"`
	Etat            *string `json:"etat"`
	DateDerniereVGP *string `json:"date_derniere_vgp"`
	ImageURL        *string `json:"image_url"`
	ChantierID      *uint   `json:"chantier_id"`
}

func (in MaterielInput) Validate(create bool) validation.Violations {
	v := validation.Violations{}
	if create || in.Nom != nil {
		validation.RequiredPtr("nom", in.Nom, v)
	}
	if in.Nom != nil {
		validation.MaxLen("nom", *in.Nom, 255, v)
	}
	if in.Reference != nil {
		validation.MaxLen("reference", *in.Reference, 100, v)
	}
	if in.Etat != nil {
		validation.MaxLen("etat", *in.Etat, 50, v)
	}
	return v
}

// MaterielService manages the equipment fleet and computes compliance on every read.
type MaterielService struct {
	db  *gorm.DB
	now Clock
}

func NewMaterielService(db *gorm.DB, now Clock) *MaterielService {
	return &MaterielService{db: db, now: orNow(now)}
}

// Views decorates records with their inspection status at the service clock.
func (s *MaterielService) Views(items []models.Materiel) []models.MaterielView {
	now := s.now()
	out := make([]models.MaterielView, len(items))
	for i, m := range items {
		out[i] = m.View(now)
	}
	return out
}

// View decorates one record.
func (s *MaterielService) View(m *models.Materiel) models.MaterielView {
	return m.View(s.now())
}

// List returns the company's equipment, optionally restricted to one site.
func (s *MaterielService) List(ctx context.Context, companyID uint, chantierID *uint) ([]models.MaterielView, error) {
	q := s.db.WithContext(ctx).Where("company_id = ?", companyID)
	if chantierID != nil {
		q = q.Where("chantier_id = ?", *chantierID)
	}
	var items []models.Materiel
	if err := q.Order("nom ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return s.Views(items), nil
}

func (s *MaterielService) Get(ctx context.Context, id uint) (*models.Materiel, error) {
	var m models.Materiel
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err, "materiel_not_found")
	}
	return &m, nil
}

func (s *MaterielService) Create(ctx context.Context, companyID uint, in MaterielInput) (*models.Materiel, error) {
	if v := in.Validate(true); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	if err := s.checkSite(ctx, companyID, in.ChantierID); err != nil {
		return nil, err
	}
	m := models.Materiel{CompanyID: companyID, Etat: models.DefaultEtat}
	in.apply(&m)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MaterielService) Update(ctx context.Context, m *models.Materiel, in MaterielInput) error {
	if v := in.Validate(false); !v.Empty() {
		return apperr.Invalid(v)
	}
	if err := s.checkSite(ctx, m.CompanyID, in.ChantierID); err != nil {
		return err
	}
	in.apply(m)
	return s.db.WithContext(ctx).Save(m).Error
}

// Transfer moves equipment to a site of the same company, or back to the depot when
// chantierID is nil.
func (s *MaterielService) Transfer(ctx context.Context, m *models.Materiel, chantierID *uint) error {
	if err := s.checkSite(ctx, m.CompanyID, chantierID); err != nil {
		return err
	}
	m.ChantierID = chantierID
	return s.db.WithContext(ctx).Model(m).Update("chantier_id", chantierID).Error
}

func (s *MaterielService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Materiel{}, id).Error
}

// checkSite verifies that a target site exists and belongs to companyID.
func (s *MaterielService) checkSite(ctx context.Context, companyID uint, chantierID *uint) error {
	if chantierID == nil {
		return nil
	}
	var c models.Chantier
	if err := s.db.WithContext(ctx).Select("id", "company_id").First(&c, *chantierID).Error; err != nil {
		return notFound(err, "chantier_not_found")
	}
	if c.CompanyID != companyID {
		return apperr.Forbid()
	}
	return nil
}

func (in MaterielInput) apply(m *models.Materiel) {
	if in.Nom != nil {
		m.Nom = trimmed(in.Nom)
	}
	if in.Reference != nil {
		m.Reference = trimmed(in.Reference)
	}
	if in.Etat != nil {
		m.Etat = trimmed(in.Etat)
		if m.Etat == "" {
			m.Etat = models.DefaultEtat
		}
	}
	if in.DateDerniereVGP != nil {
		m.DateDerniereVGP = lenientDate(in.DateDerniereVGP)
	}
	if in.ImageURL != nil {
		m.ImageURL = trimmed(in.ImageURL)
	}
	if in.ChantierID != nil {
		m.ChantierID = in.ChantierID
	}
}
