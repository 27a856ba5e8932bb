package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/geocode"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// ChantierInput is the create and partial-update payload of a site.
// Nil fields are left untouched on update.
type ChantierInput struct {
	Nom            *string  `json:"nom"`
	Adresse        *string  `json:"adresse"`
	Client         *string  `json:"client"`
	DateDebut      *string  `json:"date_debut"`
	DateFin        *string  `json:"date_fin"`
	StatutPlanning *string  `json:"statut_planning"`
	EstActif       *bool    `json:"est_actif"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	CoverURL       *string  `json:"cover_url"`
}

func (in ChantierInput) hasCoordinates() bool { return in.Latitude != nil || in.Longitude != nil }

// Validate checks the payload; on create the name is mandatory.
func (in ChantierInput) Validate(create bool) validation.Violations {
	v := validation.Violations{}
	if create || in.Nom != nil {
		validation.RequiredPtr("nom", in.Nom, v)
	}
	if in.Nom != nil {
		validation.MaxLen("nom", *in.Nom, 255, v)
	}
	if in.Adresse != nil {
		validation.MaxLen("adresse", *in.Adresse, 500, v)
	}
	if in.StatutPlanning != nil {
		validation.OneOf("statut_planning", *in.StatutPlanning, models.PlanningStates, v)
	}
	validation.Coordinates(in.Latitude, in.Longitude, v)
	return v
}

// ChantierService runs the site lifecycle: geocoding on create and address change,
// and the cascading delete.
type ChantierService struct {
	db  *gorm.DB
	geo geocode.Geocoder
}

func NewChantierService(db *gorm.DB, geo geocode.Geocoder) *ChantierService {
	return &ChantierService{db: db, geo: geo}
}

// List returns the company's sites, newest first.
func (s *ChantierService) List(ctx context.Context, companyID uint) ([]models.Chantier, error) {
	var out []models.Chantier
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id DESC").Find(&out).Error
	return out, err
}

// Get loads a site regardless of company.
func (s *ChantierService) Get(ctx context.Context, id uint) (*models.Chantier, error) {
	var c models.Chantier
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "chantier_not_found")
	}
	return &c, nil
}

// Create stores a new site. Supplied coordinates win; otherwise a non-empty address
// is geocoded, and a failed lookup leaves the coordinates null.
func (s *ChantierService) Create(ctx context.Context, companyID uint, in ChantierInput) (*models.Chantier, error) {
	if v := in.Validate(true); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	c := models.Chantier{
		CompanyID:      companyID,
		StatutPlanning: models.PlanningPrevu,
		EstActif:       true,
	}
	in.apply(&c)
	if !in.hasCoordinates() && c.Adresse != "" {
		s.locate(ctx, &c)
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update applies the supplied fields. A changed address without coordinates is
// re-geocoded; coordinates are otherwise kept unless supplied.
func (s *ChantierService) Update(ctx context.Context, c *models.Chantier, in ChantierInput) error {
	if v := in.Validate(false); !v.Empty() {
		return apperr.Invalid(v)
	}
	previous := c.Adresse
	in.apply(c)
	if in.Adresse != nil && c.Adresse != previous && !in.hasCoordinates() {
		c.Latitude, c.Longitude = nil, nil
		s.locate(ctx, c)
	}
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *ChantierService) locate(ctx context.Context, c *models.Chantier) {
	if p := geocode.Lookup(ctx, s.geo, c.Adresse); p != nil {
		c.Latitude, c.Longitude = &p.Latitude, &p.Longitude
	}
}

func (in ChantierInput) apply(c *models.Chantier) {
	if in.Nom != nil {
		c.Nom = trimmed(in.Nom)
	}
	if in.Adresse != nil {
		c.Adresse = trimmed(in.Adresse)
	}
	if in.Client != nil {
		c.Client = trimmed(in.Client)
	}
	if in.DateDebut != nil {
		c.DateDebut = lenientDate(in.DateDebut)
	}
	if in.DateFin != nil {
		c.DateFin = lenientDate(in.DateFin)
	}
	if in.StatutPlanning != nil && *in.StatutPlanning != "" {
		c.StatutPlanning = *in.StatutPlanning
	}
	if in.EstActif != nil {
		c.EstActif = *in.EstActif
	}
	if in.Latitude != nil {
		c.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		c.Longitude = in.Longitude
	}
	if in.CoverURL != nil {
		c.CoverURL = trimmed(in.CoverURL)
	}
}

// Delete removes a site and everything recorded on it in one transaction. Equipment
// is detached and goes back to the depot. Any failure rolls the whole delete back.
func (s *ChantierService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reports := tx.Model(&models.Rapport{}).Select("id").Where("chantier_id = ?", id)
		if err := tx.Where("rapport_id IN (?)", reports).Delete(&models.RapportImage{}).Error; err != nil {
			return err
		}
		for _, child := range []any{
			&models.Rapport{}, &models.Task{}, &models.Inspection{}, &models.PPSPS{},
			&models.PlanPrevention{}, &models.PIC{}, &models.PermisFeu{}, &models.ChantierDocument{},
		} {
			if err := tx.Where("chantier_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Materiel{}).Where("chantier_id = ?", id).Update("chantier_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Chantier{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("chantier_not_found")
		}
		return nil
	})
	if err != nil && apperr.KindOf(err) != apperr.NotFound {
		return apperr.Wrap("delete_failed", err)
	}
	return err
}
