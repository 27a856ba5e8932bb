package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// CompanyInput edits the tenant profile. The subscription plan is not editable here.
type CompanyInput struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Siret        *string `json:"siret"`
	LogoURL      *string `json:"logo_url"`
}

func (in CompanyInput) Validate() validation.Violations {
	v := validation.Violations{}
	if in.Name != nil {
		validation.Required("name", *in.Name, v)
		validation.MaxLen("name", *in.Name, 255, v)
	}
	if in.ContactEmail != nil {
		validation.Email("contact_email", *in.ContactEmail, v)
	}
	if in.Siret != nil {
		validation.MaxLen("siret", *in.Siret, 14, v)
	}
	return v
}

// CompanyDocumentInput references a company-wide file.
type CompanyDocumentInput struct {
	Titre string `json:"titre"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// CompanyService manages the caller's company and its documents.
type CompanyService struct {
	db  *gorm.DB
	now Clock
}

func NewCompanyService(db *gorm.DB, now Clock) *CompanyService {
	return &CompanyService{db: db, now: orNow(now)}
}

func (s *CompanyService) Get(ctx context.Context, id uint) (*models.Company, error) {
	return getByID[models.Company](ctx, s.db, id, "not_found")
}

func (s *CompanyService) Update(ctx context.Context, c *models.Company, in CompanyInput) error {
	if v := in.Validate(); !v.Empty() {
		return apperr.Invalid(v)
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = trimmed(src)
		}
	}
	set(&c.Name, in.Name)
	set(&c.ContactEmail, in.ContactEmail)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.Siret, in.Siret)
	set(&c.LogoURL, in.LogoURL)
	return s.db.WithContext(ctx).Save(c).Error
}

func (s *CompanyService) Documents(ctx context.Context, companyID uint) ([]models.CompanyDocument, error) {
	out := []models.CompanyDocument{}
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("date_ajout DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *CompanyService) Document(ctx context.Context, id uint) (*models.CompanyDocument, error) {
	return getByID[models.CompanyDocument](ctx, s.db, id, "not_found")
}

func (s *CompanyService) CreateDocument(ctx context.Context, companyID uint, in CompanyDocumentInput) (*models.CompanyDocument, error) {
	v := validation.Violations{}
	validation.Required("titre", in.Titre, v)
	validation.Required("url", in.URL, v)
	validation.MaxLen("titre", in.Titre, 255, v)
	if !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	d := models.CompanyDocument{CompanyID: companyID, Titre: in.Titre, Type: in.Type, URL: in.URL, DateAjout: s.now()}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *CompanyService) DeleteDocument(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.CompanyDocument{}, id).Error
}
