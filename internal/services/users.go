package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

// UserInput creates or edits an account. Role and IsActive are admin-only fields;
// the handler strips them for self-service edits.
type UserInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (in UserInput) Validate(create bool) validation.Violations {
	v := validation.Violations{}
	if create {
		validation.RequiredPtr("email", in.Email, v)
		validation.RequiredPtr("password", in.Password, v)
	}
	if in.Email != nil {
		validation.Email("email", *in.Email, v)
		validation.MaxLen("email", *in.Email, 255, v)
	}
	if in.Password != nil {
		validation.Required("password", *in.Password, v)
		validation.MaxLen("password", *in.Password, 72, v)
	}
	if in.Role != nil {
		validation.OneOf("role", *in.Role, models.Roles, v)
	}
	return v
}

// RegisterInput opens a new company with its first administrator.
type RegisterInput struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
}

func (in RegisterInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("company_name", in.CompanyName, v)
	validation.MaxLen("company_name", in.CompanyName, 255, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MaxLen("password", in.Password, 72, v)
	return v
}

// UserService handles accounts and login.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Authenticate checks the credentials. Unknown e-mail, inactive account and wrong
// password all answer the same 401.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.E(apperr.Unauthorized, "invalid_credentials", nil)
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) || !u.IsActive {
		return nil, apperr.E(apperr.Unauthorized, "invalid_credentials", nil)
	}
	if u.CompanyID == nil {
		return nil, apperr.E(apperr.Forbidden, "no_company", nil)
	}
	return &u, nil
}

// Register creates the company and its admin in one transaction.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if v := in.Validate(); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	var u models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureFreeEmail(tx, in.Email, 0); err != nil {
			return err
		}
		company := models.Company{Name: strings.TrimSpace(in.CompanyName), SubscriptionPlan: models.PlanFree, ContactEmail: normalizeEmail(in.Email)}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		u = models.User{
			Email: normalizeEmail(in.Email), HashedPassword: hash, FullName: strings.TrimSpace(in.FullName),
			Role: models.RoleAdmin, IsActive: true, CompanyID: &company.ID,
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) ensureFreeEmail(db *gorm.DB, email string, exceptID uint) error {
	var n int64
	q := db.Model(&models.User{}).Where("email = ?", normalizeEmail(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.E(apperr.Conflict, "email_taken", nil)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return getByID[models.User](ctx, s.db, id, "user_not_found")
}

func (s *UserService) List(ctx context.Context, companyID uint) ([]models.User, error) {
	out := []models.User{}
	err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("email ASC").Find(&out).Error
	return out, err
}

// Create adds a user to the company. The role defaults to conducteur.
func (s *UserService) Create(ctx context.Context, companyID uint, in UserInput) (*models.User, error) {
	if v := in.Validate(true); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	if err := s.ensureFreeEmail(s.db.WithContext(ctx), *in.Email, 0); err != nil {
		return nil, err
	}
	u := models.User{CompanyID: &companyID, Role: models.RoleConducteur, IsActive: true}
	if err := in.apply(&u); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Update(ctx context.Context, u *models.User, in UserInput) error {
	if v := in.Validate(false); !v.Empty() {
		return apperr.Invalid(v)
	}
	if in.Email != nil {
		if err := s.ensureFreeEmail(s.db.WithContext(ctx), *in.Email, u.ID); err != nil {
			return err
		}
	}
	if err := in.apply(u); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (in UserInput) apply(u *models.User) error {
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.HashedPassword = hash
	}
	if in.FullName != nil {
		u.FullName = trimmed(in.FullName)
	}
	if in.Role != nil && *in.Role != "" {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	return nil
}
