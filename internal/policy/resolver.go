package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/internal/models"
)

// DBResolver resolves the profile from the stored user rather than the token claims,
// so deactivation and role changes apply before the token expires.
type DBResolver struct {
	db *gorm.DB
}

func NewDBResolver(db *gorm.DB) *DBResolver {
	return &DBResolver{db: db}
}

// Resolve returns nil for unknown or inactive users and for users who changed company.
func (r *DBResolver) Resolve(ctx context.Context, id auth.Identity) (gate.Profile, error) {
	var u models.User
	err := r.db.WithContext(ctx).Select("id", "role", "is_active", "company_id").First(&u, id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || u.GetCompanyID() != id.CompanyID {
		return nil, nil
	}
	return ProfileFor(u.Role), nil
}
