package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/validation"
)

type TaskInput struct {
	Description  *string `json:"description"`
	Statut       *string `json:"statut"`
	DateEcheance *string `json:"date_echeance"`
}

func (in TaskInput) Validate(create bool) validation.Violations {
	v := validation.Violations{}
	if create || in.Description != nil {
		validation.RequiredPtr("description", in.Description, v)
	}
	if in.Description != nil {
		validation.MaxLen("description", *in.Description, 1000, v)
	}
	if in.Statut != nil {
		validation.OneOf("statut", *in.Statut, models.TaskStatuses, v)
	}
	return v
}

// TaskService manages the to-do items of the sites.
type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

func (s *TaskService) ForSite(ctx context.Context, chantierID uint) ([]models.Task, error) {
	return listBySite[models.Task](ctx, s.db, chantierID, "id DESC")
}

// ForCompany lists the tasks of every site of the company.
func (s *TaskService) ForCompany(ctx context.Context, companyID uint) ([]models.Task, error) {
	out := []models.Task{}
	err := s.db.WithContext(ctx).
		Joins("JOIN chantiers ON chantiers.id = tasks.chantier_id").
		Where("chantiers.company_id = ?", companyID).
		Order("tasks.id DESC").
		Find(&out).Error
	return out, err
}

func (s *TaskService) Get(ctx context.Context, id uint) (*models.Task, error) {
	return getByID[models.Task](ctx, s.db, id, "not_found")
}

func (s *TaskService) Create(ctx context.Context, chantierID uint, in TaskInput) (*models.Task, error) {
	if v := in.Validate(true); !v.Empty() {
		return nil, apperr.Invalid(v)
	}
	t := models.Task{ChantierID: chantierID, Statut: models.TaskTodo}
	in.apply(&t)
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TaskService) Update(ctx context.Context, t *models.Task, in TaskInput) error {
	if v := in.Validate(false); !v.Empty() {
		return apperr.Invalid(v)
	}
	in.apply(t)
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

func (in TaskInput) apply(t *models.Task) {
	if in.Description != nil {
		t.Description = trimmed(in.Description)
	}
	if in.Statut != nil && *in.Statut != "" {
		t.Statut = *in.Statut
	}
	if in.DateEcheance != nil {
		t.DateEcheance = lenientDate(in.DateEcheance)
	}
}
