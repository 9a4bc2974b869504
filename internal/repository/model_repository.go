package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotspot-service/internal/models"
)

// ModelRepository provides methods to interact with imported model metadata.
type ModelRepository interface {
	CreateModel(model *models.Model) error
	GetModel(id uuid.UUID) (*models.Model, error)
	ListModels() ([]models.Model, error)
	DeleteModel(id uuid.UUID) error
}

// ModelRepositoryImpl is the gorm-backed ModelRepository.
type ModelRepositoryImpl struct {
	db *gorm.DB
}

// NewModelRepository creates a new ModelRepositoryImpl with the provided GORM database connection.
func NewModelRepository(db *gorm.DB) *ModelRepositoryImpl {
	return &ModelRepositoryImpl{db: db}
}

// Migrate creates or updates the models table.
func (r *ModelRepositoryImpl) Migrate() error {
	return r.db.AutoMigrate(&models.Model{})
}

// CreateModel creates a new Model in the database.
func (r *ModelRepositoryImpl) CreateModel(model *models.Model) error {
	return r.db.Create(model).Error
}

// GetModel retrieves a Model by its ID. A missing row yields gorm.ErrRecordNotFound.
func (r *ModelRepositoryImpl) GetModel(id uuid.UUID) (*models.Model, error) {
	var model models.Model
	if err := r.db.First(&model, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// ListModels retrieves all Models, most recent upload first.
func (r *ModelRepositoryImpl) ListModels() ([]models.Model, error) {
	var list []models.Model
	err := r.db.Order("uploaded_at desc").Find(&list).Error
	return list, err
}

// DeleteModel deletes a Model by its ID. Deleting a missing row yields gorm.ErrRecordNotFound.
func (r *ModelRepositoryImpl) DeleteModel(id uuid.UUID) error {
	res := r.db.Delete(&models.Model{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
