package repositories

import (
	"context"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/core/domain"

	"gorm.io/gorm"
)

// branchRepository implements BranchRepository
type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *branchRepository) GetByID(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, id).Error; err != nil {
		return nil, notFound(err, domain.ErrBranchNotFound)
	}
	return &branch, nil
}

func (r *branchRepository) GetByNumber(ctx context.Context, branchNumber string) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("branch_number = ?", branchNumber).
		First(&branch).Error
	if err != nil {
		return nil, notFound(err, domain.ErrBranchNotFound)
	}
	return &branch, nil
}

func (r *branchRepository) ListActive(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("branch_number ASC").
		Find(&branches).Error
	return branches, err
}

func (r *branchRepository) List(ctx context.Context, offset, limit int) ([]*models.Branch, int64, error) {
	var branches []*models.Branch
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Branch{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("branch_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&branches).Error
	return branches, total, err
}

func (r *branchRepository) Update(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *branchRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Branch{}, id).Error
}
