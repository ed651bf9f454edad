package repositories

import (
	"context"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/core/domain"

	"gorm.io/gorm"
)

// positionRepository implements PositionRepository
type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, position *models.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *positionRepository) GetByID(ctx context.Context, id uint) (*models.Position, error) {
	var position models.Position
	if err := r.db.WithContext(ctx).First(&position, id).Error; err != nil {
		return nil, notFound(err, domain.ErrPositionNotFound)
	}
	return &position, nil
}

// ListActiveWithCandidates returns active positions ordered by priority then
// title, each preloaded with its active candidates. This is the ballot read.
func (r *positionRepository) ListActiveWithCandidates(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	err := r.db.WithContext(ctx).
		Preload("Candidates", "is_active = ?", true).
		Where("is_active = ?", true).
		Order("priority ASC, title ASC").
		Find(&positions).Error
	return positions, err
}

func (r *positionRepository) List(ctx context.Context, offset, limit int) ([]*models.Position, int64, error) {
	var positions []*models.Position
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Position{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("priority ASC, title ASC").
		Offset(offset).
		Limit(limit).
		Find(&positions).Error
	return positions, total, err
}

func (r *positionRepository) Update(ctx context.Context, position *models.Position) error {
	return r.db.WithContext(ctx).Save(position).Error
}

func (r *positionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Position{}, id).Error
}

// ============================================================
// Candidates
// ============================================================

func (r *positionRepository) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

func (r *positionRepository) GetCandidateByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Preload("Position").
		First(&candidate, id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrCandidateNotFound)
	}
	return &candidate, nil
}

func (r *positionRepository) GetCandidatesByIDs(ctx context.Context, ids []uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if len(ids) == 0 {
		return candidates, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Position").
		Where("id IN ?", ids).
		Find(&candidates).Error
	return candidates, err
}

func (r *positionRepository) UpdateCandidate(ctx context.Context, candidate *models.Candidate) error {
	return r.db.WithContext(ctx).Save(candidate).Error
}

func (r *positionRepository) DeleteCandidate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Candidate{}, id).Error
}
