package repositories

import (
	"context"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/core/domain"

	"gorm.io/gorm"
)

// receiptRepository implements ReceiptRepository
type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetByControlNumber(ctx context.Context, controlNumber string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Where("control_number = ?", controlNumber).
		First(&receipt).Error
	if err != nil {
		return nil, notFound(err, domain.ErrReceiptNotFound)
	}
	return &receipt, nil
}

func (r *receiptRepository) GetByToken(ctx context.Context, token string) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&receipt).Error
	if err != nil {
		return nil, notFound(err, domain.ErrReceiptNotFound)
	}
	return &receipt, nil
}
