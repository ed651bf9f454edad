package repositories

import (
	"context"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/core/domain"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, notFound(err, domain.ErrMemberNotFound)
	}
	return &member, nil
}

func (r *memberRepository) GetByCode(ctx context.Context, memberCode string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("member_code = ?", memberCode).
		First(&member).Error
	if err != nil {
		return nil, notFound(err, domain.ErrMemberNotFound)
	}
	return &member, nil
}

// SearchInBranch finds active members of one branch by name substring or
// exact member code. Results stay scoped to the branch the voter selected.
func (r *memberRepository) SearchInBranch(ctx context.Context, branchNumber, term string, limit int) ([]*models.Member, error) {
	var members []*models.Member
	like := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Where("branch_number = ? AND is_active = ?", branchNumber, true).
		Where("first_name LIKE ? OR last_name LIKE ? OR member_code = ?", like, like, term).
		Order("last_name ASC, first_name ASC").
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("member_code ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error
	return members, total, err
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepository) UpdateContact(ctx context.Context, memberCode, phone, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("member_code = ?", memberCode).
		Updates(map[string]interface{}{
			"phone": phone,
			"email": email,
		}).Error
}

func (r *memberRepository) SetRegChannel(ctx context.Context, memberCode, channel string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("member_code = ?", memberCode).
		Update("reg_channel", channel).Error
}

func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}
