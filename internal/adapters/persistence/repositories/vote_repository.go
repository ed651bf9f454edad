package repositories

import (
	"context"

	"coopvote/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// voteRepository implements VoteRepository. The votes table is append-only:
// there is no update or delete here on purpose.
type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// WithTx runs fn against a transaction-scoped copy of the repository.
// Any error returned by fn rolls the whole unit back.
func (r *voteRepository) WithTx(ctx context.Context, fn func(txRepo VoteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&voteRepository{db: tx})
	})
}

func (r *voteRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *voteRepository) GetByMember(ctx context.Context, branchNumber, memberCode string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("branch_number = ? AND member_code = ?", branchNumber, memberCode).
		Order("id ASC").
		Find(&votes).Error
	return votes, err
}

func (r *voteRepository) CountByMember(ctx context.Context, branchNumber, memberCode string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("branch_number = ? AND member_code = ?", branchNumber, memberCode).
		Count(&count).Error
	return count, err
}

func (r *voteRepository) ControlNumberExists(ctx context.Context, controlNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("control_number = ?", controlNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *voteRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).Count(&count).Error
	return count, err
}

// CountBallots counts distinct control numbers, i.e. how many members have
// completed a submission.
func (r *voteRepository) CountBallots(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Distinct("control_number").
		Count(&count).Error
	return count, err
}

// TallyPosition aggregates votes per candidate for one position, ranked by
// count descending. last_vote_at breaks ties: the candidate who reached the
// count first ranks higher.
func (r *voteRepository) TallyPosition(ctx context.Context, positionID uint) ([]TallyRow, error) {
	var rows []TallyRow
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("votes.candidate_id AS candidate_id, COUNT(*) AS vote_count, MAX(votes.created_at) AS last_vote_at").
		Joins("JOIN candidates ON candidates.id = votes.candidate_id").
		Where("candidates.position_id = ?", positionID).
		Group("votes.candidate_id").
		Order("vote_count DESC, last_vote_at ASC, candidate_id ASC").
		Scan(&rows).Error
	return rows, err
}
