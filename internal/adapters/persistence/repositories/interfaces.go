package repositories

import (
	"context"
	"errors"
	"time"

	"coopvote/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// BranchRepository defines branch data access
type BranchRepository interface {
	Create(ctx context.Context, branch *models.Branch) error
	GetByID(ctx context.Context, id uint) (*models.Branch, error)
	GetByNumber(ctx context.Context, branchNumber string) (*models.Branch, error)
	ListActive(ctx context.Context) ([]models.Branch, error)
	List(ctx context.Context, offset, limit int) ([]*models.Branch, int64, error)
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id uint) error
}

// MemberRepository defines member data access
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByCode(ctx context.Context, memberCode string) (*models.Member, error)
	SearchInBranch(ctx context.Context, branchNumber, term string, limit int) ([]*models.Member, error)
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error
	UpdateContact(ctx context.Context, memberCode, phone, email string) error
	SetRegChannel(ctx context.Context, memberCode, channel string) error
	Delete(ctx context.Context, id uint) error
}

// PositionRepository defines position + candidate data access
type PositionRepository interface {
	Create(ctx context.Context, position *models.Position) error
	GetByID(ctx context.Context, id uint) (*models.Position, error)
	ListActiveWithCandidates(ctx context.Context) ([]models.Position, error)
	List(ctx context.Context, offset, limit int) ([]*models.Position, int64, error)
	Update(ctx context.Context, position *models.Position) error
	Delete(ctx context.Context, id uint) error

	CreateCandidate(ctx context.Context, candidate *models.Candidate) error
	GetCandidateByID(ctx context.Context, id uint) (*models.Candidate, error)
	GetCandidatesByIDs(ctx context.Context, ids []uint) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate *models.Candidate) error
	DeleteCandidate(ctx context.Context, id uint) error
}

// VoteRepository defines vote ledger data access. Writes happen only inside
// SubmitBallot's transaction; everything else is read-only.
type VoteRepository interface {
	// WithTx runs fn inside a database transaction. fn receives a
	// transaction-scoped repository; any error rolls everything back.
	WithTx(ctx context.Context, fn func(txRepo VoteRepository) error) error

	CreateVote(ctx context.Context, vote *models.Vote) error
	GetByMember(ctx context.Context, branchNumber, memberCode string) ([]models.Vote, error)
	CountByMember(ctx context.Context, branchNumber, memberCode string) (int64, error)
	ControlNumberExists(ctx context.Context, controlNumber string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	CountBallots(ctx context.Context) (int64, error)
	TallyPosition(ctx context.Context, positionID uint) ([]TallyRow, error)
}

// TallyRow is one aggregated count per candidate within a position.
type TallyRow struct {
	CandidateID uint
	VoteCount   int64
	LastVoteAt  time.Time
}

// ReceiptRepository defines receipt data access
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByControlNumber(ctx context.Context, controlNumber string) (*models.Receipt, error)
	GetByToken(ctx context.Context, token string) (*models.Receipt, error)
}

// UserRepository defines admin user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// notFound maps gorm's record-not-found onto a caller-supplied sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
