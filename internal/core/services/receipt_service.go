package services

import (
	"context"
	"errors"
	"log"
	"time"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/core/domain"

	"github.com/google/uuid"
)

// ReceiptService issues opaque proof-of-participation tokens bound to a
// completed ballot. A receipt proves the member voted; it carries no vote
// content, preserving ballot secrecy.
type ReceiptService struct {
	receiptRepo repositories.ReceiptRepository
	voteRepo    repositories.VoteRepository
}

// NewReceiptService creates a new receipt service
func NewReceiptService(receiptRepo repositories.ReceiptRepository, voteRepo repositories.VoteRepository) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		voteRepo:    voteRepo,
	}
}

// Issue returns the receipt for a control number, minting one on first call.
// Idempotent: re-requesting returns the same token, never a new one.
func (s *ReceiptService) Issue(ctx context.Context, controlNumber, branchNumber, memberCode string) (*models.Receipt, error) {
	receipt, err := s.receiptRepo.GetByControlNumber(ctx, controlNumber)
	if err == nil {
		return receipt, nil
	}
	if !errors.Is(err, domain.ErrReceiptNotFound) {
		return nil, err
	}

	receipt = &models.Receipt{
		ControlNumber: controlNumber,
		Token:         uuid.NewString(),
		BranchNumber:  branchNumber,
		MemberCode:    memberCode,
		IssuedAt:      time.Now(),
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		// A concurrent first issue won; hand back its token.
		if existing, getErr := s.receiptRepo.GetByControlNumber(ctx, controlNumber); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	log.Printf("🧾 Receipt issued for control %s", controlNumber)
	return receipt, nil
}

// Get resolves a presented token into a human-readable confirmation.
// The view never exposes which candidates were chosen.
func (s *ReceiptService) Get(ctx context.Context, token string) (*domain.ReceiptView, error) {
	receipt, err := s.receiptRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &domain.ReceiptView{
		ControlNumber: receipt.ControlNumber,
		BranchNumber:  receipt.BranchNumber,
		IssuedAt:      receipt.IssuedAt,
		Message:       "Vote recorded. Thank you for participating.",
	}, nil
}
