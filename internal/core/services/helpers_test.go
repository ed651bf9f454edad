package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database. Shared cache keeps the same
// database visible across the pool's connections; the unique name isolates
// tests from each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:coopvote_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fixture is a seeded election: one branch, eligible members, two contests.
type fixture struct {
	db *gorm.DB

	branches  repositories.BranchRepository
	members   repositories.MemberRepository
	positions repositories.PositionRepository
	votes     repositories.VoteRepository
	receipts  repositories.ReceiptRepository

	branch *models.Branch
	member *models.Member

	// board has 2 vacancies, audit has 1
	board *models.Position
	audit *models.Position

	boardCands []models.Candidate
	auditCands []models.Candidate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		db:        db,
		branches:  repositories.NewBranchRepository(db),
		members:   repositories.NewMemberRepository(db),
		positions: repositories.NewPositionRepository(db),
		votes:     repositories.NewVoteRepository(db),
		receipts:  repositories.NewReceiptRepository(db),
	}

	f.branch = &models.Branch{BranchNumber: "BR-001", Name: "Main Branch", IsActive: true}
	if err := db.Create(f.branch).Error; err != nil {
		t.Fatalf("Failed to seed branch: %v", err)
	}

	f.member = f.seedMember(t, "M-1001", "Maria", "Santos", "Reyes", "SA-20250041", 5000, true)

	f.board = f.seedPosition(t, "Board of Directors", 2, 1)
	f.audit = f.seedPosition(t, "Audit Committee", 1, 2)

	f.boardCands = []models.Candidate{
		f.seedCandidate(t, f.board.ID, "Ana", "Cruz"),
		f.seedCandidate(t, f.board.ID, "Ben", "Dizon"),
		f.seedCandidate(t, f.board.ID, "Carl", "Estrada"),
	}
	f.auditCands = []models.Candidate{
		f.seedCandidate(t, f.audit.ID, "Dina", "Flores"),
		f.seedCandidate(t, f.audit.ID, "Ed", "Garcia"),
	}

	return f
}

func (f *fixture) seedMember(t *testing.T, code, first, middle, last, shareAccount string, shareAmount float64, migs bool) *models.Member {
	t.Helper()
	member := &models.Member{
		MemberCode:     code,
		BranchNumber:   f.branch.BranchNumber,
		FirstName:      first,
		MiddleName:     middle,
		LastName:       last,
		BirthDate:      time.Date(1985, time.March, 14, 0, 0, 0, 0, time.UTC),
		ShareAccountNo: shareAccount,
		ShareAmount:    shareAmount,
		IsMIGS:         migs,
		IsActive:       true,
	}
	if err := f.db.Create(member).Error; err != nil {
		t.Fatalf("Failed to seed member %s: %v", code, err)
	}
	return member
}

func (f *fixture) seedPosition(t *testing.T, title string, vacant, priority int) *models.Position {
	t.Helper()
	position := &models.Position{Title: title, VacantCount: vacant, Priority: priority, IsActive: true}
	if err := f.db.Create(position).Error; err != nil {
		t.Fatalf("Failed to seed position %s: %v", title, err)
	}
	return position
}

func (f *fixture) seedCandidate(t *testing.T, positionID uint, first, last string) models.Candidate {
	t.Helper()
	candidate := models.Candidate{PositionID: positionID, FirstName: first, LastName: last, IsActive: true}
	if err := f.db.Create(&candidate).Error; err != nil {
		t.Fatalf("Failed to seed candidate %s %s: %v", first, last, err)
	}
	return candidate
}

// seedVote writes a ledger row directly, bypassing the service pipeline.
// Used to set up already-voted members and tally scenarios.
func (f *fixture) seedVote(t *testing.T, memberCode string, candidateID uint, controlNumber string, at time.Time) {
	t.Helper()
	vote := &models.Vote{
		BranchNumber:  f.branch.BranchNumber,
		MemberCode:    memberCode,
		CandidateID:   candidateID,
		ControlNumber: controlNumber,
		CreatedAt:     at,
	}
	if err := f.votes.CreateVote(context.Background(), vote); err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}
}

// startSelectedSession walks a session to MEMBER_SELECTED for the fixture member.
func (f *fixture) startSelectedSession(t *testing.T, sessions *SessionService) string {
	t.Helper()
	ctx := context.Background()

	sess := sessions.Start()
	if _, err := sessions.SelectBranch(ctx, sess.ID, f.branch.ID); err != nil {
		t.Fatalf("SelectBranch failed: %v", err)
	}
	if _, err := sessions.SelectMember(ctx, sess.ID, f.member.ID); err != nil {
		t.Fatalf("SelectMember failed: %v", err)
	}
	return sess.ID
}
