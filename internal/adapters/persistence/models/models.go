package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Reference data (admin-managed)
// ============================================================

// Branch represents branches table. The voting flow references branches by
// BranchNumber, not by row ID; BranchNumber is the stable foreign key.
type Branch struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	BranchNumber string         `gorm:"uniqueIndex;size:20;not null" json:"branch_number"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Address      string         `gorm:"size:255" json:"address"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string {
	return "branches"
}

// Registration channels
const (
	RegChannelOnline        = "ONLINE"
	RegChannelOnsite        = "ONSITE"
	RegChannelNotRegistered = "NOT_REGISTERED"
)

// Member represents members table. MemberCode is the unique code used as
// the vote foreign key. ShareAccountNo and BirthDate back the identity
// challenge and are never exposed through the voting API.
type Member struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	MemberCode     string         `gorm:"uniqueIndex;size:20;not null" json:"member_code"`
	BranchNumber   string         `gorm:"size:20;not null;index" json:"branch_number"`
	FirstName      string         `gorm:"size:100;not null" json:"first_name"`
	MiddleName     string         `gorm:"size:100" json:"-"`
	LastName       string         `gorm:"size:100;not null" json:"last_name"`
	BirthDate      time.Time      `gorm:"type:date" json:"-"`
	ShareAccountNo string         `gorm:"size:30" json:"-"`
	ShareAmount    float64        `gorm:"type:decimal(15,2);default:0" json:"share_amount"`
	IsMIGS         bool           `gorm:"default:false" json:"is_migs"`
	RegChannel     string         `gorm:"size:20;default:'NOT_REGISTERED'" json:"reg_channel"`
	Phone          string         `gorm:"size:30" json:"phone"`
	Email          string         `gorm:"size:100" json:"email"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// FullName joins the name parts, skipping an empty middle name.
func (m *Member) FullName() string {
	parts := []string{m.FirstName}
	if m.MiddleName != "" {
		parts = append(parts, m.MiddleName)
	}
	parts = append(parts, m.LastName)
	return strings.Join(parts, " ")
}

// Position represents positions table. VacantCount is the maximum number of
// candidates a member may select for this position.
type Position struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:100;not null" json:"title"`
	VacantCount int            `gorm:"not null;default:1" json:"vacant_count"`
	Priority    int            `gorm:"not null;default:0" json:"priority"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Candidates []Candidate `gorm:"foreignKey:PositionID" json:"candidates,omitempty"`
}

func (Position) TableName() string {
	return "positions"
}

// Candidate represents candidates table. A candidate belongs to exactly one
// position.
type Candidate struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PositionID uint           `gorm:"not null;index" json:"position_id"`
	FirstName  string         `gorm:"size:100;not null" json:"first_name"`
	MiddleName string         `gorm:"size:100" json:"middle_name"`
	LastName   string         `gorm:"size:100;not null" json:"last_name"`
	Bio        string         `gorm:"type:text" json:"bio"`
	ImageURL   string         `gorm:"size:255" json:"image_url"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Position *Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// FullName joins the name parts, skipping an empty middle name.
func (c *Candidate) FullName() string {
	parts := []string{c.FirstName}
	if c.MiddleName != "" {
		parts = append(parts, c.MiddleName)
	}
	parts = append(parts, c.LastName)
	return strings.Join(parts, " ")
}

// ============================================================
// Vote ledger (append-only)
// ============================================================

// Vote represents votes table. Rows are never updated or deleted once
// committed. The composite unique index is the last line of defense against
// double-voting under concurrent submissions.
type Vote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BranchNumber  string    `gorm:"size:20;not null;uniqueIndex:idx_votes_ballot_candidate" json:"branch_number"`
	MemberCode    string    `gorm:"size:20;not null;uniqueIndex:idx_votes_ballot_candidate" json:"member_code"`
	CandidateID   uint      `gorm:"not null;uniqueIndex:idx_votes_ballot_candidate;index" json:"candidate_id"`
	ControlNumber string    `gorm:"size:20;not null;index" json:"control_number"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Candidate *Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}

// Receipt represents receipts table: one per completed ballot, keyed by
// control number. Token is the opaque proof-of-participation value.
type Receipt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ControlNumber string    `gorm:"uniqueIndex;size:20;not null" json:"control_number"`
	Token         string    `gorm:"uniqueIndex;size:64;not null" json:"token"`
	BranchNumber  string    `gorm:"size:20;not null" json:"branch_number"`
	MemberCode    string    `gorm:"size:20;not null;index" json:"member_code"`
	IssuedAt      time.Time `gorm:"not null" json:"issued_at"`
}

func (Receipt) TableName() string {
	return "receipts"
}

// ============================================================
// Admin operators
// ============================================================

// User roles
const (
	RoleAdmin   = "ADMIN"
	RoleOfficer = "OFFICER"
)

// User represents users table (election administrators, not voters).
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'OFFICER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates/updates all tables owned by this service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Branch{},
		&Member{},
		&Position{},
		&Candidate{},
		&Vote{},
		&Receipt{},
		&User{},
	)
}
