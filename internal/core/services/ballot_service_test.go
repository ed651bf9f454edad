package services

import (
	"context"
	"testing"
)

func TestAssembleBallotOrdersByPriority(t *testing.T) {
	f := newFixture(t)
	svc := NewBallotService(f.positions)

	ballot, err := svc.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(ballot) != 2 {
		t.Fatalf("Expected 2 contests, got %d", len(ballot))
	}
	if ballot[0].Title != "Board of Directors" || ballot[1].Title != "Audit Committee" {
		t.Errorf("Unexpected contest order: %q, %q", ballot[0].Title, ballot[1].Title)
	}
	if ballot[0].VacantCount != 2 || ballot[1].VacantCount != 1 {
		t.Errorf("Unexpected vacancy counts: %d, %d", ballot[0].VacantCount, ballot[1].VacantCount)
	}
	if len(ballot[0].Candidates) != 3 || len(ballot[1].Candidates) != 2 {
		t.Errorf("Unexpected candidate counts: %d, %d", len(ballot[0].Candidates), len(ballot[1].Candidates))
	}
}

func TestAssembleBallotSkipsInactive(t *testing.T) {
	f := newFixture(t)
	svc := NewBallotService(f.positions)

	// Close the audit contest and withdraw one board candidate
	f.audit.IsActive = false
	if err := f.db.Save(f.audit).Error; err != nil {
		t.Fatalf("Failed to deactivate position: %v", err)
	}
	withdrawn := f.boardCands[1]
	withdrawn.IsActive = false
	if err := f.db.Save(&withdrawn).Error; err != nil {
		t.Fatalf("Failed to deactivate candidate: %v", err)
	}

	ballot, err := svc.Assemble(context.Background())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(ballot) != 1 {
		t.Fatalf("Expected 1 contest, got %d", len(ballot))
	}
	if len(ballot[0].Candidates) != 2 {
		t.Errorf("Expected 2 active candidates, got %d", len(ballot[0].Candidates))
	}
	for _, candidate := range ballot[0].Candidates {
		if candidate.ID == withdrawn.ID {
			t.Error("Withdrawn candidate still on the ballot")
		}
	}
}
