package config

import (
	"log"
	"time"

	"coopvote/internal/adapters/persistence/models"
)

// seedDemoElection seeds a small election for development: two branches, a
// handful of eligible members, and contested positions. Dev mode only.
func (s *Seeder) seedDemoElection() error {
	var count int64
	s.db.Model(&models.Branch{}).Count(&count)
	if count > 0 {
		return nil
	}

	branches := []models.Branch{
		{BranchNumber: "BR-001", Name: "Main Branch", Address: "123 Cooperative Ave", IsActive: true},
		{BranchNumber: "BR-002", Name: "North Branch", Address: "45 Market St", IsActive: true},
	}
	if err := s.db.Create(&branches).Error; err != nil {
		return err
	}

	members := []models.Member{
		{
			MemberCode: "M-1001", BranchNumber: "BR-001",
			FirstName: "Maria", MiddleName: "Santos", LastName: "Reyes",
			BirthDate:      time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC),
			ShareAccountNo: "SA-20250041", ShareAmount: 5000,
			IsMIGS: true, RegChannel: models.RegChannelOnsite, IsActive: true,
		},
		{
			MemberCode: "M-1002", BranchNumber: "BR-001",
			FirstName: "Jose", MiddleName: "Cruz", LastName: "Dela Torre",
			BirthDate:      time.Date(1978, 11, 2, 0, 0, 0, 0, time.UTC),
			ShareAccountNo: "SA-20250777", ShareAmount: 12000,
			IsMIGS: true, RegChannel: models.RegChannelOnline, IsActive: true,
		},
		{
			MemberCode: "M-2001", BranchNumber: "BR-002",
			FirstName: "Ana", MiddleName: "Lim", LastName: "Garcia",
			BirthDate:      time.Date(1990, 7, 21, 0, 0, 0, 0, time.UTC),
			ShareAccountNo: "SA-20251234", ShareAmount: 3000,
			IsMIGS: true, RegChannel: models.RegChannelNotRegistered, IsActive: true,
		},
	}
	if err := s.db.Create(&members).Error; err != nil {
		return err
	}

	positions := []models.Position{
		{Title: "Board of Directors", VacantCount: 3, Priority: 1, IsActive: true},
		{Title: "Audit Committee", VacantCount: 2, Priority: 2, IsActive: true},
		{Title: "Election Committee", VacantCount: 1, Priority: 3, IsActive: true},
	}
	if err := s.db.Create(&positions).Error; err != nil {
		return err
	}

	candidates := []models.Candidate{
		{PositionID: positions[0].ID, FirstName: "Ramon", LastName: "Villanueva", IsActive: true},
		{PositionID: positions[0].ID, FirstName: "Carmen", LastName: "Ocampo", IsActive: true},
		{PositionID: positions[0].ID, FirstName: "Eduardo", LastName: "Bautista", IsActive: true},
		{PositionID: positions[0].ID, FirstName: "Luisa", LastName: "Mendoza", IsActive: true},
		{PositionID: positions[1].ID, FirstName: "Pablo", LastName: "Navarro", IsActive: true},
		{PositionID: positions[1].ID, FirstName: "Teresa", LastName: "Aquino", IsActive: true},
		{PositionID: positions[1].ID, FirstName: "Nestor", LastName: "Salazar", IsActive: true},
		{PositionID: positions[2].ID, FirstName: "Gloria", LastName: "Ramos", IsActive: true},
		{PositionID: positions[2].ID, FirstName: "Felipe", LastName: "Domingo", IsActive: true},
	}
	if err := s.db.Create(&candidates).Error; err != nil {
		return err
	}

	log.Printf("✅ Demo election seeded: %d branches, %d members, %d positions, %d candidates",
		len(branches), len(members), len(positions), len(candidates))
	return nil
}
