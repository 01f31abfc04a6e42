package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/db"
)

func setupMasterpieceServiceTest(t *testing.T) (MasterpieceService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	masterpieceRepo := repository.NewMasterpieceRepository(testDB)
	provenanceRepo := repository.NewProvenanceRepository(testDB)
	auctionRepo := repository.NewAuctionRepository(testDB)
	rarity := NewRarityService(masterpieceRepo, provenanceRepo, auctionRepo)

	svc := NewMasterpieceService(masterpieceRepo, provenanceRepo, rarity, &testConfig().Policy, nil)
	return svc, testDB
}

func TestMasterpieceService_Create_SeedsRarityAndProvenance(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	piece := &model.Masterpiece{
		Title:        "Solstice Ring",
		SerialNumber: "AB-2026-040",
		Edition:      model.EditionUnique,
		Materials:    pq.StringArray{"platinum"},
		Gemstones:    pq.StringArray{"sapphire", "diamond"},
		Price:        120000,
	}
	require.NoError(t, svc.Create(piece))

	assert.Equal(t, model.MasterpieceAvailable, piece.Status)
	assert.Greater(t, piece.RarityScore, 0)

	var event model.ProvenanceEvent
	require.NoError(t, testDB.Where("masterpiece_id = ? AND event_type = ?", piece.ID, "created").First(&event).Error)
}

func TestMasterpieceService_Get_VIPInvisibleToCollectors(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	piece := &model.Masterpiece{
		Title:        "Private Pendant",
		SerialNumber: "AB-2026-041",
		Price:        200000,
		Status:       model.MasterpieceAvailable,
		VIPOnly:      true,
	}
	testDB.Create(piece)

	_, err := svc.Get(piece.ID, model.RoleCollector)
	assert.ErrorIs(t, err, ErrMasterpieceNotFound)

	got, err := svc.Get(piece.ID, model.RoleVIP)
	require.NoError(t, err)
	assert.Equal(t, piece.ID, got.ID)

	asAdmin, err := svc.Get(piece.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, piece.ID, asAdmin.ID)
}

func TestMasterpieceService_List_FiltersVIP(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	testDB.Create(&model.Masterpiece{Title: "Public", SerialNumber: "AB-PUB", Price: 1000, Status: model.MasterpieceAvailable})
	testDB.Create(&model.Masterpiece{Title: "Private", SerialNumber: "AB-PRV", Price: 1000, Status: model.MasterpieceAvailable, VIPOnly: true})

	visible, err := svc.List(repository.MasterpieceFilter{}, model.RoleCollector)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := svc.List(repository.MasterpieceFilter{}, model.RoleVIP)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMasterpieceService_Reserve(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	piece := &model.Masterpiece{Title: "Reservable", SerialNumber: "AB-RES", Price: 1000, Status: model.MasterpieceAvailable}
	testDB.Create(piece)

	user := &model.User{Email: "c@example.com", PasswordHash: "hash", Name: "C", Role: model.RoleCollector}
	testDB.Create(user)

	reservation, err := svc.Reserve(piece.ID, user.ID, user.Role)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationActive, reservation.Status)

	var updated model.Masterpiece
	testDB.First(&updated, piece.ID)
	assert.Equal(t, model.MasterpieceReserved, updated.Status)

	other := &model.User{Email: "d@example.com", PasswordHash: "hash", Name: "D", Role: model.RoleCollector}
	testDB.Create(other)

	_, err = svc.Reserve(piece.ID, other.ID, other.Role)
	assert.ErrorIs(t, err, ErrMasterpieceNotAvailable)
}

func TestMasterpieceService_Waitlist(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	piece := &model.Masterpiece{Title: "Wanted", SerialNumber: "AB-WL", Price: 1000, Status: model.MasterpieceAvailable}
	testDB.Create(piece)

	user := &model.User{Email: "w@example.com", PasswordHash: "hash", Name: "W", Role: model.RoleCollector}
	testDB.Create(user)

	_, err := svc.JoinWaitlist(piece.ID, user.ID, "call me first")
	require.NoError(t, err)

	_, err = svc.JoinWaitlist(piece.ID, user.ID, "again")
	assert.ErrorIs(t, err, ErrAlreadyOnWaitlist)

	require.NoError(t, svc.LeaveWaitlist(piece.ID, user.ID))

	entries, err := svc.GetWaitlist(piece.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMasterpieceService_Valuation_IncludesServiceUplift(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	piece := &model.Masterpiece{Title: "Serviced", SerialNumber: "AB-SVC", Price: 100000, Status: model.MasterpieceSold}
	testDB.Create(piece)

	require.NoError(t, svc.AddServiceRecord(&model.ServiceRecord{
		MasterpieceID: piece.ID,
		ServiceType:   model.ServiceCleaning,
		Description:   "Annual deep clean and polish",
		Cost:          2000,
	}))

	valuation, err := svc.GetValuation(piece.ID)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, valuation.BasePrice)
	assert.Equal(t, 1000.0, valuation.ServiceUplift) // 50% of 2000
	assert.Equal(t, 101000.0, valuation.CurrentValue)
}

func TestMasterpieceService_Assign(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	owner := &model.User{Email: "client@example.com", PasswordHash: "hash", Name: "Client", Role: model.RoleVIP}
	testDB.Create(owner)

	piece := &model.Masterpiece{
		Title:        "Gifted Brooch",
		SerialNumber: "AB-2026-045",
		Price:        25000,
		Status:       model.MasterpieceAvailable,
	}
	testDB.Create(piece)

	assigned, err := svc.Assign(piece.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MasterpieceSold, assigned.Status)
	require.NotNil(t, assigned.CurrentOwnerID)
	assert.Equal(t, owner.ID, *assigned.CurrentOwnerID)

	var record model.OwnershipRecord
	require.NoError(t, testDB.Where("masterpiece_id = ? AND acquired_via = ?", piece.ID, "assignment").First(&record).Error)
	assert.Equal(t, owner.ID, record.OwnerID)

	var event model.ProvenanceEvent
	require.NoError(t, testDB.Where("masterpiece_id = ? AND event_type = ?", piece.ID, "assigned").First(&event).Error)

	vault, err := svc.ListOwned(owner.ID)
	require.NoError(t, err)
	require.Len(t, vault, 1)
	assert.Equal(t, piece.ID, vault[0].ID)
}

func TestMasterpieceService_Assign_ReservedPieceBlocks(t *testing.T) {
	svc, testDB := setupMasterpieceServiceTest(t)

	owner := &model.User{Email: "client2@example.com", PasswordHash: "hash", Name: "Client", Role: model.RoleCollector}
	testDB.Create(owner)

	piece := &model.Masterpiece{
		Title:        "Spoken For",
		SerialNumber: "AB-2026-046",
		Price:        25000,
		Status:       model.MasterpieceReserved,
	}
	testDB.Create(piece)

	_, err := svc.Assign(piece.ID, owner.ID)
	assert.ErrorIs(t, err, ErrMasterpieceNotAvailable)

	_, err = svc.Assign(9999, owner.ID)
	assert.ErrorIs(t, err, ErrMasterpieceNotFound)
}
